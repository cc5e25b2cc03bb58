package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/keymaster/keymaster/internal/logger"
)

// configRepository is the PostgreSQL-backed implementation of
// [ConfigRepository]. It reads and writes rows of the "config"
// parameter/value table.
type configRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewConfigRepository constructs a [ConfigRepository] backed by the
// provided database connection and logger.
func NewConfigRepository(db *DB, logger *logger.Logger) ConfigRepository {
	logger.Debug().Msg("creating config repository")
	return &configRepository{
		db:     db,
		logger: logger,
	}
}

// GetMasterPwdHash implements [ConfigRepository].
func (r *configRepository) GetMasterPwdHash(ctx context.Context) (string, error) {
	return r.getParameter(ctx, paramMasterPwd)
}

// SetMasterPwdHash implements [ConfigRepository].
func (r *configRepository) SetMasterPwdHash(ctx context.Context, hash string) error {
	return r.setParameter(ctx, paramMasterPwd, hash)
}

// GetLastUpdateMPass implements [ConfigRepository]. A missing parameter is
// reported as zero: no global change has ever been recorded, so no user
// record can be stale.
func (r *configRepository) GetLastUpdateMPass(ctx context.Context) (int64, error) {
	value, err := r.getParameter(ctx, paramLastUpdateMPass)
	if errors.Is(err, ErrParameterNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	ts, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parameter %q holds %q", ErrScanningRow, paramLastUpdateMPass, value)
	}
	return ts, nil
}

// SetLastUpdateMPass implements [ConfigRepository].
func (r *configRepository) SetLastUpdateMPass(ctx context.Context, ts int64) error {
	return r.setParameter(ctx, paramLastUpdateMPass, strconv.FormatInt(ts, 10))
}

func (r *configRepository) getParameter(ctx context.Context, name string) (string, error) {
	log := logger.FromContext(ctx)

	var value string
	err := r.db.QueryRowContext(ctx, getConfigParameter, name).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", ErrParameterNotFound
	case err != nil:
		log.Err(err).Str("parameter", name).Str("func", "*configRepository.getParameter").Msg("error reading config parameter")
		return "", fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return value, nil
}

func (r *configRepository) setParameter(ctx context.Context, name, value string) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, upsertConfigParameter, name, value); err != nil {
		log.Err(err).Str("parameter", name).Str("func", "*configRepository.setParameter").Msg("error writing config parameter")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return nil
}
