package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"

	"github.com/keymaster/keymaster/internal/logger"
	"github.com/keymaster/keymaster/models"
)

// userPassRepository is the PostgreSQL-backed implementation of
// [UserPassRepository]. It manages the "user_mpass" table holding the
// encrypted master password and its secured key per user.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userPassRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserPassRepository constructs a [UserPassRepository] backed by the
// provided database connection and logger.
func NewUserPassRepository(db *DB, logger *logger.Logger) UserPassRepository {
	logger.Debug().Msg("creating user pass repository")
	return &userPassRepository{
		db:     db,
		logger: logger,
	}
}

// GetByUserID implements [UserPassRepository].
//
// Error handling:
//   - No row → [ErrUserPassNotFound].
//   - Driver-level failure → wrapped [ErrExecutingQuery].
//   - Scan failure → wrapped [ErrScanningRow].
func (r *userPassRepository) GetByUserID(ctx context.Context, userID int64) (models.UserPass, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, getUserPassByID, userID)

	var pass models.UserPass
	err := row.Scan(&pass.UserID, &pass.MPass, &pass.MKey, &pass.LastUpdateMPass, &pass.IsChangedPass, &pass.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.UserPass{}, ErrUserPassNotFound
	case err != nil:
		log.Err(err).Int64("user_id", userID).Str("func", "*userPassRepository.GetByUserID").Msg("error scanning user pass row")
		if r.db.errorClassificator != nil && r.db.errorClassificator.Classify(err) == Retryable {
			log.Warn().Int64("user_id", userID).Msg("transient database error, safe to retry")
		}
		return models.UserPass{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return pass, nil
}

// Create implements [UserPassRepository].
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrUserPassAlreadyExists].
//   - Any other driver-level error → wrapped [ErrExecutingQuery].
func (r *userPassRepository) Create(ctx context.Context, pass models.UserPass) error {
	log := logger.FromContext(ctx)

	_, err := r.db.ExecContext(ctx, createUserPass,
		pass.UserID, pass.MPass, pass.MKey, pass.LastUpdateMPass, pass.IsChangedPass)
	if err != nil {
		log.Err(err).Int64("user_id", pass.UserID).Str("func", "*userPassRepository.Create").Msg("error inserting user pass record")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return ErrUserPassAlreadyExists
		default:
			return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}
	}

	return nil
}

// UpdateMasterPassByID implements [UserPassRepository]. The UPDATE is built
// dynamically from the non-nil fields of update; updated_at is always
// bumped.
//
// Error handling:
//   - Empty update → [ErrNothingToUpdate] without touching the database.
//   - Build failure → wrapped [ErrBuildingSQLQuery].
//   - Driver-level failure → wrapped [ErrExecutingQuery].
//   - Zero rows affected → [ErrUserPassNotFound].
func (r *userPassRepository) UpdateMasterPassByID(ctx context.Context, userID int64, update models.UserPassUpdate) error {
	log := logger.FromContext(ctx)

	if update.Empty() {
		return ErrNothingToUpdate
	}

	query, args, err := buildUserPassUpdate(userID, update)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Str("func", "*userPassRepository.UpdateMasterPassByID").Msg("error building update query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Str("func", "*userPassRepository.UpdateMasterPassByID").Msg("error updating user pass record")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if affected == 0 {
		return ErrUserPassNotFound
	}

	return nil
}

// buildUserPassUpdate assembles the partial UPDATE statement for the
// non-nil fields of update.
func buildUserPassUpdate(userID int64, update models.UserPassUpdate) (string, []any, error) {
	builder := sq.Update("user_mpass").PlaceholderFormat(sq.Dollar)

	if update.MPass != nil {
		builder = builder.Set("m_pass", *update.MPass)
	}
	if update.MKey != nil {
		builder = builder.Set("m_key", *update.MKey)
	}
	if update.LastUpdateMPass != nil {
		builder = builder.Set("last_update_m_pass", *update.LastUpdateMPass)
	}
	if update.IsChangedPass != nil {
		builder = builder.Set("is_changed_pass", *update.IsChangedPass)
	}

	return builder.
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
}
