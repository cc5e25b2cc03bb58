package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keymaster/keymaster/internal/config"
	"github.com/keymaster/keymaster/internal/crypto"
	"github.com/keymaster/keymaster/internal/logger"
	"github.com/keymaster/keymaster/internal/store"
	"github.com/keymaster/keymaster/internal/validators"
	"github.com/keymaster/keymaster/models"
)

// maxArtifactLen bounds the serialized secured key and the encrypted blob
// so they always fit their storage columns. Anything larger is a fatal
// condition, never a truncated write.
const maxArtifactLen = validators.MaxArtifactLen

// MasterPassService runs the master-password status machine over the
// stored per-user material and the global configuration parameters.
//
// The service is safe for concurrent use: all state is read-only after
// construction, and every operation works on its own copy of key material.
type MasterPassService struct {
	// userPass is the data-access layer for per-user crypto records.
	userPass store.UserPassRepository

	// config is the data-access layer for the global master password hash
	// and change timestamp.
	config store.ConfigRepository

	// validator checks login contexts and update payloads before they
	// reach the crypto or persistence layers.
	validator validators.Validator

	// salt is the server-wide password salt appended to every derived key.
	salt string

	// logger is the structured logger used for diagnostic output.
	logger *logger.Logger
}

// NewMasterPassService constructs a MasterPassService wired to the given
// repositories and populated with the password salt from cfg.
func NewMasterPassService(userPass store.UserPassRepository, configRepo store.ConfigRepository, cfg config.App, logger *logger.Logger) *MasterPassService {
	return &MasterPassService{
		userPass:  userPass,
		config:    configRepo,
		validator: validators.NewUserPassValidator(),
		salt:      cfg.PasswordSalt,
		logger:    logger,
	}
}

// makeKey derives the wrapping password for a user's secured key. The
// concatenation itself never touches a cipher: it is always consumed as the
// password input of the envelope KDF.
func (s *MasterPassService) makeKey(password, login string) string {
	return password + login + s.salt
}

// Load determines the status of the user's stored master password material
// for the given login context.
//
// Outcomes:
//   - [StatusNotSet] — record, login context, or global hash missing.
//   - [StatusChanged] — the global master password was rotated after this
//     record was derived; no decryption is attempted.
//   - [StatusCheckOld] — the record is flagged as derived from old
//     credentials and no unlock password was supplied, or the material did
//     not decrypt under the derived key.
//   - [StatusInvalid] — decryption succeeded but the value does not match
//     the global hash.
//   - [StatusOk] — the clear master password is in the result.
//
// Unexpected failures (persistence, non-crypto errors) wrap [ErrInternal].
func (s *MasterPassService) Load(ctx context.Context, login models.UserLogin, rec models.UserPass) (Result, error) {
	log := logger.FromContext(ctx)

	if rec.Empty() || login.Empty() {
		return statusResult(StatusNotSet), nil
	}

	globalHash, err := s.config.GetMasterPwdHash(ctx)
	if errors.Is(err, store.ErrParameterNotFound) {
		return statusResult(StatusNotSet), nil
	}
	if err != nil {
		log.Err(err).Msg("reading global master pass hash failed")
		return Result{}, fmt.Errorf("%w: read global master pass hash: %w", ErrInternal, err)
	}

	key := s.makeKey(login.UsablePass(), login.Login)

	lastGlobalChange, err := s.config.GetLastUpdateMPass(ctx)
	if err != nil {
		log.Err(err).Msg("reading global master pass timestamp failed")
		return Result{}, fmt.Errorf("%w: read global master pass timestamp: %w", ErrInternal, err)
	}
	if rec.LastUpdateMPass < lastGlobalChange {
		log.Debug().
			Int64("user_id", rec.UserID).
			Int64("record_ts", rec.LastUpdateMPass).
			Int64("global_ts", lastGlobalChange).
			Msg("master pass record is older than the global change")
		return statusResult(StatusChanged), nil
	}

	if rec.IsChangedPass && login.UnlockPass == "" {
		return statusResult(StatusCheckOld), nil
	}

	clear, err := s.decryptRecord(rec, key)
	switch {
	case errors.Is(err, crypto.ErrCrypto):
		// Kept behavior: any decryption failure is treated as "may need
		// the old credentials", even outright wrong key material.
		log.Debug().Int64("user_id", rec.UserID).Msg("master pass material did not decrypt under the derived key")
		return statusResult(StatusCheckOld), nil
	case err != nil:
		return Result{}, fmt.Errorf("%w: decrypt master pass: %w", ErrInternal, err)
	}

	if !crypto.CheckHashKey(string(clear), globalHash) {
		log.Warn().Int64("user_id", rec.UserID).Msg("decrypted master pass does not match the global hash")
		return statusResult(StatusInvalid), nil
	}

	return Result{Status: StatusOk, ClearMasterPass: clear, Record: rec}, nil
}

// LoadByUserID fetches the user's crypto record and runs [Load] on it. A
// user without a record yields [StatusNotSet].
func (s *MasterPassService) LoadByUserID(ctx context.Context, login models.UserLogin, userID int64) (Result, error) {
	rec, err := s.userPass.GetByUserID(ctx, userID)
	if errors.Is(err, store.ErrUserPassNotFound) {
		return statusResult(StatusNotSet), nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: load master pass record: %w", ErrInternal, err)
	}

	return s.Load(ctx, login, rec)
}

// UpdateFromOldPass re-derives a stale record after a login password
// change: the material is decrypted with the key derived from oldPassword,
// verified against the global hash, re-wrapped under the current login
// password, and persisted.
//
// Returns [StatusInvalid] without any mutation if oldPassword does not
// recover a valid master password.
func (s *MasterPassService) UpdateFromOldPass(ctx context.Context, oldPassword string, login models.UserLogin, rec models.UserPass) (Result, error) {
	log := logger.FromContext(ctx)

	if err := s.validator.Validate(ctx, login); err != nil || oldPassword == "" {
		return Result{}, ErrInvalidDataProvided
	}
	if err := s.validator.Validate(ctx, rec); err != nil {
		log.Debug().Int64("user_id", rec.UserID).Err(err).Msg("stored master pass record is structurally invalid")
		return statusResult(StatusInvalid), nil
	}

	globalHash, err := s.config.GetMasterPwdHash(ctx)
	if errors.Is(err, store.ErrParameterNotFound) {
		return statusResult(StatusNotSet), nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: read global master pass hash: %w", ErrInternal, err)
	}

	oldKey := s.makeKey(oldPassword, login.Login)

	clear, err := s.decryptRecord(rec, oldKey)
	switch {
	case errors.Is(err, crypto.ErrCrypto):
		log.Debug().Int64("user_id", rec.UserID).Msg("old password did not decrypt the stored material")
		return statusResult(StatusInvalid), nil
	case err != nil:
		return Result{}, fmt.Errorf("%w: decrypt master pass with old key: %w", ErrInternal, err)
	}

	if !crypto.CheckHashKey(string(clear), globalHash) {
		log.Warn().Int64("user_id", rec.UserID).Msg("master pass recovered with old password does not match the global hash")
		return statusResult(StatusInvalid), nil
	}

	fresh, err := s.Create(clear, login.Login, login.LoginPass)
	if err != nil {
		return Result{}, err
	}
	fresh.UserID = rec.UserID

	update := models.NewMaterialUpdate(fresh.MPass, fresh.MKey, fresh.LastUpdateMPass)
	if err := s.userPass.UpdateMasterPassByID(ctx, rec.UserID, update); err != nil {
		log.Err(err).Int64("user_id", rec.UserID).Msg("persisting re-derived master pass failed")
		return Result{}, fmt.Errorf("%w: update master pass record: %w", ErrInternal, err)
	}

	return Result{Status: StatusOk, ClearMasterPass: clear, Record: fresh}, nil
}

// UpdateOnLogin re-wraps the known-good clear master password under the
// current login credentials and persists it. When the server has no global
// master password hash yet (first-time setup), a fresh hash of
// clearMasterPass is recorded first.
//
// A user without an existing record gets one created instead of updated.
func (s *MasterPassService) UpdateOnLogin(ctx context.Context, clearMasterPass []byte, login models.UserLogin, userID int64) (Result, error) {
	log := logger.FromContext(ctx)

	if err := s.validator.Validate(ctx, login); err != nil || len(clearMasterPass) == 0 {
		return Result{}, ErrInvalidDataProvided
	}

	_, err := s.config.GetMasterPwdHash(ctx)
	switch {
	case errors.Is(err, store.ErrParameterNotFound):
		hash, hashErr := crypto.HashKey(string(clearMasterPass))
		if hashErr != nil {
			return Result{}, fmt.Errorf("%w: hash master pass: %w", ErrInternal, hashErr)
		}
		if setErr := s.config.SetMasterPwdHash(ctx, hash); setErr != nil {
			return Result{}, fmt.Errorf("%w: record global master pass hash: %w", ErrInternal, setErr)
		}
		log.Info().Msg("recorded first global master pass hash")
	case err != nil:
		return Result{}, fmt.Errorf("%w: read global master pass hash: %w", ErrInternal, err)
	}

	fresh, err := s.Create(clearMasterPass, login.Login, login.LoginPass)
	if err != nil {
		return Result{}, err
	}
	fresh.UserID = userID

	update := models.NewMaterialUpdate(fresh.MPass, fresh.MKey, fresh.LastUpdateMPass)
	err = s.userPass.UpdateMasterPassByID(ctx, userID, update)
	if errors.Is(err, store.ErrUserPassNotFound) {
		err = s.userPass.Create(ctx, fresh)
	}
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("persisting master pass on login failed")
		return Result{}, fmt.Errorf("%w: persist master pass record: %w", ErrInternal, err)
	}

	return Result{Status: StatusOk, ClearMasterPass: clearMasterPass, Record: fresh}, nil
}

// Create derives the wrapping key from (password, login), wraps a fresh
// secured key with it, and encrypts clearMasterPass. Nothing is persisted;
// the caller owns the produced record.
//
// Oversized artifacts (serialized key or blob beyond the storage bound)
// fail with [ErrInternal] before any persistence can happen.
func (s *MasterPassService) Create(clearMasterPass []byte, login, password string) (models.UserPass, error) {
	if login == "" || password == "" || len(clearMasterPass) == 0 {
		return models.UserPass{}, ErrInvalidDataProvided
	}

	key := s.makeKey(password, login)

	sk, err := crypto.MakeSecuredKey(key, crypto.FormLive)
	if err != nil {
		return models.UserPass{}, fmt.Errorf("%w: make secured key: %w", ErrInternal, err)
	}
	blob, err := crypto.EncryptSecured(clearMasterPass, sk, key)
	if err != nil {
		return models.UserPass{}, fmt.Errorf("%w: encrypt master pass: %w", ErrInternal, err)
	}

	serialized := sk.String()
	if len(serialized) > maxArtifactLen || len(blob) > maxArtifactLen {
		return models.UserPass{}, fmt.Errorf("%w: derived artifacts exceed storage bounds", ErrInternal)
	}

	return models.UserPass{
		MPass:           blob,
		MKey:            serialized,
		LastUpdateMPass: time.Now().Unix(),
	}, nil
}

// decryptRecord parses the record's secured key and decrypts the blob with
// the derived wrapping password. All failures are crypto errors.
func (s *MasterPassService) decryptRecord(rec models.UserPass, key string) ([]byte, error) {
	sk, err := crypto.ParseSecuredKey(rec.MKey)
	if err != nil {
		return nil, err
	}
	return crypto.DecryptSecured(rec.MPass, sk, key)
}
