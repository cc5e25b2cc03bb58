package store

import (
	"context"

	"github.com/keymaster/keymaster/models"
)

// UserPassRepository is the persistence surface for per-user master
// password material. The master-pass service is its only writer; every
// other collaborator reads through it.
type UserPassRepository interface {
	// GetByUserID returns the crypto record of one user.
	// Returns ErrUserPassNotFound when the user has no record yet.
	GetByUserID(ctx context.Context, userID int64) (models.UserPass, error)

	// Create inserts the initial crypto record for a user.
	Create(ctx context.Context, pass models.UserPass) error

	// UpdateMasterPassByID applies the fields present in update to the
	// record of userID. Returns ErrUserPassNotFound if no row matched.
	UpdateMasterPassByID(ctx context.Context, userID int64, update models.UserPassUpdate) error
}

// ConfigRepository is the persistence surface for the global configuration
// parameters of the master password hierarchy: the hash of the current
// global master password and the timestamp of its last administrative
// change.
type ConfigRepository interface {
	// GetMasterPwdHash returns the bcrypt hash of the global master
	// password, or ErrParameterNotFound if none was ever recorded.
	GetMasterPwdHash(ctx context.Context) (string, error)

	// SetMasterPwdHash records a new global master password hash.
	SetMasterPwdHash(ctx context.Context, hash string) error

	// GetLastUpdateMPass returns the unix timestamp of the last global
	// master password change, or zero if none was ever recorded.
	GetLastUpdateMPass(ctx context.Context) (int64, error)

	// SetLastUpdateMPass records the timestamp of a global change event.
	SetLastUpdateMPass(ctx context.Context, ts int64) error
}
