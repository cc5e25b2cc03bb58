package models

import "time"

// UserPass is the durable cryptographic material attached to one user
// account: the master password encrypted under a login-derived key, the
// secured key paired with that blob, and the bookkeeping the status checks
// depend on.
//
// A UserPass row is mutated only through the master-pass service
// operations; callers never write its fields directly.
type UserPass struct {
	// UserID identifies the owning user account.
	UserID int64 `json:"user_id" db:"user_id"`

	// MPass is the encrypted master password blob, base64 of
	// nonce ‖ ciphertext, decryptable only with the key inside MKey.
	MPass string `json:"m_pass" db:"m_pass"`

	// MKey is the ASCII-safe serialized secured key paired with MPass.
	MKey string `json:"m_key" db:"m_key"`

	// LastUpdateMPass is the unix timestamp of the last time this record
	// was re-derived. Compared against the global change timestamp to
	// detect a stale record after an administrative rotation.
	LastUpdateMPass int64 `json:"last_update_m_pass" db:"last_update_m_pass"`

	// IsChangedPass marks that the user's login password has changed and
	// this record still holds material derived from the old one.
	IsChangedPass bool `json:"is_changed_pass" db:"is_changed_pass"`

	// UpdatedAt is the server-assigned row modification time.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Empty reports whether the record carries no usable key material.
func (u UserPass) Empty() bool {
	return u.MPass == "" || u.MKey == ""
}
