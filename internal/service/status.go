package service

import (
	"github.com/keymaster/keymaster/models"
)

// Status is the outcome of a master-pass check. It is never persisted; the
// caller branches on it to decide the user-facing flow (proceed, prompt for
// the master password, force re-entry of old credentials).
type Status int

const (
	// StatusOk means the stored material decrypted and verified; the clear
	// master password is available in the result.
	StatusOk Status = iota

	// StatusChanged means the global master password was rotated after
	// this user's record was derived; the record is stale and must be
	// re-derived through the old-password flow.
	StatusChanged

	// StatusInvalid means the stored material decrypted but the recovered
	// value does not match the current global master password hash.
	StatusInvalid

	// StatusNotSet means there is nothing to check: the record, the login
	// context, or the server-wide master password hash is missing.
	StatusNotSet

	// StatusCheckOld means the record's key cannot be derived from the
	// supplied credentials; the caller must re-authenticate the user with
	// the previous login password first.
	StatusCheckOld
)

// String implements fmt.Stringer for log output.
func (s Status) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusChanged:
		return "changed"
	case StatusInvalid:
		return "invalid"
	case StatusNotSet:
		return "not set"
	case StatusCheckOld:
		return "check old"
	default:
		return "unknown"
	}
}

// Result is the outcome of a master-pass operation. ClearMasterPass is
// populated only when Status is [StatusOk]; Record carries the produced
// artifacts for operations that derive new material.
type Result struct {
	Status          Status
	ClearMasterPass []byte
	Record          models.UserPass
}

func statusResult(s Status) Result {
	return Result{Status: s}
}
