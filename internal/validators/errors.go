package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidUserID      = errors.New("invalid user ID")
	ErrEmptyLogin         = errors.New("login is required")
	ErrEmptyLoginPass     = errors.New("login password is required")
	ErrEmptyEncryptedPass = errors.New("encrypted master pass is required")
	ErrEmptyKeyMaterial   = errors.New("secured key material is required")
	ErrArtifactTooLong    = errors.New("artifact exceeds the storage bound")
	ErrNoFieldsToUpdate   = errors.New("at least one field must be provided for update")
)
