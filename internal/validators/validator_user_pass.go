package validators

import (
	"context"

	"github.com/keymaster/keymaster/models"
)

const (
	FieldUserID    = "user_id"
	FieldLogin     = "login"
	FieldLoginPass = "login_pass"
	FieldMPass     = "m_pass"
	FieldMKey      = "m_key"
)

// MaxArtifactLen bounds the encrypted master pass blob and the serialized
// secured key so they always fit their storage columns.
const MaxArtifactLen = 1000

type UserPassValidator struct {
}

func NewUserPassValidator() Validator {
	return &UserPassValidator{}
}

func (v *UserPassValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.UserLogin:
		return v.validateUserLogin(ctx, value, fields...)
	case *models.UserLogin:
		return v.validateUserLogin(ctx, *value, fields...)

	case models.UserPass:
		return v.validateUserPass(ctx, value, fields...)
	case *models.UserPass:
		return v.validateUserPass(ctx, *value, fields...)

	case models.UserPassUpdate:
		return v.validateUserPassUpdate(ctx, value, fields...)
	case *models.UserPassUpdate:
		return v.validateUserPassUpdate(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *UserPassValidator) validateUserLogin(_ context.Context, login models.UserLogin, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldLogin, FieldLoginPass}
	}

	for _, f := range fields {
		switch f {
		case FieldLogin:
			if login.Login == "" {
				return ErrEmptyLogin
			}
		case FieldLoginPass:
			if login.LoginPass == "" {
				return ErrEmptyLoginPass
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateUserPass checks the stored artifacts. FieldUserID is not in the
// default set: freshly derived records carry no user ID until the caller
// assigns one.
func (v *UserPassValidator) validateUserPass(_ context.Context, pass models.UserPass, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldMPass, FieldMKey}
	}

	for _, f := range fields {
		switch f {
		case FieldUserID:
			if pass.UserID <= 0 {
				return ErrInvalidUserID
			}
		case FieldMPass:
			if pass.MPass == "" {
				return ErrEmptyEncryptedPass
			}
			if len(pass.MPass) > MaxArtifactLen {
				return ErrArtifactTooLong
			}
		case FieldMKey:
			if pass.MKey == "" {
				return ErrEmptyKeyMaterial
			}
			if len(pass.MKey) > MaxArtifactLen {
				return ErrArtifactTooLong
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *UserPassValidator) validateUserPassUpdate(_ context.Context, update models.UserPassUpdate, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldMPass, FieldMKey}
	}

	for _, f := range fields {
		switch f {
		case FieldMPass:
			if update.MPass != nil {
				if *update.MPass == "" {
					return ErrEmptyEncryptedPass
				}
				if len(*update.MPass) > MaxArtifactLen {
					return ErrArtifactTooLong
				}
			}
		case FieldMKey:
			if update.MKey != nil {
				if *update.MKey == "" {
					return ErrEmptyKeyMaterial
				}
				if len(*update.MKey) > MaxArtifactLen {
					return ErrArtifactTooLong
				}
			}
		default:
			return ErrUnknownField
		}
	}

	if update.Empty() {
		return ErrNoFieldsToUpdate
	}

	return nil
}
