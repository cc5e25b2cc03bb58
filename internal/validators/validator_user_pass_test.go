package validators

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keymaster/keymaster/models"
)

func ptrStr(s string) *string { return &s }

func validUserPass() models.UserPass {
	return models.UserPass{
		UserID: 1,
		MPass:  "encrypted-blob",
		MKey:   "kv1$t=1,m=65536,p=4$c2FsdA==$d3JhcHBlZA==",
	}
}

func TestNewUserPassValidator(t *testing.T) {
	v := NewUserPassValidator()
	require.NotNil(t, v)
}

func TestValidate_UnsupportedType(t *testing.T) {
	v := NewUserPassValidator()

	assert.ErrorIs(t, v.Validate(context.Background(), 42), ErrUnsupportedType)
	assert.ErrorIs(t, v.Validate(context.Background(), "a string"), ErrUnsupportedType)
}

func TestValidate_UserLogin(t *testing.T) {
	v := NewUserPassValidator()
	ctx := context.Background()

	tests := []struct {
		name  string
		login models.UserLogin
		want  error
	}{
		{"valid", models.UserLogin{Login: "john", LoginPass: "secret"}, nil},
		{"missing login", models.UserLogin{LoginPass: "secret"}, ErrEmptyLogin},
		{"missing password", models.UserLogin{Login: "john"}, ErrEmptyLoginPass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(ctx, tt.login)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)

			// Pointer form dispatches identically.
			assert.ErrorIs(t, v.Validate(ctx, &tt.login), tt.want)
		})
	}
}

func TestValidate_UserLogin_FieldScoping(t *testing.T) {
	v := NewUserPassValidator()
	ctx := context.Background()

	login := models.UserLogin{Login: "john"}

	assert.NoError(t, v.Validate(ctx, login, FieldLogin))
	assert.ErrorIs(t, v.Validate(ctx, login, FieldLoginPass), ErrEmptyLoginPass)
	assert.ErrorIs(t, v.Validate(ctx, login, "no_such_field"), ErrUnknownField)
}

func TestValidate_UserPass(t *testing.T) {
	v := NewUserPassValidator()
	ctx := context.Background()

	oversized := strings.Repeat("x", MaxArtifactLen+1)

	tests := []struct {
		name   string
		mutate func(*models.UserPass)
		fields []string
		want   error
	}{
		{"valid", func(*models.UserPass) {}, nil, nil},
		{"missing blob", func(p *models.UserPass) { p.MPass = "" }, nil, ErrEmptyEncryptedPass},
		{"missing key", func(p *models.UserPass) { p.MKey = "" }, nil, ErrEmptyKeyMaterial},
		{"oversized blob", func(p *models.UserPass) { p.MPass = oversized }, nil, ErrArtifactTooLong},
		{"oversized key", func(p *models.UserPass) { p.MKey = oversized }, nil, ErrArtifactTooLong},
		{"bad user id when scoped", func(p *models.UserPass) { p.UserID = 0 }, []string{FieldUserID}, ErrInvalidUserID},
		{"user id ignored by default", func(p *models.UserPass) { p.UserID = 0 }, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pass := validUserPass()
			tt.mutate(&pass)

			err := v.Validate(ctx, pass, tt.fields...)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_UserPassUpdate(t *testing.T) {
	v := NewUserPassValidator()
	ctx := context.Background()

	oversized := strings.Repeat("x", MaxArtifactLen+1)

	tests := []struct {
		name   string
		update models.UserPassUpdate
		want   error
	}{
		{"material update", models.NewMaterialUpdate("blob", "key", 10), nil},
		{"flag only", models.NewPassChangedUpdate(true), nil},
		{"empty", models.UserPassUpdate{}, ErrNoFieldsToUpdate},
		{"blank blob", models.UserPassUpdate{MPass: ptrStr("")}, ErrEmptyEncryptedPass},
		{"oversized blob", models.UserPassUpdate{MPass: ptrStr(oversized)}, ErrArtifactTooLong},
		{"blank key", models.UserPassUpdate{MKey: ptrStr("")}, ErrEmptyKeyMaterial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(ctx, tt.update)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
