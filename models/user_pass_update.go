package models

// UserPassUpdate describes a partial update of a [UserPass] record. Nil
// fields are left untouched. A full re-derivation sets all four; marking a
// login password change sets only IsChangedPass.
type UserPassUpdate struct {
	MPass           *string
	MKey            *string
	LastUpdateMPass *int64
	IsChangedPass   *bool
}

// Empty reports whether the update carries no fields at all.
func (u UserPassUpdate) Empty() bool {
	return u.MPass == nil && u.MKey == nil && u.LastUpdateMPass == nil && u.IsChangedPass == nil
}

// NewMaterialUpdate builds the update written after a successful
// re-derivation: fresh blob and key, a new timestamp, and the changed-pass
// marker cleared.
func NewMaterialUpdate(mPass, mKey string, lastUpdate int64) UserPassUpdate {
	changed := false
	return UserPassUpdate{
		MPass:           &mPass,
		MKey:            &mKey,
		LastUpdateMPass: &lastUpdate,
		IsChangedPass:   &changed,
	}
}

// NewPassChangedUpdate builds the update the authentication collaborator
// writes when a user's login password changes: only the marker flips, the
// stored material stays until the user re-validates.
func NewPassChangedUpdate(changed bool) UserPassUpdate {
	return UserPassUpdate{IsChangedPass: &changed}
}
