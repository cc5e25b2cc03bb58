package models

// UserLogin is the login-time context the master-pass operations derive
// keys from. It is built by the authentication collaborator from the
// submitted credentials and is never persisted.
type UserLogin struct {
	// Login is the account name.
	Login string `json:"login"`

	// LoginPass is the password submitted at login.
	LoginPass string `json:"-"`

	// UnlockPass is an optional separate password used to unlock the
	// stored key when it was derived from credentials that no longer match
	// the current login password.
	UnlockPass string `json:"-"`
}

// UsablePass returns the password the key derivation should use: the
// explicit unlock password when present, the login password otherwise.
func (u UserLogin) UsablePass() string {
	if u.UnlockPass != "" {
		return u.UnlockPass
	}
	return u.LoginPass
}

// Empty reports whether the context lacks a login name or any usable
// password.
func (u UserLogin) Empty() bool {
	return u.Login == "" || u.UsablePass() == ""
}
