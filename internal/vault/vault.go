// Package vault provides transient, session-scoped custody of one secret
// (the clear master password). The secret is held encrypted under a key
// derived from an ephemeral session seed and is never persisted to durable
// storage; when the seed rotates with the session id, the vault re-keys
// itself without exposing the secret outside the operation.
package vault

import (
	"errors"
	"sync"
	"time"

	"github.com/keymaster/keymaster/internal/crypto"
)

// ErrNoData is returned by GetData and ReKey when the vault has never been
// populated.
var ErrNoData = errors.New("vault holds no data")

// Vault holds one encrypted secret together with the secured key that can
// decrypt it. All access is serialized through an internal mutex so
// overlapping requests of the same session (two browser tabs) observe
// either the old or the new seed state, never a partial one.
//
// The zero value is an empty, usable vault.
type Vault struct {
	mu          sync.Mutex
	data        string
	key         crypto.SecuredKey
	hasKey      bool
	timeSet     int64
	timeUpdated int64
}

// New returns an empty vault.
func New() *Vault {
	return &Vault{}
}

// SaveData encrypts clear under a fresh secured key wrapped by seed and
// stores both. Every call produces a new key; timeSet is recorded only on
// the first call.
func (v *Vault) SaveData(clear []byte, seed string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.saveLocked(clear, seed)
}

func (v *Vault) saveLocked(clear []byte, seed string) error {
	sk, err := crypto.MakeSecuredKey(seed, crypto.FormLive)
	if err != nil {
		return err
	}
	blob, err := crypto.EncryptSecured(clear, sk, seed)
	if err != nil {
		return err
	}

	if v.timeSet == 0 {
		v.timeSet = time.Now().Unix()
	}
	v.data = blob
	v.key = sk
	v.hasKey = true

	return nil
}

// GetData unlocks the stored key with seed and decrypts the secret. A seed
// that does not match the one used at save time fails with a crypto error;
// an empty vault fails with [ErrNoData].
func (v *Vault) GetData(seed string) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.getLocked(seed)
}

func (v *Vault) getLocked(seed string) ([]byte, error) {
	if !v.hasKey || v.data == "" {
		return nil, ErrNoData
	}
	return crypto.DecryptSecured(v.data, v.key, seed)
}

// ReKey decrypts the secret under oldSeed and re-encrypts it under newSeed
// as one logical operation. If the decryption fails, nothing is mutated and
// a later GetData with oldSeed still succeeds.
func (v *Vault) ReKey(newSeed, oldSeed string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	clear, err := v.getLocked(oldSeed)
	if err != nil {
		return err
	}
	if err := v.saveLocked(clear, newSeed); err != nil {
		return err
	}
	v.timeUpdated = time.Now().Unix()

	return nil
}

// TimeSet returns the unix timestamp of the first SaveData call, or zero
// for an empty vault.
func (v *Vault) TimeSet() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.timeSet
}

// TimeUpdated returns the unix timestamp of the last successful ReKey, or
// zero if the vault has never been re-keyed.
func (v *Vault) TimeUpdated() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.timeUpdated
}
