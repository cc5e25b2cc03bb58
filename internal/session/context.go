// Package session implements the custody glue around the vault: a
// per-session context that owns the session id, the seed derived from it,
// and the vault holding the clear master password, plus an in-memory
// registry that tracks live contexts for lookup and idle teardown.
//
// Contexts are passed explicitly to whoever needs the vault; nothing in
// this package is a process-wide singleton.
package session

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/keymaster/keymaster/internal/vault"
)

// Context is the per-session holder of the vault. It is created at login,
// re-keyed when the session id rotates, and destroyed at logout.
type Context struct {
	mu        sync.Mutex
	id        string
	startedAt int64
	lastSeen  time.Time
	vault     *vault.Vault
}

// NewContext creates a session context with a fresh random id and an empty
// vault.
func NewContext() *Context {
	return &Context{
		id:        uuid.NewString(),
		startedAt: time.Now().Unix(),
		lastSeen:  time.Now(),
		vault:     vault.New(),
	}
}

// ID returns the current session id.
func (c *Context) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// seedLocked builds the vault seed from the session id and start time.
// Both values die with the session, so the seed can never outlive it.
func (c *Context) seedLocked() string {
	return c.id + strconv.FormatInt(c.startedAt, 10)
}

// EstablishVault places the clear master password into the session's vault,
// encrypted under the current seed. Called after a successful login or
// master-password validation.
func (c *Context) EstablishVault(clearMasterPass []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastSeen = time.Now()
	return c.vault.SaveData(clearMasterPass, c.seedLocked())
}

// MasterPass recovers the clear master password from the vault. It fails
// with [vault.ErrNoData] when no vault has been established and with a
// crypto error if the session state has been manipulated.
func (c *Context) MasterPass() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastSeen = time.Now()
	return c.vault.GetData(c.seedLocked())
}

// RotateID assigns a fresh session id and re-keys the vault from the old
// seed to the new one. On any failure the old id and seed remain in effect.
// An empty vault rotates without a re-key.
func (c *Context) RotateID() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	oldSeed := c.seedLocked()
	oldID := c.id

	c.id = uuid.NewString()
	if err := c.vault.ReKey(c.seedLocked(), oldSeed); err != nil && !errors.Is(err, vault.ErrNoData) {
		c.id = oldID
		return "", err
	}

	c.lastSeen = time.Now()
	return c.id, nil
}

// Destroy drops the vault contents. The context is unusable for master-pass
// retrieval afterwards.
func (c *Context) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.vault = vault.New()
}

// IdleFor returns how long ago the context was last touched.
func (c *Context) IdleFor(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastSeen)
}
