// Package session owns the authenticated-identity lifecycle: restoring the
// persisted session on startup, login after verification, and logout. The
// current identity is mutated only through Login and Logout, and every
// change is pushed to subscribers before the call returns, so dependents
// never observe an intermediate state.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/adboardapp/adboard/internal/logging"
	"github.com/adboardapp/adboard/internal/models"
	"github.com/adboardapp/adboard/internal/repositories/metadata"
)

// sessionKey is the fixed name of the persisted session blob in the local
// metadata store.
const sessionKey = "session"

// Manager holds the current session and its persisted copy.
type Manager struct {
	meta   metadata.Repository
	secret []byte
	log    logging.Logger

	mu       sync.RWMutex
	user     *models.User
	watchers []func(*models.User)
}

// NewManager constructs a Manager persisting through meta, sealing blobs
// with secret.
func NewManager(meta metadata.Repository, secret []byte, log logging.Logger) *Manager {
	return &Manager{meta: meta, secret: secret, log: log}
}

// Restore loads the persisted session, if any. A missing blob means
// anonymous. An unparseable or tampered blob is treated as corrupt: the
// whole local store is cleared, since a store that produced one bad record
// cannot be trusted for the rest, and the result is anonymous. Restore
// never fails the caller for a bad blob; only a failing metadata read is
// returned as an error.
func (m *Manager) Restore(ctx context.Context) (*models.User, error) {
	blob, err := m.meta.Get(ctx, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("session read error: %w", err)
	}
	if blob == nil {
		return nil, nil
	}

	user, err := open(string(blob), m.secret)
	if err != nil {
		m.log.Warn(ctx, "clearing corrupt local state", "err", err)
		_ = m.meta.Clear(ctx)
		return nil, nil
	}

	m.set(user)
	return user, nil
}

// Login makes user the current session and persists it synchronously.
// user must be fully formed (post-verification). On a persist failure the
// in-memory session is left untouched and the error is returned.
func (m *Manager) Login(ctx context.Context, user *models.User) error {
	blob, err := seal(user, m.secret)
	if err != nil {
		return fmt.Errorf("session seal error: %w", err)
	}
	if err := m.meta.Set(ctx, sessionKey, []byte(blob)); err != nil {
		return fmt.Errorf("session persist error: %w", err)
	}

	m.set(user)
	return nil
}

// Logout clears the current session and its persisted blob. On a persist
// failure the in-memory session is left untouched and the error is returned.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.meta.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("session clear error: %w", err)
	}

	m.set(nil)
	return nil
}

// Current returns the logged-in user, or nil when anonymous.
func (m *Manager) Current() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// LoggedIn reports whether a user is logged in.
func (m *Manager) LoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil
}

// OnChange registers fn to be called on every session change, with the new
// user (nil on logout). Callbacks run synchronously inside Login/Logout.
func (m *Manager) OnChange(fn func(*models.User)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers = append(m.watchers, fn)
}

func (m *Manager) set(user *models.User) {
	m.mu.Lock()
	m.user = user
	watchers := make([]func(*models.User), len(m.watchers))
	copy(watchers, m.watchers)
	m.mu.Unlock()

	for _, fn := range watchers {
		fn(user)
	}
}
