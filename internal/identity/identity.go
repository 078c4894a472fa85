// Package identity provides the durable per-browser user id and the
// tab-scoped session id.
package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"time"

	"github.com/ashureev/adolai/internal/store"
)

const (
	// UserIDKey is the durable storage key of the user id.
	UserIDKey = "adolai_user_id"
	// SessionIDKey is the tab-scoped storage key of the session id.
	SessionIDKey = "adolai_session_id"

	randomSuffixLen = 9
	base36          = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Options configures a Manager. Zero values select the real clock and
// crypto/rand.
type Options struct {
	Now  func() time.Time
	Rand io.Reader
}

// Manager reads and lazily creates identifiers in two storage scopes.
type Manager struct {
	durable store.KV
	tab     store.KV
	now     func() time.Time
	rand    io.Reader
}

// NewManager creates a Manager over the durable and tab-scoped stores.
func NewManager(durable, tab store.KV, opts Options) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.Reader
	}
	return &Manager{durable: durable, tab: tab, now: opts.Now, rand: opts.Rand}
}

// UserID returns the persisted user id, generating and storing one when absent.
func (m *Manager) UserID(ctx context.Context) (string, error) {
	return m.getOrCreate(ctx, m.durable, UserIDKey, "user")
}

// SessionID returns the tab-scoped session id, generating one when absent.
func (m *Manager) SessionID(ctx context.Context) (string, error) {
	return m.getOrCreate(ctx, m.tab, SessionIDKey, "session")
}

// ClearSession removes only the tab-scoped id.
func (m *Manager) ClearSession(ctx context.Context) error {
	if err := m.tab.Remove(ctx, SessionIDKey); err != nil {
		return fmt.Errorf("clear session id: %w", err)
	}
	return nil
}

// ClearUser removes both identifiers.
func (m *Manager) ClearUser(ctx context.Context) error {
	if err := m.durable.Remove(ctx, UserIDKey); err != nil {
		return fmt.Errorf("clear user id: %w", err)
	}
	return m.ClearSession(ctx)
}

func (m *Manager) getOrCreate(ctx context.Context, kv store.KV, key, prefix string) (string, error) {
	id, err := kv.Get(ctx, key)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("read %s: %w", key, err)
	}

	id, err = NewID(prefix, m.now(), m.rand)
	if err != nil {
		return "", err
	}
	if err := kv.Set(ctx, key, id); err != nil {
		return "", fmt.Errorf("persist %s: %w", key, err)
	}
	return id, nil
}

// NewID builds "<prefix>_<unixMillis>_<9 base-36 chars>". The id space is
// treated as collision-free; no uniqueness check is made.
func NewID(prefix string, now time.Time, r io.Reader) (string, error) {
	suffix := make([]byte, randomSuffixLen)
	limit := big.NewInt(int64(len(base36)))
	for i := range suffix {
		n, err := rand.Int(r, limit)
		if err != nil {
			return "", fmt.Errorf("generate %s id: %w", prefix, err)
		}
		suffix[i] = base36[n.Int64()]
	}
	return prefix + "_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + string(suffix), nil
}
