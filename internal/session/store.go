package session

// store.go keeps the live sessions of the process in memory, keyed by a
// random UUID. Nothing is persisted; a restart drops every session.
//
// Idle sessions are evicted by Sweep, which RunJanitor calls on a ticker
// until its context is cancelled.

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrTooManySessions is returned by Create when the store is full.
var ErrTooManySessions = errors.New("too many active sessions, please try again later")

const (
	DefaultMaxSessions = 1000
	DefaultIdleTimeout = 30 * time.Minute
)

// StoreConfig configures a Store. Zero values select the defaults.
type StoreConfig struct {
	MaxSessions int
	IdleTimeout time.Duration

	// OnChange, if set, is called with the session count after every
	// create, delete and sweep.
	OnChange func(active int)
}

// Store is a concurrency-safe set of sessions.
type Store struct {
	cfg StoreConfig
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore returns an empty store.
func NewStore(cfg StoreConfig) *Store {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	return &Store{
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create registers a new Empty session. When the store is full, idle
// sessions are swept first; ErrTooManySessions is returned if that does not
// free a slot.
func (st *Store) Create() (*Session, error) {
	if st.Len() >= st.cfg.MaxSessions {
		st.Sweep(st.now())
	}

	st.mu.Lock()
	if len(st.sessions) >= st.cfg.MaxSessions {
		st.mu.Unlock()
		return nil, ErrTooManySessions
	}
	s := newSession(uuid.NewString(), st.now)
	st.sessions[s.ID()] = s
	n := len(st.sessions)
	st.mu.Unlock()

	st.changed(n)
	return s, nil
}

// Get returns the session with id and marks it used.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		s.touch()
	}
	return s, ok
}

// Delete removes the session with id. It reports whether it existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	n := len(st.sessions)
	st.mu.Unlock()

	if ok {
		st.changed(n)
	}
	return ok
}

// Len returns the number of sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions unused for longer than the idle timeout as of now
// and returns how many were removed.
func (st *Store) Sweep(now time.Time) int {
	cutoff := now.Add(-st.cfg.IdleTimeout)

	st.mu.Lock()
	removed := 0
	for id, s := range st.sessions {
		if s.LastUsed().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	n := len(st.sessions)
	st.mu.Unlock()

	if removed > 0 {
		st.changed(n)
	}
	return removed
}

// RunJanitor sweeps every interval until ctx is cancelled.
func (st *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	slog.Info("session janitor started",
		"interval", interval.String(),
		"idle_timeout", st.cfg.IdleTimeout.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case <-ticker.C:
			start := time.Now()
			if n := st.Sweep(st.now()); n > 0 {
				slog.Info("evicted idle sessions",
					"sessions_evicted", n,
					"sessions_active", st.Len(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}
		}
	}
}

func (st *Store) changed(active int) {
	if st.cfg.OnChange != nil {
		st.cfg.OnChange(active)
	}
}
