package state

import (
	"context"
	"sync"
	"time"

	"archmap/backend/pkg/errors"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an untouched graph view session is kept
const DefaultSessionTTL = 2 * time.Hour

// SessionStore keeps graph view sessions in memory.
//
// The store lock guards the map only. Callers mutate a session through Update,
// which holds that session's own lock, so a slow query in one view never blocks
// another.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

type entry struct {
	mu      sync.Mutex
	session *Session
}

// NewSessionStore creates a store that expires sessions idle longer than ttl
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a new idle session
func (s *SessionStore) Create() *Session {
	sess := NewSession(uuid.NewString())
	sess.CreatedAt = s.now()
	sess.TouchedAt = sess.CreatedAt

	s.mu.Lock()
	s.sessions[sess.ID] = &entry{session: sess}
	s.mu.Unlock()
	return sess
}

func (s *SessionStore) lookup(id string) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, errors.NewSessionNotFound(id)
	}
	return e, nil
}

// Update runs fn with exclusive access to the session and refreshes its idle
// timer. fn must not call back into the store.
func (s *SessionStore) Update(id string, fn func(*Session) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.TouchedAt = s.now()
	return fn(e.session)
}

// View runs fn with the session locked, without touching it
func (s *SessionStore) View(id string, fn func(*Session) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Delete removes a session. Deleting an unknown id is not an error.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops every session idle for longer than the ttl and returns how many went
func (s *SessionStore) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		e.mu.Lock()
		stale := e.session.TouchedAt.Before(cutoff)
		e.mu.Unlock()
		if stale {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
