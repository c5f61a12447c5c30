package sessions

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryRepo is an in-memory implementation of Repo, suitable for a single
// process deployment and for tests.
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

var _ Repo = (*InMemoryRepo)(nil)

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]Session),
	}
}

// Upsert creates or updates a session.
func (r *InMemoryRepo) Upsert(_ context.Context, session Session) error {
	if session.ID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy so callers cannot mutate the stored record afterwards.
	r.sessions[session.ID] = cloneSession(session)
	return nil
}

// Get retrieves a session by ID.
func (r *InMemoryRepo) Get(_ context.Context, sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, fmt.Errorf("sessionID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return Session{}, ErrNotFound
	}
	return cloneSession(session), nil
}

// Delete removes a session. Deleting an absent session is not an error.
func (r *InMemoryRepo) Delete(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

func cloneSession(s Session) Session {
	c := s
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	if s.Captcha != nil {
		ch := *s.Captcha
		c.Captcha = &ch
	}
	return c
}
