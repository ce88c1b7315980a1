package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound means the session behind a token is gone: it expired,
// was revoked by logout, or its user no longer exists.
var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side record a token's jti points at.
type Session struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// SessionStore indexes live sessions. Save stores a session until its
// ExpiresAt. Get returns ErrSessionNotFound for unknown or expired IDs.
// Delete is idempotent.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MemorySessionStore keeps sessions in process memory. Sessions do not
// survive a restart; RedisStore is used when REDIS_URL is configured.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]Session
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[uuid.UUID]Session),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Save(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = *session
	s.evictExpired()
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok || !s.now().Before(session.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// evictExpired drops expired entries. Callers hold the write lock.
func (s *MemorySessionStore) evictExpired() {
	now := s.now()
	for id, session := range s.sessions {
		if !now.Before(session.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
}
