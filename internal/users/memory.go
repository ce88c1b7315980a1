package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store with the same uniqueness rules as the
// users table. Handler and service tests run against it.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]User
	byRUT  map[string]uuid.UUID
	byMail map[string]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[uuid.UUID]User),
		byRUT:  make(map[string]uuid.UUID),
		byMail: make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byRUT[user.RUT]; ok {
		return ErrDuplicateKey
	}
	if _, ok := s.byMail[user.Mail]; ok {
		return ErrDuplicateKey
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now().UTC()

	s.byID[user.ID] = *user
	s.byRUT[user.RUT] = user.ID
	s.byMail[user.Mail] = user.ID
	return nil
}

func (s *MemoryStore) FindByRUT(_ context.Context, rut string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byRUT[rut]
	if !ok {
		return nil, ErrNotFound
	}
	u := s.byID[id]
	return &u, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// Len returns the number of stored users.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Delete removes a user. The application never deletes users; tests use it
// to simulate a record removed behind a live session.
func (s *MemoryStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byID, id)
	delete(s.byRUT, u.RUT)
	delete(s.byMail, u.Mail)
}
