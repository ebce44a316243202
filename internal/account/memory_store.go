package account

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests and
// local runs without Postgres; all reads and writes return copies so
// callers never alias internal state.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*Account
	byEmail  map[string]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[uuid.UUID]*Account),
		byEmail:  make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore) Create(ctx context.Context, acc *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[acc.Email]; exists {
		return ErrDuplicateEmail
	}

	now := time.Now()
	acc.ID = uuid.New()
	acc.CreatedAt = now
	acc.UpdatedAt = now

	s.accounts[acc.ID] = acc.Clone()
	s.byEmail[acc.Email] = acc.ID

	return nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return acc.Clone(), nil
}

func (s *MemoryStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return s.accounts[id].Clone(), nil
}

func (s *MemoryStore) GetByVerificationToken(ctx context.Context, token string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, acc := range s.accounts {
		if !acc.EmailVerified && acc.EmailVerificationToken != nil && *acc.EmailVerificationToken == token {
			return acc.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetByResetToken(ctx context.Context, token string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, acc := range s.accounts {
		if acc.ResetPasswordToken != nil && *acc.ResetPasswordToken == token {
			return acc.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Update(ctx context.Context, acc *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[acc.ID]
	if !ok {
		return ErrNotFound
	}

	updated := acc.Clone()
	updated.Email = current.Email // immutable after creation
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = time.Now()

	s.accounts[acc.ID] = updated
	acc.UpdatedAt = updated.UpdatedAt

	return nil
}
