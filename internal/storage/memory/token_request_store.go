package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"token-minter/internal/domain"
	"token-minter/internal/storage"
)

// TokenRequestStore is an in-memory implementation of storage.TokenRequestStore.
type TokenRequestStore struct {
	mu   sync.RWMutex
	byID map[string]*domain.TokenRequest
	now  func() time.Time
}

// NewTokenRequestStore creates a new in-memory token request store.
func NewTokenRequestStore() *TokenRequestStore {
	return &TokenRequestStore{
		byID: make(map[string]*domain.TokenRequest),
		now:  time.Now,
	}
}

// Insert adds a new request under a fresh UUID.
func (s *TokenRequestStore) Insert(_ context.Context, r *domain.TokenRequest) error {
	if r == nil || r.PayerAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = uuid.NewString()
	r.CreatedAt = s.now().UTC()

	reqCopy := *r
	s.byID[r.ID] = &reqCopy
	return nil
}

// GetByID retrieves a request by its ID. Returns ErrNotFound if not exists.
func (s *TokenRequestStore) GetByID(_ context.Context, id string) (*domain.TokenRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.byID[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	reqCopy := *r
	return &reqCopy, nil
}

// Len returns the number of stored requests.
func (s *TokenRequestStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

var _ storage.TokenRequestStore = (*TokenRequestStore)(nil)
