package memory

import (
	"context"
	"sync"
	"time"

	"token-minter/internal/domain"
	"token-minter/internal/storage"
)

// MintOrderStore is an in-memory implementation of storage.MintOrderStore.
type MintOrderStore struct {
	mu          sync.RWMutex
	byID        map[string]*domain.MintOrder // keyed by transaction_id
	bySignature map[string]string            // fee_signature -> transaction_id
	now         func() time.Time
}

// NewMintOrderStore creates a new in-memory mint order store.
func NewMintOrderStore() *MintOrderStore {
	return &MintOrderStore{
		byID:        make(map[string]*domain.MintOrder),
		bySignature: make(map[string]string),
		now:         time.Now,
	}
}

// Claim records the first submission, or takes over a reclaimable one.
// Returns ErrDuplicateKey if the transaction ID or fee signature was
// already claimed.
func (s *MintOrderStore) Claim(_ context.Context, o *domain.MintOrder) error {
	if o == nil || o.TransactionID == "" || o.FeeSignature == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.byID[o.TransactionID]
	if exists && !prev.Reclaimable() {
		return storage.ErrDuplicateKey
	}
	if owner, taken := s.bySignature[o.FeeSignature]; taken && owner != o.TransactionID {
		return storage.ErrDuplicateKey
	}

	now := s.now().UTC()
	orderCopy := *o
	if orderCopy.Status == "" {
		orderCopy.Status = domain.OrderSubmitted
	}
	orderCopy.MintAddress = nil
	orderCopy.FailedStep = nil
	orderCopy.CreatedAt = now
	orderCopy.UpdatedAt = now
	if exists {
		orderCopy.CreatedAt = prev.CreatedAt
		delete(s.bySignature, prev.FeeSignature)
	}

	s.byID[o.TransactionID] = &orderCopy
	s.bySignature[o.FeeSignature] = o.TransactionID
	return nil
}

// UpdateStatus moves an order forward. Returns ErrNotFound if not exists.
func (s *MintOrderStore) UpdateStatus(_ context.Context, transactionID string, status domain.OrderStatus, mintAddress, failedStep *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, exists := s.byID[transactionID]
	if !exists {
		return storage.ErrNotFound
	}

	o.Status = status
	if mintAddress != nil {
		v := *mintAddress
		o.MintAddress = &v
	}
	if failedStep != nil {
		v := *failedStep
		o.FailedStep = &v
	}
	o.UpdatedAt = s.now().UTC()
	return nil
}

// GetByTransactionID retrieves an order by request ID. Returns ErrNotFound if not exists.
func (s *MintOrderStore) GetByTransactionID(_ context.Context, transactionID string) (*domain.MintOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, exists := s.byID[transactionID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	orderCopy := *o
	return &orderCopy, nil
}

// GetByMintAddress retrieves the order that produced a mint. Returns ErrNotFound if not exists.
func (s *MintOrderStore) GetByMintAddress(_ context.Context, mintAddress string) (*domain.MintOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.byID {
		if o.MintAddress != nil && *o.MintAddress == mintAddress {
			orderCopy := *o
			return &orderCopy, nil
		}
	}
	return nil, storage.ErrNotFound
}

var _ storage.MintOrderStore = (*MintOrderStore)(nil)
