package storage

import (
	"context"

	"token-minter/internal/domain"
)

// TokenRequestStore provides access to token_requests storage.
type TokenRequestStore interface {
	// Insert adds a new pending request and sets r.ID and r.CreatedAt
	// to the values assigned by the store.
	Insert(ctx context.Context, r *domain.TokenRequest) error

	// GetByID retrieves a request by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.TokenRequest, error)
}

// MintOrderStore provides access to mint_orders storage.
type MintOrderStore interface {
	// Claim records the first submission for a request. An order that
	// failed before its fee was sent (MintOrder.Reclaimable) is taken over.
	// Returns ErrDuplicateKey if the request or fee signature was already claimed.
	Claim(ctx context.Context, o *domain.MintOrder) error

	// UpdateStatus moves an order forward. mintAddress and failedStep are
	// written only when non-nil. Returns ErrNotFound if not exists.
	UpdateStatus(ctx context.Context, transactionID string, status domain.OrderStatus, mintAddress, failedStep *string) error

	// GetByTransactionID retrieves an order by request ID. Returns ErrNotFound if not exists.
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.MintOrder, error)

	// GetByMintAddress retrieves the order that produced a mint. Returns ErrNotFound if not exists.
	GetByMintAddress(ctx context.Context, mintAddress string) (*domain.MintOrder, error)
}

// StepJournal records finalizer steps for later analysis.
type StepJournal interface {
	// Record appends one step record.
	Record(ctx context.Context, rec *domain.StepRecord) error

	// GetByTransactionID retrieves all steps of an order, ordered by start time ASC.
	GetByTransactionID(ctx context.Context, transactionID string) ([]*domain.StepRecord, error)
}
