package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"token-minter/internal/domain"
	"token-minter/internal/storage"
)

// MintOrderStore implements storage.MintOrderStore using PostgreSQL.
type MintOrderStore struct {
	pool *Pool
}

// NewMintOrderStore creates a new MintOrderStore.
func NewMintOrderStore(pool *Pool) *MintOrderStore {
	return &MintOrderStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MintOrderStore = (*MintOrderStore)(nil)

// Claim records the first submission for a request, taking over an order
// whose fee was never sent. Returns ErrDuplicateKey if the request or the
// fee signature was already claimed, and ErrNotFound if the request does
// not exist.
func (s *MintOrderStore) Claim(ctx context.Context, o *domain.MintOrder) error {
	if o == nil || o.TransactionID == "" || o.FeeSignature == "" {
		return storage.ErrInvalidInput
	}

	status := o.Status
	if status == "" {
		status = domain.OrderSubmitted
	}

	// A conflicting row is only overwritten while it is reclaimable; the
	// row lock serializes concurrent retries.
	query := `
		INSERT INTO mint_orders (transaction_id, fee_signature, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (transaction_id) DO UPDATE
		SET fee_signature = EXCLUDED.fee_signature,
			status = EXCLUDED.status,
			mint_address = NULL,
			failed_step = NULL,
			updated_at = NOW()
		WHERE mint_orders.status = $4 AND mint_orders.failed_step = $5
	`

	tag, err := s.pool.Exec(ctx, query, o.TransactionID, o.FeeSignature, string(status),
		string(domain.OrderFailed), domain.FailedStepSendFee)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		if isMissingReferenceError(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("claim mint order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrDuplicateKey
	}
	return nil
}

// UpdateStatus moves an order forward. Returns ErrNotFound if not exists.
func (s *MintOrderStore) UpdateStatus(ctx context.Context, transactionID string, status domain.OrderStatus, mintAddress, failedStep *string) error {
	query := `
		UPDATE mint_orders
		SET status = $2,
			mint_address = COALESCE($3, mint_address),
			failed_step = COALESCE($4, failed_step),
			updated_at = NOW()
		WHERE transaction_id = $1
	`

	tag, err := s.pool.Exec(ctx, query, transactionID, string(status), mintAddress, failedStep)
	if err != nil {
		if isMissingReferenceError(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("update mint order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetByTransactionID retrieves an order by request ID. Returns ErrNotFound if not exists.
func (s *MintOrderStore) GetByTransactionID(ctx context.Context, transactionID string) (*domain.MintOrder, error) {
	query := `
		SELECT transaction_id::text, fee_signature, status, mint_address, failed_step, created_at, updated_at
		FROM mint_orders
		WHERE transaction_id = $1
	`

	o, err := scanMintOrder(s.pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if isNotFoundError(err) || isMissingReferenceError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get mint order by transaction id: %w", err)
	}
	return o, nil
}

// GetByMintAddress retrieves the order that produced a mint. Returns ErrNotFound if not exists.
func (s *MintOrderStore) GetByMintAddress(ctx context.Context, mintAddress string) (*domain.MintOrder, error) {
	query := `
		SELECT transaction_id::text, fee_signature, status, mint_address, failed_step, created_at, updated_at
		FROM mint_orders
		WHERE mint_address = $1
		LIMIT 1
	`

	o, err := scanMintOrder(s.pool.QueryRow(ctx, query, mintAddress))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get mint order by mint address: %w", err)
	}
	return o, nil
}

// scanMintOrder scans a single row into MintOrder.
func scanMintOrder(row pgx.Row) (*domain.MintOrder, error) {
	var (
		o      domain.MintOrder
		status string
	)

	err := row.Scan(
		&o.TransactionID,
		&o.FeeSignature,
		&status,
		&o.MintAddress,
		&o.FailedStep,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.Status = domain.OrderStatus(status)
	return &o, nil
}
