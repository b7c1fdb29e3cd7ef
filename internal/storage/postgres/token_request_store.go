package postgres

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"token-minter/internal/domain"
	"token-minter/internal/storage"
)

// TokenRequestStore implements storage.TokenRequestStore using PostgreSQL.
type TokenRequestStore struct {
	pool *Pool
}

// NewTokenRequestStore creates a new TokenRequestStore.
func NewTokenRequestStore(pool *Pool) *TokenRequestStore {
	return &TokenRequestStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenRequestStore = (*TokenRequestStore)(nil)

// Insert adds a new pending request. The id and created_at are assigned
// by the database and written back to r.
func (s *TokenRequestStore) Insert(ctx context.Context, r *domain.TokenRequest) error {
	if r == nil || r.PayerAddress == "" {
		return storage.ErrInvalidInput
	}
	if r.Supply > math.MaxInt64 || r.FeeLamports > math.MaxInt64 {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO token_requests (
			public_key, name, symbol, supply, decimals, description,
			twitter, telegram, discord, website, creator,
			modify_creator, revoke_freeze, revoke_mint, revoke_update, fee_lamports
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id::text, created_at
	`

	err := s.pool.QueryRow(ctx, query,
		r.PayerAddress,
		r.Name,
		r.Symbol,
		int64(r.Supply),
		int16(r.Decimals),
		r.Description,
		r.Twitter,
		r.Telegram,
		r.Discord,
		r.Website,
		r.Creator,
		r.ModifyCreator,
		r.RevokeFreeze,
		r.RevokeMint,
		r.RevokeUpdate,
		int64(r.FeeLamports),
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert token request: %w", err)
	}
	return nil
}

// GetByID retrieves a request by its ID. Returns ErrNotFound if not exists.
func (s *TokenRequestStore) GetByID(ctx context.Context, id string) (*domain.TokenRequest, error) {
	query := `
		SELECT id::text, public_key, name, symbol, supply, decimals, description,
			twitter, telegram, discord, website, creator,
			modify_creator, revoke_freeze, revoke_mint, revoke_update, fee_lamports, created_at
		FROM token_requests
		WHERE id = $1
	`

	row := s.pool.QueryRow(ctx, query, id)
	r, err := scanTokenRequest(row)
	if err != nil {
		if isNotFoundError(err) || isMissingReferenceError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token request by id: %w", err)
	}
	return r, nil
}

// scanTokenRequest scans a single row into TokenRequest.
func scanTokenRequest(row pgx.Row) (*domain.TokenRequest, error) {
	var (
		r           domain.TokenRequest
		supply      int64
		decimals    int16
		feeLamports int64
	)

	err := row.Scan(
		&r.ID,
		&r.PayerAddress,
		&r.Name,
		&r.Symbol,
		&supply,
		&decimals,
		&r.Description,
		&r.Twitter,
		&r.Telegram,
		&r.Discord,
		&r.Website,
		&r.Creator,
		&r.ModifyCreator,
		&r.RevokeFreeze,
		&r.RevokeMint,
		&r.RevokeUpdate,
		&feeLamports,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Supply = uint64(supply)
	r.Decimals = uint8(decimals)
	r.FeeLamports = uint64(feeLamports)
	return &r, nil
}
