package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-minter/internal/domain"
	"token-minter/internal/storage"
)

func TestMintOrderStore_ClaimOnce(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	requests := NewTokenRequestStore(pool)
	store := NewMintOrderStore(pool)

	txID := insertTestRequest(t, ctx, requests, "payer-claim")
	otherID := insertTestRequest(t, ctx, requests, "payer-claim-2")

	err := store.Claim(ctx, &domain.MintOrder{TransactionID: txID, FeeSignature: "sig-1"})
	require.NoError(t, err)

	// Same request again
	err = store.Claim(ctx, &domain.MintOrder{TransactionID: txID, FeeSignature: "sig-2"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Same signature for another request
	err = store.Claim(ctx, &domain.MintOrder{TransactionID: otherID, FeeSignature: "sig-1"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	order, err := store.GetByTransactionID(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderSubmitted, order.Status)
	assert.Equal(t, "sig-1", order.FeeSignature)
	assert.Nil(t, order.MintAddress)
}

func TestMintOrderStore_ReclaimAfterSendFailure(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	requests := NewTokenRequestStore(pool)
	store := NewMintOrderStore(pool)

	txID := insertTestRequest(t, ctx, requests, "payer-reclaim")
	require.NoError(t, store.Claim(ctx, &domain.MintOrder{TransactionID: txID, FeeSignature: "sig-r"}))

	step := domain.FailedStepSendFee
	require.NoError(t, store.UpdateStatus(ctx, txID, domain.OrderFailed, nil, &step))

	require.NoError(t, store.Claim(ctx, &domain.MintOrder{TransactionID: txID, FeeSignature: "sig-r"}))
	order, err := store.GetByTransactionID(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderSubmitted, order.Status)
	assert.Nil(t, order.FailedStep)

	err = store.Claim(ctx, &domain.MintOrder{TransactionID: txID, FeeSignature: "sig-r"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	confirmStep := "confirm_fee"
	require.NoError(t, store.UpdateStatus(ctx, txID, domain.OrderFailed, nil, &confirmStep))
	err = store.Claim(ctx, &domain.MintOrder{TransactionID: txID, FeeSignature: "sig-r"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestMintOrderStore_ClaimUnknownRequest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewMintOrderStore(pool)

	err := store.Claim(ctx, &domain.MintOrder{
		TransactionID: "00000000-0000-0000-0000-000000000001",
		FeeSignature:  "sig-x",
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMintOrderStore_UpdateStatus(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	requests := NewTokenRequestStore(pool)
	store := NewMintOrderStore(pool)

	txID := insertTestRequest(t, ctx, requests, "payer-update")
	require.NoError(t, store.Claim(ctx, &domain.MintOrder{TransactionID: txID, FeeSignature: "sig-u"}))

	require.NoError(t, store.UpdateStatus(ctx, txID, domain.OrderFeeConfirmed, nil, nil))
	require.NoError(t, store.UpdateStatus(ctx, txID, domain.OrderFailed, ptr("MintAddr1"), ptr("mint_supply")))

	order, err := store.GetByMintAddress(ctx, "MintAddr1")
	require.NoError(t, err)
	assert.Equal(t, txID, order.TransactionID)
	assert.Equal(t, domain.OrderFailed, order.Status)
	require.NotNil(t, order.FailedStep)
	assert.Equal(t, "mint_supply", *order.FailedStep)

	// A nil mint address keeps the stored one
	require.NoError(t, store.UpdateStatus(ctx, txID, domain.OrderFailed, nil, ptr("set_mint_authority")))
	order, err = store.GetByTransactionID(ctx, txID)
	require.NoError(t, err)
	require.NotNil(t, order.MintAddress)
	assert.Equal(t, "MintAddr1", *order.MintAddress)
	assert.Equal(t, "set_mint_authority", *order.FailedStep)

	err = store.UpdateStatus(ctx, "00000000-0000-0000-0000-000000000002", domain.OrderMinted, nil, nil)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.GetByMintAddress(ctx, "unknown")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
