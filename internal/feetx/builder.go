// Package feetx builds the unsigned fee transfer a requester signs to pay
// for a token, and checks signed transfers against the stored request.
package feetx

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"token-minter/internal/apperr"
	"token-minter/internal/domain"
	"token-minter/internal/logger"
	"token-minter/internal/observability"
	rpc "token-minter/internal/solana"
	"token-minter/internal/storage"
)

// Options for creating Builder.
type Options struct {
	RPC        rpc.RPCClient
	Store      storage.TokenRequestStore
	FeeAddress string
	Schedule   domain.FeeSchedule
	Commitment rpc.Commitment
}

// Builder creates fee transactions and the pending requests behind them.
type Builder struct {
	rpc        rpc.RPCClient
	store      storage.TokenRequestStore
	feeAddress solana.PublicKey
	schedule   domain.FeeSchedule
	commitment rpc.Commitment
	log        *logrus.Entry
}

// BuildResult is returned to the requester's wallet for signing.
type BuildResult struct {
	Transaction          string // base64 wire format, signature slot zeroed
	TransactionID        string
	Fee                  decimal.Decimal // SOL
	FeeLamports          uint64
	LastValidBlockHeight uint64
}

// New creates a Builder.
func New(opts Options) (*Builder, error) {
	feeAddress, err := solana.PublicKeyFromBase58(opts.FeeAddress)
	if err != nil {
		return nil, apperr.Configuration("invalid fee address", err)
	}
	if opts.Commitment == "" {
		opts.Commitment = rpc.CommitmentConfirmed
	}
	if opts.Schedule.Base.IsZero() && opts.Schedule.Increment.IsZero() {
		opts.Schedule = domain.DefaultFeeSchedule()
	}

	return &Builder{
		rpc:        opts.RPC,
		store:      opts.Store,
		feeAddress: feeAddress,
		schedule:   opts.Schedule,
		commitment: opts.Commitment,
		log:        logger.NewSublogger("feetx"),
	}, nil
}

// Build validates the request, quotes the fee, builds the transfer and
// stores the pending request. Nothing is stored if any step fails.
func (b *Builder) Build(ctx context.Context, payer string, form *domain.TokenForm) (*BuildResult, error) {
	if err := domain.ValidateForm(payer, form); err != nil {
		return nil, err
	}
	payerKey, err := solana.PublicKeyFromBase58(payer)
	if err != nil {
		return nil, apperr.Validation("publicKey", "Invalid `publicKey`.")
	}

	fee := b.schedule.Quote(form)

	bh, err := b.rpc.GetLatestBlockhash(ctx, b.commitment)
	if err != nil {
		return nil, apperr.Network("fetch blockhash", err)
	}

	wire, err := b.transfer(payerKey, fee.Lamports, bh.Hash)
	if err != nil {
		return nil, err
	}

	req := domain.NewTokenRequest(payer, form, fee)
	if err := b.store.Insert(ctx, req); err != nil {
		return nil, apperr.Storage("store token request", err)
	}
	observability.RecordRequestCreated(fee.Lamports)

	b.log.WithField("transaction_id", req.ID).
		WithField("payer", payer).
		WithField("fee_lamports", fee.Lamports).
		Info("Fee transaction requested")

	return &BuildResult{
		Transaction:          wire,
		TransactionID:        req.ID,
		Fee:                  fee.SOL,
		FeeLamports:          fee.Lamports,
		LastValidBlockHeight: bh.LastValidBlockHeight,
	}, nil
}

// transfer serializes an unsigned payer -> fee address transfer.
func (b *Builder) transfer(payer solana.PublicKey, lamports uint64, blockhash string) (string, error) {
	hash, err := solana.HashFromBase58(blockhash)
	if err != nil {
		return "", apperr.Network("decode blockhash", err)
	}

	tx, err := solana.NewTransaction([]solana.Instruction{
		system.NewTransferInstruction(lamports, payer, b.feeAddress).Build(),
	}, hash, solana.TransactionPayer(payer))
	if err != nil {
		return "", apperr.New(apperr.KindUnknown, "build fee transaction", err)
	}

	// The wallet fills the zeroed slot.
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)

	out, err := tx.ToBase64()
	if err != nil {
		return "", apperr.New(apperr.KindUnknown, "serialize fee transaction", err)
	}
	return out, nil
}

// FeeAddress returns the account receiving fees.
func (b *Builder) FeeAddress() solana.PublicKey {
	return b.feeAddress
}
