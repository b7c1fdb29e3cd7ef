// Package submitter broadcasts signed fee transactions and hands confirmed
// orders to the mint finalizer.
package submitter

import (
	"context"
	"encoding/base64"
	"errors"
	"io"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"token-minter/internal/apperr"
	"token-minter/internal/domain"
	"token-minter/internal/feetx"
	"token-minter/internal/logger"
	"token-minter/internal/minting"
	"token-minter/internal/observability"
	"token-minter/internal/pinning"
	"token-minter/internal/storage"
	"token-minter/internal/txsend"
)

// Order steps that run before the finalizer takes over.
const (
	StepSendFee    = domain.FailedStepSendFee
	StepConfirmFee = "confirm_fee"
)

// Finalizer mints the token of a paid request.
type Finalizer interface {
	Finalize(ctx context.Context, transactionID string, icon []byte) (*domain.MintedToken, error)
}

// Options for creating Submitter.
type Options struct {
	Requests   storage.TokenRequestStore
	Orders     storage.MintOrderStore
	Sender     *txsend.Sender
	Finalizer  Finalizer
	FeeAddress string

	// Icon limits
	IconMaxBytes     int64
	IconMaxDimension int
	IconSize         int
}

// Submitter runs POST /submit-transaction.
type Submitter struct {
	requests     storage.TokenRequestStore
	orders       storage.MintOrderStore
	sender       *txsend.Sender
	finalizer    Finalizer
	feeAddress   solana.PublicKey
	iconMaxBytes int64
	iconMaxDim   int
	iconSize     int
	log          *logrus.Entry
}

// Result of a finalized submission.
type Result struct {
	Signature   string
	MintAddress string
	Token       *domain.MintedToken
}

// New creates a Submitter.
func New(opts Options) (*Submitter, error) {
	feeAddress, err := solana.PublicKeyFromBase58(opts.FeeAddress)
	if err != nil {
		return nil, apperr.Configuration("invalid fee address", err)
	}
	if opts.IconMaxBytes <= 0 {
		opts.IconMaxBytes = 5 << 20
	}
	if opts.IconSize <= 0 {
		opts.IconSize = 420
	}

	return &Submitter{
		requests:     opts.Requests,
		orders:       opts.Orders,
		sender:       opts.Sender,
		finalizer:    opts.Finalizer,
		feeAddress:   feeAddress,
		iconMaxBytes: opts.IconMaxBytes,
		iconMaxDim:   opts.IconMaxDimension,
		iconSize:     opts.IconSize,
		log:          logger.NewSublogger("submitter"),
	}, nil
}

// Submit verifies and broadcasts the signed fee transaction for request
// transactionID, waits for it to confirm and mints the token. A request
// is claimed before anything is sent, so it is minted at most once. A
// claim whose fee was never accepted by the node is released for retry.
func (s *Submitter) Submit(ctx context.Context, signedTx, transactionID string, icon io.Reader) (*Result, error) {
	if signedTx == "" || transactionID == "" {
		return nil, apperr.Validation("signedTx", "Missing `signedTx` or `transactionId`.")
	}
	if icon == nil {
		return nil, apperr.Validation("tokenIcon", "Missing token icon.")
	}

	// The icon is checked before the fee is spent.
	png, err := pinning.PrepareIcon(icon, s.iconMaxBytes, s.iconMaxDim, s.iconSize)
	if err != nil {
		if errors.Is(err, pinning.ErrIconTooLarge) {
			return nil, apperr.Validation("tokenIcon", "Token icon is too large.")
		}
		return nil, apperr.Validation("tokenIcon", "Token icon must be a PNG, JPEG, GIF or WebP image.")
	}

	raw, err := base64.StdEncoding.DecodeString(signedTx)
	if err != nil {
		return nil, apperr.Validation("signedTx", "Invalid `signedTx`.")
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, apperr.Validation("signedTx", "Invalid `signedTx`.")
	}

	req, err := s.requests.GetByID(ctx, transactionID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, apperr.NotFound("token request "+transactionID, err)
	case err != nil:
		return nil, apperr.Storage("load token request", err)
	}

	payer, err := solana.PublicKeyFromBase58(req.PayerAddress)
	if err != nil {
		return nil, apperr.Storage("stored payer address", err)
	}
	if err := feetx.VerifyTransfer(tx, payer, s.feeAddress, req.FeeLamports); err != nil {
		s.log.WithError(err).WithField("transaction_id", transactionID).Warn("Rejected fee transaction")
		return nil, apperr.Validation("signedTx", "Signed transaction does not match the requested fee transfer.")
	}

	feeSig := tx.Signatures[0].String()
	err = s.orders.Claim(ctx, &domain.MintOrder{
		TransactionID: transactionID,
		FeeSignature:  feeSig,
		Status:        domain.OrderSubmitted,
	})
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		return nil, apperr.Conflict("order "+transactionID, err)
	case err != nil:
		return nil, apperr.Storage("claim order", err)
	}
	observability.RecordOrderStatus(string(domain.OrderSubmitted))

	// Past the claim the order runs to completion even if the client
	// goes away: the fee is about to be spent.
	ctx = context.WithoutCancel(ctx)

	log := s.log.WithField("transaction_id", transactionID).WithField("signature", feeSig)

	sig, err := s.sender.SendRaw(ctx, raw)
	if err != nil {
		s.markFailed(ctx, transactionID, StepSendFee, "")
		return nil, err
	}
	if err := s.sender.Confirm(ctx, sig); err != nil {
		s.markFailed(ctx, transactionID, StepConfirmFee, "")
		return nil, err
	}
	s.setStatus(ctx, transactionID, domain.OrderFeeConfirmed, nil, nil)
	log.Info("Fee transaction confirmed")

	token, err := s.finalizer.Finalize(ctx, transactionID, png)
	if err != nil {
		var stepErr *minting.StepError
		step, mint := "finalize", ""
		if errors.As(err, &stepErr) {
			step, mint = stepErr.Step, stepErr.MintAddress
		}
		s.markFailed(ctx, transactionID, step, mint)
		if apperr.KindOf(err) == apperr.KindUnknown {
			return nil, apperr.Minting("finalize "+transactionID, err)
		}
		return nil, err
	}
	if token == nil || token.MintAddress == "" {
		s.markFailed(ctx, transactionID, "finalize", "")
		return nil, apperr.Minting("finalizer returned no mint address", nil)
	}

	// The token exists on chain; a failed status write must not hide it.
	s.setStatus(ctx, transactionID, domain.OrderMinted, &token.MintAddress, nil)

	return &Result{
		Signature:   sig,
		MintAddress: token.MintAddress,
		Token:       token,
	}, nil
}

func (s *Submitter) markFailed(ctx context.Context, transactionID, step, mintAddress string) {
	var mint *string
	if mintAddress != "" {
		mint = &mintAddress
	}
	s.setStatus(ctx, transactionID, domain.OrderFailed, mint, &step)
}

// setStatus records an order transition. Failures are logged only.
func (s *Submitter) setStatus(ctx context.Context, transactionID string, status domain.OrderStatus, mintAddress, failedStep *string) {
	observability.RecordOrderStatus(string(status))
	err := s.orders.UpdateStatus(context.WithoutCancel(ctx), transactionID, status, mintAddress, failedStep)
	if err != nil {
		s.log.WithError(err).
			WithField("transaction_id", transactionID).
			WithField("status", status).
			Error("Failed to update order status")
	}
}
