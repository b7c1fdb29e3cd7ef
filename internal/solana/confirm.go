package solana

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Confirmation errors.
var (
	// ErrBlockhashExpired is returned when the block height passed the
	// transaction's last valid height before it reached the commitment.
	ErrBlockhashExpired = errors.New("blockhash expired before confirmation")

	// ErrConfirmationTimeout is returned when polling gave up without a
	// final answer. The transaction may still land.
	ErrConfirmationTimeout = errors.New("confirmation timed out")

	errNotConfirmed = errors.New("not yet confirmed")
)

// TransactionError is a transaction that landed with an on-chain error.
type TransactionError struct {
	Signature string
	Err       interface{}
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Signature, e.Err)
}

// Confirmer waits until a signature reaches a commitment level.
type Confirmer interface {
	// Confirm returns nil once the transaction is confirmed without error,
	// *TransactionError if it landed with an error, and ErrBlockhashExpired
	// if it can no longer land.
	Confirm(ctx context.Context, signature string, lastValidBlockHeight uint64) error
}

// ConfirmConfig bounds confirmation polling.
type ConfirmConfig struct {
	Commitment      Commitment
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

// DefaultConfirmConfig polls at "confirmed" for up to 90 seconds, which
// covers the ~150 block validity window of a blockhash.
func DefaultConfirmConfig() ConfirmConfig {
	return ConfirmConfig{
		Commitment:      CommitmentConfirmed,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     4 * time.Second,
		MaxElapsed:      90 * time.Second,
	}
}

// PollingConfirmer confirms by polling getSignatureStatuses with
// exponential backoff.
type PollingConfirmer struct {
	rpc    RPCClient
	config ConfirmConfig
	notify func(err error, next time.Duration)
}

// NewPollingConfirmer creates a confirmer over rpc.
func NewPollingConfirmer(rpc RPCClient, config ConfirmConfig) *PollingConfirmer {
	if config.Commitment == "" {
		config.Commitment = CommitmentConfirmed
	}
	return &PollingConfirmer{rpc: rpc, config: config}
}

// WithNotify sets a callback invoked before each wait between polls.
func (p *PollingConfirmer) WithNotify(fn func(err error, next time.Duration)) *PollingConfirmer {
	p.notify = fn
	return p
}

// Confirm polls until the signature reaches the configured commitment.
func (p *PollingConfirmer) Confirm(ctx context.Context, signature string, lastValidBlockHeight uint64) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.config.InitialInterval
	b.MaxInterval = p.config.MaxInterval
	b.MaxElapsedTime = p.config.MaxElapsed

	var lastErr error
	operation := func() error {
		err := p.poll(ctx, signature, lastValidBlockHeight)
		if err != nil {
			lastErr = err
		}
		return err
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), p.notify)
	if err == nil {
		return nil
	}

	var txErr *TransactionError
	switch {
	case errors.As(err, &txErr), errors.Is(err, ErrBlockhashExpired):
		return err
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(lastErr, errNotConfirmed):
		return fmt.Errorf("%w: %s", ErrConfirmationTimeout, signature)
	default:
		return fmt.Errorf("poll signature status: %w", err)
	}
}

// poll performs one status check. Permanent errors stop the backoff loop.
func (p *PollingConfirmer) poll(ctx context.Context, signature string, lastValidBlockHeight uint64) error {
	statuses, err := p.rpc.GetSignatureStatuses(ctx, signature)
	if err != nil {
		return err
	}

	if len(statuses) > 0 && statuses[0] != nil {
		status := statuses[0]
		if status.Err != nil {
			return backoff.Permanent(&TransactionError{Signature: signature, Err: status.Err})
		}
		if p.config.Commitment.Reached(status.ConfirmationStatus) {
			return nil
		}
		return errNotConfirmed
	}

	if lastValidBlockHeight > 0 {
		height, err := p.rpc.GetBlockHeight(ctx, p.config.Commitment)
		if err != nil {
			return err
		}
		if height > lastValidBlockHeight {
			return backoff.Permanent(ErrBlockhashExpired)
		}
	}
	return errNotConfirmed
}

var _ Confirmer = (*PollingConfirmer)(nil)

// WSConfirmer waits for a signatureSubscribe notification while polling in
// the background, returning whichever answers first. Polling also covers
// transactions that confirmed before the subscription was registered.
type WSConfirmer struct {
	ws         WSClient
	poller     Confirmer
	commitment Commitment
}

// NewWSConfirmer creates a confirmer that races ws against poller.
func NewWSConfirmer(ws WSClient, poller Confirmer, commitment Commitment) *WSConfirmer {
	if commitment == "" {
		commitment = CommitmentConfirmed
	}
	return &WSConfirmer{ws: ws, poller: poller, commitment: commitment}
}

// Confirm returns the first definitive answer from either source.
func (w *WSConfirmer) Confirm(ctx context.Context, signature string, lastValidBlockHeight uint64) error {
	// Ending raceCtx stops the losing side, including the subscription.
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	notifications, err := w.ws.SubscribeSignature(raceCtx, signature, w.commitment)
	if err != nil {
		return w.poller.Confirm(ctx, signature, lastValidBlockHeight)
	}

	polled := make(chan error, 1)
	go func() {
		polled <- w.poller.Confirm(raceCtx, signature, lastValidBlockHeight)
	}()

	select {
	case n, ok := <-notifications:
		if !ok {
			// Client closed; polling still decides.
			return <-polled
		}
		if n.Err != nil {
			return &TransactionError{Signature: signature, Err: n.Err}
		}
		return nil
	case err := <-polled:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Confirmer = (*WSConfirmer)(nil)
