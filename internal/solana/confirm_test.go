package solana

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeRPC answers status and height queries from fixed values.
type fakeRPC struct {
	RPCClient

	mu       sync.Mutex
	statuses []*SignatureStatus // one per poll, the last repeats
	height   uint64
	polls    int
}

func (f *fakeRPC) GetSignatureStatuses(_ context.Context, signatures ...string) ([]*SignatureStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.polls
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	f.polls++
	if idx < 0 {
		return make([]*SignatureStatus, len(signatures)), nil
	}
	return []*SignatureStatus{f.statuses[idx]}, nil
}

func (f *fakeRPC) GetBlockHeight(_ context.Context, _ Commitment) (uint64, error) {
	return f.height, nil
}

func fastConfirmConfig() ConfirmConfig {
	return ConfirmConfig{
		Commitment:      CommitmentConfirmed,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		MaxElapsed:      200 * time.Millisecond,
	}
}

func TestPollingConfirmer_Confirmed(t *testing.T) {
	rpc := &fakeRPC{
		statuses: []*SignatureStatus{
			nil,
			{ConfirmationStatus: CommitmentProcessed},
			{ConfirmationStatus: CommitmentConfirmed},
		},
		height: 10,
	}

	err := NewPollingConfirmer(rpc, fastConfirmConfig()).Confirm(context.Background(), "sig", 100)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if rpc.polls != 3 {
		t.Errorf("expected 3 polls, got %d", rpc.polls)
	}
}

func TestPollingConfirmer_TransactionError(t *testing.T) {
	rpc := &fakeRPC{
		statuses: []*SignatureStatus{
			{ConfirmationStatus: CommitmentConfirmed, Err: map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}},
		},
	}

	err := NewPollingConfirmer(rpc, fastConfirmConfig()).Confirm(context.Background(), "sig", 100)

	var txErr *TransactionError
	if !errors.As(err, &txErr) {
		t.Fatalf("expected *TransactionError, got %v", err)
	}
	if txErr.Signature != "sig" {
		t.Errorf("expected signature sig, got %s", txErr.Signature)
	}
	if rpc.polls != 1 {
		t.Errorf("transaction errors are final, got %d polls", rpc.polls)
	}
}

func TestPollingConfirmer_BlockhashExpired(t *testing.T) {
	rpc := &fakeRPC{height: 101}

	err := NewPollingConfirmer(rpc, fastConfirmConfig()).Confirm(context.Background(), "sig", 100)
	if !errors.Is(err, ErrBlockhashExpired) {
		t.Fatalf("expected ErrBlockhashExpired, got %v", err)
	}
}

func TestPollingConfirmer_Timeout(t *testing.T) {
	rpc := &fakeRPC{
		statuses: []*SignatureStatus{{ConfirmationStatus: CommitmentProcessed}},
	}

	err := NewPollingConfirmer(rpc, fastConfirmConfig()).Confirm(context.Background(), "sig", 100)
	if !errors.Is(err, ErrConfirmationTimeout) {
		t.Fatalf("expected ErrConfirmationTimeout, got %v", err)
	}
}

func TestPollingConfirmer_ContextCancelled(t *testing.T) {
	rpc := &fakeRPC{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPollingConfirmer(rpc, fastConfirmConfig()).Confirm(ctx, "sig", 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCommitment_Reached(t *testing.T) {
	tests := []struct {
		want   Commitment
		status Commitment
		ok     bool
	}{
		{CommitmentConfirmed, CommitmentProcessed, false},
		{CommitmentConfirmed, CommitmentConfirmed, true},
		{CommitmentConfirmed, CommitmentFinalized, true},
		{CommitmentFinalized, CommitmentConfirmed, false},
		{CommitmentProcessed, "", false},
	}

	for _, tt := range tests {
		if got := tt.want.Reached(tt.status); got != tt.ok {
			t.Errorf("%s.Reached(%q) = %v, want %v", tt.want, tt.status, got, tt.ok)
		}
	}
}

// fakeWS delivers a scripted notification, or fails to subscribe.
type fakeWS struct {
	subErr error
	notif  *SignatureNotification
	ctx    context.Context // last subscription context
}

func (f *fakeWS) SubscribeSignature(ctx context.Context, signature string, _ Commitment) (<-chan SignatureNotification, error) {
	f.ctx = ctx
	if f.subErr != nil {
		return nil, f.subErr
	}
	ch := make(chan SignatureNotification, 1)
	if f.notif != nil {
		n := *f.notif
		n.Signature = signature
		ch <- n
		close(ch)
	}
	return ch, nil
}

func (f *fakeWS) Close() error { return nil }

// blockingConfirmer never answers until its context ends.
type blockingConfirmer struct{}

func (blockingConfirmer) Confirm(ctx context.Context, _ string, _ uint64) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestWSConfirmer_Notification(t *testing.T) {
	ws := &fakeWS{notif: &SignatureNotification{Slot: 7}}

	err := NewWSConfirmer(ws, blockingConfirmer{}, CommitmentConfirmed).Confirm(context.Background(), "sig", 100)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
}

func TestWSConfirmer_NotificationError(t *testing.T) {
	ws := &fakeWS{notif: &SignatureNotification{Err: "InstructionError"}}

	err := NewWSConfirmer(ws, blockingConfirmer{}, "").Confirm(context.Background(), "sig", 100)

	var txErr *TransactionError
	if !errors.As(err, &txErr) {
		t.Fatalf("expected *TransactionError, got %v", err)
	}
}

func TestWSConfirmer_FallsBackToPolling(t *testing.T) {
	ws := &fakeWS{subErr: errors.New("dial failed")}
	rpc := &fakeRPC{statuses: []*SignatureStatus{{ConfirmationStatus: CommitmentFinalized}}}

	poller := NewPollingConfirmer(rpc, fastConfirmConfig())
	if err := NewWSConfirmer(ws, poller, CommitmentConfirmed).Confirm(context.Background(), "sig", 100); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
}

func TestWSConfirmer_PollingWins(t *testing.T) {
	ws := &fakeWS{} // subscribed, never notifies
	rpc := &fakeRPC{height: 200}

	poller := NewPollingConfirmer(rpc, fastConfirmConfig())
	err := NewWSConfirmer(ws, poller, CommitmentConfirmed).Confirm(context.Background(), "sig", 100)
	if !errors.Is(err, ErrBlockhashExpired) {
		t.Fatalf("expected ErrBlockhashExpired, got %v", err)
	}

	// The subscription context ends with Confirm so the client drops it.
	select {
	case <-ws.ctx.Done():
	default:
		t.Error("subscription context still open after Confirm returned")
	}
}
