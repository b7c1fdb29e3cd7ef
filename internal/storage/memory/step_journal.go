package memory

import (
	"context"
	"sort"
	"sync"

	"token-minter/internal/domain"
	"token-minter/internal/storage"
)

// StepJournal is an in-memory implementation of storage.StepJournal.
type StepJournal struct {
	mu      sync.RWMutex
	records map[string][]*domain.StepRecord // keyed by transaction_id
}

// NewStepJournal creates a new in-memory step journal.
func NewStepJournal() *StepJournal {
	return &StepJournal{
		records: make(map[string][]*domain.StepRecord),
	}
}

// Record appends one step record.
func (j *StepJournal) Record(_ context.Context, rec *domain.StepRecord) error {
	if rec == nil || rec.TransactionID == "" || rec.Step == "" {
		return storage.ErrInvalidInput
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	recCopy := *rec
	j.records[rec.TransactionID] = append(j.records[rec.TransactionID], &recCopy)
	return nil
}

// GetByTransactionID retrieves all steps of an order, ordered by start time ASC.
func (j *StepJournal) GetByTransactionID(_ context.Context, transactionID string) ([]*domain.StepRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	recs := j.records[transactionID]
	result := make([]*domain.StepRecord, len(recs))
	for i, r := range recs {
		recCopy := *r
		result[i] = &recCopy
	}

	sort.SliceStable(result, func(a, b int) bool {
		return result[a].StartedAt.Before(result[b].StartedAt)
	})
	return result, nil
}

// Steps returns the recorded step names of an order in order.
func (j *StepJournal) Steps(transactionID string) []string {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var steps []string
	for _, r := range j.records[transactionID] {
		steps = append(steps, r.Step)
	}
	return steps
}

var _ storage.StepJournal = (*StepJournal)(nil)
