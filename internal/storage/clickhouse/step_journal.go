package clickhouse

import (
	"context"
	"fmt"
	"time"

	"token-minter/internal/domain"
	"token-minter/internal/storage"
)

// StepJournal implements storage.StepJournal using ClickHouse.
type StepJournal struct {
	conn *Conn
}

// NewStepJournal creates a new StepJournal.
func NewStepJournal(conn *Conn) *StepJournal {
	return &StepJournal{conn: conn}
}

// Compile-time interface check.
var _ storage.StepJournal = (*StepJournal)(nil)

// Record appends one step record.
func (j *StepJournal) Record(ctx context.Context, rec *domain.StepRecord) error {
	if rec == nil || rec.TransactionID == "" || rec.Step == "" {
		return storage.ErrInvalidInput
	}

	batch, err := j.conn.PrepareBatch(ctx, `
		INSERT INTO mint_steps (
			transaction_id, step, outcome, mint_address, signature, error, duration_ms, started_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	durationMs := rec.DurationMs
	if durationMs < 0 {
		durationMs = 0
	}

	err = batch.Append(
		rec.TransactionID,
		rec.Step,
		string(rec.Outcome),
		rec.MintAddress,
		rec.Signature,
		rec.Error,
		uint64(durationMs),
		rec.StartedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByTransactionID retrieves all steps of an order, ordered by start time ASC.
func (j *StepJournal) GetByTransactionID(ctx context.Context, transactionID string) ([]*domain.StepRecord, error) {
	query := `
		SELECT transaction_id, step, outcome, mint_address, signature, error, duration_ms, started_at
		FROM mint_steps
		WHERE transaction_id = ?
		ORDER BY started_at ASC
	`

	rows, err := j.conn.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("query by transaction id: %w", err)
	}
	defer rows.Close()

	var records []*domain.StepRecord
	for rows.Next() {
		var (
			rec        domain.StepRecord
			outcome    string
			durationMs uint64
			startedAt  time.Time
		)
		if err := rows.Scan(
			&rec.TransactionID,
			&rec.Step,
			&outcome,
			&rec.MintAddress,
			&rec.Signature,
			&rec.Error,
			&durationMs,
			&startedAt,
		); err != nil {
			return nil, fmt.Errorf("scan step record: %w", err)
		}
		rec.Outcome = domain.StepOutcome(outcome)
		rec.DurationMs = int64(durationMs)
		rec.StartedAt = startedAt.UTC()
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}
