// Package outbox relays committed audit rows from the outbox table to the
// message broker. Rows are claimed with FOR UPDATE SKIP LOCKED so several
// relay instances can run side by side; a row is marked published only after
// the broker acknowledged it (at-least-once delivery).
package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// Record is one outbox row ready to publish.
type Record struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

// Publisher delivers records to the broker, returning only once acknowledged.
type Publisher interface {
	Publish(ctx context.Context, records ...Record) error
}

type Relay struct {
	db        *sql.DB
	publisher Publisher
	batchSize int
	interval  time.Duration
	logger    *slog.Logger
	metrics   *Metrics
	now       func() time.Time
}

type Option func(*Relay)

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}

func NewRelay(db *sql.DB, publisher Publisher, opts ...Option) *Relay {
	r := &Relay{
		db:        db,
		publisher: publisher,
		batchSize: 100,
		interval:  2 * time.Second,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is cancelled. A full batch is followed immediately by
// another poll; otherwise the relay waits one interval.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		n, err := r.RelayOnce(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			r.logger.ErrorContext(ctx, "outbox relay batch failed", "error", err)
		}
		if err == nil && n == r.batchSize {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

const (
	selectPending = `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`
	markPublished = `UPDATE outbox SET published_at = $1 WHERE id = ANY($2::uuid[])`
)

// RelayOnce publishes one batch and returns the number of rows relayed.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin outbox tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	records, err := r.claim(ctx, tx)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, tx.Commit()
	}

	if err := r.publisher.Publish(ctx, records...); err != nil {
		r.metrics.IncPublishFailures()
		return 0, fmt.Errorf("publish outbox batch: %w", err)
	}

	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	if _, err := tx.ExecContext(ctx, markPublished, r.now().UTC(), pq.Array(ids)); err != nil {
		return 0, fmt.Errorf("mark outbox published: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit outbox tx: %w", err)
	}

	r.metrics.AddPublished(len(records))
	oldest := records[0].CreatedAt
	r.metrics.ObserveLag(r.now().Sub(oldest).Seconds())
	return len(records), nil
}

func (r *Relay) claim(ctx context.Context, tx *sql.Tx) ([]Record, error) {
	rows, err := tx.QueryContext(ctx, selectPending, r.batchSize)
	if err != nil {
		return nil, fmt.Errorf("select outbox rows: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.AggregateType, &rec.AggregateID, &rec.EventType, &rec.Payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", err)
	}
	return records, nil
}
