package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"crewwatch/internal/logger"
	"crewwatch/internal/poller"
)

var ErrDisabled = errors.New("journal is disabled")

// TickRecord is one row of poll_ticks
type TickRecord struct {
	ID                string  `json:"id" db:"id"`
	StartedAt         int64   `json:"started_at" db:"started_at"` // Unix milliseconds
	DurationMs        int64   `json:"duration_ms" db:"duration_ms"`
	Outcome           string  `json:"outcome" db:"outcome"`
	ConsecutiveErrors int     `json:"consecutive_errors" db:"consecutive_errors"`
	ErrorKind         *string `json:"error_kind,omitempty" db:"error_kind"`
	ErrorMessage      *string `json:"error_message,omitempty" db:"error_message"`
}

// OutcomeCount is one row of Summary
type OutcomeCount struct {
	Outcome string `json:"outcome" db:"outcome"`
	Count   int    `json:"count" db:"count"`
}

// Journal stores poll tick reports. A nil *Journal is valid and disabled.
type Journal struct {
	db  *sqlx.DB
	log *zap.Logger
}

func New(db *sqlx.DB) *Journal {
	return &Journal{db: db, log: logger.Named("journal")}
}

// Observe records a report; it matches poller.Scheduler.Observe.
func (j *Journal) Observe(r poller.TickReport) {
	if err := j.Record(r); err != nil && !errors.Is(err, ErrDisabled) {
		j.log.Warn("⚠️  failed to record tick", zap.Error(err))
	}
}

func (j *Journal) Record(r poller.TickReport) error {
	if j == nil || j.db == nil {
		return ErrDisabled
	}

	var kind, message *string
	if r.ErrorKind != "" {
		k := string(r.ErrorKind)
		kind = &k
	}
	if r.Message != "" {
		m := r.Message
		message = &m
	}

	query := j.db.Rebind(`
		INSERT INTO poll_ticks (id, started_at, duration_ms, outcome, consecutive_errors, error_kind, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := j.db.Exec(query,
		uuid.NewString(),
		r.StartedAt.UnixMilli(),
		r.Duration.Milliseconds(),
		string(r.Outcome),
		r.ConsecutiveErrors,
		kind,
		message,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tick: %w", err)
	}
	return nil
}

// Recent returns up to limit ticks, newest first.
func (j *Journal) Recent(limit int) ([]TickRecord, error) {
	if j == nil || j.db == nil {
		return nil, ErrDisabled
	}
	if limit <= 0 {
		limit = 50
	}

	records := []TickRecord{}
	query := j.db.Rebind(`
		SELECT id, started_at, duration_ms, outcome, consecutive_errors, error_kind, error_message
		FROM poll_ticks
		ORDER BY started_at DESC
		LIMIT ?
	`)
	if err := j.db.Select(&records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query ticks: %w", err)
	}
	return records, nil
}

// Summary counts ticks per outcome since the given time.
func (j *Journal) Summary(since time.Time) ([]OutcomeCount, error) {
	if j == nil || j.db == nil {
		return nil, ErrDisabled
	}

	counts := []OutcomeCount{}
	query := j.db.Rebind(`
		SELECT outcome, COUNT(*) AS count
		FROM poll_ticks
		WHERE started_at >= ?
		GROUP BY outcome
		ORDER BY outcome
	`)
	if err := j.db.Select(&counts, query, since.UnixMilli()); err != nil {
		return nil, fmt.Errorf("failed to summarize ticks: %w", err)
	}
	return counts, nil
}
