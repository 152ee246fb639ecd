// Package state records query evaluations in a SQLite history database.
package state

import (
	"context"
	"time"
)

// Status is the outcome of one evaluation.
type Status string

// Evaluation outcomes.
const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Entry is one recorded evaluation.
type Entry struct {
	ID        string
	Query     string
	Status    Status
	RowCount  int
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// Store persists and lists evaluation history.
type Store interface {
	Record(ctx context.Context, e Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
