package state

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // database/sql driver "sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a store that is not yet opened.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// NewSQLiteStoreWithDB wraps an already opened and migrated database.
func NewSQLiteStoreWithDB(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	s := NewSQLiteStore(logger)
	s.db = db
	return s
}

// OpenHistory opens the history database at path and applies migrations.
func OpenHistory(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	s := NewSQLiteStore(logger)
	if err := s.Open(ctx, path); err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Open opens a connection to the SQLite database, creating its directory if
// needed. Use MemoryPath for an in-memory database.
func (s *SQLiteStore) Open(ctx context.Context, path string) error {
	dsn := MemoryPath
	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create history directory: %w", err)
			}
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == MemoryPath {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("opened history database", slog.String("path", path))
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the path the store was opened with.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Record stores one evaluation. A missing ID or start time is filled in.
func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}

	var errMsg *string
	if e.Error != "" {
		errMsg = &e.Error
	}

	s.logger.Debug("recording query run", slog.String("id", e.ID), slog.String("status", string(e.Status)))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO query_runs (id, query, status, row_count, error, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Query, string(e.Status), e.RowCount, errMsg, e.StartedAt.UTC(), e.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record query run: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. A limit of zero or less
// returns every entry.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Entry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, status, row_count, error, started_at, duration_ms
		 FROM query_runs
		 ORDER BY started_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			status   string
			errMsg   sql.NullString
			duration int64
		)
		if err := rows.Scan(&e.ID, &e.Query, &status, &e.RowCount, &errMsg, &e.StartedAt, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan query run: %w", err)
		}
		e.Status = Status(status)
		e.Error = errMsg.String
		e.Duration = time.Duration(duration) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list query runs: %w", err)
	}
	return entries, nil
}
