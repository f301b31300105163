package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for the fetch log.
// It implements the Repository interface.
type Storage struct {
	db  *sql.DB
	now func() time.Time
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage opens (or creates) the SQLite database at dbPath and migrates it
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Writes come from request goroutines; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &Storage{db: db, now: func() time.Time { return time.Now().UTC() }}

	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// StartFetchRun records the start of a fetch
func (s *Storage) StartFetchRun(kind, target, sessionID string) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO fetch_runs (kind, target, session_id, started_at, status)
		VALUES (?, ?, ?, ?, ?)
	`, kind, target, sessionID, s.now(), StatusRunning)
	if err != nil {
		return 0, fmt.Errorf("failed to start fetch run: %w", err)
	}
	return result.LastInsertId()
}

// CompleteFetchRun records a successful fetch
func (s *Storage) CompleteFetchRun(runID int64, itemCount, totalItems int) error {
	return s.finish(runID, StatusCompleted, itemCount, totalItems, "")
}

// FailFetchRun records a failed fetch
func (s *Storage) FailFetchRun(runID int64, errMsg string) error {
	return s.finish(runID, StatusFailed, 0, 0, errMsg)
}

// DiscardFetchRun records a fetch whose response was dropped as stale
func (s *Storage) DiscardFetchRun(runID int64) error {
	return s.finish(runID, StatusDiscarded, 0, 0, "")
}

func (s *Storage) finish(runID int64, status string, itemCount, totalItems int, errMsg string) error {
	_, err := s.db.Exec(`
		UPDATE fetch_runs
		SET completed_at = ?, status = ?, item_count = ?, total_items = ?, error_message = ?
		WHERE id = ?
	`, s.now(), status, itemCount, totalItems, errMsg, runID)
	if err != nil {
		return fmt.Errorf("failed to update fetch run %d: %w", runID, err)
	}
	return nil
}

const fetchRunColumns = `id, kind, target, session_id, started_at, completed_at,
	status, item_count, total_items, error_message`

// ListFetchRuns returns recent runs matching filters, newest first
func (s *Storage) ListFetchRuns(filters FetchRunFilters) ([]FetchRun, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var (
		where []string
		args  []any
	)
	if filters.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, filters.Kind)
	}
	if filters.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filters.Status)
	}
	if filters.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, filters.SessionID)
	}

	q := "SELECT " + fetchRunColumns + " FROM fetch_runs"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY started_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list fetch runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]FetchRun, 0)
	for rows.Next() {
		run, err := scanFetchRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetFetchRun retrieves a run by ID
func (s *Storage) GetFetchRun(runID int64) (*FetchRun, error) {
	row := s.db.QueryRow("SELECT "+fetchRunColumns+" FROM fetch_runs WHERE id = ?", runID)
	run, err := scanFetchRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFetchRun(row scanner) (*FetchRun, error) {
	var (
		run       FetchRun
		completed sql.NullTime
	)
	err := row.Scan(
		&run.ID,
		&run.Kind,
		&run.Target,
		&run.SessionID,
		&run.StartedAt,
		&completed,
		&run.Status,
		&run.ItemCount,
		&run.TotalItems,
		&run.ErrorMessage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan fetch run: %w", err)
	}
	if completed.Valid {
		t := completed.Time
		run.CompletedAt = &t
	}
	return &run, nil
}
