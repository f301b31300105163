package storage

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, in-memory mock)
// and makes testing with mocks straightforward.
type Repository interface {
	FetchRunRepository
	Close() error
}

// FetchRunRepository records every upstream fetch the dashboard makes
type FetchRunRepository interface {
	// StartFetchRun records the start of a fetch and returns the run ID
	StartFetchRun(kind, target, sessionID string) (int64, error)

	// CompleteFetchRun marks a run successful
	CompleteFetchRun(runID int64, itemCount, totalItems int) error

	// FailFetchRun marks a run failed with the error text
	FailFetchRun(runID int64, errMsg string) error

	// DiscardFetchRun marks a run whose response arrived after a newer query
	DiscardFetchRun(runID int64) error

	// ListFetchRuns returns recent runs, newest first
	ListFetchRuns(filters FetchRunFilters) ([]FetchRun, error)

	// GetFetchRun retrieves a run by ID. It returns nil, nil when the run does not exist.
	GetFetchRun(runID int64) (*FetchRun, error)
}

// FetchRunFilters narrows ListFetchRuns
type FetchRunFilters struct {
	Kind      string // "list" or "detail" (empty = all)
	Status    string // empty = all
	SessionID string // empty = all
	Limit     int    // 0 = default 20
}
