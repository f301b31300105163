package storage

import (
	"sort"
	"sync"
	"time"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps, making tests fast and isolated.
type MockRepository struct {
	mu        sync.Mutex
	runs      map[int64]*FetchRun
	nextRunID int64

	// Hooks for test assertions
	StartFetchRunCalled bool

	// Error injection for testing error paths
	StartFetchRunErr  error
	FinishFetchRunErr error
	ListFetchRunsErr  error
	GetFetchRunErr    error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		runs:      make(map[int64]*FetchRun),
		nextRunID: 1,
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

func (m *MockRepository) StartFetchRun(kind, target, sessionID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartFetchRunCalled = true
	if m.StartFetchRunErr != nil {
		return 0, m.StartFetchRunErr
	}

	id := m.nextRunID
	m.nextRunID++
	m.runs[id] = &FetchRun{
		ID:        id,
		Kind:      kind,
		Target:    target,
		SessionID: sessionID,
		// IDs break ties in ListFetchRuns, so equal timestamps are fine.
		StartedAt: time.Now().UTC(),
		Status:    StatusRunning,
	}
	return id, nil
}

func (m *MockRepository) CompleteFetchRun(runID int64, itemCount, totalItems int) error {
	return m.finish(runID, StatusCompleted, itemCount, totalItems, "")
}

func (m *MockRepository) FailFetchRun(runID int64, errMsg string) error {
	return m.finish(runID, StatusFailed, 0, 0, errMsg)
}

func (m *MockRepository) DiscardFetchRun(runID int64) error {
	return m.finish(runID, StatusDiscarded, 0, 0, "")
}

func (m *MockRepository) finish(runID int64, status string, itemCount, totalItems int, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FinishFetchRunErr != nil {
		return m.FinishFetchRunErr
	}
	run, ok := m.runs[runID]
	if !ok {
		return nil
	}
	now := time.Now().UTC()
	run.CompletedAt = &now
	run.Status = status
	run.ItemCount = itemCount
	run.TotalItems = totalItems
	run.ErrorMessage = errMsg
	return nil
}

func (m *MockRepository) ListFetchRuns(filters FetchRunFilters) ([]FetchRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListFetchRunsErr != nil {
		return nil, m.ListFetchRunsErr
	}
	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	runs := make([]FetchRun, 0, len(m.runs))
	for _, r := range m.runs {
		if filters.Kind != "" && r.Kind != filters.Kind {
			continue
		}
		if filters.Status != "" && r.Status != filters.Status {
			continue
		}
		if filters.SessionID != "" && r.SessionID != filters.SessionID {
			continue
		}
		runs = append(runs, *r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID > runs[j].ID })
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (m *MockRepository) GetFetchRun(runID int64) (*FetchRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetFetchRunErr != nil {
		return nil, m.GetFetchRunErr
	}
	r, ok := m.runs[runID]
	if !ok {
		return nil, nil
	}
	run := *r
	return &run, nil
}

// Helper methods for test setup

// Runs returns every stored run ordered by ID
func (m *MockRepository) Runs() []FetchRun {
	m.mu.Lock()
	defer m.mu.Unlock()

	runs := make([]FetchRun, 0, len(m.runs))
	for _, r := range m.runs {
		runs = append(runs, *r)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs
}

// Reset clears all stored runs
func (m *MockRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs = make(map[int64]*FetchRun)
	m.nextRunID = 1
	m.StartFetchRunCalled = false
}
