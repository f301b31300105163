package storage

import "time"

// Fetch kinds
const (
	KindList   = "list"
	KindDetail = "detail"
)

// Fetch run statuses
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusDiscarded = "discarded"
)

// DefaultListLimit is used when FetchRunFilters.Limit is zero.
const DefaultListLimit = 20

// FetchRun is one request the dashboard made to the editions API
type FetchRun struct {
	ID           int64      `json:"id"`
	Kind         string     `json:"kind"`
	Target       string     `json:"target"`
	SessionID    string     `json:"session_id,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Status       string     `json:"status"`
	ItemCount    int        `json:"item_count"`
	TotalItems   int        `json:"total_items"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// Duration returns how long the run took, or zero while it is running.
func (r FetchRun) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}
