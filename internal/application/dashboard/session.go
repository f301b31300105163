package dashboard

import (
	"sync"
	"time"

	"github.com/eshaffer321/edition-dashboard/internal/adapters/editions"
	"github.com/eshaffer321/edition-dashboard/internal/domain/query"
)

// session is one browser's dashboard state.
type session struct {
	id string

	mu        sync.Mutex
	store     *query.Store
	tracker   query.Tracker
	last      *editions.Page
	createdAt time.Time
	touchedAt time.Time
}

// FilterChip is an applied filter as the dashboard shows it.
type FilterChip struct {
	Field string           `json:"field"`
	Type  query.FilterType `json:"type"`
	Value string           `json:"value"`
	Label string           `json:"label"`
}

// SortChip is an applied sort clause as the dashboard shows it.
type SortChip struct {
	Field     string          `json:"field"`
	Direction query.Direction `json:"direction"`
	Label     string          `json:"label"`
}

// Snapshot is a read-only copy of a session's state.
type Snapshot struct {
	ID          string           `json:"id"`
	Params      query.Parameters `json:"params"`
	PageCount   int              `json:"page_count"`
	Filters     []FilterChip     `json:"filters"`
	SortClauses []SortChip       `json:"order_by"`
	HasResult   bool             `json:"has_result"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Result is the page fetched for a session's current query.
type Result struct {
	SessionID  string           `json:"session_id"`
	Params     query.Parameters `json:"params"`
	Page       *editions.Page   `json:"page"`
	PageInfo   query.PageInfo   `json:"page_info"`
	Generation uint64           `json:"generation"`
}

// snapshot must be called with s.mu held.
func (s *session) snapshot() Snapshot {
	params := s.store.Current()

	filters := make([]FilterChip, 0, len(params.Filters))
	for _, f := range params.Filters {
		filters = append(filters, FilterChip{
			Field: f.Field,
			Type:  f.Type,
			Value: f.DisplayValue(),
			Label: f.Label(),
		})
	}

	sorts := make([]SortChip, 0, len(params.SortClauses))
	for _, c := range params.SortClauses {
		sorts = append(sorts, SortChip{
			Field:     c.Field,
			Direction: c.Direction,
			Label:     c.Label(),
		})
	}

	return Snapshot{
		ID:          s.id,
		Params:      params,
		PageCount:   s.store.PageCount(),
		Filters:     filters,
		SortClauses: sorts,
		HasResult:   s.last != nil,
		CreatedAt:   s.createdAt,
		UpdatedAt:   s.touchedAt,
	}
}
