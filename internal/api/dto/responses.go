package dto

import (
	"time"

	"github.com/eshaffer321/edition-dashboard/internal/adapters/editions"
	"github.com/eshaffer321/edition-dashboard/internal/domain/query"
	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/storage"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// OptionsResponse lists what the dashboard controls may offer.
type OptionsResponse struct {
	FilterFields    []string `json:"filter_fields"`
	FilterTypes     []string `json:"filter_types"`
	SortFields      []string `json:"sort_fields"`
	Directions      []string `json:"directions"`
	PageSizeOptions []int    `json:"page_size_options"`
	DefaultLimit    int      `json:"default_limit"`
}

// PublicationListResponse is one page of publications with paginator state.
type PublicationListResponse struct {
	*editions.Page
	PageInfo query.PageInfo `json:"page_info"`
	Query    string         `json:"query"`
}

// NewPublicationListResponse wraps page for the API.
func NewPublicationListResponse(page *editions.Page, queryString string) PublicationListResponse {
	return PublicationListResponse{
		Page:     page,
		PageInfo: page.PageInfo(),
		Query:    queryString,
	}
}

// RunResponse represents a fetch run in API responses.
type RunResponse struct {
	ID           int64  `json:"id"`
	Kind         string `json:"kind"`
	Target       string `json:"target"`
	SessionID    string `json:"session_id,omitempty"`
	StartedAt    string `json:"started_at"`
	CompletedAt  string `json:"completed_at,omitempty"`
	DurationMS   int64  `json:"duration_ms"`
	Status       string `json:"status"`
	ItemCount    int    `json:"item_count"`
	TotalItems   int    `json:"total_items"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewRunResponse converts a storage FetchRun to an API response.
func NewRunResponse(run storage.FetchRun) RunResponse {
	resp := RunResponse{
		ID:           run.ID,
		Kind:         run.Kind,
		Target:       run.Target,
		SessionID:    run.SessionID,
		StartedAt:    run.StartedAt.Format(time.RFC3339),
		DurationMS:   run.Duration().Milliseconds(),
		Status:       run.Status,
		ItemCount:    run.ItemCount,
		TotalItems:   run.TotalItems,
		ErrorMessage: run.ErrorMessage,
	}
	if run.CompletedAt != nil {
		resp.CompletedAt = run.CompletedAt.Format(time.RFC3339)
	}
	return resp
}

// RunListResponse is returned when listing fetch runs.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}
