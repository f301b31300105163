package dto

import "github.com/eshaffer321/edition-dashboard/internal/domain/query"

// FilterRequest adds or removes a filter on a session.
type FilterRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value" binding:"required"`
	Type  string `json:"type" binding:"required,oneof=like eq"`
}

// Filter converts the request to a query filter.
func (r FilterRequest) Filter() query.Filter {
	return query.Filter{Field: r.Field, Value: r.Value, Type: query.FilterType(r.Type)}
}

// SortRequest adds or removes a sort clause on a session.
type SortRequest struct {
	Field     string `json:"field" binding:"required"`
	Direction string `json:"direction" binding:"required,oneof=ASC DESC asc desc"`
}

// PageRequest moves a session to another page.
type PageRequest struct {
	Page int `json:"page" binding:"required,min=1"`
}

// LimitRequest changes a session's page size.
type LimitRequest struct {
	Limit int `json:"limit" binding:"required,min=1"`
}

// RunListParams represents query parameters for listing fetch runs.
type RunListParams struct {
	Kind      string `form:"kind" binding:"omitempty,oneof=list detail"`
	Status    string `form:"status" binding:"omitempty,oneof=running completed failed discarded"`
	SessionID string `form:"session_id"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// DefaultRunListParams returns default values for run list params.
func DefaultRunListParams() RunListParams {
	return RunListParams{
		Limit: 20,
	}
}
