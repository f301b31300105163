// Package query holds the dashboard's request parameters: the current page,
// page size, active filters and sort clauses sent to the editions API.
//
// Parameters is a value type. Every transformation returns a new value and
// never mutates its receiver, so a snapshot taken before a fetch stays valid
// while the user keeps changing the query.
package query

import "fmt"

// FilterType selects how the remote API compares a filter value.
type FilterType string

const (
	// FilterLike matches values containing the filter value. Stored values are wrapped as %value%.
	FilterLike FilterType = "like"
	// FilterEq matches values exactly.
	FilterEq FilterType = "eq"
)

// Valid reports whether t is a filter type the API understands.
func (t FilterType) Valid() bool {
	return t == FilterLike || t == FilterEq
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Valid reports whether d is ASC or DESC.
func (d Direction) Valid() bool {
	return d == Asc || d == Desc
}

// SortTypeField is the only sort clause type the API accepts.
const SortTypeField = "field"

// DefaultLimit is the page size a new dashboard session starts with.
const DefaultLimit = 10

// PageSizeOptions are the page sizes offered by the dashboard.
var PageSizeOptions = []int{5, 10, 15, 20, 25}

// FilterFields are the fields the dashboard lets users filter on.
// "name" backs the search box.
var FilterFields = []string{"name", "status", "category", "created_on", "modified_on"}

// SortFields are the fields the dashboard lets users order by.
var SortFields = []string{"status", "category", "created_on", "modified_on", "name"}

// Filter is one predicate on the publication list.
type Filter struct {
	Field string     `json:"field"`
	Value string     `json:"value"`
	Type  FilterType `json:"type"`
}

// SortClause orders the publication list by a field. Earlier clauses take precedence.
type SortClause struct {
	Field     string    `json:"field"`
	Type      string    `json:"type"`
	Direction Direction `json:"direction"`
}

// NewSortClause builds a field sort clause.
func NewSortClause(field string, dir Direction) SortClause {
	return SortClause{Field: field, Type: SortTypeField, Direction: dir}
}

// Parameters is the canonical query state of a dashboard session.
type Parameters struct {
	Page        int          `json:"page"`
	Limit       int          `json:"limit"`
	Filters     []Filter     `json:"filter,omitempty"`
	SortClauses []SortClause `json:"order-by,omitempty"`
}

// NewParameters returns the start-of-session state: page 1 with the given page size.
// A non-positive limit falls back to DefaultLimit.
func NewParameters(limit int) Parameters {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Parameters{Page: 1, Limit: limit}
}

// WithDefaults fills in a missing page or limit.
func (p Parameters) WithDefaults(limit int) Parameters {
	out := p.clone()
	if out.Page <= 0 {
		out.Page = 1
	}
	if out.Limit <= 0 {
		out.Limit = NewParameters(limit).Limit
	}
	return out
}

// Equal reports whether two parameter sets describe the same query.
func (p Parameters) Equal(other Parameters) bool {
	if p.Page != other.Page || p.Limit != other.Limit {
		return false
	}
	if len(p.Filters) != len(other.Filters) || len(p.SortClauses) != len(other.SortClauses) {
		return false
	}
	for i := range p.Filters {
		if p.Filters[i] != other.Filters[i] {
			return false
		}
	}
	for i := range p.SortClauses {
		if p.SortClauses[i] != other.SortClauses[i] {
			return false
		}
	}
	return true
}

// String renders the parameters for logs.
func (p Parameters) String() string {
	return fmt.Sprintf("page=%d limit=%d filters=%d order-by=%d", p.Page, p.Limit, len(p.Filters), len(p.SortClauses))
}

func (p Parameters) clone() Parameters {
	out := Parameters{Page: p.Page, Limit: p.Limit}
	if len(p.Filters) > 0 {
		out.Filters = append([]Filter(nil), p.Filters...)
	}
	if len(p.SortClauses) > 0 {
		out.SortClauses = append([]SortClause(nil), p.SortClauses...)
	}
	return out
}
