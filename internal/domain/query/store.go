package query

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownField      = errors.New("unknown field")
	ErrInvalidFilterType = errors.New("invalid filter type")
	ErrEmptyFilterValue  = errors.New("filter value is empty")
	ErrInvalidDirection  = errors.New("invalid sort direction")
	ErrInvalidPage       = errors.New("page must be a positive integer")
	ErrInvalidLimit      = errors.New("limit must be a positive integer")
)

// Store keeps the current Parameters of one dashboard session and validates
// changes before applying them. It is not safe for concurrent use; callers
// serialize access the same way UI events are serialized.
type Store struct {
	current      Parameters
	pageCount    int
	filterFields map[string]bool
	sortFields   map[string]bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithFilterFields restricts filters to the given fields.
func WithFilterFields(fields ...string) StoreOption {
	return func(s *Store) {
		s.filterFields = toSet(fields)
	}
}

// WithSortFields restricts sort clauses to the given fields.
func WithSortFields(fields ...string) StoreOption {
	return func(s *Store) {
		s.sortFields = toSet(fields)
	}
}

// WithLimit sets the initial page size.
func WithLimit(limit int) StoreOption {
	return func(s *Store) {
		s.current = NewParameters(limit)
	}
}

// NewStore creates a store holding the start-of-session parameters.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{current: NewParameters(DefaultLimit)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the current parameters.
func (s *Store) Current() Parameters {
	return s.current
}

// PageCount returns the page count of the last applied result, 0 if unknown.
func (s *Store) PageCount() int {
	return s.pageCount
}

// SetPageCount records how many pages the current query yields.
func (s *Store) SetPageCount(n int) {
	if n < 0 {
		n = 0
	}
	s.pageCount = n
}

// AddFilter validates f and applies it.
func (s *Store) AddFilter(f Filter) (Parameters, error) {
	f.Field = strings.TrimSpace(f.Field)
	if err := s.checkField(s.filterFields, f.Field); err != nil {
		return s.current, err
	}
	if !f.Type.Valid() {
		return s.current, fmt.Errorf("%w: %q", ErrInvalidFilterType, f.Type)
	}
	if f.Value == "" {
		return s.current, ErrEmptyFilterValue
	}

	s.current = s.current.AddFilter(f)
	s.pageCount = 0
	return s.current, nil
}

// RemoveFilter removes f. Removing a filter that is not active is a no-op.
func (s *Store) RemoveFilter(f Filter) Parameters {
	f.Field = strings.TrimSpace(f.Field)
	next := s.current.RemoveFilter(f)
	if len(next.Filters) != len(s.current.Filters) {
		s.pageCount = 0
	}
	s.current = next
	return s.current
}

// AddSortClause validates and applies a sort clause.
func (s *Store) AddSortClause(field string, dir Direction) (Parameters, error) {
	field = strings.TrimSpace(field)
	if err := s.checkField(s.sortFields, field); err != nil {
		return s.current, err
	}
	if !dir.Valid() {
		return s.current, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}

	s.current = s.current.AddSortClause(field, dir)
	return s.current, nil
}

// RemoveSortClause removes the matching sort clause, if any.
func (s *Store) RemoveSortClause(field string, dir Direction) Parameters {
	s.current = s.current.RemoveSortClause(field, dir)
	return s.current
}

// SetPage moves to page n, clamped to the last known page count.
func (s *Store) SetPage(n int) (Parameters, error) {
	if n <= 0 {
		return s.current, ErrInvalidPage
	}
	s.current = s.current.SetPage(n, s.pageCount)
	return s.current, nil
}

// SetLimit changes the page size.
func (s *Store) SetLimit(n int) (Parameters, error) {
	if n <= 0 {
		return s.current, ErrInvalidLimit
	}
	s.current = s.current.SetLimit(n)
	s.pageCount = 0
	return s.current, nil
}

func (s *Store) checkField(allowed map[string]bool, field string) error {
	if field == "" {
		return fmt.Errorf("%w: field is required", ErrUnknownField)
	}
	if allowed != nil && !allowed[field] {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
