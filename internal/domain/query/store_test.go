package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Defaults(t *testing.T) {
	s := NewStore()
	assert.Equal(t, Parameters{Page: 1, Limit: DefaultLimit}, s.Current())

	s = NewStore(WithLimit(5))
	assert.Equal(t, Parameters{Page: 1, Limit: 5}, s.Current())
}

func TestStore_AddFilter(t *testing.T) {
	t.Run("validates against allowed fields", func(t *testing.T) {
		s := NewStore(WithFilterFields(FilterFields...))

		_, err := s.AddFilter(Filter{Field: "secret", Value: "x", Type: FilterEq})
		assert.ErrorIs(t, err, ErrUnknownField)

		params, err := s.AddFilter(Filter{Field: "status", Value: "Draft", Type: FilterLike})
		require.NoError(t, err)
		assert.Equal(t, "%Draft%", params.Filters[0].Value)
	})

	t.Run("accepts any field without an allow-list", func(t *testing.T) {
		s := NewStore()

		_, err := s.AddFilter(Filter{Field: "anything", Value: "x", Type: FilterEq})
		assert.NoError(t, err)
	})

	t.Run("rejects bad input without changing state", func(t *testing.T) {
		s := NewStore()
		before := s.Current()

		_, err := s.AddFilter(Filter{Field: "status", Value: "x", Type: "gt"})
		assert.ErrorIs(t, err, ErrInvalidFilterType)

		_, err = s.AddFilter(Filter{Field: "status", Value: "", Type: FilterEq})
		assert.ErrorIs(t, err, ErrEmptyFilterValue)

		_, err = s.AddFilter(Filter{Field: "  ", Value: "x", Type: FilterEq})
		assert.ErrorIs(t, err, ErrUnknownField)

		assert.Equal(t, before, s.Current())
	})

	t.Run("forgets the page count", func(t *testing.T) {
		s := NewStore()
		s.SetPageCount(4)

		_, err := s.AddFilter(Filter{Field: "status", Value: "x", Type: FilterEq})
		require.NoError(t, err)
		assert.Equal(t, 0, s.PageCount())
	})
}

func TestStore_RemoveFilter(t *testing.T) {
	s := NewStore()
	_, err := s.AddFilter(Filter{Field: "status", Value: "Draft", Type: FilterLike})
	require.NoError(t, err)

	params := s.RemoveFilter(Filter{Field: "status", Value: "Draft", Type: FilterLike})

	assert.Empty(t, params.Filters)
	assert.Equal(t, params, s.Current())
}

func TestStore_SortClauses(t *testing.T) {
	s := NewStore(WithSortFields(SortFields...))

	_, err := s.AddSortClause("name", "UP")
	assert.ErrorIs(t, err, ErrInvalidDirection)

	_, err = s.AddSortClause("identifier", Asc)
	assert.ErrorIs(t, err, ErrUnknownField)

	params, err := s.AddSortClause("name", Asc)
	require.NoError(t, err)
	assert.Len(t, params.SortClauses, 1)

	params = s.RemoveSortClause("name", Asc)
	assert.Empty(t, params.SortClauses)
}

func TestStore_SetPage(t *testing.T) {
	s := NewStore()

	_, err := s.SetPage(0)
	assert.ErrorIs(t, err, ErrInvalidPage)

	params, err := s.SetPage(9)
	require.NoError(t, err)
	assert.Equal(t, 9, params.Page, "no page count yet")

	s.SetPageCount(3)
	params, err = s.SetPage(9)
	require.NoError(t, err)
	assert.Equal(t, 3, params.Page)
}

func TestStore_SetLimit(t *testing.T) {
	s := NewStore(WithLimit(5))
	_, err := s.SetPage(3)
	require.NoError(t, err)

	_, err = s.SetLimit(-1)
	assert.ErrorIs(t, err, ErrInvalidLimit)
	assert.Equal(t, 3, s.Current().Page)

	params, err := s.SetLimit(10)
	require.NoError(t, err)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 10, params.Limit)
}

func TestTracker(t *testing.T) {
	var tr Tracker
	params := NewParameters(5)

	first := tr.Begin(params)
	assert.True(t, tr.IsCurrent(first))

	second := tr.Begin(params.SetPage(2, 0))
	assert.False(t, tr.IsCurrent(first), "older fetch is stale once a newer one starts")
	assert.True(t, tr.IsCurrent(second))

	tr.Invalidate()
	assert.False(t, tr.IsCurrent(second), "query change invalidates in-flight fetches")
	assert.Equal(t, uint64(3), tr.Generation())
}
