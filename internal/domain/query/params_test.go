package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameters_AddFilter(t *testing.T) {
	t.Run("wraps like values and resets page", func(t *testing.T) {
		p := Parameters{Page: 4, Limit: 10}

		next := p.AddFilter(Filter{Field: "status", Value: "Draft", Type: FilterLike})

		require.Len(t, next.Filters, 1)
		assert.Equal(t, "%Draft%", next.Filters[0].Value)
		assert.Equal(t, 1, next.Page)
		assert.Equal(t, 4, p.Page, "receiver must not change")
		assert.Empty(t, p.Filters, "receiver must not change")
	})

	t.Run("keeps eq values raw", func(t *testing.T) {
		next := NewParameters(5).AddFilter(Filter{Field: "status", Value: "Published", Type: FilterEq})

		require.Len(t, next.Filters, 1)
		assert.Equal(t, "Published", next.Filters[0].Value)
	})

	t.Run("does not double wrap", func(t *testing.T) {
		next := NewParameters(5).AddFilter(Filter{Field: "name", Value: "%Spring%", Type: FilterLike})

		assert.Equal(t, "%Spring%", next.Filters[0].Value)
	})

	t.Run("appends even when field and type are already filtered", func(t *testing.T) {
		p := NewParameters(5).
			AddFilter(Filter{Field: "status", Value: "Draft", Type: FilterLike}).
			AddFilter(Filter{Field: "category", Value: "movie", Type: FilterEq})

		next := p.AddFilter(Filter{Field: "status", Value: "Live", Type: FilterLike})

		require.Len(t, next.Filters, 3)
		assert.Equal(t, Filter{Field: "status", Value: "%Draft%", Type: FilterLike}, next.Filters[0])
		assert.Equal(t, "category", next.Filters[1].Field)
		assert.Equal(t, Filter{Field: "status", Value: "%Live%", Type: FilterLike}, next.Filters[2])
	})

	t.Run("preserves insertion order", func(t *testing.T) {
		p := NewParameters(5).
			AddFilter(Filter{Field: "b", Value: "1", Type: FilterEq}).
			AddFilter(Filter{Field: "a", Value: "2", Type: FilterEq})

		assert.Equal(t, "b", p.Filters[0].Field)
		assert.Equal(t, "a", p.Filters[1].Field)
	})
}

func TestParameters_RemoveFilter(t *testing.T) {
	t.Run("add then remove restores the filter list", func(t *testing.T) {
		cases := []Parameters{
			{Page: 3, Limit: 5},
			NewParameters(10).AddFilter(Filter{Field: "category", Value: "movie", Type: FilterEq}),
			NewParameters(10).
				AddFilter(Filter{Field: "name", Value: "Spring", Type: FilterLike}).
				AddFilter(Filter{Field: "created_on", Value: "2023-01-01", Type: FilterEq}),
			NewParameters(10).AddFilter(Filter{Field: "status", Value: "Published", Type: FilterLike}),
			NewParameters(10).AddFilter(Filter{Field: "status", Value: "Draft", Type: FilterLike}),
		}
		filter := Filter{Field: "status", Value: "Draft", Type: FilterLike}

		for _, prior := range cases {
			added := prior.AddFilter(filter)
			assert.Equal(t, 1, added.Page)

			removed := added.RemoveFilter(filter)
			assert.Equal(t, prior.Filters, removed.Filters)
			assert.Equal(t, 1, removed.Page)
		}
	})

	t.Run("accepts stored form", func(t *testing.T) {
		p := NewParameters(10).AddFilter(Filter{Field: "status", Value: "Draft", Type: FilterLike})

		next := p.RemoveFilter(Filter{Field: "status", Value: "%Draft%", Type: FilterLike})

		assert.Empty(t, next.Filters)
	})

	t.Run("no match leaves state unchanged", func(t *testing.T) {
		p := NewParameters(10).
			AddFilter(Filter{Field: "status", Value: "Draft", Type: FilterLike}).
			SetPage(3, 0)

		next := p.RemoveFilter(Filter{Field: "status", Value: "Draft", Type: FilterEq})

		assert.True(t, p.Equal(next))
		assert.Equal(t, 3, next.Page)
	})

	t.Run("removes only the first match", func(t *testing.T) {
		p := Parameters{Page: 1, Limit: 5, Filters: []Filter{
			{Field: "status", Value: "x", Type: FilterEq},
			{Field: "status", Value: "x", Type: FilterEq},
		}}

		next := p.RemoveFilter(Filter{Field: "status", Value: "x", Type: FilterEq})

		assert.Len(t, next.Filters, 1)
		assert.Len(t, p.Filters, 2)
	})
}

func TestParameters_SortClauses(t *testing.T) {
	t.Run("appends new fields in order", func(t *testing.T) {
		p := NewParameters(5).AddSortClause("name", Asc).AddSortClause("status", Desc)

		require.Len(t, p.SortClauses, 2)
		assert.Equal(t, SortClause{Field: "name", Type: "field", Direction: Asc}, p.SortClauses[0])
		assert.Equal(t, SortClause{Field: "status", Type: "field", Direction: Desc}, p.SortClauses[1])
	})

	t.Run("replaces direction in place", func(t *testing.T) {
		p := NewParameters(5).AddSortClause("name", Asc).AddSortClause("status", Desc)

		next := p.AddSortClause("name", Desc)

		require.Len(t, next.SortClauses, 2)
		assert.Equal(t, "name", next.SortClauses[0].Field)
		assert.Equal(t, Desc, next.SortClauses[0].Direction)
		assert.Equal(t, Asc, p.SortClauses[0].Direction, "receiver must not change")
	})

	t.Run("keeps the current page", func(t *testing.T) {
		p := NewParameters(5).SetPage(3, 0)

		assert.Equal(t, 3, p.AddSortClause("name", Asc).Page)
	})

	t.Run("remove requires exact direction", func(t *testing.T) {
		p := NewParameters(5).AddSortClause("name", Asc)

		assert.Len(t, p.RemoveSortClause("name", Desc).SortClauses, 1)
		assert.Empty(t, p.RemoveSortClause("name", Asc).SortClauses)
		assert.Len(t, p.RemoveSortClause("status", Asc).SortClauses, 1)
	})
}

func TestParameters_SetPage(t *testing.T) {
	p := NewParameters(5)

	assert.Equal(t, 7, p.SetPage(7, 0).Page, "unknown page count sets directly")
	assert.Equal(t, 3, p.SetPage(7, 3).Page, "clamped to page count")
	assert.Equal(t, 2, p.SetPage(2, 3).Page)
	assert.Equal(t, 1, p.SetPage(0, 3).Page, "zero is ignored")
	assert.Equal(t, 1, p.SetPage(-2, 0).Page, "negative is ignored")
}

func TestParameters_SetLimit(t *testing.T) {
	for _, limit := range []int{1, 5, 10, 25, 100} {
		p := NewParameters(5).SetPage(4, 0)

		next := p.SetLimit(limit)

		assert.Equal(t, 1, next.Page)
		assert.Equal(t, limit, next.Limit)
	}

	p := NewParameters(5).SetPage(4, 0)
	assert.True(t, p.Equal(p.SetLimit(0)))
}

func TestParameters_FilterThenPageSize(t *testing.T) {
	p := NewParameters(5).
		AddFilter(Filter{Field: "status", Value: "Published", Type: FilterEq}).
		SetLimit(10)

	expected := Parameters{
		Page:    1,
		Limit:   10,
		Filters: []Filter{{Field: "status", Type: FilterEq, Value: "Published"}},
	}
	assert.Equal(t, expected, p)
}

func TestFilter_Display(t *testing.T) {
	like := Filter{Field: "status", Value: "%Test Filter 1%", Type: FilterLike}
	eq := Filter{Field: "category", Value: "Test Filter 2", Type: FilterEq}

	assert.Equal(t, "Test Filter 1", like.DisplayValue())
	assert.Equal(t, "status[like]='Test Filter 1'", like.Label())
	assert.Equal(t, "category[eq]='Test Filter 2'", eq.Label())
	assert.Equal(t, "name='DESC'", NewSortClause("name", Desc).Label())
}

func TestNewPageInfo(t *testing.T) {
	info := NewPageInfo(1, 3)
	assert.False(t, info.HasPrevious)
	assert.True(t, info.HasNext)
	assert.Equal(t, "Page 1 of 3", info.String())

	info = NewPageInfo(3, 3)
	assert.True(t, info.HasPrevious)
	assert.False(t, info.HasNext)

	info = NewPageInfo(0, 0)
	assert.Equal(t, "Page 1 of 1", info.String())
	assert.False(t, info.HasPrevious)
	assert.False(t, info.HasNext)
}
