package query

import "strings"

// AddFilter returns a copy of p with f appended and the page reset to 1.
// A like value is stored wrapped as %value%. Uniqueness per field is left to
// callers.
func (p Parameters) AddFilter(f Filter) Parameters {
	out := p.clone()
	out.Page = 1
	out.Filters = append(out.Filters, f.stored())
	return out
}

// RemoveFilter returns a copy of p without the first filter equal to f.
// f may carry the stored (%Draft%) or the display (Draft) form of a like value.
// When nothing matches p is returned unchanged.
func (p Parameters) RemoveFilter(f Filter) Parameters {
	idx := p.indexOfFilter(f.stored())
	if idx < 0 {
		idx = p.indexOfFilter(f)
	}
	if idx < 0 {
		return p
	}

	out := p.clone()
	out.Filters = append(out.Filters[:idx], out.Filters[idx+1:]...)
	if len(out.Filters) == 0 {
		out.Filters = nil
	}
	out.Page = 1
	return out
}

// AddSortClause orders by field in dir. An existing clause for field keeps its
// position and only changes direction.
func (p Parameters) AddSortClause(field string, dir Direction) Parameters {
	out := p.clone()
	for i, existing := range out.SortClauses {
		if existing.Field == field {
			out.SortClauses[i].Direction = dir
			out.SortClauses[i].Type = SortTypeField
			return out
		}
	}
	out.SortClauses = append(out.SortClauses, NewSortClause(field, dir))
	return out
}

// RemoveSortClause drops the clause matching field and dir exactly.
func (p Parameters) RemoveSortClause(field string, dir Direction) Parameters {
	for i, existing := range p.SortClauses {
		if existing.Field == field && existing.Direction == dir {
			out := p.clone()
			out.SortClauses = append(out.SortClauses[:i], out.SortClauses[i+1:]...)
			if len(out.SortClauses) == 0 {
				out.SortClauses = nil
			}
			return out
		}
	}
	return p
}

// SetPage moves to page n. When pageCount is known (> 0) n is clamped to
// [1, pageCount]. Non-positive n is ignored.
func (p Parameters) SetPage(n, pageCount int) Parameters {
	if n <= 0 {
		return p
	}
	if pageCount > 0 && n > pageCount {
		n = pageCount
	}
	out := p.clone()
	out.Page = n
	return out
}

// SetLimit changes the page size and resets the page to 1. Non-positive n is ignored.
func (p Parameters) SetLimit(n int) Parameters {
	if n <= 0 {
		return p
	}
	out := p.clone()
	out.Limit = n
	out.Page = 1
	return out
}

// HasFilterOn reports whether any active filter targets field.
func (p Parameters) HasFilterOn(field string) bool {
	for _, f := range p.Filters {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (p Parameters) indexOfFilter(f Filter) int {
	for i, existing := range p.Filters {
		if existing == f {
			return i
		}
	}
	return -1
}

// stored returns f in the form kept in Parameters.
func (f Filter) stored() Filter {
	if f.Type == FilterLike && !isWrapped(f.Value) {
		f.Value = "%" + f.Value + "%"
	}
	return f
}

// DisplayValue is the value shown to the user, without like wildcards.
func (f Filter) DisplayValue() string {
	if f.Type == FilterLike && isWrapped(f.Value) {
		return f.Value[1 : len(f.Value)-1]
	}
	return f.Value
}

// Label renders the filter as the dashboard shows it, e.g. status[like]='Draft'.
func (f Filter) Label() string {
	return f.Field + "[" + string(f.Type) + "]='" + f.DisplayValue() + "'"
}

// Label renders the clause as the dashboard shows it, e.g. name='ASC'.
func (s SortClause) Label() string {
	return s.Field + "='" + string(s.Direction) + "'"
}

func isWrapped(v string) bool {
	return len(v) >= 2 && strings.HasPrefix(v, "%") && strings.HasSuffix(v, "%")
}
