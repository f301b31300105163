package cli

import (
	"fmt"
	"strings"

	"github.com/eshaffer321/edition-dashboard/internal/domain/query"
)

// ListFlags are the flags of the list command.
type ListFlags struct {
	Page    int
	Limit   int
	Filters []string
	OrderBy []string
	Output  string
}

// ToParameters validates the flags the way a dashboard session would and
// returns the resulting query.
func (f ListFlags) ToParameters() (query.Parameters, error) {
	store := query.NewStore(
		query.WithFilterFields(query.FilterFields...),
		query.WithSortFields(query.SortFields...),
		query.WithLimit(f.Limit),
	)

	for _, raw := range f.Filters {
		filter, err := parseFilter(raw)
		if err != nil {
			return query.Parameters{}, err
		}
		if store.Current().HasFilterOn(filter.Field) {
			return query.Parameters{}, fmt.Errorf("field %q is filtered more than once", filter.Field)
		}
		if _, err := store.AddFilter(filter); err != nil {
			return query.Parameters{}, err
		}
	}

	for _, raw := range f.OrderBy {
		field, dir, err := parseOrderBy(raw)
		if err != nil {
			return query.Parameters{}, err
		}
		if _, err := store.AddSortClause(field, dir); err != nil {
			return query.Parameters{}, err
		}
	}

	if f.Page > 1 {
		if _, err := store.SetPage(f.Page); err != nil {
			return query.Parameters{}, err
		}
	}

	params := store.Current()
	if f.Limit <= 0 {
		// let the service apply the configured default
		params.Limit = 0
	}
	return params, nil
}

// parseFilter reads field=value (exact) or field~value (contains).
func parseFilter(raw string) (query.Filter, error) {
	eq := strings.Index(raw, "=")
	like := strings.Index(raw, "~")

	idx, typ := eq, query.FilterEq
	if like >= 0 && (eq < 0 || like < eq) {
		idx, typ = like, query.FilterLike
	}
	if idx <= 0 || idx == len(raw)-1 {
		return query.Filter{}, fmt.Errorf("invalid filter %q: want field=value or field~value", raw)
	}

	return query.Filter{
		Field: strings.TrimSpace(raw[:idx]),
		Value: raw[idx+1:],
		Type:  typ,
	}, nil
}

// parseOrderBy reads field or field:ASC|DESC. Direction defaults to ASC.
func parseOrderBy(raw string) (string, query.Direction, error) {
	field, dir, found := strings.Cut(raw, ":")
	if !found {
		return strings.TrimSpace(field), query.Asc, nil
	}
	d := query.Direction(strings.ToUpper(strings.TrimSpace(dir)))
	if !d.Valid() {
		return "", "", fmt.Errorf("invalid order-by %q: direction must be ASC or DESC", raw)
	}
	return strings.TrimSpace(field), d, nil
}
