package querystring

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/eshaffer321/edition-dashboard/internal/domain/query"
)

// ErrMalformed is wrapped by every Decode error.
var ErrMalformed = errors.New("malformed query string")

// Decode parses a query string produced by Encode (with or without a leading
// "?"). Entries are ordered by their bracket index. Missing page or limit
// decode as zero; callers apply defaults with Parameters.WithDefaults.
func Decode(raw string) (query.Parameters, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return query.Parameters{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return FromValues(values)
}

// FromValues builds Parameters from already parsed query values.
// Keys other than page, limit, filter[..] and order-by[..] are ignored.
func FromValues(values url.Values) (query.Parameters, error) {
	var params query.Parameters
	filters := make(map[int]*query.Filter)
	sorts := make(map[int]*query.SortClause)

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		value := vals[0]

		switch {
		case key == keyPage:
			n, err := positiveInt(key, value)
			if err != nil {
				return query.Parameters{}, err
			}
			params.Page = n

		case key == keyLimit:
			n, err := positiveInt(key, value)
			if err != nil {
				return query.Parameters{}, err
			}
			params.Limit = n

		case strings.HasPrefix(key, keyFilter+"["):
			idx, sub, err := parseIndexed(keyFilter, key)
			if err != nil {
				return query.Parameters{}, err
			}
			f, ok := filters[idx]
			if !ok {
				f = &query.Filter{}
				filters[idx] = f
			}
			switch sub {
			case "field":
				f.Field = value
			case "type":
				f.Type = query.FilterType(value)
			case "value":
				f.Value = value
			default:
				return query.Parameters{}, fmt.Errorf("%w: unknown filter key %q", ErrMalformed, key)
			}

		case strings.HasPrefix(key, keyOrderBy+"["):
			idx, sub, err := parseIndexed(keyOrderBy, key)
			if err != nil {
				return query.Parameters{}, err
			}
			s, ok := sorts[idx]
			if !ok {
				s = &query.SortClause{Type: query.SortTypeField}
				sorts[idx] = s
			}
			switch sub {
			case "field":
				s.Field = value
			case "type":
				s.Type = value
			case "direction":
				s.Direction = query.Direction(strings.ToUpper(value))
			default:
				return query.Parameters{}, fmt.Errorf("%w: unknown order-by key %q", ErrMalformed, key)
			}
		}
	}

	for _, idx := range sortedKeys(filters) {
		f := filters[idx]
		if f.Field == "" {
			return query.Parameters{}, fmt.Errorf("%w: filter[%d] has no field", ErrMalformed, idx)
		}
		if !f.Type.Valid() {
			return query.Parameters{}, fmt.Errorf("%w: filter[%d] has invalid type %q", ErrMalformed, idx, f.Type)
		}
		params.Filters = append(params.Filters, *f)
	}

	for _, idx := range sortedKeys(sorts) {
		s := sorts[idx]
		if s.Field == "" {
			return query.Parameters{}, fmt.Errorf("%w: order-by[%d] has no field", ErrMalformed, idx)
		}
		if !s.Direction.Valid() {
			return query.Parameters{}, fmt.Errorf("%w: order-by[%d] has invalid direction %q", ErrMalformed, idx, s.Direction)
		}
		params.SortClauses = append(params.SortClauses, *s)
	}

	return params, nil
}

// parseIndexed splits "filter[3][value]" into 3 and "value".
func parseIndexed(prefix, key string) (int, string, error) {
	rest := strings.TrimPrefix(key, prefix)
	if !strings.HasPrefix(rest, "[") || !strings.HasSuffix(rest, "]") {
		return 0, "", fmt.Errorf("%w: bad key %q", ErrMalformed, key)
	}
	parts := strings.Split(rest[1:len(rest)-1], "][")
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("%w: bad key %q", ErrMalformed, key)
	}
	idx, err := strconv.Atoi(parts[0])
	if err != nil || idx < 0 {
		return 0, "", fmt.Errorf("%w: bad index in key %q", ErrMalformed, key)
	}
	return idx, parts[1], nil
}

func positiveInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", ErrMalformed, key, value)
	}
	return n, nil
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
