// Package querystring converts query.Parameters to and from the nested
// bracket encoding the editions API expects:
//
//	page=1&limit=5&filter[0][field]=status&filter[0][type]=like&filter[0][value]=%25Draft%25&order-by[0][field]=name&order-by[0][type]=field&order-by[0][direction]=ASC
//
// Keys are written in a fixed order so the same parameters always produce the
// same string. Bracket keys are left literal and values are percent-encoded
// per RFC 3986.
package querystring

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/eshaffer321/edition-dashboard/internal/domain/query"
)

const (
	keyPage    = "page"
	keyLimit   = "limit"
	keyFilter  = "filter"
	keyOrderBy = "order-by"
)

// ErrInvalidBaseURL is matched by every *InvalidBaseURLError.
var ErrInvalidBaseURL = errors.New("invalid base url")

// InvalidBaseURLError reports a missing or malformed base URL.
type InvalidBaseURLError struct {
	BaseURL string
}

func (e *InvalidBaseURLError) Error() string {
	return fmt.Sprintf("base url was missing or of wrong format %q", e.BaseURL)
}

func (e *InvalidBaseURLError) Is(target error) bool {
	return target == ErrInvalidBaseURL
}

// pair is one key=value entry. Order matters, so no url.Values here.
type pair struct {
	key   string
	value string
}

// Encode appends the encoded parameters to baseURL. When there is nothing to
// encode baseURL is returned unchanged, without a trailing "?".
func Encode(params query.Parameters, baseURL string) (string, error) {
	if strings.TrimSpace(baseURL) == "" {
		return "", &InvalidBaseURLError{BaseURL: baseURL}
	}

	encoded := Stringify(params)
	if encoded == "" {
		return baseURL, nil
	}

	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep + encoded, nil
}

// Stringify encodes params without a base URL. It returns "" for an empty set.
func Stringify(params query.Parameters) string {
	pairs := pairsOf(params)
	if len(pairs) == 0 {
		return ""
	}

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(escape(p.value))
	}
	return b.String()
}

func pairsOf(params query.Parameters) []pair {
	pairs := make([]pair, 0, 2+3*len(params.Filters)+3*len(params.SortClauses))

	if params.Page > 0 {
		pairs = append(pairs, pair{keyPage, strconv.Itoa(params.Page)})
	}
	if params.Limit > 0 {
		pairs = append(pairs, pair{keyLimit, strconv.Itoa(params.Limit)})
	}

	for i, f := range params.Filters {
		pairs = append(pairs,
			pair{indexed(keyFilter, i, "field"), f.Field},
			pair{indexed(keyFilter, i, "type"), string(f.Type)},
			pair{indexed(keyFilter, i, "value"), f.Value},
		)
	}

	for i, s := range params.SortClauses {
		sortType := s.Type
		if sortType == "" {
			sortType = query.SortTypeField
		}
		pairs = append(pairs,
			pair{indexed(keyOrderBy, i, "field"), s.Field},
			pair{indexed(keyOrderBy, i, "type"), sortType},
			pair{indexed(keyOrderBy, i, "direction"), string(s.Direction)},
		)
	}

	return pairs
}

func indexed(prefix string, i int, sub string) string {
	return prefix + "[" + strconv.Itoa(i) + "][" + sub + "]"
}

// escape percent-encodes a value, using %20 rather than + for spaces.
func escape(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}
