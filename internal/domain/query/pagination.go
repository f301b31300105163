package query

import "fmt"

// PageInfo describes where a result sits in the full list, the way the
// dashboard paginator shows it.
type PageInfo struct {
	CurrentPage int  `json:"current_page"`
	PageCount   int  `json:"page_count"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// NewPageInfo builds paginator state. Missing values behave like page 1 of 1.
func NewPageInfo(current, pageCount int) PageInfo {
	if current <= 0 {
		current = 1
	}
	if pageCount <= 0 {
		pageCount = 1
	}
	return PageInfo{
		CurrentPage: current,
		PageCount:   pageCount,
		HasPrevious: current > 1,
		HasNext:     current < pageCount,
	}
}

// String renders "Page X of Y".
func (p PageInfo) String() string {
	return fmt.Sprintf("Page %d of %d", p.CurrentPage, p.PageCount)
}
