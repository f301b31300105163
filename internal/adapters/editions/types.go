package editions

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/eshaffer321/edition-dashboard/internal/domain/query"
)

// ID is a publication id. The API sends it as a string or a number.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("publication id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Link is one HAL link.
type Link struct {
	Href string `json:"href"`
}

// Publication is one edition as the API returns it. List responses carry
// the summary fields only; detail responses add uid, visibility and links.
type Publication struct {
	ID         ID              `json:"id"`
	Name       string          `json:"name"`
	Identifier string          `json:"identifier,omitempty"`
	UID        string          `json:"uid,omitempty"`
	IsVisible  bool            `json:"is_visible"`
	Status     string          `json:"status,omitempty"`
	Category   string          `json:"category,omitempty"`
	CreatedOn  string          `json:"created_on,omitempty"`
	ModifiedOn string          `json:"modified_on,omitempty"`
	Links      map[string]Link `json:"_links,omitempty"`
}

// Page is one page of the publication list.
type Page struct {
	Items       []Publication `json:"items"`
	TotalItems  int           `json:"total_items"`
	PageCount   int           `json:"page_count"`
	CurrentPage int           `json:"page"`
	PageSize    int           `json:"page_size"`
}

// PageInfo returns paginator state for the page.
func (p *Page) PageInfo() query.PageInfo {
	return query.NewPageInfo(p.CurrentPage, p.PageCount)
}

// listEnvelope is the HAL collection shape of the list endpoint.
type listEnvelope struct {
	Embedded struct {
		Edition []Publication `json:"edition"`
	} `json:"_embedded"`
	TotalItems int `json:"total_items"`
	PageCount  int `json:"page_count"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
}

func (e listEnvelope) toPage() *Page {
	items := e.Embedded.Edition
	if items == nil {
		items = []Publication{}
	}
	return &Page{
		Items:       items,
		TotalItems:  e.TotalItems,
		PageCount:   e.PageCount,
		CurrentPage: e.Page,
		PageSize:    e.PageSize,
	}
}
