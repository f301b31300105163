package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/edition-dashboard/internal/adapters/editions"
	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/storage"
)

func samplePage() *editions.Page {
	return &editions.Page{
		Items: []editions.Publication{
			{ID: "1", Name: "Spring Issue", Status: "Draft", Category: "magazine", CreatedOn: "2023-01-01"},
			{ID: "2", Name: "Summer Issue"},
		},
		TotalItems:  12,
		PageCount:   6,
		CurrentPage: 2,
		PageSize:    2,
	}
}

func TestPrintPage(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, PrintPage(&buf, samplePage(), FormatTable))

		out := buf.String()
		assert.Contains(t, out, "ID  NAME")
		assert.Contains(t, out, "Spring Issue")
		assert.Contains(t, out, "Page 2 of 6 (12 items)")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, PrintPage(&buf, samplePage(), FormatJSON))

		assert.Contains(t, buf.String(), `"name": "Spring Issue"`)
		assert.Contains(t, buf.String(), `"page_count": 6`)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, PrintPage(&buf, samplePage(), FormatYAML))

		assert.Contains(t, buf.String(), "name: Spring Issue")
		assert.Contains(t, buf.String(), "total_items: 12")
	})
}

func TestPrintPublication(t *testing.T) {
	pub := &editions.Publication{
		ID:        "1",
		Name:      "Spring Issue",
		UID:       "abc",
		IsVisible: true,
		Links:     map[string]editions.Link{"self": {Href: "https://example.com/1"}},
	}

	var buf bytes.Buffer
	require.NoError(t, PrintPublication(&buf, pub, FormatTable))

	out := buf.String()
	assert.Contains(t, out, "Spring Issue")
	assert.Contains(t, out, "https://example.com/1")
	assert.Contains(t, out, "true")

	buf.Reset()
	require.NoError(t, PrintPublication(&buf, pub, FormatYAML))
	assert.Contains(t, buf.String(), "href: https://example.com/1")
}

func TestPrintRuns(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	done := start.Add(150 * time.Millisecond)
	runs := []storage.FetchRun{
		{ID: 2, Kind: storage.KindDetail, Target: "9", Status: storage.StatusFailed, StartedAt: start, CompletedAt: &done, ErrorMessage: "timeout"},
		{ID: 1, Kind: storage.KindList, Target: "page=1&limit=10", Status: storage.StatusCompleted, StartedAt: start, CompletedAt: &done, ItemCount: 10, TotalItems: 42},
	}

	var buf bytes.Buffer
	require.NoError(t, PrintRuns(&buf, runs, FormatTable))

	out := buf.String()
	assert.Contains(t, out, "9 (timeout)")
	assert.Contains(t, out, "10/42")
	assert.Contains(t, out, "150ms")
}

func TestCheckFormat(t *testing.T) {
	assert.NoError(t, checkFormat("yaml"))
	assert.Error(t, checkFormat("xml"))
}
