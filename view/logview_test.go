package view

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logdeck/api"
)

func eventLogs(n int) []api.EventLog {
	logs := make([]api.EventLog, n)
	for i := range logs {
		logs[i] = api.EventLog{
			ID:      int64(i + 1),
			Level:   api.LevelInfo,
			Message: fmt.Sprintf("message %d", i+1),
			UserID:  "user-1",
		}
	}
	return logs
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		page      int
		wantLen   int
		wantFirst int64
	}{
		{"first page of many", 25, 1, 10, 1},
		{"middle page", 25, 2, 10, 11},
		{"short last page", 25, 3, 5, 21},
		{"page past the end", 25, 4, 0, 0},
		{"exactly one page", 10, 1, 10, 1},
		{"empty collection", 0, 1, 0, 0},
		{"page zero clamps to one", 25, 0, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Paginate(eventLogs(tt.total), tt.page)
			assert.Len(t, page, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantFirst, page[0].ID)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0), "an empty collection still has one page")
	assert.Equal(t, 1, TotalPages(10))
	assert.Equal(t, 2, TotalPages(11))
	assert.Equal(t, 3, TotalPages(25))
}

func TestFilterEventLogs(t *testing.T) {
	logs := []api.EventLog{
		{ID: 1, Level: api.LevelInfo, Message: "User logged in", UserID: "alice"},
		{ID: 2, Level: api.LevelError, Message: "Payment failed", UserID: "bob"},
		{ID: 3, Level: api.LevelError, Message: "Timeout talking to upstream", UserID: "alice"},
	}

	byLevel := FilterEventLogs(logs, api.LevelError, "")
	require.Len(t, byLevel, 2)

	// Search is case-insensitive and matches the user id too.
	bySearch := FilterEventLogs(logs, "", "ALICE")
	require.Len(t, bySearch, 2)
	assert.Equal(t, int64(1), bySearch[0].ID)

	combined := FilterEventLogs(logs, api.LevelError, "payment")
	require.Len(t, combined, 1)
	assert.Equal(t, int64(2), combined[0].ID)

	assert.Empty(t, FilterEventLogs(logs, api.LevelDebug, ""))
}

func TestFilterLlmLogs(t *testing.T) {
	logs := []api.LlmLog{
		{ID: 1, Source: "gpt-4", Query: "summarize this", Response: "A summary", UserID: "alice"},
		{ID: 2, Source: "claude", Query: "translate", Response: "Une traduction", UserID: "bob"},
	}

	assert.Len(t, FilterLlmLogs(logs, ""), 2)
	assert.Len(t, FilterLlmLogs(logs, "gpt"), 1)
	assert.Len(t, FilterLlmLogs(logs, "traduction"), 1, "responses are searched too")
	assert.Empty(t, FilterLlmLogs(logs, "nomatch"))
}

func TestFilterChangeResetsPage(t *testing.T) {
	v := NewLogView()
	v.SelectProject(1)
	v.SetPage(3, 5)
	require.Equal(t, 3, v.Page())

	v.SetSearch("error")
	assert.Equal(t, 1, v.Page())

	v.SetPage(2, 5)
	v.SetLevel(api.LevelError)
	assert.Equal(t, 1, v.Page())

	v.SetPage(2, 5)
	v.SelectTab(TabLLM)
	assert.Equal(t, 1, v.Page())

	// Re-applying the same filter value is not a change.
	v.SetPage(2, 5)
	v.SelectTab(TabLLM)
	assert.Equal(t, 2, v.Page())
}

func TestSetPageClamps(t *testing.T) {
	v := NewLogView()
	v.SetPage(99, 3)
	assert.Equal(t, 3, v.Page())
	v.SetPage(-1, 3)
	assert.Equal(t, 1, v.Page())
	v.SetPage(5, 0)
	assert.Equal(t, 1, v.Page())
}

func TestProjectSwitchClearsRowState(t *testing.T) {
	v := NewLogView()
	v.SelectProject(1)
	v.ToggleExpanded(42)
	v.SetDetailTab(42, "Metadata")
	v.SetPage(2, 3)

	require.True(t, v.Expanded(42))

	v.SelectProject(2)
	assert.False(t, v.Expanded(42), "row ids from another project must not leak")
	assert.Empty(t, v.DetailTab(42))
	assert.Equal(t, 1, v.Page())

	// Selecting the already-selected project changes nothing.
	v.ToggleExpanded(7)
	v.SelectProject(2)
	assert.True(t, v.Expanded(7))
}

func TestRowsToggleIndependently(t *testing.T) {
	v := NewLogView()
	v.ToggleExpanded(1)
	v.ToggleExpanded(2)
	v.SetDetailTab(1, "Response")

	v.ToggleExpanded(2)
	assert.True(t, v.Expanded(1))
	assert.False(t, v.Expanded(2))
	assert.Equal(t, "Response", v.DetailTab(1))

	// Collapsing a row forgets its detail tab.
	v.ToggleExpanded(1)
	v.ToggleExpanded(1)
	assert.Empty(t, v.DetailTab(1))
}

func TestRowStateScopedToTab(t *testing.T) {
	v := NewLogView()
	v.ToggleExpanded(7)
	v.SetDetailTab(7, "Metadata")

	// An LLM row with the same id is a different row.
	v.SelectTab(TabLLM)
	assert.False(t, v.Expanded(7))
	assert.Empty(t, v.DetailTab(7))

	v.ToggleExpanded(7)
	v.SetDetailTab(7, "Response")

	// Each tab keeps its own state across switches.
	v.SelectTab(TabEvents)
	assert.True(t, v.Expanded(7))
	assert.Equal(t, "Metadata", v.DetailTab(7))
	v.SelectTab(TabLLM)
	assert.Equal(t, "Response", v.DetailTab(7))
}

func TestVisibleEventLogs(t *testing.T) {
	v := NewLogView()
	v.SelectProject(1)

	logs := eventLogs(25)
	visible, totalPages := v.VisibleEventLogs(logs)
	assert.Len(t, visible, PageSize)
	assert.Equal(t, 3, totalPages)

	v.SetPage(3, totalPages)
	visible, _ = v.VisibleEventLogs(logs)
	assert.Len(t, visible, 5)

	// Narrowing the filter re-derives the page count.
	v.SetSearch("message 2")
	visible, totalPages = v.VisibleEventLogs(logs)
	assert.Equal(t, 1, totalPages)
	assert.Len(t, visible, 7, "message 2, 20-25")
}
