// Package view holds the frontend-independent view state for the log and
// analytics screens: client-side filtering, pagination and row expansion
// over the full fetched collection of the selected project. Both the GUI
// and the CLI drive the same logic.
package view

import (
	"strings"

	"logdeck/api"
)

// PageSize is the fixed client-side page size for log tables.
const PageSize = 10

// Tab selects which log kind the table shows.
type Tab string

const (
	TabEvents Tab = "events"
	TabLLM    Tab = "llm"
)

// LogView is the state machine behind a log table: selected project,
// active tab, free-text search, level filter (event logs only), current
// page and per-row expansion. Any filter change resets the page to 1;
// switching projects additionally clears expansion state, since row ids
// from another project's id space must not leak into the new view.
type LogView struct {
	projectID int64
	tab       Tab
	search    string
	level     string
	page      int

	expanded  map[rowKey]struct{}
	detailTab map[rowKey]string
}

// rowKey identifies a row's expansion state. Event and LLM log ids come
// from separate id spaces, so the tab is part of the key: an event row
// and an LLM row sharing an id keep independent state.
type rowKey struct {
	tab Tab
	id  int64
}

// NewLogView creates a view showing event logs, page 1, nothing expanded.
func NewLogView() *LogView {
	return &LogView{
		tab:       TabEvents,
		page:      1,
		expanded:  make(map[rowKey]struct{}),
		detailTab: make(map[rowKey]string),
	}
}

// ProjectID returns the selected project id, 0 when none is selected.
func (v *LogView) ProjectID() int64 { return v.projectID }

// Tab returns the active log tab.
func (v *LogView) Tab() Tab { return v.tab }

// Search returns the free-text filter.
func (v *LogView) Search() string { return v.search }

// Level returns the level filter, empty for all levels.
func (v *LogView) Level() string { return v.level }

// Page returns the current 1-based page number.
func (v *LogView) Page() int { return v.page }

// SelectProject switches the view to another project, resetting the page
// and clearing all row state.
func (v *LogView) SelectProject(projectID int64) {
	if projectID == v.projectID {
		return
	}
	v.projectID = projectID
	v.page = 1
	v.expanded = make(map[rowKey]struct{})
	v.detailTab = make(map[rowKey]string)
}

// SelectTab switches between event and LLM logs, resetting the page.
func (v *LogView) SelectTab(tab Tab) {
	if tab == v.tab {
		return
	}
	v.tab = tab
	v.page = 1
}

// SetSearch updates the free-text filter and resets the page.
func (v *LogView) SetSearch(term string) {
	if term == v.search {
		return
	}
	v.search = term
	v.page = 1
}

// SetLevel updates the level filter and resets the page. Only meaningful
// on the event tab; empty means all levels.
func (v *LogView) SetLevel(level string) {
	if level == v.level {
		return
	}
	v.level = level
	v.page = 1
}

// SetPage moves to a page, clamped to [1, totalPages].
func (v *LogView) SetPage(page, totalPages int) {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	v.page = page
}

// ToggleExpanded flips one row's detail expansion on the active tab.
// Rows toggle independently; default collapsed.
func (v *LogView) ToggleExpanded(id int64) {
	key := rowKey{tab: v.tab, id: id}
	if _, ok := v.expanded[key]; ok {
		delete(v.expanded, key)
		delete(v.detailTab, key)
		return
	}
	v.expanded[key] = struct{}{}
}

// Expanded reports whether one row's detail is open on the active tab.
func (v *LogView) Expanded(id int64) bool {
	_, ok := v.expanded[rowKey{tab: v.tab, id: id}]
	return ok
}

// SetDetailTab selects the detail tab inside one expanded row without
// affecting other rows.
func (v *LogView) SetDetailTab(id int64, tab string) {
	v.detailTab[rowKey{tab: v.tab, id: id}] = tab
}

// DetailTab returns one row's selected detail tab, empty for the default.
func (v *LogView) DetailTab(id int64) string {
	return v.detailTab[rowKey{tab: v.tab, id: id}]
}

// VisibleEventLogs applies the level and search filters and the current
// page to the full event log collection.
func (v *LogView) VisibleEventLogs(logs []api.EventLog) ([]api.EventLog, int) {
	filtered := FilterEventLogs(logs, v.level, v.search)
	total := TotalPages(len(filtered))
	return Paginate(filtered, v.page), total
}

// VisibleLlmLogs applies the search filter and the current page to the
// full LLM log collection.
func (v *LogView) VisibleLlmLogs(logs []api.LlmLog) ([]api.LlmLog, int) {
	filtered := FilterLlmLogs(logs, v.search)
	total := TotalPages(len(filtered))
	return Paginate(filtered, v.page), total
}

// FilterEventLogs keeps logs matching the level filter (empty keeps all)
// and whose message or user id contains the search term.
func FilterEventLogs(logs []api.EventLog, level, search string) []api.EventLog {
	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]api.EventLog, 0, len(logs))
	for _, l := range logs {
		if level != "" && l.Level != level {
			continue
		}
		if term != "" && !matches(term, l.Message, l.UserID) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// FilterLlmLogs keeps logs whose source, query, response or user id
// contains the search term.
func FilterLlmLogs(logs []api.LlmLog, search string) []api.LlmLog {
	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]api.LlmLog, 0, len(logs))
	for _, l := range logs {
		if term != "" && !matches(term, l.Source, l.Query, l.Response, l.UserID) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func matches(term string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Paginate returns the 1-based page of a filtered collection. Pages past
// the end come back empty.
func Paginate[T any](items []T, page int) []T {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * PageSize
	if start >= len(items) {
		return nil
	}
	end := start + PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// TotalPages returns the number of pages a collection spans, at least 1.
func TotalPages(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + PageSize - 1) / PageSize
}
