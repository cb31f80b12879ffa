package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"logdeck/api"
	"logdeck/cache"
	"logdeck/utils"
	"logdeck/view"
)

// LogsView is the log table: project selector, event/LLM tabs, search
// and level filters, ten-row pages and per-row detail expansion. All
// filtering and paging happens client-side over the full fetched
// collection, mirroring the hosted dashboard.
type LogsView struct {
	app *App

	state *view.LogView

	projects      []api.Project
	projectSelect *widget.Select
	tabSelect     *widget.RadioGroup
	searchEntry   *widget.Entry
	levelSelect   *widget.Select
	pageLabel     *widget.Label
	rows          *fyne.Container

	eventLogs []api.EventLog
	llmLogs   []api.LlmLog
}

// NewLogsView creates the logs view with default state: event tab,
// page 1, nothing expanded.
func NewLogsView(app *App) *LogsView {
	return &LogsView{
		app:   app,
		state: view.NewLogView(),
	}
}

// Build builds the logs tab. The row container and page label exist
// before any selector, because setting a selector's initial value fires
// its callback, which renders.
func (lv *LogsView) Build() fyne.CanvasObject {
	lv.rows = container.NewVBox()
	lv.pageLabel = widget.NewLabel("")

	lv.projectSelect = widget.NewSelect(nil, func(name string) {
		for _, p := range lv.projects {
			if p.Name == name {
				// Switching projects resets the page and clears row
				// expansion; ids from the old project must not leak.
				lv.state.SelectProject(p.ID)
				if err := lv.app.db.SetSetting("last_project", strconv.FormatInt(p.ID, 10)); err != nil {
					lv.app.logger.Warn("Failed to remember project selection: %v", err)
				}
				lv.fetchLogs()
				return
			}
		}
	})
	lv.projectSelect.PlaceHolder = "Select a project"

	lv.tabSelect = widget.NewRadioGroup([]string{"Event Logs", "LLM Logs"}, func(value string) {
		if value == "LLM Logs" {
			lv.state.SelectTab(view.TabLLM)
		} else {
			lv.state.SelectTab(view.TabEvents)
		}
		lv.render()
	})
	lv.tabSelect.Horizontal = true
	lv.tabSelect.SetSelected("Event Logs")

	lv.searchEntry = widget.NewEntry()
	lv.searchEntry.SetPlaceHolder("Search logs...")
	lv.searchEntry.OnChanged = func(term string) {
		lv.state.SetSearch(term)
		lv.render()
	}

	lv.levelSelect = widget.NewSelect(
		[]string{"all", api.LevelInfo, api.LevelWarning, api.LevelError, api.LevelDebug},
		func(level string) {
			if level == "all" {
				level = ""
			}
			lv.state.SetLevel(level)
			lv.render()
		},
	)
	lv.levelSelect.SetSelected("all")

	prevBtn := widget.NewButton("Prev", func() {
		lv.state.SetPage(lv.state.Page()-1, lv.totalPages())
		lv.render()
	})
	nextBtn := widget.NewButton("Next", func() {
		lv.state.SetPage(lv.state.Page()+1, lv.totalPages())
		lv.render()
	})

	refreshBtn := widget.NewButton("Refresh", lv.forceReload)
	refreshBtn.Importance = widget.LowImportance

	exportBtn := widget.NewButton("Export CSV", lv.showExportDialog)

	clearBtn := widget.NewButton("Clear All Logs", func() {
		projectID := lv.state.ProjectID()
		if projectID == 0 {
			lv.app.showError("Select a project first")
			return
		}
		lv.app.confirm("Delete ALL logs of this project? This cannot be undone.", func() {
			lv.clearAllLogs(projectID)
		})
	})
	clearBtn.Importance = widget.DangerImportance

	filters := container.NewBorder(nil, nil,
		container.NewHBox(lv.projectSelect, lv.tabSelect, lv.levelSelect),
		container.NewHBox(refreshBtn, exportBtn, clearBtn),
		lv.searchEntry,
	)

	pager := container.NewHBox(prevBtn, lv.pageLabel, nextBtn)

	return container.NewBorder(
		container.NewVBox(filters, widget.NewSeparator()),
		container.NewCenter(pager),
		nil, nil,
		container.NewVScroll(lv.rows),
	)
}

// Reload refreshes the project list and the selected project's logs.
func (lv *LogsView) Reload() {
	utils.SafeGo(lv.app.logger, "projects fetch", func() {
		projects, err := lv.app.resources.Projects(context.Background())
		fyne.Do(func() {
			if err != nil {
				lv.app.surface(err, lv.Reload)
				return
			}
			lv.projects = projects
			names := make([]string, 0, len(projects))
			for _, p := range projects {
				names = append(names, p.Name)
			}
			lv.projectSelect.Options = names
			lv.projectSelect.Refresh()

			if lv.state.ProjectID() == 0 && len(projects) > 0 {
				lv.projectSelect.SetSelected(lv.initialProject(projects))
				return
			}
			lv.fetchLogs()
		})
	})
}

// initialProject picks the project remembered from the last run when it
// still exists, falling back to the first one.
func (lv *LogsView) initialProject(projects []api.Project) string {
	if last, err := lv.app.db.GetSetting("last_project"); err == nil && last != "" {
		if id, err := strconv.ParseInt(last, 10, 64); err == nil {
			for _, p := range projects {
				if p.ID == id {
					return p.Name
				}
			}
		}
	}
	return projects[0].Name
}

// forceReload drops the cached log views so the next fetch hits the
// server. This is the manual retry path; nothing refreshes on a timer.
func (lv *LogsView) forceReload() {
	lv.app.resources.Refresh(cache.KindEventLogs)
	lv.app.resources.Refresh(cache.KindLlmLogs)
	lv.fetchLogs()
}

// fetchLogs loads both log kinds for the selected project. The fetches
// run independently; each tab renders when its data arrives.
func (lv *LogsView) fetchLogs() {
	projectID := lv.state.ProjectID()
	if projectID == 0 {
		return
	}

	utils.SafeGo(lv.app.logger, "event logs fetch", func() {
		logs, err := lv.app.resources.EventLogs(context.Background(), projectID)
		fyne.Do(func() {
			if err != nil {
				lv.app.surface(err, lv.fetchLogs)
				return
			}
			lv.eventLogs = logs
			lv.render()
		})
	})

	utils.SafeGo(lv.app.logger, "llm logs fetch", func() {
		logs, err := lv.app.resources.LlmLogs(context.Background(), projectID)
		fyne.Do(func() {
			if err != nil {
				lv.app.surface(err, lv.fetchLogs)
				return
			}
			lv.llmLogs = logs
			lv.render()
		})
	})
}

func (lv *LogsView) totalPages() int {
	if lv.state.Tab() == view.TabLLM {
		return view.TotalPages(len(view.FilterLlmLogs(lv.llmLogs, lv.state.Search())))
	}
	return view.TotalPages(len(view.FilterEventLogs(lv.eventLogs, lv.state.Level(), lv.state.Search())))
}

// render redraws the visible page from the already-fetched collections.
func (lv *LogsView) render() {
	lv.rows.Objects = nil

	if lv.state.Tab() == view.TabLLM {
		lv.levelSelect.Hide()
		visible, totalPages := lv.state.VisibleLlmLogs(lv.llmLogs)
		for _, l := range visible {
			lv.rows.Add(lv.llmRow(l))
			lv.rows.Add(widget.NewSeparator())
		}
		if len(visible) == 0 {
			lv.rows.Add(widget.NewLabel("No logs match the current filters"))
		}
		lv.pageLabel.SetText(fmt.Sprintf("Page %d / %d", lv.state.Page(), totalPages))
	} else {
		lv.levelSelect.Show()
		visible, totalPages := lv.state.VisibleEventLogs(lv.eventLogs)
		for _, l := range visible {
			lv.rows.Add(lv.eventRow(l))
			lv.rows.Add(widget.NewSeparator())
		}
		if len(visible) == 0 {
			lv.rows.Add(widget.NewLabel("No logs match the current filters"))
		}
		lv.pageLabel.SetText(fmt.Sprintf("Page %d / %d", lv.state.Page(), totalPages))
	}

	lv.rows.Refresh()
}

// eventRow renders one event log row with its toggleable detail.
func (lv *LogsView) eventRow(l api.EventLog) fyne.CanvasObject {
	summary := widget.NewLabel(fmt.Sprintf("[%s] %s  %s  %s", l.Level, l.Timestamp, l.UserID, l.Message))
	summary.Truncation = fyne.TextTruncateEllipsis

	toggleBtn := widget.NewButton(lv.toggleLabel(l.ID), func() {
		lv.state.ToggleExpanded(l.ID)
		lv.render()
	})
	toggleBtn.Importance = widget.LowImportance

	deleteBtn := widget.NewButton("Delete", func() {
		lv.app.confirm("Delete this log record?", func() {
			lv.deleteEventLog(l.ID)
		})
	})
	deleteBtn.Importance = widget.DangerImportance

	header := container.NewBorder(nil, nil, nil, container.NewHBox(toggleBtn, deleteBtn), summary)

	if !lv.state.Expanded(l.ID) {
		return header
	}

	detail := container.NewAppTabs(
		container.NewTabItem("Message", lv.detailLabel(l.Message)),
		container.NewTabItem("Metadata", lv.detailLabel(formatMetadata(l.Metadata))),
	)
	lv.restoreDetailTab(detail, l.ID)

	return container.NewVBox(header, detail)
}

// llmRow renders one LLM log row; the detail splits query and response.
func (lv *LogsView) llmRow(l api.LlmLog) fyne.CanvasObject {
	summary := widget.NewLabel(fmt.Sprintf("[%s] %s  %s  %s", l.Source, l.Timestamp, l.UserID, l.Query))
	summary.Truncation = fyne.TextTruncateEllipsis

	toggleBtn := widget.NewButton(lv.toggleLabel(l.ID), func() {
		lv.state.ToggleExpanded(l.ID)
		lv.render()
	})
	toggleBtn.Importance = widget.LowImportance

	deleteBtn := widget.NewButton("Delete", func() {
		lv.app.confirm("Delete this log record?", func() {
			lv.deleteLlmLog(l.ID)
		})
	})
	deleteBtn.Importance = widget.DangerImportance

	header := container.NewBorder(nil, nil, nil, container.NewHBox(toggleBtn, deleteBtn), summary)

	if !lv.state.Expanded(l.ID) {
		return header
	}

	detail := container.NewAppTabs(
		container.NewTabItem("Query", lv.detailLabel(l.Query)),
		container.NewTabItem("Response", lv.detailLabel(l.Response)),
		container.NewTabItem("Metadata", lv.detailLabel(formatMetadata(l.Metadata))),
	)
	lv.restoreDetailTab(detail, l.ID)

	return container.NewVBox(header, detail)
}

func (lv *LogsView) toggleLabel(id int64) string {
	if lv.state.Expanded(id) {
		return "Collapse"
	}
	return "Expand"
}

// restoreDetailTab keeps each expanded row's selected detail tab across
// re-renders, independently of other rows.
func (lv *LogsView) restoreDetailTab(tabs *container.AppTabs, id int64) {
	if name := lv.state.DetailTab(id); name != "" {
		for _, item := range tabs.Items {
			if item.Text == name {
				tabs.Select(item)
				break
			}
		}
	}
	tabs.OnSelected = func(item *container.TabItem) {
		lv.state.SetDetailTab(id, item.Text)
	}
}

func (lv *LogsView) detailLabel(text string) fyne.CanvasObject {
	label := widget.NewLabel(text)
	label.Wrapping = fyne.TextWrapWord
	return label
}

func (lv *LogsView) deleteEventLog(id int64) {
	utils.SafeGo(lv.app.logger, "event log delete", func() {
		err := lv.app.resources.DeleteEventLog(context.Background(), id)
		fyne.Do(func() {
			if err != nil {
				lv.app.surface(err, nil)
				return
			}
			lv.fetchLogs()
		})
	})
}

func (lv *LogsView) deleteLlmLog(id int64) {
	utils.SafeGo(lv.app.logger, "llm log delete", func() {
		err := lv.app.resources.DeleteLlmLog(context.Background(), id)
		fyne.Do(func() {
			if err != nil {
				lv.app.surface(err, nil)
				return
			}
			lv.fetchLogs()
		})
	})
}

func (lv *LogsView) clearAllLogs(projectID int64) {
	utils.SafeGo(lv.app.logger, "clear all logs", func() {
		err := lv.app.resources.DeleteAllLogs(context.Background(), projectID)
		fyne.Do(func() {
			if err != nil {
				lv.app.surface(err, nil)
				return
			}
			lv.fetchLogs()
		})
	})
}

// showExportDialog picks the export kind, then downloads the CSV off
// the UI thread and saves it without leaving the current view.
func (lv *LogsView) showExportDialog() {
	projectID := lv.state.ProjectID()
	if projectID == 0 {
		lv.app.showError("Select a project first")
		return
	}

	kindSelect := widget.NewSelect([]string{"Event logs", "LLM logs", "All logs"}, nil)
	kindSelect.SetSelected("Event logs")
	if lv.state.Tab() == view.TabLLM {
		kindSelect.SetSelected("LLM logs")
	}

	var popup *widget.PopUp
	popup = widget.NewModalPopUp(
		container.NewVBox(
			widget.NewLabel("Export CSV"),
			kindSelect,
			container.NewHBox(
				widget.NewButton("Cancel", func() {
					popup.Hide()
				}),
				widget.NewButton("Download", func() {
					kind := kindSelect.Selected
					popup.Hide()
					lv.downloadCSV(projectID, kind)
				}),
			),
		),
		lv.app.window.Canvas(),
	)
	popup.Show()
}

func (lv *LogsView) downloadCSV(projectID int64, kind string) {
	utils.SafeGo(lv.app.logger, "csv export", func() {
		var data []byte
		var suggested, name string
		var err error

		ctx := context.Background()
		switch kind {
		case "LLM logs":
			name = "llm-logs"
			data, suggested, err = lv.app.client.DownloadLlmLogsCSV(ctx, projectID)
		case "All logs":
			name = "all-logs"
			data, suggested, err = lv.app.client.DownloadAllLogsCSV(ctx, projectID)
		default:
			name = "event-logs"
			data, suggested, err = lv.app.client.DownloadEventLogsCSV(ctx, projectID)
		}

		fyne.Do(func() {
			if err != nil {
				lv.app.surface(err, func() { lv.downloadCSV(projectID, kind) })
				return
			}
			path, err := utils.SaveDownload(lv.app.config.Data.DownloadDir, suggested, name, data)
			if err != nil {
				lv.app.showError(err.Error())
				return
			}
			lv.app.showInfo("Export complete", fmt.Sprintf("Saved %d bytes to %s", len(data), path))
		})
	})
}

func formatMetadata(metadata map[string]interface{}) string {
	if len(metadata) == 0 {
		return "No metadata"
	}
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return "No metadata"
	}
	return string(data)
}
