package ui

import (
	"context"
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"logdeck/api"
	"logdeck/cache"
	"logdeck/utils"
)

// AnalyticsView shows per-project aggregates: monthly log volume as a
// bar chart, LLM source breakdown and severity breakdown, plus CSV
// exports of each data type.
type AnalyticsView struct {
	app *App

	projects      []api.Project
	projectID     int64
	projectSelect *widget.Select
	content       *fyne.Container
}

func NewAnalyticsView(app *App) *AnalyticsView {
	return &AnalyticsView{app: app}
}

// Build builds the analytics tab.
func (av *AnalyticsView) Build() fyne.CanvasObject {
	av.projectSelect = widget.NewSelect(nil, func(name string) {
		for _, p := range av.projects {
			if p.Name == name {
				av.projectID = p.ID
				av.fetchSnapshot()
				return
			}
		}
	})
	av.projectSelect.PlaceHolder = "Select a project"

	refreshBtn := widget.NewButton("Refresh", func() {
		av.app.resources.Refresh(cache.KindAnalytics)
		av.fetchSnapshot()
	})
	refreshBtn.Importance = widget.LowImportance

	exportMonthly := widget.NewButton("Monthly CSV", func() { av.downloadCSV("monthly_logs") })
	exportSources := widget.NewButton("Sources CSV", func() { av.downloadCSV("llm_sources") })
	exportLevels := widget.NewButton("Levels CSV", func() { av.downloadCSV("log_levels") })

	header := container.NewBorder(nil, nil,
		av.projectSelect,
		container.NewHBox(refreshBtn, exportMonthly, exportSources, exportLevels),
	)

	av.content = container.NewVBox(widget.NewLabel("Select a project to see its analytics"))

	return container.NewBorder(
		container.NewVBox(header, widget.NewSeparator()),
		nil, nil, nil,
		container.NewVScroll(av.content),
	)
}

// Reload refreshes the project list and the selected project's snapshot.
func (av *AnalyticsView) Reload() {
	utils.SafeGo(av.app.logger, "projects fetch", func() {
		projects, err := av.app.resources.Projects(context.Background())
		fyne.Do(func() {
			if err != nil {
				av.app.surface(err, av.Reload)
				return
			}
			av.projects = projects
			names := make([]string, 0, len(projects))
			for _, p := range projects {
				names = append(names, p.Name)
			}
			av.projectSelect.Options = names
			av.projectSelect.Refresh()

			if av.projectID == 0 && len(projects) > 0 {
				av.projectSelect.SetSelected(projects[0].Name)
				return
			}
			av.fetchSnapshot()
		})
	})
}

func (av *AnalyticsView) fetchSnapshot() {
	projectID := av.projectID
	if projectID == 0 {
		return
	}

	utils.SafeGo(av.app.logger, "analytics fetch", func() {
		snap, err := av.app.resources.Analytics(context.Background(), projectID)
		fyne.Do(func() {
			if err != nil {
				av.app.surface(err, av.fetchSnapshot)
				return
			}
			av.render(snap)
		})
	})
}

func (av *AnalyticsView) render(snap *api.AnalyticsSnapshot) {
	av.content.Objects = nil

	monthlyTitle := widget.NewLabel("Monthly Log Volume")
	monthlyTitle.TextStyle = fyne.TextStyle{Bold: true}
	av.content.Add(monthlyTitle)
	av.content.Add(av.monthlyChart(snap.MonthlyLogs))
	av.content.Add(widget.NewSeparator())

	sourcesTitle := widget.NewLabel("LLM Sources")
	sourcesTitle.TextStyle = fyne.TextStyle{Bold: true}
	av.content.Add(sourcesTitle)
	if len(snap.LlmSources) == 0 {
		av.content.Add(widget.NewLabel("No data available"))
	}
	for _, s := range snap.LlmSources {
		av.content.Add(widget.NewLabel(fmt.Sprintf("%s: %d", s.Name, s.Value)))
	}
	av.content.Add(widget.NewSeparator())

	levelsTitle := widget.NewLabel("Log Levels")
	levelsTitle.TextStyle = fyne.TextStyle{Bold: true}
	av.content.Add(levelsTitle)
	if len(snap.LogLevels) == 0 {
		av.content.Add(widget.NewLabel("No data available"))
	}
	for _, l := range snap.LogLevels {
		av.content.Add(widget.NewLabel(fmt.Sprintf("%s: %d", l.Level, l.Count)))
	}

	av.content.Refresh()
}

// monthlyChart draws side-by-side event and LLM bars per month.
func (av *AnalyticsView) monthlyChart(months []api.MonthlyLogCount) fyne.CanvasObject {
	if len(months) == 0 {
		return widget.NewLabel("No data available")
	}

	maxCount := int64(1)
	for _, m := range months {
		if m.EventCount > maxCount {
			maxCount = m.EventCount
		}
		if m.LlmCount > maxCount {
			maxCount = m.LlmCount
		}
	}

	chartHeight := float32(180)
	barWidth := float32(24)
	groupSpacing := float32(20)
	groupWidth := barWidth*2 + groupSpacing

	bars := container.NewWithoutLayout()

	for i, m := range months {
		x := float32(i) * groupWidth

		eventHeight := float32(m.EventCount) / float32(maxCount) * chartHeight
		if eventHeight < 1 {
			eventHeight = 1
		}
		eventBar := canvas.NewRectangle(color.RGBA{R: 100, G: 150, B: 255, A: 255})
		eventBar.Resize(fyne.NewSize(barWidth, eventHeight))
		eventBar.Move(fyne.NewPos(x, chartHeight-eventHeight))
		bars.Add(eventBar)

		llmHeight := float32(m.LlmCount) / float32(maxCount) * chartHeight
		if llmHeight < 1 {
			llmHeight = 1
		}
		llmBar := canvas.NewRectangle(color.RGBA{R: 255, G: 170, B: 80, A: 255})
		llmBar.Resize(fyne.NewSize(barWidth, llmHeight))
		llmBar.Move(fyne.NewPos(x+barWidth, chartHeight-llmHeight))
		bars.Add(llmBar)

		monthLabel := widget.NewLabel(m.Month)
		monthLabel.Resize(fyne.NewSize(groupWidth, 20))
		monthLabel.Move(fyne.NewPos(x, chartHeight+5))
		bars.Add(monthLabel)

		countLabel := widget.NewLabel(fmt.Sprintf("%d/%d", m.EventCount, m.LlmCount))
		countLabel.Resize(fyne.NewSize(groupWidth, 20))
		countLabel.Move(fyne.NewPos(x, chartHeight-maxHeight(eventHeight, llmHeight)-20))
		bars.Add(countLabel)
	}

	totalWidth := float32(len(months))*groupWidth + groupSpacing
	bars.Resize(fyne.NewSize(totalWidth, chartHeight+30))

	legend := widget.NewLabel("blue: event logs    orange: llm logs")

	return container.NewVBox(container.NewHScroll(bars), legend)
}

func maxHeight(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func (av *AnalyticsView) downloadCSV(dataType string) {
	utils.SafeGo(av.app.logger, "analytics export", func() {
		data, suggested, err := av.app.client.DownloadAnalyticsCSV(context.Background(), dataType)
		fyne.Do(func() {
			if err != nil {
				av.app.surface(err, func() { av.downloadCSV(dataType) })
				return
			}
			path, err := utils.SaveDownload(av.app.config.Data.DownloadDir, suggested, dataType, data)
			if err != nil {
				av.app.showError(err.Error())
				return
			}
			av.app.showInfo("Export complete", fmt.Sprintf("Saved %d bytes to %s", len(data), path))
		})
	})
}
