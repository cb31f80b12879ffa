package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// MainView is the authenticated frame: header with the signed-in user
// and logout, and the dashboard tabs.
type MainView struct {
	app *App

	projectsView  *ProjectsView
	logsView      *LogsView
	analyticsView *AnalyticsView
	keysView      *APIKeysView
	settingsView  *SettingsView
}

// NewMainView creates the authenticated dashboard.
func NewMainView(app *App) *MainView {
	return &MainView{
		app:           app,
		projectsView:  NewProjectsView(app),
		logsView:      NewLogsView(app),
		analyticsView: NewAnalyticsView(app),
		keysView:      NewAPIKeysView(app),
		settingsView:  NewSettingsView(app),
	}
}

// Build builds the dashboard frame.
func (mv *MainView) Build() fyne.CanvasObject {
	user := mv.app.store.User()
	who := ""
	if user != nil {
		who = fmt.Sprintf("Signed in as %s", user.Username)
	}
	whoLabel := widget.NewLabel(who)

	logoutBtn := widget.NewButton("Log Out", func() {
		mv.app.logout()
	})
	logoutBtn.Importance = widget.LowImportance

	header := container.NewBorder(nil, nil, whoLabel, logoutBtn)

	tabs := container.NewAppTabs(
		container.NewTabItem("Projects", mv.projectsView.Build()),
		container.NewTabItem("Logs", mv.logsView.Build()),
		container.NewTabItem("Analytics", mv.analyticsView.Build()),
		container.NewTabItem("API Keys", mv.keysView.Build()),
		container.NewTabItem("Settings", mv.settingsView.Build()),
	)
	tabs.OnSelected = func(item *container.TabItem) {
		// Lists refresh lazily when their tab is opened.
		switch item.Text {
		case "Projects":
			mv.projectsView.Reload()
		case "Logs":
			mv.logsView.Reload()
		case "Analytics":
			mv.analyticsView.Reload()
		case "API Keys":
			mv.keysView.Reload()
		case "Settings":
			mv.settingsView.Reload()
		}
	}

	mv.projectsView.Reload()

	return container.NewBorder(
		container.NewVBox(header, widget.NewSeparator()),
		nil, nil, nil,
		tabs,
	)
}
