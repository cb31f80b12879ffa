package ui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"logdeck/api"
	"logdeck/cache"
	"logdeck/utils"
)

// ProjectsView shows the account overview and the project list with
// create, edit and delete actions.
type ProjectsView struct {
	app *App

	statsLabel    *widget.Label
	listContainer *fyne.Container
}

// NewProjectsView creates the projects view.
func NewProjectsView(app *App) *ProjectsView {
	return &ProjectsView{app: app}
}

// Build builds the projects tab.
func (pv *ProjectsView) Build() fyne.CanvasObject {
	pv.statsLabel = widget.NewLabel("Loading stats...")
	pv.statsLabel.Wrapping = fyne.TextWrapWord

	pv.listContainer = container.NewVBox()

	newBtn := widget.NewButton("New Project", pv.showCreateDialog)
	refreshBtn := widget.NewButton("Refresh", pv.forceReload)
	refreshBtn.Importance = widget.LowImportance

	header := container.NewBorder(nil, nil,
		pv.statsLabel,
		container.NewHBox(refreshBtn, newBtn),
	)

	return container.NewBorder(
		container.NewVBox(header, widget.NewSeparator()),
		nil, nil, nil,
		container.NewVScroll(pv.listContainer),
	)
}

// Reload fetches stats and projects through the cache. The two fetches
// run independently and render as each resolves.
func (pv *ProjectsView) Reload() {
	utils.SafeGo(pv.app.logger, "user stats fetch", func() {
		stats, err := pv.app.resources.UserStats(context.Background())
		fyne.Do(func() {
			if err != nil {
				pv.statsLabel.SetText("Stats unavailable")
				return
			}
			pv.statsLabel.SetText(fmt.Sprintf(
				"%d projects | %d event logs | %d LLM logs | %d API keys",
				stats.ProjectCount, stats.EventLogCount, stats.LlmLogCount, stats.APIKeyCount))
		})
	})

	utils.SafeGo(pv.app.logger, "projects fetch", func() {
		projects, err := pv.app.resources.Projects(context.Background())
		fyne.Do(func() {
			if err != nil {
				pv.app.surface(err, pv.Reload)
				return
			}
			pv.renderList(projects)
		})
	})
}

// forceReload drops the cached views first so Reload hits the server.
func (pv *ProjectsView) forceReload() {
	pv.app.resources.Refresh(cache.KindProjects)
	pv.app.resources.Refresh(cache.KindUserStats)
	pv.Reload()
}

func (pv *ProjectsView) renderList(projects []api.Project) {
	pv.listContainer.Objects = nil

	if len(projects) == 0 {
		pv.listContainer.Add(widget.NewLabel("No projects yet. Create one to start collecting logs."))
		pv.listContainer.Refresh()
		return
	}

	for _, project := range projects {
		p := project

		nameLabel := widget.NewLabel(p.Name)
		nameLabel.TextStyle = fyne.TextStyle{Bold: true}

		status := "active"
		if !p.IsActive {
			status = "inactive"
		}
		count := p.LogCount
		if count == 0 {
			count = p.EventLogCount + p.LlmLogCount
		}
		detailsLabel := widget.NewLabel(fmt.Sprintf(
			"   %s | %s | %d logs | created %s", p.ProjectType, status, count, p.CreatedAt))

		editBtn := widget.NewButton("Edit", func() {
			pv.showEditDialog(p)
		})
		editBtn.Importance = widget.LowImportance

		deleteBtn := widget.NewButton("Delete", func() {
			pv.app.confirm(
				fmt.Sprintf("Delete project %q and all of its logs?", p.Name),
				func() { pv.deleteProject(p.ID) },
			)
		})
		deleteBtn.Importance = widget.DangerImportance

		row := container.NewBorder(nil, nil, nil,
			container.NewHBox(editBtn, deleteBtn),
			container.NewVBox(nameLabel, detailsLabel),
		)

		pv.listContainer.Add(row)
		pv.listContainer.Add(widget.NewSeparator())
	}

	pv.listContainer.Refresh()
}

func (pv *ProjectsView) showCreateDialog() {
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("Project name")

	descEntry := widget.NewEntry()
	descEntry.SetPlaceHolder("Description (optional)")

	typeSelect := widget.NewSelect([]string{api.ProjectTypeActivity, api.ProjectTypeLLM}, nil)
	typeSelect.SetSelected(api.ProjectTypeActivity)

	var popup *widget.PopUp
	popup = widget.NewModalPopUp(
		container.NewVBox(
			widget.NewLabel("New Project"),
			nameEntry,
			descEntry,
			typeSelect,
			container.NewHBox(
				widget.NewButton("Cancel", func() {
					popup.Hide()
				}),
				widget.NewButton("Create", func() {
					name := nameEntry.Text
					if name == "" {
						pv.app.showError("Project name is required")
						return
					}
					popup.Hide()
					pv.createProject(api.CreateProjectRequest{
						Name:        name,
						Description: descEntry.Text,
						ProjectType: typeSelect.Selected,
					})
				}),
			),
		),
		pv.app.window.Canvas(),
	)
	popup.Show()
}

func (pv *ProjectsView) createProject(req api.CreateProjectRequest) {
	utils.SafeGo(pv.app.logger, "project create", func() {
		_, err := pv.app.resources.CreateProject(context.Background(), req)
		fyne.Do(func() {
			if err != nil {
				pv.app.surface(err, nil)
				return
			}
			// Success invalidated the cache; re-render from the server.
			pv.Reload()
		})
	})
}

func (pv *ProjectsView) showEditDialog(p api.Project) {
	nameEntry := widget.NewEntry()
	nameEntry.SetText(p.Name)

	descEntry := widget.NewEntry()
	descEntry.SetText(p.Description)

	activeCheck := widget.NewCheck("Active", nil)
	activeCheck.SetChecked(p.IsActive)

	var popup *widget.PopUp
	popup = widget.NewModalPopUp(
		container.NewVBox(
			widget.NewLabel(fmt.Sprintf("Edit %s", p.Name)),
			nameEntry,
			descEntry,
			activeCheck,
			container.NewHBox(
				widget.NewButton("Cancel", func() {
					popup.Hide()
				}),
				widget.NewButton("Save", func() {
					popup.Hide()
					name := nameEntry.Text
					desc := descEntry.Text
					active := activeCheck.Checked
					pv.updateProject(p.ID, api.UpdateProjectRequest{
						Name:        &name,
						Description: &desc,
						IsActive:    &active,
					})
				}),
			),
		),
		pv.app.window.Canvas(),
	)
	popup.Show()
}

func (pv *ProjectsView) updateProject(id int64, req api.UpdateProjectRequest) {
	utils.SafeGo(pv.app.logger, "project update", func() {
		_, err := pv.app.resources.UpdateProject(context.Background(), id, req)
		fyne.Do(func() {
			if err != nil {
				pv.app.surface(err, nil)
				return
			}
			pv.Reload()
		})
	})
}

func (pv *ProjectsView) deleteProject(id int64) {
	utils.SafeGo(pv.app.logger, "project delete", func() {
		err := pv.app.resources.DeleteProject(context.Background(), id)
		fyne.Do(func() {
			if err != nil {
				// A failed delete leaves the cache untouched; the
				// project stays visible.
				pv.app.surface(err, nil)
				return
			}
			pv.app.resources.Refresh(cache.KindUserStats)
			pv.Reload()
		})
	})
}
