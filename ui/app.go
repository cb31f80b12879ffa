// Package ui is the desktop frontend: a Fyne dashboard over the shared
// session store, auth controller and resource cache.
package ui

import (
	"context"
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"logdeck/api"
	"logdeck/auth"
	"logdeck/cache"
	"logdeck/db"
	"logdeck/session"
	"logdeck/utils"
)

// App represents the main application
type App struct {
	fyneApp fyne.App
	window  fyne.Window

	config    *utils.Config
	logger    *utils.Logger
	db        *db.DB
	store     *session.Store
	client    *api.Client
	authCtrl  *auth.Controller
	resources *cache.Resources

	// content is swapped by the route guard between the loading splash,
	// the login view and the dashboard.
	content *fyne.Container

	// banner shows dismissible network failure messages with a manual
	// retry affordance.
	banner      *fyne.Container
	bannerLabel *widget.Label
	bannerRetry func()

	loginView *LoginView
	mainView  *MainView
}

// NewApp creates the application window and starts session
// reconciliation. The window shows a loading indicator until the
// persisted session has been checked; only then does the route guard
// decide between login and dashboard.
func NewApp(config *utils.Config, logger *utils.Logger, database *db.DB, store *session.Store,
	client *api.Client, authCtrl *auth.Controller, resources *cache.Resources) *App {

	fyneApp := app.NewWithID("logdeck")
	window := fyneApp.NewWindow("LogDeck")
	window.Resize(fyne.NewSize(
		float32(config.UI.WindowWidth),
		float32(config.UI.WindowHeight),
	))

	application := &App{
		fyneApp:   fyneApp,
		window:    window,
		config:    config,
		logger:    logger,
		db:        database,
		store:     store,
		client:    client,
		authCtrl:  authCtrl,
		resources: resources,
	}

	application.applyThemeFromConfig()
	application.buildUI()

	// Re-evaluate the route whenever the session changes: logout from
	// any view redirects on the next render.
	store.Subscribe(func() {
		fyne.Do(application.refreshRoute)
	})

	// Reconcile the persisted session off the UI thread, then route.
	utils.SafeGo(logger, "session boot", func() {
		if err := authCtrl.LoadSessionOnBoot(context.Background()); err != nil {
			logger.Warn("Session reconciliation failed: %v", err)
		}
		fyne.Do(application.refreshRoute)
	})

	return application
}

// buildUI assembles the banner-over-content frame and shows the splash.
func (a *App) buildUI() {
	a.bannerLabel = widget.NewLabel("")
	a.bannerLabel.Wrapping = fyne.TextWrapWord

	retryBtn := widget.NewButton("Retry", func() {
		retry := a.bannerRetry
		a.hideBanner()
		if retry != nil {
			retry()
		}
	})
	dismissBtn := widget.NewButtonWithIcon("", theme.CancelIcon(), func() {
		a.hideBanner()
	})

	a.banner = container.NewBorder(nil, nil, nil,
		container.NewHBox(retryBtn, dismissBtn),
		a.bannerLabel,
	)
	a.banner.Hide()

	a.content = container.NewStack(a.loadingView())

	a.window.SetContent(container.NewBorder(a.banner, nil, nil, nil, a.content))
}

// refreshRoute is the route guard: loading until boot reconciliation
// completes, then login or dashboard depending on the session.
func (a *App) refreshRoute() {
	switch {
	case !a.authCtrl.BootDone():
		a.setContent(a.loadingView())
	case a.store.Authenticated():
		if a.mainView == nil {
			a.mainView = NewMainView(a)
		}
		a.setContent(a.mainView.Build())
	default:
		a.mainView = nil
		if a.loginView == nil {
			a.loginView = NewLoginView(a)
		}
		a.setContent(a.loginView.Build())
	}
}

func (a *App) setContent(obj fyne.CanvasObject) {
	a.content.Objects = []fyne.CanvasObject{obj}
	a.content.Refresh()
}

func (a *App) loadingView() fyne.CanvasObject {
	bar := widget.NewProgressBarInfinite()
	label := widget.NewLabel("Restoring session...")
	label.Alignment = fyne.TextAlignCenter
	return container.NewCenter(container.NewVBox(label, bar))
}

// logout clears the session and empties the resource cache so the next
// account never sees stale data. The store notification redirects.
func (a *App) logout() {
	a.authCtrl.Logout()
	a.resources.InvalidateAll()
}

// showNetworkError raises the banner for a request that never completed.
// The retry callback re-runs the failed fetch; nothing retries
// automatically.
func (a *App) showNetworkError(message string, retry func()) {
	a.bannerLabel.SetText(message)
	a.bannerRetry = retry
	a.banner.Show()
	a.banner.Refresh()
}

func (a *App) hideBanner() {
	a.bannerRetry = nil
	a.banner.Hide()
}

// showError shows a modal error dialog for form-level failures.
func (a *App) showError(message string) {
	var popup *widget.PopUp
	msgLabel := widget.NewLabel(message)
	msgLabel.Wrapping = fyne.TextWrapWord
	popup = widget.NewModalPopUp(
		container.NewVBox(
			widget.NewLabel("Error"),
			msgLabel,
			widget.NewButton("OK", func() {
				popup.Hide()
			}),
		),
		a.window.Canvas(),
	)
	popup.Show()
}

// showInfo shows a modal info dialog.
func (a *App) showInfo(title, message string) {
	var popup *widget.PopUp
	msgLabel := widget.NewLabel(message)
	msgLabel.Wrapping = fyne.TextWrapWord
	popup = widget.NewModalPopUp(
		container.NewVBox(
			widget.NewLabel(title),
			msgLabel,
			widget.NewButton("OK", func() {
				popup.Hide()
			}),
		),
		a.window.Canvas(),
	)
	popup.Show()
}

// confirm asks for explicit confirmation before a destructive mutation.
func (a *App) confirm(message string, onConfirm func()) {
	var popup *widget.PopUp
	popup = widget.NewModalPopUp(
		container.NewVBox(
			widget.NewLabel(message),
			container.NewHBox(
				widget.NewButton("Cancel", func() {
					popup.Hide()
				}),
				widget.NewButton("Confirm", func() {
					popup.Hide()
					onConfirm()
				}),
			),
		),
		a.window.Canvas(),
	)
	popup.Show()
}

// surface routes an API error to the right affordance: network failures
// get the retry banner, unauthorized clears the session, everything else
// is a dialog.
func (a *App) surface(err error, retry func()) {
	if err == nil {
		return
	}
	var netErr *api.NetworkError
	if errors.As(err, &netErr) {
		a.showNetworkError("Could not reach the API: "+netErr.Err.Error(), retry)
		return
	}
	if errors.Is(err, api.ErrUnauthorized) {
		a.authCtrl.HandleUnauthorized()
		return
	}
	a.showError(err.Error())
}

// applyThemeFromConfig applies the configured theme variant.
func (a *App) applyThemeFromConfig() {
	switch a.config.UI.Theme {
	case "dark":
		a.fyneApp.Settings().SetTheme(theme.DarkTheme())
	case "light":
		a.fyneApp.Settings().SetTheme(theme.LightTheme())
	}
}

// Run shows the window and enters the event loop.
func (a *App) Run() {
	a.window.SetOnClosed(func() {
		size := a.window.Canvas().Size()
		a.config.UI.WindowWidth = int(size.Width)
		a.config.UI.WindowHeight = int(size.Height)
		if err := utils.SaveConfig(utils.GetConfigPath(), a.config); err != nil {
			a.logger.Error("Failed to save window size: %v", err)
		}
	})
	a.window.ShowAndRun()
}
