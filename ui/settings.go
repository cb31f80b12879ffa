package ui

import (
	"context"
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"logdeck/api"
	"logdeck/utils"
)

// SettingsView covers the account profile, email notification
// preferences and the local appearance settings.
type SettingsView struct {
	app *App

	usernameEntry *widget.Entry
	emailEntry    *widget.Entry
	profileStatus *widget.Label

	prefs         *api.NotificationPreferences
	notifyEmail   *widget.Entry
	notifyEnabled *widget.Check
	notifyError   *widget.Check
	notifyWarning *widget.Check
	notifyStatus  *widget.Label
}

func NewSettingsView(app *App) *SettingsView {
	return &SettingsView{app: app}
}

// Build builds the settings tab.
func (sv *SettingsView) Build() fyne.CanvasObject {
	profileTitle := widget.NewLabel("Profile")
	profileTitle.TextStyle = fyne.TextStyle{Bold: true}

	sv.usernameEntry = widget.NewEntry()
	sv.emailEntry = widget.NewEntry()
	sv.profileStatus = widget.NewLabel("")
	sv.profileStatus.Hide()

	saveProfileBtn := widget.NewButton("Save Profile", sv.saveProfile)
	saveProfileBtn.Importance = widget.HighImportance

	profileForm := widget.NewForm(
		widget.NewFormItem("Username", sv.usernameEntry),
		widget.NewFormItem("Email", sv.emailEntry),
	)

	notifyTitle := widget.NewLabel("Email Notifications")
	notifyTitle.TextStyle = fyne.TextStyle{Bold: true}

	sv.notifyEmail = widget.NewEntry()
	sv.notifyEnabled = widget.NewCheck("Enable email notifications", nil)
	sv.notifyError = widget.NewCheck("Notify on error logs", nil)
	sv.notifyWarning = widget.NewCheck("Notify on warning logs", nil)
	sv.notifyStatus = widget.NewLabel("")
	sv.notifyStatus.Hide()

	savePrefsBtn := widget.NewButton("Save Notification Settings", sv.savePrefs)

	appearanceTitle := widget.NewLabel("Appearance")
	appearanceTitle.TextStyle = fyne.TextStyle{Bold: true}

	themeSelect := widget.NewSelect([]string{"light", "dark"}, func(theme string) {
		if theme == sv.app.config.UI.Theme {
			return
		}
		sv.app.config.UI.Theme = theme
		sv.app.applyThemeFromConfig()
		if err := utils.SaveConfig(utils.GetConfigPath(), sv.app.config); err != nil {
			sv.app.logger.Warn("Failed to save config: %v", err)
		}
	})
	themeSelect.SetSelected(sv.app.config.UI.Theme)

	return container.NewVScroll(container.NewVBox(
		profileTitle,
		profileForm,
		sv.profileStatus,
		saveProfileBtn,
		widget.NewSeparator(),
		notifyTitle,
		sv.notifyEmail,
		sv.notifyEnabled,
		sv.notifyError,
		sv.notifyWarning,
		sv.notifyStatus,
		savePrefsBtn,
		widget.NewSeparator(),
		appearanceTitle,
		themeSelect,
	))
}

// Reload refills the profile form from the session and re-fetches the
// notification preferences.
func (sv *SettingsView) Reload() {
	if user := sv.app.store.User(); user != nil {
		sv.usernameEntry.SetText(user.Username)
		sv.emailEntry.SetText(user.Email)
	}
	sv.profileStatus.Hide()
	sv.notifyStatus.Hide()

	utils.SafeGo(sv.app.logger, "notification prefs fetch", func() {
		prefs, err := sv.app.resources.NotificationPrefs(context.Background())
		fyne.Do(func() {
			if err != nil {
				sv.app.surface(err, sv.Reload)
				return
			}
			sv.prefs = prefs
			sv.notifyEmail.SetText(prefs.Email)
			sv.notifyEnabled.SetChecked(prefs.Enabled)
			sv.notifyError.SetChecked(prefs.NotifyOnError)
			sv.notifyWarning.SetChecked(prefs.NotifyOnWarning)
		})
	})
}

func (sv *SettingsView) saveProfile() {
	username := sv.usernameEntry.Text
	email := sv.emailEntry.Text

	utils.SafeGo(sv.app.logger, "profile update", func() {
		updated, err := sv.app.client.UpdateProfile(context.Background(), username, email)
		fyne.Do(func() {
			if err != nil {
				var verr *api.ValidationError
				if errors.As(err, &verr) {
					sv.profileStatus.SetText(verr.Display())
					sv.profileStatus.Show()
					return
				}
				sv.app.surface(err, nil)
				return
			}
			// Re-store the session so the header picks up the new name.
			access, refresh := sv.app.store.Tokens()
			if err := sv.app.store.SetAuth(updated, access, refresh); err != nil {
				sv.app.logger.Warn("Failed to update stored profile: %v", err)
			}
			sv.profileStatus.SetText("Profile updated")
			sv.profileStatus.Show()
		})
	})
}

func (sv *SettingsView) savePrefs() {
	if sv.prefs == nil {
		return
	}
	// Preferences are replaced in full, never patched.
	next := api.NotificationPreferences{
		ID:              sv.prefs.ID,
		Email:           sv.notifyEmail.Text,
		Enabled:         sv.notifyEnabled.Checked,
		NotifyOnError:   sv.notifyError.Checked,
		NotifyOnWarning: sv.notifyWarning.Checked,
	}

	utils.SafeGo(sv.app.logger, "notification prefs update", func() {
		updated, err := sv.app.resources.UpdateNotificationPrefs(context.Background(), next)
		fyne.Do(func() {
			if err != nil {
				var verr *api.ValidationError
				if errors.As(err, &verr) {
					sv.notifyStatus.SetText(verr.Display())
					sv.notifyStatus.Show()
					return
				}
				sv.app.surface(err, nil)
				return
			}
			sv.prefs = updated
			sv.notifyStatus.SetText("Notification settings saved")
			sv.notifyStatus.Show()
		})
	})
}
