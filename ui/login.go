package ui

import (
	"context"
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"logdeck/api"
	"logdeck/auth"
	"logdeck/utils"
)

// LoginView is the anonymous entry point: password login, registration
// and the Google OAuth handshake.
type LoginView struct {
	app *App

	usernameEntry *widget.Entry
	passwordEntry *widget.Entry
	errorLabel    *widget.Label
	loginBtn      *widget.Button

	// register form
	regUsername *widget.Entry
	regEmail    *widget.Entry
	regPassword *widget.Entry
	regConfirm  *widget.Entry
	regError    *widget.Label
}

// NewLoginView creates the login view.
func NewLoginView(app *App) *LoginView {
	return &LoginView{app: app}
}

// Build builds the login/register tabs.
func (lv *LoginView) Build() fyne.CanvasObject {
	tabs := container.NewAppTabs(
		container.NewTabItem("Sign In", lv.buildLoginTab()),
		container.NewTabItem("Create Account", lv.buildRegisterTab()),
	)

	title := widget.NewLabel("LogDeck")
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.Alignment = fyne.TextAlignCenter

	return container.NewCenter(container.NewVBox(title, tabs))
}

func (lv *LoginView) buildLoginTab() fyne.CanvasObject {
	lv.usernameEntry = widget.NewEntry()
	lv.usernameEntry.SetPlaceHolder("Username")

	lv.passwordEntry = widget.NewPasswordEntry()
	lv.passwordEntry.SetPlaceHolder("Password")

	lv.errorLabel = widget.NewLabel("")
	lv.errorLabel.Wrapping = fyne.TextWrapWord
	lv.errorLabel.Hide()

	lv.loginBtn = widget.NewButton("Sign In", lv.submitLogin)
	lv.passwordEntry.OnSubmitted = func(string) { lv.submitLogin() }

	googleBtn := widget.NewButton("Sign in with Google", lv.startGoogleLogin)
	googleBtn.Importance = widget.LowImportance

	return container.NewVBox(
		lv.usernameEntry,
		lv.passwordEntry,
		lv.errorLabel,
		lv.loginBtn,
		widget.NewSeparator(),
		googleBtn,
	)
}

func (lv *LoginView) buildRegisterTab() fyne.CanvasObject {
	lv.regUsername = widget.NewEntry()
	lv.regUsername.SetPlaceHolder("Username")

	lv.regEmail = widget.NewEntry()
	lv.regEmail.SetPlaceHolder("Email")

	lv.regPassword = widget.NewPasswordEntry()
	lv.regPassword.SetPlaceHolder("Password")

	lv.regConfirm = widget.NewPasswordEntry()
	lv.regConfirm.SetPlaceHolder("Confirm password")

	lv.regError = widget.NewLabel("")
	lv.regError.Wrapping = fyne.TextWrapWord
	lv.regError.Hide()

	registerBtn := widget.NewButton("Create Account", lv.submitRegister)

	return container.NewVBox(
		lv.regUsername,
		lv.regEmail,
		lv.regPassword,
		lv.regConfirm,
		lv.regError,
		registerBtn,
	)
}

// submitLogin runs the login exchange off the UI thread. The server's
// rejection message is shown verbatim; there is no redirect on failure.
func (lv *LoginView) submitLogin() {
	username := lv.usernameEntry.Text
	password := lv.passwordEntry.Text

	lv.errorLabel.Hide()
	lv.loginBtn.Disable()

	utils.SafeGo(lv.app.logger, "login", func() {
		err := lv.app.authCtrl.Login(context.Background(), username, password)
		fyne.Do(func() {
			lv.loginBtn.Enable()
			if err == nil {
				// The session store notification routes to the dashboard.
				return
			}
			var credErr *api.CredentialsError
			if errors.As(err, &credErr) {
				lv.showLoginError(credErr.Error())
				return
			}
			var netErr *api.NetworkError
			if errors.As(err, &netErr) {
				lv.app.showNetworkError("Could not reach the API: "+netErr.Err.Error(), lv.submitLogin)
				return
			}
			lv.showLoginError("Login failed. Please try again.")
		})
	})
}

func (lv *LoginView) showLoginError(message string) {
	lv.errorLabel.SetText(message)
	lv.errorLabel.Show()
}

// submitRegister checks the confirmation locally before any network
// call, then aggregates server field errors into one display string.
func (lv *LoginView) submitRegister() {
	username := lv.regUsername.Text
	email := lv.regEmail.Text
	password := lv.regPassword.Text
	confirm := lv.regConfirm.Text

	lv.regError.Hide()

	if password != confirm {
		lv.showRegisterError("Passwords do not match")
		return
	}

	utils.SafeGo(lv.app.logger, "register", func() {
		err := lv.app.authCtrl.Register(context.Background(), username, email, password, confirm)
		fyne.Do(func() {
			if err == nil {
				lv.app.showInfo("Account created", "Your account is ready. Sign in with your new credentials.")
				return
			}
			var valErr *api.ValidationError
			if errors.As(err, &valErr) {
				lv.showRegisterError(valErr.Display())
				return
			}
			var netErr *api.NetworkError
			if errors.As(err, &netErr) {
				lv.app.showNetworkError("Could not reach the API: "+netErr.Err.Error(), lv.submitRegister)
				return
			}
			lv.showRegisterError("Registration failed. Please try again.")
		})
	})
}

func (lv *LoginView) showRegisterError(message string) {
	lv.regError.SetText(message)
	lv.regError.Show()
}

// startGoogleLogin fetches the provider URL, opens a paste dialog for
// the redirect, and completes the callback exchange. Duplicate redirects
// (double-submitted codes) are rejected without a second session commit.
func (lv *LoginView) startGoogleLogin() {
	utils.SafeGo(lv.app.logger, "google login", func() {
		authURL, err := lv.app.authCtrl.GoogleLoginURL(context.Background())
		fyne.Do(func() {
			if err != nil {
				lv.app.surface(err, lv.startGoogleLogin)
				return
			}
			lv.showGoogleDialog(authURL)
		})
	})
}

func (lv *LoginView) showGoogleDialog(authURL string) {
	urlEntry := widget.NewEntry()
	urlEntry.SetText(authURL)

	redirectEntry := widget.NewEntry()
	redirectEntry.SetPlaceHolder("Paste the redirect URL here")

	errLabel := widget.NewLabel("")
	errLabel.Wrapping = fyne.TextWrapWord
	errLabel.Hide()

	var popup *widget.PopUp
	popup = widget.NewModalPopUp(
		container.NewVBox(
			widget.NewLabel("Open this URL in your browser and authorize access:"),
			urlEntry,
			widget.NewLabel("Then paste the URL you were redirected to:"),
			redirectEntry,
			errLabel,
			container.NewHBox(
				widget.NewButton("Cancel", func() {
					popup.Hide()
				}),
				widget.NewButton("Complete Sign In", func() {
					redirect := redirectEntry.Text
					utils.SafeGo(lv.app.logger, "google callback", func() {
						err := lv.app.authCtrl.HandleGoogleRedirect(context.Background(), redirect)
						fyne.Do(func() {
							if err == nil {
								popup.Hide()
								return
							}
							if errors.Is(err, auth.ErrCodeAlreadyUsed) {
								errLabel.SetText("That authorization code was already used. Start the sign-in again.")
							} else {
								errLabel.SetText(err.Error())
							}
							errLabel.Show()
						})
					})
				}),
			),
		),
		lv.app.window.Canvas(),
	)
	popup.Show()
}
