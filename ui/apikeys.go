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

// APIKeysView manages the keys external producers use to push logs in.
// The key value is shown in plaintext exactly once, right after
// creation; the list only ever shows masked keys.
type APIKeysView struct {
	app *App

	list *fyne.Container
}

func NewAPIKeysView(app *App) *APIKeysView {
	return &APIKeysView{app: app}
}

// Build builds the API keys tab.
func (kv *APIKeysView) Build() fyne.CanvasObject {
	createBtn := widget.NewButton("New API Key", kv.showCreateDialog)
	createBtn.Importance = widget.HighImportance

	refreshBtn := widget.NewButton("Refresh", func() {
		kv.app.resources.Refresh(cache.KindAPIKeys)
		kv.Reload()
	})
	refreshBtn.Importance = widget.LowImportance

	header := container.NewBorder(nil, nil,
		widget.NewLabel("API Keys"),
		container.NewHBox(refreshBtn, createBtn),
	)

	kv.list = container.NewVBox()

	return container.NewBorder(
		container.NewVBox(header, widget.NewSeparator()),
		nil, nil, nil,
		container.NewVScroll(kv.list),
	)
}

// Reload re-renders the key list through the cache.
func (kv *APIKeysView) Reload() {
	utils.SafeGo(kv.app.logger, "api keys fetch", func() {
		keys, err := kv.app.resources.APIKeys(context.Background())
		fyne.Do(func() {
			if err != nil {
				kv.app.surface(err, kv.Reload)
				return
			}
			kv.render(keys)
		})
	})
}

func (kv *APIKeysView) render(keys []api.APIKey) {
	kv.list.Objects = nil

	if len(keys) == 0 {
		kv.list.Add(widget.NewLabel("No API keys yet. Create one to start sending logs."))
	}

	for _, k := range keys {
		key := k
		kv.list.Add(kv.keyRow(key))
		kv.list.Add(widget.NewSeparator())
	}

	kv.list.Refresh()
}

func (kv *APIKeysView) keyRow(key api.APIKey) fyne.CanvasObject {
	status := "active"
	if !key.IsActive {
		status = "disabled"
	}
	label := widget.NewLabel(fmt.Sprintf("%s  %s  created %s  (%s)", key.Name, maskKey(key.Key), key.CreatedAt, status))

	toggleText := "Disable"
	if !key.IsActive {
		toggleText = "Enable"
	}
	toggleBtn := widget.NewButton(toggleText, func() {
		next := !key.IsActive
		kv.mutate(func(ctx context.Context) error {
			_, err := kv.app.resources.UpdateAPIKey(ctx, key.ID, nil, &next)
			return err
		})
	})
	toggleBtn.Importance = widget.LowImportance

	deleteBtn := widget.NewButton("Delete", func() {
		kv.app.confirm(fmt.Sprintf("Delete API key %q? Producers using it will stop working.", key.Name), func() {
			kv.mutate(func(ctx context.Context) error {
				return kv.app.resources.DeleteAPIKey(ctx, key.ID)
			})
		})
	})
	deleteBtn.Importance = widget.DangerImportance

	return container.NewBorder(nil, nil, nil, container.NewHBox(toggleBtn, deleteBtn), label)
}

func (kv *APIKeysView) mutate(fn func(ctx context.Context) error) {
	utils.SafeGo(kv.app.logger, "api key mutation", func() {
		err := fn(context.Background())
		fyne.Do(func() {
			if err != nil {
				kv.app.surface(err, nil)
				return
			}
			kv.Reload()
		})
	})
}

func (kv *APIKeysView) showCreateDialog() {
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("Key name")

	errorLabel := widget.NewLabel("")
	errorLabel.Hide()

	var popup *widget.PopUp
	popup = widget.NewModalPopUp(
		container.NewVBox(
			widget.NewLabel("New API Key"),
			nameEntry,
			errorLabel,
			container.NewHBox(
				widget.NewButton("Cancel", func() {
					popup.Hide()
				}),
				widget.NewButton("Create", func() {
					name := nameEntry.Text
					if name == "" {
						errorLabel.SetText("Name is required")
						errorLabel.Show()
						return
					}
					popup.Hide()
					kv.createKey(name)
				}),
			),
		),
		kv.app.window.Canvas(),
	)
	popup.Resize(fyne.NewSize(360, 0))
	popup.Show()
}

func (kv *APIKeysView) createKey(name string) {
	utils.SafeGo(kv.app.logger, "api key create", func() {
		key, err := kv.app.resources.CreateAPIKey(context.Background(), name)
		fyne.Do(func() {
			if err != nil {
				kv.app.surface(err, nil)
				return
			}
			kv.showKeyOnce(key)
			kv.Reload()
		})
	})
}

// showKeyOnce is the only place the plaintext key value ever appears.
// It includes the header line producers need, with a copy button.
func (kv *APIKeysView) showKeyOnce(key *api.APIKey) {
	headerLine := fmt.Sprintf("Api-Key %s", key.Key)

	keyEntry := widget.NewEntry()
	keyEntry.SetText(key.Key)

	copyBtn := widget.NewButton("Copy header", func() {
		kv.app.window.Clipboard().SetContent(headerLine)
	})

	var popup *widget.PopUp
	popup = widget.NewModalPopUp(
		container.NewVBox(
			widget.NewLabel(fmt.Sprintf("API key %q created", key.Name)),
			widget.NewLabel("Copy it now. It will not be shown again."),
			keyEntry,
			widget.NewLabel("Authorization header for log producers:"),
			widget.NewLabel(headerLine),
			container.NewHBox(
				copyBtn,
				widget.NewButton("Done", func() {
					popup.Hide()
				}),
			),
		),
		kv.app.window.Canvas(),
	)
	popup.Resize(fyne.NewSize(460, 0))
	popup.Show()
}

// maskKey keeps the first and last four characters of a key.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
