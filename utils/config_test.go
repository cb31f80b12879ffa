package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	config := &Config{
		API:  APIConfig{BaseURL: "http://localhost:8000/api", TimeoutSeconds: 15},
		UI:   UIConfig{Theme: "dark", WindowWidth: 1024, WindowHeight: 768},
		Data: DataConfig{DBPath: "/tmp/session.db"},
	}

	if err := SaveConfig(path, config); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.API.BaseURL != config.API.BaseURL {
		t.Fatalf("expected %s, got %s", config.API.BaseURL, loaded.API.BaseURL)
	}
	if loaded.UI.Theme != "dark" || loaded.UI.WindowWidth != 1024 {
		t.Fatalf("UI config not preserved: %+v", loaded.UI)
	}
	if loaded.Data.DBPath != "/tmp/session.db" {
		t.Fatalf("expected /tmp/session.db, got %s", loaded.Data.DBPath)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	expanded := expandPath("~/downloads")
	if expanded != filepath.Join(home, "downloads") {
		t.Fatalf("expected %s, got %s", filepath.Join(home, "downloads"), expanded)
	}
}
