package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration
type Config struct {
	API  APIConfig  `json:"api"`
	UI   UIConfig   `json:"ui"`
	Data DataConfig `json:"data"`
}

// APIConfig represents the logging platform API configuration
type APIConfig struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// UIConfig represents UI configuration
type UIConfig struct {
	Theme        string `json:"theme"`
	WindowWidth  int    `json:"window_width"`
	WindowHeight int    `json:"window_height"`
}

// DataConfig represents data storage configuration
type DataConfig struct {
	DBPath      string `json:"db_path"`
	DownloadDir string `json:"download_dir,omitempty"`
}

// LoadConfig loads configuration from file
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Expand paths
	if config.Data.DBPath != "" {
		config.Data.DBPath = expandPath(config.Data.DBPath)
	}
	if config.Data.DownloadDir != "" {
		config.Data.DownloadDir = expandPath(config.Data.DownloadDir)
	}

	return &config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(configPath string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// expandPath expands ~ and relative paths
func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}

	// Expand ~
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	// Make absolute
	absPath, err := filepath.Abs(path)
	if err == nil {
		return absPath
	}

	return path
}

// GetConfigPath returns the default config path
func GetConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to current directory
		return "./config/default.json"
	}

	return filepath.Join(configDir, "logdeck", "config.json")
}

// EnsureDefaultConfig creates a default config file if it doesn't exist
func EnsureDefaultConfig() (string, error) {
	configPath := GetConfigPath()

	// Check if config exists
	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	}

	dataDir := filepath.Dir(configPath)

	defaultConfig := &Config{
		API: APIConfig{
			BaseURL:        "https://api.logdeck.dev/api",
			TimeoutSeconds: 30,
		},
		UI: UIConfig{
			Theme:        "light",
			WindowWidth:  1200,
			WindowHeight: 800,
		},
		Data: DataConfig{
			DBPath: filepath.Join(dataDir, "session.db"),
		},
	}

	if err := SaveConfig(configPath, defaultConfig); err != nil {
		return "", err
	}

	return configPath, nil
}
