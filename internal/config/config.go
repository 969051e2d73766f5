package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	configDirName  = ".duedeck"
	configFileName = "config.json"

	// DefaultServerURL is used when neither the config file nor API_BASE_URL
	// names a server.
	DefaultServerURL = "http://localhost:8080/v1"
)

type Config struct {
	ServerURL   string `json:"server_url,omitempty"`
	DefaultList string `json:"default_list,omitempty"`
	// Theme is "dark" or "light"; it picks glamour and tag color styles.
	Theme string `json:"theme,omitempty"`
}

// Dir returns the config directory (~/.duedeck).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName), nil
}

// GetConfigPath returns the path to the config file (~/.duedeck/config.json)
func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// LoadConfig loads the config file. A missing file yields an empty config.
func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func SaveConfig(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// BaseURL resolves the server URL: API_BASE_URL wins over the file, which
// wins over DefaultServerURL. Trailing slashes are dropped.
func (c *Config) BaseURL() string {
	url := os.Getenv("API_BASE_URL")
	if url == "" && c != nil {
		url = c.ServerURL
	}
	if url == "" {
		url = DefaultServerURL
	}
	return strings.TrimRight(url, "/")
}

// IsDark reports whether the dark theme is selected. Dark is the default.
func (c *Config) IsDark() bool {
	return c == nil || c.Theme == "" || strings.EqualFold(c.Theme, "dark")
}
