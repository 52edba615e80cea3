// ABOUTME: Configuration for the swole CLI: server endpoint, device identity, data paths.
// ABOUTME: JSON file under XDG config with environment-variable overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/google/uuid"

	"github.com/steviebd/swole-tracker-sub010/internal/kv"
)

// Config stores swole tool configuration.
type Config struct {
	// ServerURL is the workout API base URL. Empty means sessions stay
	// local-only until a server is configured.
	ServerURL string `json:"server_url,omitempty" env:"SWOLE_SERVER_URL"`

	// APIToken authenticates create calls against the server.
	APIToken string `json:"api_token,omitempty" env:"SWOLE_API_TOKEN"`

	// DeviceID identifies this device, generated on first save.
	DeviceID string `json:"device_id,omitempty" env:"SWOLE_DEVICE_ID"`

	// DeviceType and Theme are telemetry passed through to create calls.
	DeviceType string `json:"device_type,omitempty" env:"SWOLE_DEVICE_TYPE"`
	Theme      string `json:"theme,omitempty" env:"SWOLE_THEME"`

	// DataDir is the root directory for local storage. Supports ~ expansion.
	// Defaults to the standard XDG data directory.
	DataDir string `json:"data_dir,omitempty" env:"SWOLE_DATA_DIR"`
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return kv.DefaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetDeviceID returns the device ID, generating one if unset.
func (c *Config) GetDeviceID() string {
	if c.DeviceID == "" {
		c.DeviceID = uuid.New().String()
	}
	return c.DeviceID
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "swole", "config.json")
}

// Load reads config from disk and applies environment overrides.
func Load() (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(GetConfigPath())
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config env: %w", err)
	}
	return cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
