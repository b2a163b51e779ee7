// ABOUTME: Configuration for the notifications server connection
// ABOUTME: Handles JSON config at XDG path with environment overrides
package remote

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/oklog/ulid/v2"
)

const (
	// AppName is the application name used for XDG paths.
	AppName = "bellhop"

	// ConfigFileName is where we store local config.
	ConfigFileName = "config.json"

	// DefaultPollInterval is how often the poll loop refreshes the window.
	DefaultPollInterval = 30 * time.Second

	// DefaultWindowSize is the bell panel window size W.
	DefaultWindowSize = 15

	// DefaultPageSize is the history view page size.
	DefaultPageSize = 25
)

// Config holds connection and session settings.
type Config struct {
	// ServerURL is the notifications API base URL.
	ServerURL string `json:"server_url"`

	// DeviceID identifies this install to the server (generated once).
	DeviceID string `json:"device_id"`

	// Privileged marks the viewer's access class, as reported at login by
	// the access-control service. Routing never widens beyond it.
	Privileged bool `json:"privileged"`

	// PollInterval is the refresh cadence for the poll loop.
	PollInterval time.Duration `json:"poll_interval,omitempty"`

	// WindowSize is the bounded window W for the bell panel.
	WindowSize int `json:"window_size,omitempty"`

	// PageSize is the history view page size.
	PageSize int `json:"page_size,omitempty"`
}

// DefaultConfig returns a new config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ServerURL:    "http://localhost:8080",
		DeviceID:     ulid.Make().String(),
		PollInterval: DefaultPollInterval,
		WindowSize:   DefaultWindowSize,
		PageSize:     DefaultPageSize,
	}
}

// configPath returns the path to the config file.
func configPath() (string, error) {
	dataDir := filepath.Join(xdg.DataHome, AppName)
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(dataDir, ConfigFileName), nil
}

// LoadConfig loads config from disk, or returns defaults if not found.
// Environment variables BELLHOP_SERVER_URL, BELLHOP_PRIVILEGED, and
// BELLHOP_POLL_INTERVAL override whatever the file says.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	path, err := configPath()
	if err == nil {
		data, readErr := os.ReadFile(path)
		if readErr == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(readErr) {
			return nil, readErr
		}
	}

	applyEnvOverrides(cfg)

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultWindowSize
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.DeviceID == "" {
		cfg.DeviceID = ulid.Make().String()
	}
	return cfg, nil
}

// SaveConfig writes config to disk.
func SaveConfig(cfg *Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func applyEnvOverrides(cfg *Config) {
	if url := os.Getenv("BELLHOP_SERVER_URL"); url != "" {
		cfg.ServerURL = url
	}
	if priv := os.Getenv("BELLHOP_PRIVILEGED"); priv != "" {
		if v, err := strconv.ParseBool(priv); err == nil {
			cfg.Privileged = v
		}
	}
	if interval := os.Getenv("BELLHOP_POLL_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.PollInterval = d
		}
	}
}
