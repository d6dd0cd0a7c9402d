package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/1broseidon/setwin/internal/window"
)

const (
	BackendHost   = "host"
	BackendDryRun = "dry-run"
)

// ShellConfig selects the process started on a configured window.
type ShellConfig struct {
	// Command is the shell binary; empty disables the spawn.
	Command string `yaml:"command"`
	// Args is expanded with {{dev}} set to the window's device name,
	// e.g. "i=/{{dev}}&" for an OS-9 style shell.
	Args string `yaml:"args"`
}

// HostConfig supplies what a host terminal cannot report about itself.
type HostConfig struct {
	CurrentPath   int `yaml:"current_path"`
	ScreenType    int `yaml:"screen_type"`
	Foreground    int `yaml:"foreground"`
	Background    int `yaml:"background"`
	Border        int `yaml:"border"`
	NewWindowCols int `yaml:"new_window_cols"`
	NewWindowRows int `yaml:"new_window_rows"`
}

// DryRunConfig describes the simulated current window for dry runs.
type DryRunConfig struct {
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	ScreenType    int    `yaml:"screen_type"`
	Foreground    int    `yaml:"foreground"`
	Background    int    `yaml:"background"`
	Border        int    `yaml:"border"`
	DeviceName    string `yaml:"device_name"`
	NewDeviceName string `yaml:"new_device_name"`
}

// LoggingConfig configures the device action log.
type LoggingConfig struct {
	// Enabled turns action logging on/off
	Enabled bool `yaml:"enabled,omitempty"`
	// Level controls logging verbosity: debug, info, warn, error
	Level string `yaml:"level,omitempty"`
	// File is the log file path (default: ~/.local/share/setwin/actions.log)
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb,omitempty"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files,omitempty"`
	// IncludeContent logs a hex preview of written bytes (default: false)
	IncludeContent bool `yaml:"include_content,omitempty"`
	// PreviewLength is the number of bytes to preview in log (default: 16)
	PreviewLength int `yaml:"preview_length,omitempty"`
}

// Config holds the application configuration.
type Config struct {
	Backend         string        `yaml:"backend"`
	ConsolePath     int           `yaml:"console_path"`
	NewWindowDevice string        `yaml:"new_window_device"`
	SettleTicks     int           `yaml:"settle_ticks"`
	TickRate        int           `yaml:"tick_rate"`
	LogLevel        string        `yaml:"log_level"`
	Shell           ShellConfig   `yaml:"shell"`
	Host            HostConfig    `yaml:"host"`
	DryRun          DryRunConfig  `yaml:"dry_run"`
	Logging         LoggingConfig `yaml:"logging,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend:         BackendHost,
		ConsolePath:     1,
		NewWindowDevice: window.DefaultNewWindowDevice,
		SettleTicks:     window.DefaultSettleTicks,
		TickRate:        60,
		LogLevel:        "warning",
		Shell: ShellConfig{
			Command: "sh",
		},
		Host: HostConfig{
			CurrentPath:   1,
			ScreenType:    2, // 80 column text
			Foreground:    0,
			Background:    2,
			Border:        2,
			NewWindowCols: 80,
			NewWindowRows: 24,
		},
		DryRun: DryRunConfig{
			Width:         80,
			Height:        24,
			ScreenType:    2,
			Foreground:    0,
			Background:    2,
			Border:        2,
			DeviceName:    "W1",
			NewDeviceName: "W7",
		},
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendHost, BackendDryRun:
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: %s, %s", BackendHost, BackendDryRun)}
	}
	if err := checkByte("console_path", c.ConsolePath); err != nil {
		return err
	}
	if strings.TrimSpace(c.NewWindowDevice) == "" {
		return &ValidationError{Path: "new_window_device", Err: fmt.Errorf("new_window_device must not be empty")}
	}
	if c.SettleTicks < 0 {
		return &ValidationError{Path: "settle_ticks", Err: fmt.Errorf("settle_ticks must be >= 0")}
	}
	if c.TickRate <= 0 {
		return &ValidationError{Path: "tick_rate", Err: fmt.Errorf("tick_rate must be > 0")}
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.Shell.Command == "" && c.Shell.Args != "" {
		return &ValidationError{Path: "shell.args", Err: fmt.Errorf("shell.args requires shell.command")}
	}

	for _, f := range []struct {
		path  string
		value int
	}{
		{"host.current_path", c.Host.CurrentPath},
		{"host.screen_type", c.Host.ScreenType},
		{"host.foreground", c.Host.Foreground},
		{"host.background", c.Host.Background},
		{"host.border", c.Host.Border},
		{"dry_run.screen_type", c.DryRun.ScreenType},
		{"dry_run.foreground", c.DryRun.Foreground},
		{"dry_run.background", c.DryRun.Background},
		{"dry_run.border", c.DryRun.Border},
	} {
		if err := checkByte(f.path, f.value); err != nil {
			return err
		}
	}
	if c.Host.NewWindowCols < 0 || c.Host.NewWindowRows < 0 {
		return &ValidationError{Path: "host", Err: fmt.Errorf("new window size must be >= 0")}
	}
	if c.DryRun.Width < 0 || c.DryRun.Height < 0 {
		return &ValidationError{Path: "dry_run", Err: fmt.Errorf("width and height must be >= 0")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("logging.max_size_mb must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("logging.max_files must be >= 0")}
	}
	return nil
}

func checkByte(path string, v int) error {
	if v < 0 || v > 255 {
		return &ValidationError{Path: path, Err: fmt.Errorf("%s must be between 0 and 255", path)}
	}
	return nil
}

// GetLoggingConfig returns the logging configuration with defaults applied.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return LoggingConfig{}
	}
	cfg := c.Logging
	if cfg.File == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			home = os.Getenv("HOME")
		}
		if home == "" {
			home = "."
		}
		cfg.File = filepath.Join(home, ".local/share/setwin/actions.log")
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	if cfg.PreviewLength == 0 {
		cfg.PreviewLength = 16
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}
