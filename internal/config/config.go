package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/1broseidon/multimanager/internal/fsutil"
	"github.com/1broseidon/multimanager/internal/runtimepath"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPollInterval     = 100 * time.Millisecond
	DefaultValidateInterval = 10 * time.Second

	MinPollInterval = 10 * time.Millisecond
	MaxPollInterval = 5 * time.Second
)

// Config holds the application configuration.
type Config struct {
	PollInterval      time.Duration `yaml:"poll_interval"`
	ValidateInterval  time.Duration `yaml:"validate_interval"`
	WorkspacesFile    string        `yaml:"workspaces_file"`
	BindingsFile      string        `yaml:"bindings_file"`
	DesktopLayoutFile string        `yaml:"desktop_layout_file"`
	SaveOnExit        bool          `yaml:"save_on_exit"`
	LogLevel          string        `yaml:"log_level"`
	LogFile           string        `yaml:"log_file,omitempty"`
	GrabHotkeys       bool          `yaml:"grab_hotkeys"`
	Display           string        `yaml:"display,omitempty"`
}

func DefaultConfig() *Config {
	cfg := &Config{
		PollInterval:     DefaultPollInterval,
		ValidateInterval: DefaultValidateInterval,
		LogLevel:         "info",
		GrabHotkeys:      true,
	}
	if dir, err := configDir(); err == nil {
		cfg.WorkspacesFile = filepath.Join(dir, "workspaces.json")
		cfg.DesktopLayoutFile = filepath.Join(dir, "desktop_layout.json")
	}
	if path, err := runtimepath.BindingsPath(); err == nil {
		cfg.BindingsFile = path
	}
	return cfg
}

func configDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "multimanager"), nil
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) Validate() error {
	if c.PollInterval < MinPollInterval || c.PollInterval > MaxPollInterval {
		return &ValidationError{Path: "poll_interval", Err: fmt.Errorf("poll_interval must be between %s and %s", MinPollInterval, MaxPollInterval)}
	}
	if c.ValidateInterval < 0 {
		return &ValidationError{Path: "validate_interval", Err: fmt.Errorf("validate_interval must be >= 0")}
	}
	if strings.TrimSpace(c.WorkspacesFile) == "" {
		return &ValidationError{Path: "workspaces_file", Err: fmt.Errorf("workspaces_file is required")}
	}
	if strings.TrimSpace(c.BindingsFile) == "" {
		return &ValidationError{Path: "bindings_file", Err: fmt.Errorf("bindings_file is required")}
	}
	if strings.TrimSpace(c.DesktopLayoutFile) == "" {
		return &ValidationError{Path: "desktop_layout_file", Err: fmt.Errorf("desktop_layout_file is required")}
	}
	if c.WorkspacesFile == c.BindingsFile {
		return &ValidationError{Path: "bindings_file", Err: fmt.Errorf("bindings_file must differ from workspaces_file")}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	return nil
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
