package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_RUNTIME_DIR", filepath.Join(home, "run"))
	return home
}

func writeConfig(t *testing.T, dir, data string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	home := isolate(t)
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.PollInterval != 100*time.Millisecond {
		t.Fatalf("expected poll_interval 100ms, got %s", cfg.PollInterval)
	}
	if want := filepath.Join(home, ".config", "multimanager", "workspaces.json"); cfg.WorkspacesFile != want {
		t.Fatalf("expected workspaces_file %q, got %q", want, cfg.WorkspacesFile)
	}
	if want := filepath.Join(home, "run", "multimanager-bindings.json"); cfg.BindingsFile != want {
		t.Fatalf("expected bindings_file %q, got %q", want, cfg.BindingsFile)
	}
	if !cfg.GrabHotkeys {
		t.Fatalf("expected grab_hotkeys to default to true")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	home := isolate(t)
	res, err := LoadFromPath(filepath.Join(home, "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.LogLevel != "info" {
		t.Fatalf("expected log_level info, got %q", res.Config.LogLevel)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files loaded, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	home := isolate(t)
	path := writeConfig(t, home, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.PollInterval != DefaultPollInterval {
		t.Fatalf("expected default poll interval, got %s", res.Config.PollInterval)
	}
}

func TestLoadFromPath_OverridesAndHomeExpansion(t *testing.T) {
	home := isolate(t)
	path := writeConfig(t, home, strings.Join([]string{
		"poll_interval: 50ms",
		"validate_interval: 0s",
		"workspaces_file: ~/ws.json",
		"save_on_exit: true",
		"log_level: debug",
		"grab_hotkeys: false",
		"display: \":1\"",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.PollInterval != 50*time.Millisecond {
		t.Fatalf("expected poll_interval 50ms, got %s", cfg.PollInterval)
	}
	if cfg.ValidateInterval != 0 {
		t.Fatalf("expected validate_interval 0, got %s", cfg.ValidateInterval)
	}
	if cfg.WorkspacesFile != filepath.Join(home, "ws.json") {
		t.Fatalf("expected expanded workspaces_file, got %q", cfg.WorkspacesFile)
	}
	if !cfg.SaveOnExit || cfg.GrabHotkeys {
		t.Fatalf("expected save_on_exit=true grab_hotkeys=false, got %v %v", cfg.SaveOnExit, cfg.GrabHotkeys)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.SlogLevel())
	}
	if cfg.Display != ":1" {
		t.Fatalf("expected display :1, got %q", cfg.Display)
	}

	val, src, err := Explain(res, "display")
	if err != nil {
		t.Fatalf("explain display: %v", err)
	}
	if val != ":1" || src.Kind != SourceFile || src.Line != 7 {
		t.Fatalf("expected :1 from line 7, got %v from %+v", val, src)
	}
	_, src, err = Explain(res, "log_file")
	if err != nil {
		t.Fatalf("explain log_file: %v", err)
	}
	if src.Kind != SourceDefault {
		t.Fatalf("expected default source for log_file, got %+v", src)
	}
	if _, _, err := Explain(res, "gap_size"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	home := isolate(t)
	path := writeConfig(t, home, "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	tests := []struct {
		name string
		data string
		path string
	}{
		{"poll too fast", "log_level: info\npoll_interval: 1ms\n", "poll_interval"},
		{"poll too slow", "poll_interval: 6s\n", "poll_interval"},
		{"negative validate", "validate_interval: -1s\n", "validate_interval"},
		{"bad level", "log_level: loud\n", "log_level"},
		{"empty workspaces file", "workspaces_file: \"\"\n", "workspaces_file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := isolate(t)
			path := writeConfig(t, home, tt.data)

			_, err := LoadFromPath(path)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
			if verr.Source.Kind != SourceFile || verr.Source.Line == 0 {
				t.Fatalf("expected file source, got %+v", verr.Source)
			}
		})
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	home := isolate(t)

	// config.d loaded first, in sorted order.
	configD := filepath.Join(home, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configD, "10-base.yaml"), []byte("poll_interval: 20ms\nlog_level: warn\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configD, "20-override.yaml"), []byte("poll_interval: 30ms\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	path := writeConfig(t, home, strings.Join([]string{
		"include:",
		"  - config.d",
		"poll_interval: 40ms",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.PollInterval != 40*time.Millisecond {
		t.Fatalf("expected poll_interval 40ms, got %s", res.Config.PollInterval)
	}
	if res.Config.LogLevel != "warn" {
		t.Fatalf("expected log_level from include, got %q", res.Config.LogLevel)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 files loaded, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	home := isolate(t)
	path := writeConfig(t, home, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := isolate(t)
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	if err := os.WriteFile(a, []byte("include: b.yaml\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(b, []byte("include: a.yaml\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	home := isolate(t)
	cfg := DefaultConfig()
	cfg.PollInterval = 250 * time.Millisecond
	cfg.SaveOnExit = true

	path := filepath.Join(home, "out", "config.yaml")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *res.Config != *cfg {
		t.Fatalf("expected %+v, got %+v", *cfg, *res.Config)
	}
}

func TestSaveTo_RejectsInvalid(t *testing.T) {
	home := isolate(t)
	cfg := DefaultConfig()
	cfg.LogLevel = "verbose"
	path := filepath.Join(home, "config.yaml")
	if err := cfg.SaveTo(path); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file written, got %v", err)
	}
}
