package config

import "fmt"

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig layers raw over the defaults. File paths have a
// leading ~ expanded.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.PollInterval != nil {
		cfg.PollInterval = *raw.PollInterval
	}
	if raw.ValidateInterval != nil {
		cfg.ValidateInterval = *raw.ValidateInterval
	}
	if raw.SaveOnExit != nil {
		cfg.SaveOnExit = *raw.SaveOnExit
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.GrabHotkeys != nil {
		cfg.GrabHotkeys = *raw.GrabHotkeys
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}

	paths := []struct {
		key string
		src *string
		dst *string
	}{
		{"workspaces_file", raw.WorkspacesFile, &cfg.WorkspacesFile},
		{"bindings_file", raw.BindingsFile, &cfg.BindingsFile},
		{"desktop_layout_file", raw.DesktopLayoutFile, &cfg.DesktopLayoutFile},
		{"log_file", raw.LogFile, &cfg.LogFile},
	}
	for _, p := range paths {
		if p.src == nil {
			continue
		}
		expanded, err := expandHome(*p.src)
		if err != nil {
			return nil, &ValidationError{Path: p.key, Err: err}
		}
		*p.dst = expanded
	}

	return cfg, nil
}
