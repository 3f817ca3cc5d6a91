package config

import (
	"fmt"
	"sort"
)

var explainers = map[string]func(*Config) any{
	"poll_interval":       func(c *Config) any { return c.PollInterval.String() },
	"validate_interval":   func(c *Config) any { return c.ValidateInterval.String() },
	"workspaces_file":     func(c *Config) any { return c.WorkspacesFile },
	"bindings_file":       func(c *Config) any { return c.BindingsFile },
	"desktop_layout_file": func(c *Config) any { return c.DesktopLayoutFile },
	"save_on_exit":        func(c *Config) any { return c.SaveOnExit },
	"log_level":           func(c *Config) any { return c.LogLevel },
	"log_file":            func(c *Config) any { return c.LogFile },
	"grab_hotkeys":        func(c *Config) any { return c.GrabHotkeys },
	"display":             func(c *Config) any { return c.Display },
}

// Keys lists every path Explain understands, sorted.
func Keys() []string {
	keys := make([]string, 0, len(explainers))
	for k := range explainers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Explain returns the effective value at path and where it came from.
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}
	get, ok := explainers[path]
	if !ok {
		return nil, Source{}, fmt.Errorf("unknown config path %q", path)
	}
	if src, ok := res.Sources[path]; ok {
		return get(res.Config), src, nil
	}
	return get(res.Config), Source{Kind: SourceDefault}, nil
}
