package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig mirrors Config with optional fields so that included files can
// be layered without clobbering unset keys.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	PollInterval      *time.Duration `yaml:"poll_interval"`
	ValidateInterval  *time.Duration `yaml:"validate_interval"`
	WorkspacesFile    *string        `yaml:"workspaces_file"`
	BindingsFile      *string        `yaml:"bindings_file"`
	DesktopLayoutFile *string        `yaml:"desktop_layout_file"`
	SaveOnExit        *bool          `yaml:"save_on_exit"`
	LogLevel          *string        `yaml:"log_level"`
	LogFile           *string        `yaml:"log_file"`
	GrabHotkeys       *bool          `yaml:"grab_hotkeys"`
	Display           *string        `yaml:"display"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil

	if overlay.PollInterval != nil {
		out.PollInterval = overlay.PollInterval
	}
	if overlay.ValidateInterval != nil {
		out.ValidateInterval = overlay.ValidateInterval
	}
	if overlay.WorkspacesFile != nil {
		out.WorkspacesFile = overlay.WorkspacesFile
	}
	if overlay.BindingsFile != nil {
		out.BindingsFile = overlay.BindingsFile
	}
	if overlay.DesktopLayoutFile != nil {
		out.DesktopLayoutFile = overlay.DesktopLayoutFile
	}
	if overlay.SaveOnExit != nil {
		out.SaveOnExit = overlay.SaveOnExit
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.LogFile != nil {
		out.LogFile = overlay.LogFile
	}
	if overlay.GrabHotkeys != nil {
		out.GrabHotkeys = overlay.GrabHotkeys
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	return out
}
