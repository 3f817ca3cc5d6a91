package workspace

import (
	"fmt"
	"strings"

	"github.com/1broseidon/multimanager/internal/platform"
)

// Workspace is a named group of tracked windows sharing one optional hotkey.
type Workspace struct {
	Name         string        `json:"name"`
	Hotkey       string        `json:"hotkey,omitempty"`
	Windows      []WindowEntry `json:"windows"`
	Disabled     bool          `json:"disabled"`
	Rotate       bool          `json:"rotate"`
	CurrentIndex int           `json:"current_index"`
}

// WindowEntry is one tracked native window. ID may be stale across sessions;
// Title is the fallback identity used to rebind it.
type WindowEntry struct {
	ID     platform.WindowID `json:"id"`
	Title  string            `json:"title"`
	Home   platform.Rect     `json:"home"`
	Target platform.Rect     `json:"target"`
	Valid  bool              `json:"valid"`
}

// Liveness reports whether a window id still names a live window.
type Liveness interface {
	IsLive(id platform.WindowID) bool
}

// Clone returns a deep copy of ws.
func (ws Workspace) Clone() Workspace {
	out := ws
	out.Windows = append([]WindowEntry(nil), ws.Windows...)
	return out
}

// Rotating reports whether toggles cycle through windows. Rotation needs at
// least two windows; with fewer, toggles use the home/target rule.
func (ws Workspace) Rotating() bool {
	return ws.Rotate && len(ws.Windows) > 1
}

// ValidateName rejects names that cannot be shown or matched.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("workspace name is required")
	}
	if strings.ContainsAny(name, "\r\n") {
		return fmt.Errorf("invalid workspace name %q", name)
	}
	return nil
}

// RefreshValidity sets every entry's Valid flag from live and returns how
// many entries are valid.
func RefreshValidity(workspaces []Workspace, live Liveness) int {
	valid := 0
	for i := range workspaces {
		for j := range workspaces[i].Windows {
			w := &workspaces[i].Windows[j]
			w.Valid = w.ID != 0 && live.IsLive(w.ID)
			if w.Valid {
				valid++
			}
		}
	}
	return valid
}
