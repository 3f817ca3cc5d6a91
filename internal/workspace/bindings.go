package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/1broseidon/multimanager/internal/platform"
)

// WorkspaceBinding records the live windows of one workspace so their ids
// can be re-associated after a reload.
type WorkspaceBinding struct {
	WorkspaceIndex int             `json:"workspace_index"`
	WorkspaceName  string          `json:"workspace_name"`
	Windows        []WindowBinding `json:"windows"`
}

// WindowBinding is one captured window identity.
type WindowBinding struct {
	WindowIndex int               `json:"window_index"`
	WindowTitle string            `json:"window_title"`
	ID          platform.WindowID `json:"hwnd"`
}

// BindingStats counts the outcome of ApplyBindings per window binding.
type BindingStats struct {
	Restored    int
	Invalidated int
	Unmatched   int
}

func (s BindingStats) String() string {
	return fmt.Sprintf("%d restored, %d invalidated, %d unmatched", s.Restored, s.Invalidated, s.Unmatched)
}

// PersistenceError reports a failure reading or writing a persisted file.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// CaptureBindings records every window whose id is live now. Workspaces
// without a live window are left out.
func CaptureBindings(workspaces []Workspace, live Liveness) []WorkspaceBinding {
	out := []WorkspaceBinding{}
	for wi, ws := range workspaces {
		var windows []WindowBinding
		for i, w := range ws.Windows {
			if w.ID == 0 || !live.IsLive(w.ID) {
				continue
			}
			windows = append(windows, WindowBinding{
				WindowIndex: i,
				WindowTitle: w.Title,
				ID:          w.ID,
			})
		}
		if len(windows) == 0 {
			continue
		}
		out = append(out, WorkspaceBinding{
			WorkspaceIndex: wi,
			WorkspaceName:  ws.Name,
			Windows:        windows,
		})
	}
	return out
}

// ApplyBindings re-associates captured ids with the entries of workspaces.
// Entries are only updated, never added or removed. A binding whose id is
// still live restores the entry; one whose id is gone marks the entry
// invalid and keeps its old id.
func ApplyBindings(workspaces []Workspace, bindings []WorkspaceBinding, live Liveness) BindingStats {
	var stats BindingStats
	for _, b := range bindings {
		wi := findWorkspace(workspaces, b.WorkspaceIndex, b.WorkspaceName)
		if wi < 0 {
			stats.Unmatched += len(b.Windows)
			continue
		}
		ws := &workspaces[wi]
		for _, wb := range b.Windows {
			ei := findWindow(ws.Windows, wb.WindowIndex, wb.WindowTitle)
			if ei < 0 {
				stats.Unmatched++
				continue
			}
			entry := &ws.Windows[ei]
			if wb.ID != 0 && live.IsLive(wb.ID) {
				entry.ID = wb.ID
				entry.Valid = true
				stats.Restored++
			} else {
				entry.Valid = false
				stats.Invalidated++
			}
		}
	}
	return stats
}

// findWorkspace prefers the stored index when the name there still matches,
// then the first workspace with that name.
func findWorkspace(workspaces []Workspace, index int, name string) int {
	if index >= 0 && index < len(workspaces) && workspaces[index].Name == name {
		return index
	}
	for i := range workspaces {
		if workspaces[i].Name == name {
			return i
		}
	}
	return -1
}

func findWindow(windows []WindowEntry, index int, title string) int {
	if index >= 0 && index < len(windows) && windows[index].Title == title {
		return index
	}
	for i := range windows {
		if windows[i].Title == title {
			return i
		}
	}
	return -1
}

// ReadBindings loads a bindings file. A missing file yields os.ErrNotExist
// wrapped in a PersistenceError; a malformed one fails as a whole.
func ReadBindings(path string) ([]WorkspaceBinding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: path, Err: err}
	}
	var bindings []WorkspaceBinding
	if err := json.Unmarshal(data, &bindings); err != nil {
		return nil, &PersistenceError{Op: "decode", Path: path, Err: err}
	}
	if bindings == nil {
		return nil, &PersistenceError{Op: "decode", Path: path, Err: errors.New("expected a JSON array")}
	}
	return bindings, nil
}

// WriteBindings replaces the bindings file atomically.
func WriteBindings(path string, bindings []WorkspaceBinding) error {
	if bindings == nil {
		bindings = []WorkspaceBinding{}
	}
	return writeJSON(path, bindings)
}
