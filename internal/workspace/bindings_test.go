package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/1broseidon/multimanager/internal/platform"
)

type liveIDs map[platform.WindowID]bool

func (l liveIDs) IsLive(id platform.WindowID) bool { return l[id] }

func sampleWorkspaces() []Workspace {
	return []Workspace{
		{Name: "Work", Windows: []WindowEntry{
			{ID: 100, Title: "Editor", Valid: true},
			{ID: 101, Title: "Terminal", Valid: true},
		}},
		{Name: "Chat", Windows: []WindowEntry{
			{ID: 200, Title: "Slack", Valid: true},
		}},
		{Name: "Empty", Windows: []WindowEntry{
			{ID: 300, Title: "Closed", Valid: true},
		}},
	}
}

func TestCaptureBindings_PrunesDeadWindowsAndEmptyWorkspaces(t *testing.T) {
	live := liveIDs{100: true, 200: true}
	got := CaptureBindings(sampleWorkspaces(), live)

	want := []WorkspaceBinding{
		{WorkspaceIndex: 0, WorkspaceName: "Work", Windows: []WindowBinding{
			{WindowIndex: 0, WindowTitle: "Editor", ID: 100},
		}},
		{WorkspaceIndex: 1, WorkspaceName: "Chat", Windows: []WindowBinding{
			{WindowIndex: 0, WindowTitle: "Slack", ID: 200},
		}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CaptureBindings() = %+v\nwant %+v", got, want)
	}
}

func TestApplyBindings_RoundTrip(t *testing.T) {
	live := liveIDs{100: true, 101: true, 200: true}
	list := sampleWorkspaces()
	bindings := CaptureBindings(list, live)

	for i := range list {
		for j := range list[i].Windows {
			list[i].Windows[j].Valid = false
		}
	}
	stats := ApplyBindings(list, bindings, live)
	if stats != (BindingStats{Restored: 3}) {
		t.Fatalf("stats = %+v, want 3 restored", stats)
	}
	for _, ws := range list[:2] {
		for _, w := range ws.Windows {
			if !w.Valid {
				t.Fatalf("window %q in %q not restored", w.Title, ws.Name)
			}
		}
	}
}

func TestApplyBindings_StaleIDInvalidates(t *testing.T) {
	list := sampleWorkspaces()
	bindings := CaptureBindings(list, liveIDs{100: true, 101: true, 200: true})

	// Terminal was closed after the snapshot
	stats := ApplyBindings(list, bindings, liveIDs{100: true, 200: true})
	if stats != (BindingStats{Restored: 2, Invalidated: 1}) {
		t.Fatalf("stats = %+v", stats)
	}
	term := list[0].Windows[1]
	if term.Valid || term.ID != 101 {
		t.Fatalf("terminal entry = %+v, want invalid with old id kept", term)
	}
	if len(list[0].Windows) != 2 {
		t.Fatalf("window count changed to %d", len(list[0].Windows))
	}
}

func TestApplyBindings_NewIDReplacesOld(t *testing.T) {
	list := sampleWorkspaces()
	bindings := []WorkspaceBinding{{WorkspaceIndex: 0, WorkspaceName: "Work", Windows: []WindowBinding{
		{WindowIndex: 1, WindowTitle: "Terminal", ID: 555},
	}}}

	stats := ApplyBindings(list, bindings, liveIDs{555: true})
	if stats.Restored != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if got := list[0].Windows[1]; got.ID != 555 || !got.Valid {
		t.Fatalf("entry = %+v, want id 555 valid", got)
	}
}

func TestApplyBindings_RenamedWorkspaceIsUnmatched(t *testing.T) {
	list := sampleWorkspaces()
	live := liveIDs{100: true, 101: true, 200: true}
	bindings := CaptureBindings(list, live)

	list[0].Name = "Renamed"
	before := sampleWorkspaces()[1:]
	for i := range list {
		for j := range list[i].Windows {
			list[i].Windows[j].ID = 0
		}
	}
	stats := ApplyBindings(list, bindings, live)
	if stats.Unmatched != 2 || stats.Restored != 1 {
		t.Fatalf("stats = %+v, want 2 unmatched 1 restored", stats)
	}
	for _, w := range list[0].Windows {
		if w.ID != 0 {
			t.Fatalf("renamed workspace was mutated: %+v", w)
		}
	}
	if list[1].Windows[0].ID != before[0].Windows[0].ID {
		t.Fatalf("expected Chat to be restored by name")
	}
	if list[2].Windows[0].ID != 0 {
		t.Fatalf("unrelated workspace was mutated: %+v", list[2].Windows[0])
	}
}

func TestApplyBindings_ReorderFallsBackToNameAndTitle(t *testing.T) {
	list := []Workspace{
		{Name: "Chat", Windows: []WindowEntry{{Title: "Slack"}}},
		{Name: "Work", Windows: []WindowEntry{{Title: "Terminal"}, {Title: "Editor"}}},
	}
	bindings := []WorkspaceBinding{{WorkspaceIndex: 0, WorkspaceName: "Work", Windows: []WindowBinding{
		{WindowIndex: 0, WindowTitle: "Editor", ID: 100},
		{WindowIndex: 1, WindowTitle: "Browser", ID: 102},
	}}}

	stats := ApplyBindings(list, bindings, liveIDs{100: true, 102: true})
	if stats != (BindingStats{Restored: 1, Unmatched: 1}) {
		t.Fatalf("stats = %+v", stats)
	}
	if got := list[1].Windows[1]; got.ID != 100 || !got.Valid {
		t.Fatalf("editor entry = %+v", got)
	}
	if list[0].Windows[0].ID != 0 {
		t.Fatalf("Chat was mutated")
	}
}

func TestApplyBindings_DuplicateTitlesFirstMatchWins(t *testing.T) {
	list := []Workspace{{Name: "W", Windows: []WindowEntry{
		{ID: 1, Title: "xterm"},
		{ID: 2, Title: "xterm"},
	}}}
	bindings := []WorkspaceBinding{{WorkspaceIndex: 0, WorkspaceName: "W", Windows: []WindowBinding{
		{WindowIndex: 5, WindowTitle: "xterm", ID: 9},
	}}}

	ApplyBindings(list, bindings, liveIDs{9: true})
	if list[0].Windows[0].ID != 9 || list[0].Windows[1].ID != 2 {
		t.Fatalf("expected first xterm to be rebound, got %+v", list[0].Windows)
	}
}

func TestBindingsFile_RoundTripAndFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindings.json")
	bindings := []WorkspaceBinding{{WorkspaceIndex: 0, WorkspaceName: "Work", Windows: []WindowBinding{
		{WindowIndex: 0, WindowTitle: "Editor", ID: 132450},
	}}}

	if err := WriteBindings(path, bindings); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	for _, key := range []string{`"workspace_index": 0`, `"workspace_name": "Work"`, `"window_index": 0`, `"window_title": "Editor"`, `"hwnd": 132450`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("expected %s in file, got:\n%s", key, data)
		}
	}

	got, err := ReadBindings(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, bindings) {
		t.Fatalf("ReadBindings() = %+v, want %+v", got, bindings)
	}
}

func TestReadBindings_EmptyArrayIsValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindings.json")
	if err := os.WriteFile(path, []byte("[]\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadBindings(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no bindings, got %+v", got)
	}
}

func TestReadBindings_MalformedFailsWhole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindings.json")
	if err := os.WriteFile(path, []byte(`[{"workspace_index":0,"workspace_name":"W","windows":[`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := ReadBindings(path)
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PersistenceError, got %v", err)
	}
}

func TestReadBindings_MissingFile(t *testing.T) {
	_, err := ReadBindings(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}
