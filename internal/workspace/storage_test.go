package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/1broseidon/multimanager/internal/platform"
)

func TestList_WriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "workspaces.json")
	list := []Workspace{{
		Name:   "Work",
		Hotkey: "Ctrl+Alt+1",
		Rotate: true,
		Windows: []WindowEntry{{
			ID:     42,
			Title:  "Editor",
			Home:   platform.Rect{X: 0, Y: 0, Width: 400, Height: 300},
			Target: platform.Rect{X: 500, Y: 500, Width: 400, Height: 300},
			Valid:  true,
		}},
		CurrentIndex: 0,
	}}

	if err := WriteList(path, list); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadList(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, list) {
		t.Fatalf("ReadList() = %+v, want %+v", got, list)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the target file, found %d entries", len(entries))
	}
}

func TestReadList_MissingFileIsEmpty(t *testing.T) {
	got, err := ReadList(filepath.Join(t.TempDir(), "workspaces.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}
}

func TestReadList_RejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"malformed":  `[{"name":`,
		"blank name": `[{"name":"  ","windows":[]}]`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "workspaces.json")
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, err := ReadList(path)
			var pe *PersistenceError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *PersistenceError, got %v", err)
			}
		})
	}
}

func TestWriteList_FailureLeavesOldFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workspaces.json")
	if err := WriteList(path, []Workspace{{Name: "Old", Windows: []WindowEntry{}}}); err != nil {
		t.Fatalf("write: %v", err)
	}

	// a directory in the way of the rename makes the second write fail
	blocked := filepath.Join(dir, "blocked")
	if err := os.MkdirAll(filepath.Join(blocked, "child"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := WriteList(blocked, []Workspace{{Name: "New"}}); err == nil {
		t.Fatalf("expected write over a directory to fail")
	}

	got, err := ReadList(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Old" {
		t.Fatalf("unexpected list %+v", got)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if e.Name() != "workspaces.json" && e.Name() != "blocked" {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}
