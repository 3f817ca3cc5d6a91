package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/1broseidon/multimanager/internal/fsutil"
)

// ReadList loads the workspace list. A missing file is an empty list.
func ReadList(path string) ([]Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &PersistenceError{Op: "read", Path: path, Err: err}
	}

	var list []Workspace
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, &PersistenceError{Op: "decode", Path: path, Err: err}
	}
	for i := range list {
		if err := ValidateName(list[i].Name); err != nil {
			return nil, &PersistenceError{Op: "decode", Path: path, Err: fmt.Errorf("workspace %d: %w", i, err)}
		}
		if list[i].Windows == nil {
			list[i].Windows = []WindowEntry{}
		}
	}
	return list, nil
}

// WriteList replaces the workspace list file atomically.
func WriteList(path string, list []Workspace) error {
	if list == nil {
		list = []Workspace{}
	}
	return writeJSON(path, list)
}

// writeJSON replaces path with the indented encoding of v.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "encode", Path: path, Err: err}
	}
	if err := fsutil.WriteFileAtomic(path, append(data, '\n'), 0644); err != nil {
		return &PersistenceError{Op: "write", Path: path, Err: err}
	}
	return nil
}
