package workspace

import (
	"fmt"
	"sync"
)

// Store owns the workspace list. Readers get deep copies; writers run short
// callbacks under the lock. Callbacks must not call into the window system.
type Store struct {
	mu         sync.Mutex
	workspaces []Workspace
}

// NewStore returns a store holding a copy of list.
func NewStore(list []Workspace) *Store {
	s := &Store{}
	s.Replace(list)
	return s
}

// Snapshot returns a deep copy of the whole list.
func (s *Store) Snapshot() []Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneList(s.workspaces)
}

// Get returns a copy of the workspace at index.
func (s *Store) Get(index int) (Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.workspaces) {
		return Workspace{}, fmt.Errorf("workspace index %d out of range", index)
	}
	return s.workspaces[index].Clone(), nil
}

// Find returns the index of the first workspace named name.
func (s *Store) Find(name string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.workspaces {
		if s.workspaces[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// View runs fn with read access to the list without copying it. fn must not
// retain or modify the slice.
func (s *Store) View(fn func([]Workspace)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.workspaces)
}

// Replace swaps in a copy of list.
func (s *Store) Replace(list []Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces = cloneList(list)
}

// Update runs fn with exclusive access to the list. fn may modify entries
// in place, append or remove, and returns the new slice.
func (s *Store) Update(fn func([]Workspace) ([]Workspace, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.workspaces)
	if err != nil {
		return err
	}
	s.workspaces = next
	return nil
}

// UpdateAt runs fn on the workspace at index under the lock.
func (s *Store) UpdateAt(index int, fn func(*Workspace) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.workspaces) {
		return fmt.Errorf("workspace index %d out of range", index)
	}
	return fn(&s.workspaces[index])
}

func cloneList(list []Workspace) []Workspace {
	if list == nil {
		return []Workspace{}
	}
	out := make([]Workspace, len(list))
	for i := range list {
		out[i] = list[i].Clone()
	}
	return out
}
