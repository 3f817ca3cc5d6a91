package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/multimanager/internal/hotkeys"
	"github.com/1broseidon/multimanager/internal/platform"
	"github.com/1broseidon/multimanager/internal/prompt"
)

// WindowSource answers the focus and title queries used to capture windows.
type WindowSource interface {
	ActiveWindow() (platform.WindowID, error)
	Title(id platform.WindowID) string
}

// ManagerOptions wires a Manager. Registry, Prompter and Logger may be nil.
type ManagerOptions struct {
	Geometry       platform.Geometry
	Windows        WindowSource
	Registry       *hotkeys.Registry
	Prompter       prompt.Prompter
	Logger         *slog.Logger
	WorkspacesPath string
	BindingsPath   string
}

// Trigger records the most recent hotkey activation, for display only.
type Trigger struct {
	Workspace string
	Chord     string
	At        time.Time
}

// Manager coordinates the workspace list, hotkey registrations and toggles.
// Window-system calls are always made outside the store lock.
type Manager struct {
	store    *Store
	registry *hotkeys.Registry
	engine   *Engine
	geom     platform.Geometry
	windows  WindowSource
	prompter prompt.Prompter
	logger   *slog.Logger

	workspacesPath string
	bindingsPath   string

	lastMu sync.Mutex
	last   Trigger
}

// NewManager creates a manager with an empty workspace list.
func NewManager(opts ManagerOptions) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := opts.Registry
	if registry == nil {
		registry = hotkeys.NewRegistry(nil, logger)
	}
	prompter := opts.Prompter
	if prompter == nil {
		prompter = prompt.Auto{Logger: logger}
	}
	return &Manager{
		store:          NewStore(nil),
		registry:       registry,
		engine:         NewEngine(opts.Geometry, logger),
		geom:           opts.Geometry,
		windows:        opts.Windows,
		prompter:       prompter,
		logger:         logger,
		workspacesPath: opts.WorkspacesPath,
		bindingsPath:   opts.BindingsPath,
	}
}

// Workspaces returns a copy of the current list.
func (m *Manager) Workspaces() []Workspace {
	return m.store.Snapshot()
}

// Find returns the index of the first workspace named name.
func (m *Manager) Find(name string) (int, error) {
	i, ok := m.store.Find(name)
	if !ok {
		return -1, fmt.Errorf("workspace %q not found", name)
	}
	return i, nil
}

// Load replaces the list with the workspaces file, refreshes validity,
// applies the bindings file when present and registers hotkeys. Existing
// registrations are released first.
func (m *Manager) Load() error {
	m.UnregisterHotkeys()

	list, err := ReadList(m.workspacesPath)
	if err != nil {
		// keep serving the list we already have
		m.RegisterHotkeys()
		return err
	}
	valid := RefreshValidity(list, m.geom)
	m.store.Replace(list)
	m.logger.Info("workspaces loaded", "path", m.workspacesPath, "workspaces", len(list), "valid_windows", valid)

	if m.bindingsPath != "" {
		stats, err := m.LoadBindings()
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			m.logger.Warn("bindings not applied", "error", err)
		default:
			m.logger.Info("bindings applied", "restored", stats.Restored,
				"invalidated", stats.Invalidated, "unmatched", stats.Unmatched)
		}
	}

	m.RegisterHotkeys()
	return nil
}

// Reload releases every hotkey and loads the list again.
func (m *Manager) Reload() error {
	return m.Load()
}

// Save writes the workspace list.
func (m *Manager) Save() error {
	return WriteList(m.workspacesPath, m.store.Snapshot())
}

// RegisterHotkeys registers every enabled workspace's chord. Failures are
// logged and leave that workspace inert. It returns how many chords were
// registered.
func (m *Manager) RegisterHotkeys() int {
	registered := 0
	for i, ws := range m.store.Snapshot() {
		if m.registerOne(i, ws) {
			registered++
		}
	}
	return registered
}

// UnregisterHotkeys releases every registration.
func (m *Manager) UnregisterHotkeys() {
	m.registry.Reset()
}

func (m *Manager) registerOne(index int, ws Workspace) bool {
	if ws.Disabled || ws.Hotkey == "" {
		return false
	}
	chord, err := hotkeys.Parse(ws.Hotkey)
	if err != nil {
		m.logger.Warn("workspace hotkey ignored", "workspace", ws.Name, "error", err)
		return false
	}
	if err := m.registry.Register(chord, index); err != nil {
		m.logger.Warn("hotkey registration failed; workspace is inert", "workspace", ws.Name, "hotkey", chord.String(), "error", err)
		return false
	}
	return true
}

func (m *Manager) unregisterOne(index int, ws Workspace) {
	if ws.Hotkey == "" {
		return
	}
	if chord, err := hotkeys.Parse(ws.Hotkey); err == nil {
		m.registry.Unregister(chord, index)
	}
}

// Add appends a workspace. hotkey may be empty.
func (m *Manager) Add(name, hotkey string) (int, error) {
	if err := ValidateName(name); err != nil {
		return -1, err
	}
	canonical, err := canonicalHotkey(hotkey)
	if err != nil {
		return -1, err
	}

	if canonical != "" {
		if _, ok := m.registry.Owner(hotkeys.MustParse(canonical)); ok {
			return -1, fmt.Errorf("%s: %w", canonical, hotkeys.ErrChordInUse)
		}
	}

	ws := Workspace{Name: name, Hotkey: canonical, Windows: []WindowEntry{}}
	index := -1
	m.store.Update(func(list []Workspace) ([]Workspace, error) {
		index = len(list)
		return append(list, ws), nil
	})
	m.registerOne(index, ws)
	return index, nil
}

// Delete removes a workspace after releasing its hotkey. Later workspaces
// shift down, so every registration is rebuilt.
func (m *Manager) Delete(index int) error {
	if _, err := m.store.Get(index); err != nil {
		return err
	}
	m.UnregisterHotkeys()
	err := m.store.Update(func(list []Workspace) ([]Workspace, error) {
		if index >= len(list) {
			return nil, fmt.Errorf("workspace index %d out of range", index)
		}
		return append(list[:index], list[index+1:]...), nil
	})
	m.RegisterHotkeys()
	return err
}

// MoveWorkspace moves a workspace from one position to another. Indexes in
// between shift, so every registration is rebuilt.
func (m *Manager) MoveWorkspace(from, to int) error {
	if _, err := m.store.Get(from); err != nil {
		return err
	}
	m.UnregisterHotkeys()
	err := m.store.Update(func(list []Workspace) ([]Workspace, error) {
		n := len(list)
		if from < 0 || from >= n || to < 0 || to >= n {
			return nil, fmt.Errorf("workspace move %d -> %d out of range", from, to)
		}
		ws := list[from]
		list = append(list[:from], list[from+1:]...)
		return append(list[:to], append([]Workspace{ws}, list[to:]...)...), nil
	})
	m.RegisterHotkeys()
	return err
}

// Rename changes a workspace's name.
func (m *Manager) Rename(index int, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return m.store.UpdateAt(index, func(ws *Workspace) error {
		ws.Name = name
		return nil
	})
}

// SetHotkey assigns a new chord. An unparsable chord returns a
// *hotkeys.ParseError and a chord held by another workspace returns
// hotkeys.ErrChordInUse; in both cases the old assignment is kept.
func (m *Manager) SetHotkey(index int, hotkey string) error {
	canonical, err := canonicalHotkey(hotkey)
	if err != nil {
		return err
	}
	old, err := m.store.Get(index)
	if err != nil {
		return err
	}

	if canonical != "" {
		chord := hotkeys.MustParse(canonical)
		if owner, ok := m.registry.Owner(chord); ok && owner != index {
			return fmt.Errorf("%s: %w", canonical, hotkeys.ErrChordInUse)
		}
	}

	m.unregisterOne(index, old)
	var updated Workspace
	if err := m.store.UpdateAt(index, func(ws *Workspace) error {
		ws.Hotkey = canonical
		updated = ws.Clone()
		return nil
	}); err != nil {
		return err
	}
	m.registerOne(index, updated)
	return nil
}

// SetDisabled enables or disables a workspace's hotkey.
func (m *Manager) SetDisabled(index int, disabled bool) error {
	var updated Workspace
	if err := m.store.UpdateAt(index, func(ws *Workspace) error {
		ws.Disabled = disabled
		updated = ws.Clone()
		return nil
	}); err != nil {
		return err
	}
	if disabled {
		m.unregisterOne(index, updated)
	} else {
		m.registerOne(index, updated)
	}
	return nil
}

// SetRotate switches rotation mode and resets the rotation cursor.
func (m *Manager) SetRotate(index int, rotate bool) error {
	return m.store.UpdateAt(index, func(ws *Workspace) error {
		ws.Rotate = rotate
		ws.CurrentIndex = 0
		return nil
	})
}

// CaptureActiveWindow appends the focused window to a workspace, using its
// current rectangle as both home and target.
func (m *Manager) CaptureActiveWindow(index int) (WindowEntry, error) {
	if m.windows == nil {
		return WindowEntry{}, fmt.Errorf("no window source configured")
	}
	id, err := m.windows.ActiveWindow()
	if err != nil {
		return WindowEntry{}, fmt.Errorf("failed to get active window: %w", err)
	}
	return m.CaptureWindow(index, id)
}

// CaptureWindow appends window id to a workspace.
func (m *Manager) CaptureWindow(index int, id platform.WindowID) (WindowEntry, error) {
	r, err := m.geom.Rect(id)
	if err != nil {
		return WindowEntry{}, err
	}
	entry := WindowEntry{ID: id, Home: r, Target: r, Valid: true}
	if m.windows != nil {
		entry.Title = m.windows.Title(id)
	}
	err = m.store.UpdateAt(index, func(ws *Workspace) error {
		ws.Windows = append(ws.Windows, entry)
		return nil
	})
	return entry, err
}

// RecaptureWindow rebinds an existing entry to the focused window, keeping
// its home and target rectangles.
func (m *Manager) RecaptureWindow(index, window int) (WindowEntry, error) {
	if m.windows == nil {
		return WindowEntry{}, fmt.Errorf("no window source configured")
	}
	id, err := m.windows.ActiveWindow()
	if err != nil {
		return WindowEntry{}, fmt.Errorf("failed to get active window: %w", err)
	}
	if id == 0 || !m.geom.IsLive(id) {
		return WindowEntry{}, fmt.Errorf("window %d is not available", id)
	}
	title := m.windows.Title(id)

	var entry WindowEntry
	err = m.store.UpdateAt(index, func(ws *Workspace) error {
		if window < 0 || window >= len(ws.Windows) {
			return fmt.Errorf("window index %d out of range", window)
		}
		w := &ws.Windows[window]
		w.ID = id
		w.Title = title
		w.Valid = true
		entry = *w
		return nil
	})
	return entry, err
}

// RemoveWindow drops one window entry.
func (m *Manager) RemoveWindow(index, window int) error {
	return m.store.UpdateAt(index, func(ws *Workspace) error {
		if window < 0 || window >= len(ws.Windows) {
			return fmt.Errorf("window index %d out of range", window)
		}
		ws.Windows = append(ws.Windows[:window], ws.Windows[window+1:]...)
		ws.CurrentIndex = clampCursor(ws.CurrentIndex, len(ws.Windows))
		return nil
	})
}

// MoveWindow moves a window entry from one position to another.
func (m *Manager) MoveWindow(index, from, to int) error {
	return m.store.UpdateAt(index, func(ws *Workspace) error {
		n := len(ws.Windows)
		if from < 0 || from >= n || to < 0 || to >= n {
			return fmt.Errorf("window move %d -> %d out of range", from, to)
		}
		entry := ws.Windows[from]
		ws.Windows = append(ws.Windows[:from], ws.Windows[from+1:]...)
		ws.Windows = append(ws.Windows[:to], append([]WindowEntry{entry}, ws.Windows[to:]...)...)
		return nil
	})
}

// SetHome records a window's current rectangle as its home.
func (m *Manager) SetHome(index, window int) (platform.Rect, error) {
	return m.recordRect(index, window, func(w *WindowEntry, r platform.Rect) { w.Home = r })
}

// SetTarget records a window's current rectangle as its target.
func (m *Manager) SetTarget(index, window int) (platform.Rect, error) {
	return m.recordRect(index, window, func(w *WindowEntry, r platform.Rect) { w.Target = r })
}

func (m *Manager) recordRect(index, window int, set func(*WindowEntry, platform.Rect)) (platform.Rect, error) {
	ws, err := m.store.Get(index)
	if err != nil {
		return platform.Rect{}, err
	}
	if window < 0 || window >= len(ws.Windows) {
		return platform.Rect{}, fmt.Errorf("window index %d out of range", window)
	}
	id := ws.Windows[window].ID
	r, err := m.geom.Rect(id)
	if err != nil {
		return platform.Rect{}, err
	}
	err = m.store.UpdateAt(index, func(ws *Workspace) error {
		if window >= len(ws.Windows) || ws.Windows[window].ID != id {
			return fmt.Errorf("workspace %q changed while reading geometry", ws.Name)
		}
		set(&ws.Windows[window], r)
		return nil
	})
	return r, err
}

// Toggle applies one toggle to the workspace at index. Geometry calls run on
// a copy; only the rotation cursor is written back, and only if the
// workspace was not restructured meanwhile.
func (m *Manager) Toggle(index int) (ToggleResult, error) {
	ws, err := m.store.Get(index)
	if err != nil {
		return ToggleResult{}, err
	}
	res := m.engine.Toggle(&ws)
	if !ws.Rotating() {
		return res, nil
	}

	m.store.UpdateAt(index, func(cur *Workspace) error {
		if cur.Name == ws.Name && len(cur.Windows) == len(ws.Windows) {
			cur.CurrentIndex = ws.CurrentIndex
		}
		return nil
	})
	return res, nil
}

// SendHome moves one workspace's windows home.
func (m *Manager) SendHome(index int) (ToggleResult, error) {
	ws, err := m.store.Get(index)
	if err != nil {
		return ToggleResult{}, err
	}
	return m.engine.SendHome(ws), nil
}

// SendAllHome moves every workspace's windows home. When no captured
// window is live the user is told so and nothing moves.
func (m *Manager) SendAllHome() ToggleResult {
	list := m.store.Snapshot()
	live := 0
	for _, ws := range list {
		live += m.engine.LiveCount(ws)
	}
	if live == 0 {
		m.prompter.Notify("No captured windows are currently available to send home.", "Send Windows Home")
		return ToggleResult{Direction: ToHome}
	}

	total := ToggleResult{Direction: ToHome}
	for _, ws := range list {
		res := m.engine.SendHome(ws)
		total.Moved += res.Moved
		total.Skipped += res.Skipped
		total.Failed += res.Failed
	}
	return total
}

// PressedWorkspaces returns, in list order, the indices of enabled
// workspaces whose chord is held in state and registered to them.
func (m *Manager) PressedWorkspaces(state hotkeys.KeyState) []int {
	var pressed []int
	m.store.View(func(list []Workspace) {
		for i := range list {
			ws := &list[i]
			if ws.Disabled || ws.Hotkey == "" {
				continue
			}
			chord, err := hotkeys.Parse(ws.Hotkey)
			if err != nil || !chord.IsPressed(state) {
				continue
			}
			if owner, ok := m.registry.Owner(chord); !ok || owner != i {
				continue
			}
			pressed = append(pressed, i)
		}
	})
	return pressed
}

// RecordTrigger remembers the last fired workspace.
func (m *Manager) RecordTrigger(index int, at time.Time) {
	ws, err := m.store.Get(index)
	if err != nil {
		return
	}
	m.lastMu.Lock()
	m.last = Trigger{Workspace: ws.Name, Chord: ws.Hotkey, At: at}
	m.lastMu.Unlock()
}

// LastTriggered returns the most recent trigger, if any.
func (m *Manager) LastTriggered() (Trigger, bool) {
	m.lastMu.Lock()
	defer m.lastMu.Unlock()
	return m.last, !m.last.At.IsZero()
}

// ValidateWindows refreshes every entry's valid flag and returns how many
// are valid. Entries whose id was captured after liveness was gathered keep
// their current flag until the next pass.
func (m *Manager) ValidateWindows() int {
	live := m.liveSet(nil)
	valid := 0
	m.store.Update(func(list []Workspace) ([]Workspace, error) {
		valid = 0
		for i := range list {
			for j := range list[i].Windows {
				w := &list[i].Windows[j]
				if ok, known := live.lookup(w.ID); known || w.ID == 0 {
					w.Valid = ok
				}
				if w.Valid {
					valid++
				}
			}
		}
		return list, nil
	})
	return valid
}

// SaveBindings captures live window ids and writes the bindings file. It
// returns how many windows were captured.
func (m *Manager) SaveBindings() (int, error) {
	bindings := CaptureBindings(m.store.Snapshot(), m.geom)
	if err := WriteBindings(m.bindingsPath, bindings); err != nil {
		return 0, err
	}
	n := 0
	for _, b := range bindings {
		n += len(b.Windows)
	}
	m.logger.Info("bindings saved", "path", m.bindingsPath, "workspaces", len(bindings), "windows", n)
	return n, nil
}

// LoadBindings reads the bindings file and applies it to the list.
func (m *Manager) LoadBindings() (BindingStats, error) {
	bindings, err := ReadBindings(m.bindingsPath)
	if err != nil {
		return BindingStats{}, err
	}

	live := m.liveSet(bindings)
	var stats BindingStats
	m.store.Update(func(list []Workspace) ([]Workspace, error) {
		stats = ApplyBindings(list, bindings, live)
		return list, nil
	})
	return stats, nil
}

// liveSet queries liveness for every id in the list and in bindings, so the
// answers can be used later under the store lock.
func (m *Manager) liveSet(bindings []WorkspaceBinding) liveSet {
	set := make(liveSet)
	check := func(id platform.WindowID) {
		if _, seen := set[id]; !seen && id != 0 {
			set[id] = m.geom.IsLive(id)
		}
	}
	for _, ws := range m.store.Snapshot() {
		for _, w := range ws.Windows {
			check(w.ID)
		}
	}
	for _, b := range bindings {
		for _, w := range b.Windows {
			check(w.ID)
		}
	}
	return set
}

type liveSet map[platform.WindowID]bool

func (s liveSet) IsLive(id platform.WindowID) bool { return s[id] }

func (s liveSet) lookup(id platform.WindowID) (live, known bool) {
	live, known = s[id]
	return live, known
}

func canonicalHotkey(hotkey string) (string, error) {
	if hotkey == "" {
		return "", nil
	}
	chord, err := hotkeys.Parse(hotkey)
	if err != nil {
		return "", err
	}
	return chord.String(), nil
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	return cursor % n
}
