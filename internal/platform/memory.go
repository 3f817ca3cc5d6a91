package platform

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryWindow is a window tracked by MemoryDriver.
type MemoryWindow struct {
	Title     string
	Bounds    Rect
	Minimized bool
	Desktop   int
}

// MemoryDriver is an in-process window system. It backs tests and records the
// order of native calls so callers can assert on it.
type MemoryDriver struct {
	mu       sync.Mutex
	windows  map[WindowID]*MemoryWindow
	active   WindowID
	failMove map[WindowID]error
	desktops int
	display  Display
	calls    []string
}

var _ Backend = (*MemoryDriver)(nil)

// NewMemoryDriver returns an empty driver with one 1920x1080 display and one desktop.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{
		windows:  make(map[WindowID]*MemoryWindow),
		failMove: make(map[WindowID]error),
		desktops: 1,
		display:  Display{ID: 0, Name: "memory", Bounds: Rect{Width: 1920, Height: 1080}},
	}
}

// Add registers a live window.
func (d *MemoryDriver) Add(id WindowID, title string, bounds Rect) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.windows[id] = &MemoryWindow{Title: title, Bounds: bounds}
}

// Remove destroys a window.
func (d *MemoryDriver) Remove(id WindowID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.windows, id)
	if d.active == id {
		d.active = 0
	}
}

// SetMinimized flips the minimized state of a window.
func (d *MemoryDriver) SetMinimized(id WindowID, minimized bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if w, ok := d.windows[id]; ok {
		w.Minimized = minimized
	}
}

// FailMoves makes every MoveResize on id return err. A nil err clears it.
func (d *MemoryDriver) FailMoves(id WindowID, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.failMove, id)
		return
	}
	d.failMove[id] = err
}

// SetDesktopCount sets how many virtual desktops the driver reports.
func (d *MemoryDriver) SetDesktopCount(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.desktops = n
}

// SetActive marks a window as focused.
func (d *MemoryDriver) SetActive(id WindowID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = id
}

// Window returns a copy of a window's state.
func (d *MemoryDriver) Window(id WindowID) (MemoryWindow, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, ok := d.windows[id]
	if !ok {
		return MemoryWindow{}, false
	}
	return *w, true
}

// Calls returns the native calls made so far, in order.
func (d *MemoryDriver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *MemoryDriver) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *MemoryDriver) Exists(id WindowID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.windows[id]
	return ok
}

func (d *MemoryDriver) Geometry(id WindowID) (Rect, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, ok := d.windows[id]
	if !ok {
		return Rect{}, fmt.Errorf("bad window %d", id)
	}
	return w.Bounds, nil
}

func (d *MemoryDriver) MoveResize(id WindowID, r Rect) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("move %d %v", id, r)
	if err := d.failMove[id]; err != nil {
		return err
	}
	w, ok := d.windows[id]
	if !ok {
		return fmt.Errorf("bad window %d", id)
	}
	w.Bounds = r
	return nil
}

func (d *MemoryDriver) Minimized(id WindowID) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	w, ok := d.windows[id]
	if !ok {
		return false, fmt.Errorf("bad window %d", id)
	}
	return w.Minimized, nil
}

func (d *MemoryDriver) Unminimize(id WindowID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("restore %d", id)
	w, ok := d.windows[id]
	if !ok {
		return fmt.Errorf("bad window %d", id)
	}
	w.Minimized = false
	return nil
}

func (d *MemoryDriver) Activate(id WindowID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("activate %d", id)
	if _, ok := d.windows[id]; !ok {
		return fmt.Errorf("bad window %d", id)
	}
	d.active = id
	return nil
}

func (d *MemoryDriver) Displays() ([]Display, error) {
	return []Display{d.display}, nil
}

func (d *MemoryDriver) PrimaryDisplay() (Display, error) {
	return d.display, nil
}

func (d *MemoryDriver) ActiveWindow() (WindowID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active == 0 {
		return 0, fmt.Errorf("no active window")
	}
	return d.active, nil
}

func (d *MemoryDriver) Title(id WindowID) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if w, ok := d.windows[id]; ok {
		return w.Title
	}
	return ""
}

func (d *MemoryDriver) ListWindows() ([]Window, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Window, 0, len(d.windows))
	for id, w := range d.windows {
		if w.Minimized {
			continue
		}
		out = append(out, Window{ID: id, Title: w.Title, Desktop: w.Desktop, Bounds: w.Bounds})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *MemoryDriver) DesktopCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.desktops
}

func (d *MemoryDriver) SetWindowDesktop(id WindowID, desktop int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("desktop %d %d", id, desktop)
	w, ok := d.windows[id]
	if !ok {
		return fmt.Errorf("bad window %d", id)
	}
	w.Desktop = desktop
	return nil
}
