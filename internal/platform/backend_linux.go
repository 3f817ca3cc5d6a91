//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/1broseidon/multimanager/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

func (b *LinuxBackend) Exists(id WindowID) bool {
	return b.conn.WindowExists(xproto.Window(id))
}

func (b *LinuxBackend) Geometry(id WindowID) (Rect, error) {
	x, y, w, h, err := b.conn.WindowGeometry(xproto.Window(id))
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: x, Y: y, Width: w, Height: h}, nil
}

func (b *LinuxBackend) MoveResize(id WindowID, r Rect) error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", r.Width, r.Height)
	}
	return b.conn.MoveResizeWindow(xproto.Window(id), r.X, r.Y, r.Width, r.Height)
}

func (b *LinuxBackend) Minimized(id WindowID) (bool, error) {
	return b.conn.IsMinimized(xproto.Window(id))
}

func (b *LinuxBackend) Unminimize(id WindowID) error {
	return b.conn.RestoreWindow(xproto.Window(id))
}

func (b *LinuxBackend) Activate(id WindowID) error {
	return b.conn.FocusWindow(xproto.Window(id))
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}
	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})
	return displays, nil
}

// PrimaryDisplay returns the display flagged primary by RandR.
func (b *LinuxBackend) PrimaryDisplay() (Display, error) {
	m, err := b.conn.GetPrimaryMonitor()
	if err != nil {
		return Display{}, err
	}
	return displayFromMonitor(m), nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	wid, err := b.conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

func (b *LinuxBackend) Title(id WindowID) string {
	return b.conn.WindowTitle(xproto.Window(id))
}

// ListWindows lists visible normal windows on every desktop.
func (b *LinuxBackend) ListWindows() ([]Window, error) {
	clients, err := b.conn.ClientWindows()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, windowID := range clients {
		if !b.conn.IsNormalWindow(windowID) {
			continue
		}
		if hidden, _ := b.conn.IsMinimized(windowID); hidden {
			continue
		}
		x, y, w, h, err := b.conn.WindowGeometry(windowID)
		if err != nil {
			continue
		}
		desktop, err := b.conn.GetWindowDesktop(windowID)
		if err != nil {
			desktop = 0
		}
		windows = append(windows, Window{
			ID:      WindowID(windowID),
			Title:   b.conn.WindowTitle(windowID),
			Desktop: desktop,
			Bounds:  Rect{X: x, Y: y, Width: w, Height: h},
		})
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].ID < windows[j].ID
	})
	return windows, nil
}

// DesktopCount returns the number of EWMH desktops, or 1 when the window
// manager does not publish them.
func (b *LinuxBackend) DesktopCount() int {
	n, err := b.conn.GetDesktopCount()
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (b *LinuxBackend) SetWindowDesktop(id WindowID, desktop int) error {
	return b.conn.SetWindowDesktop(xproto.Window(id), desktop)
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:   m.ID,
		Name: m.Name,
		Bounds: Rect{
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		},
	}
}
