package platform

import (
	"errors"
	"fmt"
)

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID      WindowID
	Title   string
	Desktop int
	Bounds  Rect
}

// ErrStaleWindow is returned when an identifier no longer resolves to a live window.
var ErrStaleWindow = errors.New("window no longer exists")

// GeometryError reports a failed native geometry call for a single window.
type GeometryError struct {
	Op     string
	Window WindowID
	Err    error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%s window 0x%x: %v", e.Op, uint32(e.Window), e.Err)
}

func (e *GeometryError) Unwrap() error {
	return e.Err
}

// Driver is the raw native window-system surface. Implementations do not
// check liveness or order calls; Port does that.
type Driver interface {
	Exists(id WindowID) bool
	Geometry(id WindowID) (Rect, error)
	MoveResize(id WindowID, r Rect) error
	Minimized(id WindowID) (bool, error)
	Unminimize(id WindowID) error
	Activate(id WindowID) error
}

// Geometry is the capability every higher component uses to read and write
// window rectangles.
type Geometry interface {
	Rect(id WindowID) (Rect, error)
	SetRect(id WindowID, r Rect) error
	IsLive(id WindowID) bool
	RestoreIfMinimized(id WindowID) error
	Activate(id WindowID) error
}

// Backend abstracts the window-system queries used outside the toggle path:
// window enumeration, focus, displays and virtual desktops.
type Backend interface {
	Driver
	Displays() ([]Display, error)
	PrimaryDisplay() (Display, error)
	ActiveWindow() (WindowID, error)
	Title(id WindowID) string
	ListWindows() ([]Window, error)
	DesktopCount() int
	SetWindowDesktop(id WindowID, desktop int) error
}
