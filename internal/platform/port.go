package platform

// Port implements Geometry on top of a native Driver. It is the only path by
// which the rest of the program moves, restores or activates windows.
type Port struct {
	driver Driver
}

var _ Geometry = (*Port)(nil)

// NewPort wraps a native driver.
func NewPort(driver Driver) *Port {
	return &Port{driver: driver}
}

// IsLive reports whether id currently names an existing window.
func (p *Port) IsLive(id WindowID) bool {
	if id == 0 {
		return false
	}
	return p.driver.Exists(id)
}

// Rect returns the current outer rectangle of a window.
func (p *Port) Rect(id WindowID) (Rect, error) {
	if !p.IsLive(id) {
		return Rect{}, ErrStaleWindow
	}
	r, err := p.driver.Geometry(id)
	if err != nil {
		return Rect{}, &GeometryError{Op: "query", Window: id, Err: err}
	}
	return r, nil
}

// RestoreIfMinimized un-minimizes a window; it is a no-op for visible windows.
func (p *Port) RestoreIfMinimized(id WindowID) error {
	if !p.IsLive(id) {
		return ErrStaleWindow
	}
	minimized, err := p.driver.Minimized(id)
	if err != nil {
		return &GeometryError{Op: "query state of", Window: id, Err: err}
	}
	if !minimized {
		return nil
	}
	if err := p.driver.Unminimize(id); err != nil {
		return &GeometryError{Op: "restore", Window: id, Err: err}
	}
	return nil
}

// SetRect restores the window if needed and then moves it to r. Stacking
// order is left untouched.
func (p *Port) SetRect(id WindowID, r Rect) error {
	if err := p.RestoreIfMinimized(id); err != nil {
		return err
	}
	if err := p.driver.MoveResize(id, r); err != nil {
		return &GeometryError{Op: "move", Window: id, Err: err}
	}
	return nil
}

// Activate raises and focuses a window.
func (p *Port) Activate(id WindowID) error {
	if !p.IsLive(id) {
		return ErrStaleWindow
	}
	if err := p.driver.Activate(id); err != nil {
		return &GeometryError{Op: "activate", Window: id, Err: err}
	}
	return nil
}
