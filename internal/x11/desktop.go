package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// stickyDesktop is the _NET_WM_DESKTOP value for windows shown on every desktop.
const stickyDesktop = 0xFFFFFFFF

// GetWindowDesktop returns the desktop number a window is on.
// Returns -1 for sticky windows.
func (c *Connection) GetWindowDesktop(windowID xproto.Window) (int, error) {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, windowID)
	if err != nil {
		return 0, fmt.Errorf("failed to get window desktop: %w", err)
	}
	if desktop == stickyDesktop {
		return -1, nil
	}
	return int(desktop), nil
}

// GetDesktopCount returns the number of virtual desktops.
func (c *Connection) GetDesktopCount() (int, error) {
	count, err := ewmh.NumberOfDesktopsGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get desktop count: %w", err)
	}
	return int(count), nil
}

// SetWindowDesktop moves a window to the specified virtual desktop.
// ewmh.WmDesktopReq panics on this library version (uint vs int type
// assertion), so the client message is sent directly.
func (c *Connection) SetWindowDesktop(windowID xproto.Window, desktop int) error {
	return c.sendRootMessage(windowID, "_NET_WM_DESKTOP", uint32(desktop), sourcePager)
}
