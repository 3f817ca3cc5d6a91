package hotkeys

import (
	"fmt"

	"github.com/1broseidon/multimanager/internal/x11"
)

// X11Keyboard samples key state from the X server and grabs chords on the
// root window.
type X11Keyboard struct {
	conn *x11.Connection
}

var _ Grabber = (*X11Keyboard)(nil)

// NewX11Keyboard wraps an open connection.
func NewX11Keyboard(conn *x11.Connection) *X11Keyboard {
	conn.WatchKeyboardMapping()
	return &X11Keyboard{conn: conn}
}

// SampleKeys takes one snapshot of the whole keyboard.
func (k *X11Keyboard) SampleKeys() (KeyState, error) {
	keymap, err := k.conn.QueryKeymap()
	if err != nil {
		return nil, err
	}
	return keymap, nil
}

func (k *X11Keyboard) Grab(c Chord) error {
	binding := c.Keybind()
	if binding == "" {
		return fmt.Errorf("chord %s has no keysym", c)
	}
	return k.conn.GrabKey(binding)
}

func (k *X11Keyboard) Ungrab(c Chord) {
	k.conn.UngrabKey(c.Keybind())
}
