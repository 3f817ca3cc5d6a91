package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// keycodeCache memoizes keysym name to keycode lookups. It is flushed when
// the server announces a new keyboard mapping.
type keycodeCache struct {
	mu    sync.Mutex
	codes map[string][]xproto.Keycode
}

func newKeycodeCache() *keycodeCache {
	return &keycodeCache{codes: make(map[string][]xproto.Keycode)}
}

func (k *keycodeCache) lookup(xu *xgbutil.XUtil, keysym string) []xproto.Keycode {
	k.mu.Lock()
	defer k.mu.Unlock()
	if codes, ok := k.codes[keysym]; ok {
		return codes
	}
	codes := keybind.StrToKeycodes(xu, keysym)
	k.codes[keysym] = codes
	return codes
}

func (k *keycodeCache) flush() {
	k.mu.Lock()
	k.codes = make(map[string][]xproto.Keycode)
	k.mu.Unlock()
}

// WatchKeyboardMapping drops cached keycodes whenever the keyboard layout
// changes. Events are only delivered while EventLoop runs.
func (c *Connection) WatchKeyboardMapping() {
	xevent.MappingNotifyFun(func(xu *xgbutil.XUtil, e xevent.MappingNotifyEvent) {
		if e.Request == xproto.MappingKeyboard {
			c.keymap.flush()
			configureIgnoreMods(xu)
		}
	}).Connect(c.XUtil, xevent.NoWindow)
}

// Keymap is one sample of the physical keyboard state.
type Keymap struct {
	conn *Connection
	keys []byte
}

// QueryKeymap samples which keys are currently held down.
func (c *Connection) QueryKeymap() (*Keymap, error) {
	reply, err := xproto.QueryKeymap(c.XUtil.Conn()).Reply()
	if err != nil {
		return nil, fmt.Errorf("query keymap: %w", err)
	}
	return &Keymap{conn: c, keys: reply.Keys}, nil
}

// Pressed reports whether any keycode producing keysym was down when the
// sample was taken. Unknown keysyms are never pressed.
func (m *Keymap) Pressed(keysym string) bool {
	for _, code := range m.conn.keymap.lookup(m.conn.XUtil, keysym) {
		idx := int(code) / 8
		if idx < len(m.keys) && m.keys[idx]&(1<<(uint(code)%8)) != 0 {
			return true
		}
	}
	return false
}

// GrabKey takes a passive grab of a keybind string such as "Control-Mod1-h"
// on the root window, for every combination of lock modifiers.
func (c *Connection) GrabKey(binding string) error {
	mods, codes, err := keybind.ParseString(c.XUtil, binding)
	if err != nil {
		return err
	}
	for _, code := range codes {
		if err := keybind.GrabChecked(c.XUtil, c.Root, mods, code); err != nil {
			c.UngrabKey(binding)
			return fmt.Errorf("grab %s: %w", binding, err)
		}
	}
	return nil
}

// UngrabKey releases a grab taken by GrabKey.
func (c *Connection) UngrabKey(binding string) {
	mods, codes, err := keybind.ParseString(c.XUtil, binding)
	if err != nil {
		return
	}
	for _, code := range codes {
		keybind.Ungrab(c.XUtil, c.Root, mods, code)
	}
}

// configureIgnoreMods makes grabs match regardless of CapsLock, NumLock and
// ScrollLock state.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	unique := map[uint16]struct{}{0: {}}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		unique[mask] = struct{}{}
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}
	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
