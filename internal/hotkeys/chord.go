package hotkeys

import (
	"fmt"
	"strings"
)

// Modifier is a bit set of chord modifiers.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModWin
)

type modifierInfo struct {
	mod     Modifier
	name    string
	keysyms []string
	xmask   string
}

// modifierOrder is also the canonical order of modifiers in a chord string.
var modifierOrder = []modifierInfo{
	{ModCtrl, "Ctrl", []string{"Control_L", "Control_R"}, "Control"},
	{ModAlt, "Alt", []string{"Alt_L", "Alt_R"}, "Mod1"},
	{ModShift, "Shift", []string{"Shift_L", "Shift_R"}, "Shift"},
	{ModWin, "Win", []string{"Super_L", "Super_R"}, "Mod4"},
}

var modifierAliases = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"shift":   ModShift,
	"win":     ModWin,
	"super":   ModWin,
}

// KeyState answers whether the key producing a keysym is held down. One
// value should describe a single instant so a chord is checked consistently.
type KeyState interface {
	Pressed(keysym string) bool
}

// ParseError reports a chord string that does not describe a usable hotkey.
type ParseError struct {
	Chord  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid hotkey %q: %s", e.Chord, e.Reason)
}

// Key is the primary (non-modifier) key of a chord.
type Key struct {
	// Name is the canonical upper-case table name, e.g. "F1" or "NUMPAD5".
	Name string
	// Keysyms are the X keysyms that count as this key being down.
	Keysyms []string
}

// Chord is a parsed hotkey: a modifier set plus one primary key.
type Chord struct {
	Mods Modifier
	Key  Key
}

// Parse turns "Ctrl+Alt+H" style text into a Chord. Tokens are separated by
// '+', surrounding whitespace is ignored, and every token but the last must
// be a modifier.
func Parse(chord string) (Chord, error) {
	if strings.TrimSpace(chord) == "" {
		return Chord{}, &ParseError{Chord: chord, Reason: "empty chord"}
	}

	parts := strings.Split(chord, "+")
	var c Chord
	for i, raw := range parts {
		token := strings.TrimSpace(raw)
		if token == "" {
			return Chord{}, &ParseError{Chord: chord, Reason: "empty token"}
		}
		if i == len(parts)-1 {
			key, ok := lookupKey(token)
			if !ok {
				return Chord{}, &ParseError{Chord: chord, Reason: fmt.Sprintf("unknown key %q", token)}
			}
			c.Key = key
			break
		}
		mod, ok := modifierAliases[strings.ToLower(token)]
		if !ok {
			return Chord{}, &ParseError{Chord: chord, Reason: fmt.Sprintf("%q is not a modifier", token)}
		}
		c.Mods |= mod
	}
	return c, nil
}

// MustParse is Parse for chords known at compile time.
func MustParse(chord string) Chord {
	c, err := Parse(chord)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the canonical form, e.g. "Ctrl+Alt+H". Equal chords have
// equal strings regardless of how they were written.
func (c Chord) String() string {
	var b strings.Builder
	for _, m := range modifierOrder {
		if c.Mods&m.mod != 0 {
			b.WriteString(m.name)
			b.WriteByte('+')
		}
	}
	b.WriteString(c.Key.Name)
	return b.String()
}

// IsZero reports whether c is the zero Chord.
func (c Chord) IsZero() bool {
	return c.Mods == 0 && c.Key.Name == ""
}

// IsPressed reports whether every modifier and the primary key are down in
// state. Each modifier is satisfied by either its left or right key.
func (c Chord) IsPressed(state KeyState) bool {
	if c.IsZero() {
		return false
	}
	for _, m := range modifierOrder {
		if c.Mods&m.mod == 0 {
			continue
		}
		if !anyPressed(state, m.keysyms) {
			return false
		}
	}
	return anyPressed(state, c.Key.Keysyms)
}

// Keybind renders c in xgbutil keybind notation for a passive grab, e.g.
// "Control-Mod1-h". It uses the first keysym of the primary key.
func (c Chord) Keybind() string {
	var parts []string
	for _, m := range modifierOrder {
		if c.Mods&m.mod != 0 {
			parts = append(parts, m.xmask)
		}
	}
	if len(c.Key.Keysyms) > 0 {
		parts = append(parts, c.Key.Keysyms[0])
	}
	return strings.Join(parts, "-")
}

func anyPressed(state KeyState, keysyms []string) bool {
	for _, sym := range keysyms {
		if state.Pressed(sym) {
			return true
		}
	}
	return false
}
