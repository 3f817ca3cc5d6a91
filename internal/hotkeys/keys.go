package hotkeys

import (
	"fmt"
	"strings"
)

// keyTable maps upper-case key names to the X keysyms that produce them.
var keyTable = buildKeyTable()

func buildKeyTable() map[string][]string {
	t := map[string][]string{
		"UP":    {"Up"},
		"DOWN":  {"Down"},
		"LEFT":  {"Left"},
		"RIGHT": {"Right"},

		"BACKSPACE": {"BackSpace"},
		"TAB":       {"Tab"},
		"ENTER":     {"Return", "KP_Enter"},
		"SHIFT":     {"Shift_L", "Shift_R"},
		"CTRL":      {"Control_L", "Control_R"},
		"ALT":       {"Alt_L", "Alt_R"},
		"PAUSE":     {"Pause"},
		"CAPSLOCK":  {"Caps_Lock"},
		"ESCAPE":    {"Escape"},
		"SPACE":     {"space"},
		"PAGEUP":    {"Prior"},
		"PAGEDOWN":  {"Next"},
		"END":       {"End"},
		"HOME":      {"Home"},
		"INSERT":    {"Insert"},
		"DELETE":    {"Delete"},

		"OEM_PLUS":   {"equal"},
		"OEM_COMMA":  {"comma"},
		"OEM_MINUS":  {"minus"},
		"OEM_PERIOD": {"period"},
		"OEM_1":      {"semicolon"},
		"OEM_2":      {"slash"},
		"OEM_3":      {"grave"},
		"OEM_4":      {"bracketleft"},
		"OEM_5":      {"backslash"},
		"OEM_6":      {"bracketright"},
		"OEM_7":      {"apostrophe"},

		"PRINTSCREEN": {"Print"},
		"SCROLLLOCK":  {"Scroll_Lock"},
		"NUMLOCK":     {"Num_Lock"},
		"LEFTSHIFT":   {"Shift_L"},
		"RIGHTSHIFT":  {"Shift_R"},
		"LEFTCTRL":    {"Control_L"},
		"RIGHTCTRL":   {"Control_R"},
		"LEFTALT":     {"Alt_L"},
		"RIGHTALT":    {"Alt_R"},

		"NUMPADMULTIPLY":  {"KP_Multiply"},
		"NUMPADADD":       {"KP_Add"},
		"NUMPADSEPARATOR": {"KP_Separator"},
		"NUMPADSUBTRACT":  {"KP_Subtract"},
		"NUMPADDOT":       {"KP_Decimal"},
		"NUMPADDIVIDE":    {"KP_Divide"},
	}

	for i := 1; i <= 24; i++ {
		name := fmt.Sprintf("F%d", i)
		t[name] = []string{name}
	}
	for c := 'A'; c <= 'Z'; c++ {
		t[string(c)] = []string{strings.ToLower(string(c))}
	}
	for d := '0'; d <= '9'; d++ {
		t[string(d)] = []string{string(d)}
		t["NUMPAD"+string(d)] = []string{"KP_" + string(d)}
	}
	return t
}

// lookupKey resolves a primary key name case-insensitively.
func lookupKey(name string) (Key, bool) {
	upper := strings.ToUpper(name)
	syms, ok := keyTable[upper]
	if !ok {
		return Key{}, false
	}
	return Key{Name: upper, Keysyms: syms}, true
}
