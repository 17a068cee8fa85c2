package hid

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyName maps HID usage codes to the names accepted in keymap files.
var KeyName = map[uint8]string{
	KeyA: "A", KeyB: "B", KeyC: "C", KeyD: "D", KeyE: "E", KeyF: "F", KeyG: "G",
	KeyH: "H", KeyI: "I", KeyJ: "J", KeyK: "K", KeyL: "L", KeyM: "M", KeyN: "N",
	KeyO: "O", KeyP: "P", KeyQ: "Q", KeyR: "R", KeyS: "S", KeyT: "T", KeyU: "U",
	KeyV: "V", KeyW: "W", KeyX: "X", KeyY: "Y", KeyZ: "Z",

	Key1: "1", Key2: "2", Key3: "3", Key4: "4", Key5: "5",
	Key6: "6", Key7: "7", Key8: "8", Key9: "9", Key0: "0",

	KeyEnter:      "Enter",
	KeyEscape:     "Escape",
	KeyBackspace:  "Backspace",
	KeyTab:        "Tab",
	KeySpace:      "Space",
	KeyMinus:      "Minus",
	KeyEqual:      "Equal",
	KeyLeftBrace:  "LeftBrace",
	KeyRightBrace: "RightBrace",
	KeyBackslash:  "Backslash",
	KeySemicolon:  "Semicolon",
	KeyApostrophe: "Apostrophe",
	KeyGrave:      "Grave",
	KeyComma:      "Comma",
	KeyPeriod:     "Period",
	KeySlash:      "Slash",
	KeyCapsLock:   "CapsLock",

	KeyF1: "F1", KeyF2: "F2", KeyF3: "F3", KeyF4: "F4", KeyF5: "F5", KeyF6: "F6",
	KeyF7: "F7", KeyF8: "F8", KeyF9: "F9", KeyF10: "F10", KeyF11: "F11", KeyF12: "F12",

	KeyPrintScreen: "PrintScreen",
	KeyScrollLock:  "ScrollLock",
	KeyPause:       "Pause",
	KeyInsert:      "Insert",
	KeyHome:        "Home",
	KeyPageUp:      "PageUp",
	KeyDelete:      "Delete",
	KeyEnd:         "End",
	KeyPageDown:    "PageDown",

	KeyRight: "Right",
	KeyLeft:  "Left",
	KeyDown:  "Down",
	KeyUp:    "Up",

	KeyApplication: "Application",
	KeyMute:        "Mute",
	KeyVolumeUp:    "VolumeUp",
	KeyVolumeDown:  "VolumeDown",
}

var keyByName = func() map[string]uint8 {
	m := make(map[string]uint8, len(KeyName)+4)
	for code, name := range KeyName {
		m[strings.ToLower(name)] = code
	}
	// Common alternative spellings.
	m["arrowup"] = KeyUp
	m["arrowdown"] = KeyDown
	m["arrowleft"] = KeyLeft
	m["arrowright"] = KeyRight
	m["return"] = KeyEnter
	m["esc"] = KeyEscape
	m["del"] = KeyDelete
	m["prtscr"] = KeyPrintScreen
	return m
}()

// ParseKey resolves a key name (case-insensitive) or a numeric usage code
// ("0x4a", "74") to its HID usage code.
func ParseKey(s string) (uint8, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return 0, fmt.Errorf("empty key name")
	}
	if code, ok := keyByName[name]; ok {
		return code, nil
	}
	if n, err := strconv.ParseUint(name, 0, 8); err == nil {
		return uint8(n), nil
	}
	return 0, fmt.Errorf("unknown key %q", s)
}

// FormatKey returns the keymap-file name of a usage code, or its hex form.
func FormatKey(code uint8) string {
	if name, ok := KeyName[code]; ok {
		return name
	}
	return fmt.Sprintf("0x%02x", code)
}

var modifierNames = []struct {
	name string
	bit  uint8
}{
	{"ctrl", ModLeftCtrl},
	{"shift", ModLeftShift},
	{"alt", ModLeftAlt},
	{"gui", ModLeftGUI},
	{"right-ctrl", ModRightCtrl},
	{"right-shift", ModRightShift},
	{"right-alt", ModRightAlt},
	{"right-gui", ModRightGUI},
}

// ParseModifier resolves a modifier name to its bit. "left-" prefixes and the
// aliases "control", "win", "cmd" and "meta" are accepted.
func ParseModifier(s string) (uint8, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "left-")
	switch name {
	case "control":
		name = "ctrl"
	case "win", "cmd", "meta", "super":
		name = "gui"
	}
	for _, m := range modifierNames {
		if m.name == name {
			return m.bit, nil
		}
	}
	return 0, fmt.Errorf("unknown modifier %q", s)
}

// ModifierNames splits a modifier mask into its names, lowest bit first.
func ModifierNames(mask uint8) []string {
	var out []string
	for _, m := range modifierNames {
		if mask&m.bit != 0 {
			out = append(out, m.name)
		}
	}
	return out
}
