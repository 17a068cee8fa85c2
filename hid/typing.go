package hid

// charToKey maps printable ASCII to usage codes. Characters in shiftChars need
// the Shift modifier on a US layout.
var charToKey = map[byte]uint8{
	'a': KeyA, 'b': KeyB, 'c': KeyC, 'd': KeyD, 'e': KeyE, 'f': KeyF, 'g': KeyG,
	'h': KeyH, 'i': KeyI, 'j': KeyJ, 'k': KeyK, 'l': KeyL, 'm': KeyM, 'n': KeyN,
	'o': KeyO, 'p': KeyP, 'q': KeyQ, 'r': KeyR, 's': KeyS, 't': KeyT, 'u': KeyU,
	'v': KeyV, 'w': KeyW, 'x': KeyX, 'y': KeyY, 'z': KeyZ,

	'1': Key1, '2': Key2, '3': Key3, '4': Key4, '5': Key5,
	'6': Key6, '7': Key7, '8': Key8, '9': Key9, '0': Key0,

	'!': Key1, '@': Key2, '#': Key3, '$': Key4, '%': Key5,
	'^': Key6, '&': Key7, '*': Key8, '(': Key9, ')': Key0,

	'-': KeyMinus, '_': KeyMinus,
	'=': KeyEqual, '+': KeyEqual,
	'[': KeyLeftBrace, '{': KeyLeftBrace,
	']': KeyRightBrace, '}': KeyRightBrace,
	'\\': KeyBackslash, '|': KeyBackslash,
	';': KeySemicolon, ':': KeySemicolon,
	'\'': KeyApostrophe, '"': KeyApostrophe,
	'`': KeyGrave, '~': KeyGrave,
	',': KeyComma, '<': KeyComma,
	'.': KeyPeriod, '>': KeyPeriod,
	'/': KeySlash, '?': KeySlash,

	' ':  KeySpace,
	'\n': KeyEnter,
	'\r': KeyEnter,
	'\t': KeyTab,
}

var shiftChars = map[byte]bool{
	'!': true, '@': true, '#': true, '$': true, '%': true,
	'^': true, '&': true, '*': true, '(': true, ')': true,
	'_': true, '+': true, '{': true, '}': true, '|': true,
	':': true, '"': true, '~': true, '<': true, '>': true, '?': true,
}

func init() {
	for c := byte('A'); c <= 'Z'; c++ {
		charToKey[c] = charToKey[c+('a'-'A')]
		shiftChars[c] = true
	}
}

// TypeChar converts one character into a press/release report pair.
// ok is false for characters the US layout table cannot produce.
func TypeChar(c byte) (press, release Report, ok bool) {
	code, found := charToKey[c]
	if !found {
		return Report{}, Report{}, false
	}
	var mods uint8
	if shiftChars[c] {
		mods = ModLeftShift
	}
	return Press(mods, code), Idle(), true
}

// TypeText converts s into alternating press and release reports, one pair per
// character. Untypeable characters are skipped.
//
// Example:
//
//	TypeText("Hi") // [Shift+H, idle, I, idle]
func TypeText(s string) []Report {
	reports := make([]Report, 0, 2*len(s))
	for i := 0; i < len(s); i++ {
		press, release, ok := TypeChar(s[i])
		if !ok {
			continue
		}
		reports = append(reports, press, release)
	}
	return reports
}

// Typeable returns the index of the first character of s that TypeText would
// skip, or -1 when every character can be typed.
func Typeable(s string) int {
	for i := 0; i < len(s); i++ {
		if _, ok := charToKey[s[i]]; !ok {
			return i
		}
	}
	return -1
}
