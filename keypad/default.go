package keypad

import "github.com/Alia5/macropad/hid"

const (
	none     = 0
	ctrl     = hid.ModLeftCtrl
	shift    = hid.ModLeftShift
	shiftAlt = hid.ModLeftShift | hid.ModLeftAlt
)

// DefaultKeymap returns the factory tables: editor navigation in ModeBase,
// editor commands in ModeShifted and placeholder text snippets in
// ModeExtended.
func DefaultKeymap() *Keymap {
	km, err := NewKeymap(DefaultLayout(), defaultTables())
	if err != nil {
		panic("keypad: default keymap: " + err.Error())
	}
	return km
}

func defaultTables() [NumModes]Table {
	return [NumModes]Table{
		ModeBase: {
			0: {KeyAction(none, hid.KeyEnd)},
			// select line
			1: {KeyAction(none, hid.KeyHome), KeyAction(shift, hid.KeyEnd)},
			// copy line down
			2: {KeyAction(shiftAlt, hid.KeyDown)},
			// delete line
			3: {KeyAction(none, hid.KeyHome), KeyAction(shift, hid.KeyEnd), KeyAction(none, hid.KeyDelete)},
			4: {KeyAction(none, hid.KeyPrintScreen)},
			5: {KeyAction(none, hid.KeyHome)},
			// start of next line
			6: {KeyAction(none, hid.KeyHome), KeyAction(none, hid.KeyDown)},
			// copy line up
			7: {KeyAction(shiftAlt, hid.KeyUp)},
			// open a line below
			8: {KeyAction(none, hid.KeyEnd), KeyAction(none, hid.KeyEnter)},
		},
		ModeShifted: {
			// bottom of file
			0: {KeyAction(ctrl, hid.KeyEnd)},
			// block comment
			1: {KeyAction(shiftAlt, hid.KeyA)},
			// replace
			2: {KeyAction(ctrl, hid.KeyH)},
			// trim trailing whitespace
			3: {KeyAction(ctrl, hid.KeyK), KeyAction(ctrl, hid.KeyX)},
			// top of file
			5: {KeyAction(ctrl, hid.KeyHome)},
			// line comment
			6: {KeyAction(ctrl, hid.KeySlash)},
			7: {KeyAction(ctrl, hid.KeyF)},
			// rename symbol
			8: {KeyAction(none, hid.KeyF2)},
		},
		ModeExtended: {
			0: {TextAction("Text-0")},
			1: {TextAction("Text-1")},
			2: {TextAction("Text-2")},
			3: {TextAction("Text-3")},
			5: {TextAction("Text-5")},
			6: {TextAction("Text-6")},
			7: {TextAction("Text-7")},
			8: {TextAction("Text-8")},
		},
	}
}
