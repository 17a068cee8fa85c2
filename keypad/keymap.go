// Package keypad implements the scan and macro-dispatch engine of a
// multiplexed macro keypad: per-key edge detection, function-mode resolution
// from held selector keys, and ordered replay of macro slots to a HID sink.
package keypad

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Alia5/macropad/hid"
)

const (
	// MatrixSize is the number of switch lines on the reference keypad.
	MatrixSize = 10
	// MaxActionsPerSlot bounds the chained actions bound to one (mode, key).
	MaxActionsPerSlot = 4
)

var (
	ErrInvalidLayout   = errors.New("invalid layout")
	ErrKeyOutOfRange   = errors.New("key index out of range")
	ErrTooManyActions  = errors.New("too many actions in slot")
	ErrUnreachableSlot = errors.New("slot bound to a selector key is never dispatched")
	ErrUntypeableText  = errors.New("text contains untypeable character")
)

// Mode is the operating context selected by the held function keys.
type Mode uint8

const (
	ModeBase Mode = iota
	ModeShifted
	ModeExtended

	// NumModes is the number of tables a keymap carries.
	NumModes = 3
)

var modeNames = [NumModes]string{"base", "shifted", "extended"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// SelectorRole names the two matrix lines consumed by mode resolution.
type SelectorRole uint8

const (
	// Primary is the function key: held alone it selects ModeShifted.
	Primary SelectorRole = iota
	// Secondary extends Primary to ModeExtended. In ModeBase it is an
	// ordinary macro key.
	Secondary
)

// Layout describes the matrix geometry and which lines act as selectors.
type Layout struct {
	Size      int `json:"size" yaml:"size" toml:"size"`
	Primary   int `json:"primary" yaml:"primary" toml:"primary"`
	Secondary int `json:"secondary" yaml:"secondary" toml:"secondary"`
}

// DefaultLayout returns the reference wiring: ten keys, key 9 is the
// function key and key 4 the extend key.
//
//	+-------------------+
//	| 5 | 6 | 7 | 8 | 9 |
//	+-------------------+
//	| 0 | 1 | 2 | 3 | 4 |
//	+-------------------+
func DefaultLayout() Layout {
	return Layout{Size: MatrixSize, Primary: 9, Secondary: 4}
}

// Selector returns the line index that plays role.
func (l Layout) Selector(role SelectorRole) int {
	if role == Primary {
		return l.Primary
	}
	return l.Secondary
}

// Validate checks that both selectors are distinct lines inside the matrix.
func (l Layout) Validate() error {
	if l.Size < 2 {
		return fmt.Errorf("%w: size %d", ErrInvalidLayout, l.Size)
	}
	if l.Primary < 0 || l.Primary >= l.Size {
		return fmt.Errorf("%w: primary selector %d outside [0,%d)", ErrInvalidLayout, l.Primary, l.Size)
	}
	if l.Secondary < 0 || l.Secondary >= l.Size {
		return fmt.Errorf("%w: secondary selector %d outside [0,%d)", ErrInvalidLayout, l.Secondary, l.Size)
	}
	if l.Primary == l.Secondary {
		return fmt.Errorf("%w: selectors share line %d", ErrInvalidLayout, l.Primary)
	}
	return nil
}

// Action is one step of a macro: an optional key pulse followed by optional
// typed text. A nil field is absent; an action with both absent is a no-op.
type Action struct {
	Modifiers uint8
	Key       *uint8
	Text      *string
}

// KeyAction pulses key with the given modifiers held.
func KeyAction(modifiers, key uint8) Action {
	return Action{Modifiers: modifiers, Key: &key}
}

// TextAction types s.
func TextAction(s string) Action {
	return Action{Text: &s}
}

// KeyTextAction pulses key and then types s.
func KeyTextAction(modifiers, key uint8, s string) Action {
	return Action{Modifiers: modifiers, Key: &key, Text: &s}
}

// Noop returns the empty action.
func Noop() Action { return Action{} }

// HasKey reports whether a key pulse is sent for a.
func (a Action) HasKey() bool { return a.Key != nil && *a.Key != hid.KeyNone }

// HasText reports whether text is typed for a.
func (a Action) HasText() bool { return a.Text != nil && *a.Text != "" }

// IsNoop reports whether a produces no output at all.
func (a Action) IsNoop() bool { return !a.HasKey() && !a.HasText() }

func (a Action) String() string {
	var parts []string
	if a.HasKey() {
		parts = append(parts, hid.Press(a.Modifiers, *a.Key).String())
	}
	if a.HasText() {
		parts = append(parts, fmt.Sprintf("%q", *a.Text))
	}
	if len(parts) == 0 {
		return "noop"
	}
	return strings.Join(parts, " ")
}

// Slot is the ordered list of actions replayed when a key is released.
type Slot []Action

// IsNoop reports whether every action in s is a no-op.
func (s Slot) IsNoop() bool {
	for _, a := range s {
		if !a.IsNoop() {
			return false
		}
	}
	return true
}

func (s Slot) String() string {
	var parts []string
	for _, a := range s {
		if !a.IsNoop() {
			parts = append(parts, a.String())
		}
	}
	return strings.Join(parts, " ")
}

// Table is the authoring form of one mode's bindings, keyed by line index.
// Lines without an entry have an empty slot.
type Table map[int]Slot

// Keymap is the immutable, validated set of tables for every mode.
type Keymap struct {
	layout Layout
	slots  [NumModes][]Slot
}

// NewKeymap validates layout and tables and compiles them into a Keymap.
// Every configuration error is reported here, never at scan time.
func NewKeymap(layout Layout, tables [NumModes]Table) (*Keymap, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	km := &Keymap{layout: layout}
	for m := range tables {
		mode := Mode(m)
		km.slots[m] = make([]Slot, layout.Size)
		for key, slot := range tables[m] {
			if key < 0 || key >= layout.Size {
				return nil, fmt.Errorf("%w: %s key %d outside [0,%d)", ErrKeyOutOfRange, mode, key, layout.Size)
			}
			if len(slot) > MaxActionsPerSlot {
				return nil, fmt.Errorf("%w: %s key %d has %d actions, max %d", ErrTooManyActions, mode, key, len(slot), MaxActionsPerSlot)
			}
			if !slot.IsNoop() && !reachable(layout, mode, key) {
				return nil, fmt.Errorf("%w: %s key %d", ErrUnreachableSlot, mode, key)
			}
			for i, a := range slot {
				if a.HasText() {
					if at := hid.Typeable(*a.Text); at >= 0 {
						return nil, fmt.Errorf("%w: %s key %d action %d byte %d of %q", ErrUntypeableText, mode, key, i, at, *a.Text)
					}
				}
			}
			km.slots[m][key] = cloneSlot(slot)
		}
	}
	return km, nil
}

func reachable(l Layout, mode Mode, key int) bool {
	switch key {
	case l.Primary:
		return false
	case l.Secondary:
		return mode == ModeBase
	}
	return true
}

func cloneSlot(s Slot) Slot {
	out := make(Slot, len(s))
	for i, a := range s {
		c := Action{Modifiers: a.Modifiers}
		if a.Key != nil {
			k := *a.Key
			c.Key = &k
		}
		if a.Text != nil {
			t := *a.Text
			c.Text = &t
		}
		out[i] = c
	}
	return out
}

// Layout returns the matrix layout the keymap was built for.
func (k *Keymap) Layout() Layout { return k.layout }

// Slot returns the actions bound to key in mode. The result must not be
// modified; out-of-range lookups return an empty slot.
func (k *Keymap) Slot(mode Mode, key int) Slot {
	if int(mode) >= NumModes || key < 0 || key >= k.layout.Size {
		return nil
	}
	return k.slots[mode][key]
}

// Tables returns a copy of the keymap in authoring form, omitting empty
// slots.
func (k *Keymap) Tables() [NumModes]Table {
	var out [NumModes]Table
	for m := range k.slots {
		out[m] = Table{}
		for key, slot := range k.slots[m] {
			if len(slot) > 0 {
				out[m][key] = cloneSlot(slot)
			}
		}
	}
	return out
}
