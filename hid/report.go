package hid

import (
	"fmt"
	"io"
	"strings"
)

// ReportSize is the length of an encoded boot keyboard report.
const ReportSize = 8

// Report is a boot-protocol keyboard input report. It is a value type; every
// send builds a fresh one.
//
// Layout (8 bytes):
//
//	Byte 0: Modifiers (8 bits)
//	Byte 1: Reserved (0x00)
//	Bytes 2-7: Up to six pressed usage codes
type Report struct {
	Modifiers uint8
	Keys      [6]uint8
}

// Idle returns the report with every key and modifier released.
func Idle() Report {
	return Report{}
}

// Press returns a report with the given modifiers held and up to six keys
// pressed. Zero codes are skipped and extra keys are ignored.
//
// Example:
//
//	r := Press(ModLeftShift, KeyEnd) // Shift+End
func Press(modifiers uint8, keys ...uint8) Report {
	r := Report{Modifiers: modifiers}
	n := 0
	for _, k := range keys {
		if k == KeyNone {
			continue
		}
		if n == len(r.Keys) {
			break
		}
		r.Keys[n] = k
		n++
	}
	return r
}

// IsIdle reports whether nothing is held in r.
func (r Report) IsIdle() bool {
	return r == Report{}
}

// MarshalBinary encodes r into the 8-byte wire layout.
func (r Report) MarshalBinary() ([]byte, error) {
	b := make([]byte, ReportSize)
	b[0] = r.Modifiers
	b[1] = 0x00 // Reserved
	copy(b[2:], r.Keys[:])
	return b, nil
}

// UnmarshalBinary decodes the 8-byte wire layout into r.
func (r *Report) UnmarshalBinary(data []byte) error {
	if len(data) < ReportSize {
		return io.ErrUnexpectedEOF
	}
	r.Modifiers = data[0]
	copy(r.Keys[:], data[2:ReportSize])
	return nil
}

// String renders r as e.g. "shift+End" or "idle".
func (r Report) String() string {
	if r.IsIdle() {
		return "idle"
	}
	parts := ModifierNames(r.Modifiers)
	for _, k := range r.Keys {
		if k != KeyNone {
			parts = append(parts, FormatKey(k))
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("mods=0x%02x", r.Modifiers)
	}
	return strings.Join(parts, "+")
}
