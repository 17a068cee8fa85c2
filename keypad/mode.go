package keypad

// ResolveMode derives this cycle's mode from the primary selector reading and
// the mode resolved on the previous cycle.
//
// secondary samples the Secondary selector. It is only called on the
// branches that need it, since every sample costs one settle delay.
//
//   - Primary held: ModeExtended if Secondary is also held, else ModeShifted.
//   - Primary released after ModeExtended: stay in ModeExtended while
//     Secondary is still held, else drop to ModeShifted.
//   - Otherwise ModeBase.
//
// The ModeExtended hold keeps the tail of a two-key chord release from being
// read as an ordinary Secondary keypress.
func ResolveMode(prev Mode, primary bool, secondary func() bool) Mode {
	if primary {
		if secondary() {
			return ModeExtended
		}
		return ModeShifted
	}
	if prev == ModeExtended {
		if secondary() {
			return ModeExtended
		}
		return ModeShifted
	}
	return ModeBase
}

// SecondaryConsumed reports whether the Secondary selector belongs to mode
// resolution for the cycle that moved from prev to next. When it does, the
// line is not scanned as a macro key.
func SecondaryConsumed(prev, next Mode) bool {
	return prev != ModeBase || next != ModeBase
}
