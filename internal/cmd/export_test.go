package cmd

import (
	"log/slog"

	"github.com/Alia5/macropad/hid"
	"github.com/Alia5/macropad/keypad"
)

func SetReader(r *Run, reader keypad.MatrixReader) { r.reader = reader }

func ParseLEDs(s string) (hid.LEDState, error) { return parseLEDs(s) }

func ResolvePasskey(explicit string, logger *slog.Logger) (string, error) {
	return resolvePasskey(explicit, logger)
}

var FlagKey = flagKey
