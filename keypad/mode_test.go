package keypad_test

import (
	"testing"

	"github.com/Alia5/macropad/keypad"

	"github.com/stretchr/testify/assert"
)

func TestResolveMode(t *testing.T) {
	type testCase struct {
		name          string
		prev          keypad.Mode
		primary       bool
		secondary     bool
		expected      keypad.Mode
		readSecondary bool
	}
	testCases := []testCase{
		{name: "idle stays base", prev: keypad.ModeBase, expected: keypad.ModeBase},
		{name: "secondary alone is a macro key", prev: keypad.ModeBase, secondary: true, expected: keypad.ModeBase},
		{name: "primary selects shifted", prev: keypad.ModeBase, primary: true, expected: keypad.ModeShifted, readSecondary: true},
		{name: "chord selects extended", prev: keypad.ModeBase, primary: true, secondary: true, expected: keypad.ModeExtended, readSecondary: true},
		{name: "extended held by secondary", prev: keypad.ModeExtended, secondary: true, expected: keypad.ModeExtended, readSecondary: true},
		{name: "extended drops to shifted", prev: keypad.ModeExtended, expected: keypad.ModeShifted, readSecondary: true},
		{name: "shifted drops to base", prev: keypad.ModeShifted, expected: keypad.ModeBase},
		{name: "shifted ignores lone secondary", prev: keypad.ModeShifted, secondary: true, expected: keypad.ModeBase},
		{name: "extended back to shifted", prev: keypad.ModeExtended, primary: true, expected: keypad.ModeShifted, readSecondary: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			read := false
			got := keypad.ResolveMode(tc.prev, tc.primary, func() bool {
				read = true
				return tc.secondary
			})
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, tc.readSecondary, read, "secondary sampled")
		})
	}
}

func TestSecondaryConsumed(t *testing.T) {
	assert.False(t, keypad.SecondaryConsumed(keypad.ModeBase, keypad.ModeBase))
	assert.True(t, keypad.SecondaryConsumed(keypad.ModeBase, keypad.ModeShifted))
	assert.True(t, keypad.SecondaryConsumed(keypad.ModeShifted, keypad.ModeBase))
	assert.True(t, keypad.SecondaryConsumed(keypad.ModeExtended, keypad.ModeExtended))
}

func TestModeNames(t *testing.T) {
	for _, m := range []keypad.Mode{keypad.ModeBase, keypad.ModeShifted, keypad.ModeExtended} {
		back, err := keypad.ParseMode(m.String())
		assert.NoError(t, err)
		assert.Equal(t, m, back)
	}
	_, err := keypad.ParseMode("hyper")
	assert.Error(t, err)
	assert.Equal(t, "mode(7)", keypad.Mode(7).String())
}
