// Package matrix provides keypad.MatrixReader implementations: a multiplexed
// switch matrix addressed over GPIO, and an interactive terminal stand-in.
package matrix

import (
	"errors"
	"fmt"
	"time"
)

// DefaultSettle is the delay between addressing a line and sampling it.
const DefaultSettle = 10 * time.Millisecond

var ErrLineOutOfRange = errors.New("matrix line out of range")

// Pin identifies a GPIO line on the driver.
type Pin uint32

// Driver is the GPIO surface a Mux needs.
type Driver interface {
	SetPin(pin Pin, high bool) error
	GetPin(pin Pin) (bool, error)
}

// Mux reads a switch matrix through a binary-addressed multiplexer. The line
// index is driven onto Select (bit 0 on Select[0]), Strobe is pulled low to
// enable the output, and Sense is sampled after Settle.
type Mux struct {
	Driver Driver
	Select []Pin
	Strobe Pin
	Sense  Pin
	Settle time.Duration
	// ActiveLow reports a closed switch when Sense reads low.
	ActiveLow bool

	sleep func(time.Duration)
}

// NewMux returns an active-low mux with the default settle delay.
func NewMux(d Driver, sel []Pin, strobe, sense Pin) *Mux {
	return &Mux{
		Driver:    d,
		Select:    sel,
		Strobe:    strobe,
		Sense:     sense,
		Settle:    DefaultSettle,
		ActiveLow: true,
	}
}

// Lines returns how many lines the select width can address.
func (m *Mux) Lines() int { return 1 << len(m.Select) }

// Init parks the select lines low and the strobe high.
func (m *Mux) Init() error {
	for _, p := range m.Select {
		if err := m.Driver.SetPin(p, false); err != nil {
			return fmt.Errorf("park select pin %d: %w", p, err)
		}
	}
	if err := m.Driver.SetPin(m.Strobe, true); err != nil {
		return fmt.Errorf("park strobe pin %d: %w", m.Strobe, err)
	}
	return nil
}

// Read implements keypad.MatrixReader.
func (m *Mux) Read(line int) (closed bool, err error) {
	if line < 0 || line >= m.Lines() {
		return false, fmt.Errorf("%w: %d", ErrLineOutOfRange, line)
	}
	for bit, p := range m.Select {
		if err := m.Driver.SetPin(p, line&(1<<bit) != 0); err != nil {
			return false, fmt.Errorf("address line %d: %w", line, err)
		}
	}
	if err := m.Driver.SetPin(m.Strobe, false); err != nil {
		return false, fmt.Errorf("strobe line %d: %w", line, err)
	}
	defer func() {
		if rerr := m.Driver.SetPin(m.Strobe, true); rerr != nil && err == nil {
			err = fmt.Errorf("release strobe: %w", rerr)
		}
	}()

	m.wait()
	level, err := m.Driver.GetPin(m.Sense)
	if err != nil {
		return false, fmt.Errorf("sample line %d: %w", line, err)
	}
	return level != m.ActiveLow, nil
}

func (m *Mux) wait() {
	if m.Settle <= 0 {
		return
	}
	if m.sleep != nil {
		m.sleep(m.Settle)
		return
	}
	time.Sleep(m.Settle)
}
