//go:build !linux

package gpiochip

import "github.com/Alia5/macropad/matrix"

// Chip is unavailable off Linux.
type Chip struct{}

// Open always fails off Linux.
func Open(cfg Config) (*Chip, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return nil, ErrUnsupported
}

func (c *Chip) SetPin(matrix.Pin, bool) error   { return ErrUnsupported }
func (c *Chip) GetPin(matrix.Pin) (bool, error) { return false, ErrUnsupported }
func (c *Chip) Close() error                    { return nil }
