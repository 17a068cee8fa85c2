// Package gpiochip drives GPIO lines through the Linux GPIO character device
// (/dev/gpiochipN) using the v1 line-handle interface.
package gpiochip

import (
	"errors"
	"fmt"

	"github.com/Alia5/macropad/matrix"
)

var (
	ErrUnsupported = errors.New("gpio character device not supported on this platform")
	ErrUnknownPin  = errors.New("pin not requested on this chip")
)

// maxLines is the kernel's GPIOHANDLES_MAX.
const maxLines = 64

// Config names the chip and the lines a matrix needs.
type Config struct {
	Path    string
	Outputs []matrix.Pin
	Inputs  []matrix.Pin
	Label   string
}

func (c Config) validate() error {
	if c.Path == "" {
		return errors.New("gpio chip path is empty")
	}
	if len(c.Outputs) == 0 || len(c.Inputs) == 0 {
		return errors.New("gpio chip needs at least one output and one input line")
	}
	if len(c.Outputs) > maxLines || len(c.Inputs) > maxLines {
		return fmt.Errorf("gpio chip supports at most %d lines per direction", maxLines)
	}
	seen := map[matrix.Pin]bool{}
	for _, p := range append(append([]matrix.Pin{}, c.Outputs...), c.Inputs...) {
		if seen[p] {
			return fmt.Errorf("gpio line %d requested twice", p)
		}
		seen[p] = true
	}
	return nil
}

func indexOf(pins []matrix.Pin, p matrix.Pin) int {
	for i, q := range pins {
		if q == p {
			return i
		}
	}
	return -1
}
