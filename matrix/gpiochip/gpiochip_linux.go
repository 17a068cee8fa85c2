//go:build linux

package gpiochip

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/Alia5/macropad/matrix"
)

// Line-handle ioctls from <linux/gpio.h>.
const (
	gpioGetLineHandleIoctl       = 0xC16CB403
	gpioHandleGetLineValuesIoctl = 0xC040B408
	gpioHandleSetLineValuesIoctl = 0xC040B409

	handleRequestInput  = 1 << 0
	handleRequestOutput = 1 << 1
)

type handleRequest struct {
	LineOffsets   [maxLines]uint32
	Flags         uint32
	DefaultValues [maxLines]uint8
	ConsumerLabel [32]byte
	Lines         uint32
	Fd            int32
}

type handleData struct {
	Values [maxLines]uint8
}

// Chip holds one output handle and one input handle on a gpiochip device.
// It implements matrix.Driver.
type Chip struct {
	cfg  Config
	mu   sync.Mutex
	out  int
	in   int
	outV handleData
}

// Open requests cfg.Outputs as outputs (initially low) and cfg.Inputs as
// inputs on the chip at cfg.Path.
func Open(cfg Config) (*Chip, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	chipFd, err := unix.Open(cfg.Path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Path, err)
	}
	defer unix.Close(chipFd)

	out, err := requestLines(chipFd, cfg.Outputs, handleRequestOutput, cfg.Label)
	if err != nil {
		return nil, fmt.Errorf("request output lines: %w", err)
	}
	in, err := requestLines(chipFd, cfg.Inputs, handleRequestInput, cfg.Label)
	if err != nil {
		_ = unix.Close(out)
		return nil, fmt.Errorf("request input lines: %w", err)
	}
	return &Chip{cfg: cfg, out: out, in: in}, nil
}

func requestLines(chipFd int, pins []matrix.Pin, flags uint32, label string) (int, error) {
	var req handleRequest
	for i, p := range pins {
		req.LineOffsets[i] = uint32(p)
	}
	req.Flags = flags
	req.Lines = uint32(len(pins))
	copy(req.ConsumerLabel[:len(req.ConsumerLabel)-1], label)
	if err := ioctl(chipFd, gpioGetLineHandleIoctl, unsafe.Pointer(&req)); err != nil {
		return -1, err
	}
	return int(req.Fd), nil
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// SetPin drives an output line.
func (c *Chip) SetPin(pin matrix.Pin, high bool) error {
	i := indexOf(c.cfg.Outputs, pin)
	if i < 0 {
		return fmt.Errorf("%w: output %d", ErrUnknownPin, pin)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var v uint8
	if high {
		v = 1
	}
	c.outV.Values[i] = v
	if err := ioctl(c.out, gpioHandleSetLineValuesIoctl, unsafe.Pointer(&c.outV)); err != nil {
		return fmt.Errorf("set line %d: %w", pin, err)
	}
	return nil
}

// GetPin samples an input line.
func (c *Chip) GetPin(pin matrix.Pin) (bool, error) {
	i := indexOf(c.cfg.Inputs, pin)
	if i < 0 {
		return false, fmt.Errorf("%w: input %d", ErrUnknownPin, pin)
	}
	var data handleData
	if err := ioctl(c.in, gpioHandleGetLineValuesIoctl, unsafe.Pointer(&data)); err != nil {
		return false, fmt.Errorf("get line %d: %w", pin, err)
	}
	return data.Values[i] != 0, nil
}

// Close releases both line handles.
func (c *Chip) Close() error {
	errOut := unix.Close(c.out)
	errIn := unix.Close(c.in)
	if errOut != nil {
		return errOut
	}
	return errIn
}
