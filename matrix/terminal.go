package matrix

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

var ErrNotTerminal = errors.New("stdin is not a terminal")

// MaxTerminalLines is how many switches single digits can address.
const MaxTerminalLines = 10

// Terminal is a bench stand-in for the switch matrix. Each digit typed on
// the terminal toggles the switch on that line; 'q' or Ctrl-C calls the quit
// callback.
type Terminal struct {
	mu     sync.Mutex
	closed []bool
	echo   io.Writer
	quit   func()

	fd       int
	oldState *term.State
}

// OpenTerminal switches f into raw mode and starts reading toggles from it.
// Close restores the previous terminal state.
func OpenTerminal(f *os.File, lines int, echo io.Writer, quit func()) (*Terminal, error) {
	if err := checkTerminalLines(lines); err != nil {
		return nil, err
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	t := newTerminal(lines, echo, quit)
	t.fd = fd
	t.oldState = old
	go t.consume(f)
	return t, nil
}

func checkTerminalLines(lines int) error {
	if lines < 1 || lines > MaxTerminalLines {
		return fmt.Errorf("%w: terminal reader addresses 1 to %d keys, keymap has %d", ErrLineOutOfRange, MaxTerminalLines, lines)
	}
	return nil
}

func newTerminal(lines int, echo io.Writer, quit func()) *Terminal {
	if quit == nil {
		quit = func() {}
	}
	return &Terminal{closed: make([]bool, lines), echo: echo, quit: quit}
}

func (t *Terminal) consume(r io.Reader) {
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, c := range buf[:n] {
			switch {
			case c >= '0' && c <= '9':
				t.toggle(int(c - '0'))
			case c == 'q' || c == 0x03:
				t.quit()
				return
			}
		}
		if err != nil {
			t.quit()
			return
		}
	}
}

func (t *Terminal) toggle(line int) {
	t.mu.Lock()
	if line >= len(t.closed) {
		t.mu.Unlock()
		return
	}
	t.closed[line] = !t.closed[line]
	state := "open"
	if t.closed[line] {
		state = "closed"
	}
	t.mu.Unlock()
	if t.echo != nil {
		// Raw mode needs an explicit carriage return.
		_, _ = fmt.Fprintf(t.echo, "switch %d %s\r\n", line, state)
	}
}

// Read implements keypad.MatrixReader.
func (t *Terminal) Read(line int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if line < 0 || line >= len(t.closed) {
		return false, fmt.Errorf("%w: %d", ErrLineOutOfRange, line)
	}
	return t.closed[line], nil
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	if t.oldState == nil {
		return nil
	}
	return term.Restore(t.fd, t.oldState)
}
