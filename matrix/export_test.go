package matrix

import "time"

// SetSleep replaces the settle wait so tests can observe it.
func (m *Mux) SetSleep(f func(time.Duration)) { m.sleep = f }

// NewTerminalFrom builds a Terminal fed from r without touching a tty.
func NewTerminalFrom(r interface{ Read([]byte) (int, error) }, lines int, quit func()) (*Terminal, error) {
	if err := checkTerminalLines(lines); err != nil {
		return nil, err
	}
	t := newTerminal(lines, nil, quit)
	go t.consume(r)
	return t, nil
}
