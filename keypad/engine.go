package keypad

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alia5/macropad/hid"
)

// MatrixReader samples one line of the switch matrix. It reports true while
// the switch on that line is closed.
type MatrixReader interface {
	Read(line int) (bool, error)
}

// OutputSink transmits reports and text to the paired host. Sends are
// best-effort: a returned error means the output was dropped, and the
// engine never retries.
type OutputSink interface {
	SendReport(r hid.Report) error
	SendText(s string) error
}

// State is the engine-owned mutable state carried between scan cycles.
type State struct {
	Pressed []bool
	Mode    Mode
}

// Engine runs scan cycles over a matrix and dispatches macros on release.
// It is not safe for concurrent use; one goroutine drives Scan.
type Engine struct {
	reader MatrixReader
	sink   OutputSink
	keymap *Keymap
	layout Layout
	state  State
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for dispatch and sink diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an engine in ModeBase with every key released.
func New(reader MatrixReader, sink OutputSink, keymap *Keymap, opts ...Option) *Engine {
	e := &Engine{
		reader: reader,
		sink:   sink,
		keymap: keymap,
		layout: keymap.Layout(),
		logger: slog.Default(),
	}
	e.state.Pressed = make([]bool, e.layout.Size)
	for _, o := range opts {
		o(e)
	}
	return e
}

// Mode returns the mode resolved by the last completed cycle.
func (e *Engine) Mode() Mode { return e.state.Mode }

// Pressed reports whether key was recorded down by the last cycle.
func (e *Engine) Pressed(key int) bool {
	if key < 0 || key >= len(e.state.Pressed) {
		return false
	}
	return e.state.Pressed[key]
}

// Scan runs one full cycle: resolve the mode, then walk every macro key,
// recording presses and dispatching on falling edges.
//
// A failed selector read aborts the cycle before any state changes. A
// failed macro key read leaves that key untouched; such failures are joined
// into the returned error after the rest of the cycle completes.
func (e *Engine) Scan() error {
	prev := e.state.Mode

	primary, err := e.reader.Read(e.layout.Primary)
	if err != nil {
		return fmt.Errorf("read primary selector: %w", err)
	}
	var secondaryErr error
	mode := ResolveMode(prev, primary, func() bool {
		down, err := e.reader.Read(e.layout.Secondary)
		if err != nil {
			secondaryErr = err
		}
		return down
	})
	if secondaryErr != nil {
		return fmt.Errorf("read secondary selector: %w", secondaryErr)
	}
	if mode != prev {
		e.logger.Debug("mode changed", "from", prev, "to", mode)
	}
	e.state.Mode = mode

	skipSecondary := SecondaryConsumed(prev, mode)
	if skipSecondary {
		e.state.Pressed[e.layout.Secondary] = false
	}

	var errs []error
	for i := 0; i < e.layout.Size; i++ {
		if i == e.layout.Primary || (skipSecondary && i == e.layout.Secondary) {
			continue
		}
		down, err := e.reader.Read(i)
		if err != nil {
			errs = append(errs, fmt.Errorf("read key %d: %w", i, err))
			continue
		}
		if down {
			// Presses are only recorded; output happens on release.
			e.state.Pressed[i] = true
			continue
		}
		if e.state.Pressed[i] {
			e.dispatch(mode, i)
			e.state.Pressed[i] = false
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) dispatch(mode Mode, key int) {
	slot := e.keymap.Slot(mode, key)
	e.logger.Debug("dispatch", "key", key, "mode", mode, "actions", len(slot))
	for _, a := range slot {
		e.perform(a)
	}
	e.send(hid.Idle())
}

func (e *Engine) perform(a Action) {
	if a.HasKey() {
		e.send(hid.Press(a.Modifiers, *a.Key))
		e.send(hid.Idle())
	}
	if a.HasText() {
		if err := e.sink.SendText(*a.Text); err != nil {
			e.logger.Debug("text dropped", "error", err)
		}
	}
}

func (e *Engine) send(r hid.Report) {
	if err := e.sink.SendReport(r); err != nil {
		e.logger.Debug("report dropped", "report", r, "error", err)
	}
}
