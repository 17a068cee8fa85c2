// Package testing holds in-memory stand-ins for the keypad's hardware and
// transport boundaries.
package testing

import (
	"fmt"
	"sync"

	"github.com/Alia5/macropad/hid"
)

// Matrix is a scripted keypad.MatrixReader. Tests set line states between
// scan cycles and inspect which lines were sampled.
type Matrix struct {
	mu    sync.Mutex
	down  map[int]bool
	fail  map[int]error
	reads []int
}

// NewMatrix returns a matrix with every switch open.
func NewMatrix() *Matrix {
	return &Matrix{down: map[int]bool{}, fail: map[int]error{}}
}

// Set closes (true) or opens (false) the switches on lines.
func (m *Matrix) Set(down bool, lines ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range lines {
		m.down[l] = down
	}
}

// Fail makes reads of line return err until cleared with a nil err.
func (m *Matrix) Fail(line int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, line)
		return
	}
	m.fail[line] = err
}

// Read implements keypad.MatrixReader.
func (m *Matrix) Read(line int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, line)
	if err := m.fail[line]; err != nil {
		return false, err
	}
	return m.down[line], nil
}

// Reads returns and clears the lines sampled since the last call.
func (m *Matrix) Reads() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.reads
	m.reads = nil
	return out
}

// Call is one observed sink invocation.
type Call struct {
	Report hid.Report
	Text   string
	IsText bool
}

func (c Call) String() string {
	if c.IsText {
		return fmt.Sprintf("text(%q)", c.Text)
	}
	return c.Report.String()
}

// ReportCall and TextCall build expected Calls.
func ReportCall(r hid.Report) Call { return Call{Report: r} }
func TextCall(s string) Call       { return Call{Text: s, IsText: true} }

// Sink records every call made by the engine in order. Err, when set, is
// returned from every call after recording it.
type Sink struct {
	mu    sync.Mutex
	calls []Call
	Err   error
}

// SendReport implements keypad.OutputSink.
func (s *Sink) SendReport(r hid.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, ReportCall(r))
	return s.Err
}

// SendText implements keypad.OutputSink.
func (s *Sink) SendText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, TextCall(text))
	return s.Err
}

// Calls returns and clears the recorded calls.
func (s *Sink) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.calls
	s.calls = nil
	return out
}
