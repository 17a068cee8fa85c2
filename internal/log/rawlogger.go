package log

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Direction of a link frame.
type Direction bool

const (
	ToHost   Direction = false
	FromHost Direction = true
)

func (d Direction) String() string {
	if d == FromHost {
		return "H->K"
	}
	return "K->H"
}

// RawLogger hex-dumps link frames.
type RawLogger interface {
	Log(dir Direction, data []byte)
}

type rawLogger struct {
	w   io.Writer
	mu  sync.Mutex
	now func() time.Time
}

// NewRaw returns a RawLogger writing to w. A nil w discards everything.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w, now: time.Now}
}

func (r *rawLogger) Log(dir Direction, data []byte) {
	if r.w == nil || len(data) == 0 {
		return
	}
	line := fmt.Sprintf("%s %s %d bytes: % x\n",
		r.now().Format("2006/01/02 15:04:05.000"), dir, len(data), data)

	r.mu.Lock()
	_, _ = io.WriteString(r.w, line)
	r.mu.Unlock()
}
