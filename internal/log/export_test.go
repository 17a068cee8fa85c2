package log

import (
	"io"
	"log/slog"
	"time"
)

func Setup(level slog.Level, logFile string, stdout, stderr io.Writer) (*slog.Logger, []io.Closer, error) {
	return setup(level, logFile, stdout, stderr)
}

func NewRawAt(w io.Writer, at time.Time) RawLogger {
	return &rawLogger{w: w, now: func() time.Time { return at }}
}
