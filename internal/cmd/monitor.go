package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Alia5/macropad/hid"
	"github.com/Alia5/macropad/link"
)

// Monitor pairs with a keypad and prints every report it sends.
type Monitor struct {
	Addr        string        `arg:"" help:"Keypad address (host:port)"`
	Passkey     string        `help:"Pairing passkey; empty connects without pairing" env:"MACROPAD_LINK_PASSKEY"`
	LEDs        string        `name:"leds" help:"LEDs to report after pairing, e.g. caps,num" placeholder:"LIST"`
	DialTimeout time.Duration `help:"Dial timeout" default:"3s" env:"MACROPAD_MONITOR_DIAL_TIMEOUT"`
}

// Run is called by kong when the monitor command is executed.
func (m *Monitor) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return m.Execute(ctx, os.Stdout, logger)
}

// Execute prints one line per report to out until ctx is done or the keypad
// hangs up.
func (m *Monitor) Execute(ctx context.Context, out io.Writer, logger *slog.Logger) error {
	leds, err := parseLEDs(m.LEDs)
	if err != nil {
		return err
	}
	h, err := link.Dial(ctx, m.Addr, link.Config{Passkey: m.Passkey, DialTimeout: m.DialTimeout})
	if err != nil {
		return err
	}
	logger.Info("paired with keypad", "addr", m.Addr, "encrypted", m.Passkey != "")

	go func() {
		<-ctx.Done()
		_ = h.Close()
	}()

	if m.LEDs != "" {
		if err := h.SetLEDs(leds); err != nil {
			return fmt.Errorf("send LEDs: %w", err)
		}
	}

	for {
		r, err := h.Next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				logger.Info("keypad disconnected")
				return nil
			}
			return err
		}
		fmt.Fprintln(out, r.String())
	}
}

func parseLEDs(s string) (hid.LEDState, error) {
	var st hid.LEDState
	if s == "" {
		return st, nil
	}
	for _, name := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "num", "numlock":
			st.NumLock = true
		case "caps", "capslock":
			st.CapsLock = true
		case "scroll", "scrolllock":
			st.ScrollLock = true
		case "compose":
			st.Compose = true
		case "kana":
			st.Kana = true
		case "none":
		default:
			return st, fmt.Errorf("unknown LED %q", name)
		}
	}
	return st, nil
}
