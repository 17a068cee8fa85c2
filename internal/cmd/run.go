package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Alia5/macropad/hid"
	"github.com/Alia5/macropad/internal/auth"
	"github.com/Alia5/macropad/internal/configpaths"
	"github.com/Alia5/macropad/internal/keymapfile"
	"github.com/Alia5/macropad/internal/log"
	"github.com/Alia5/macropad/keypad"
	"github.com/Alia5/macropad/link"
	"github.com/Alia5/macropad/matrix"
	"github.com/Alia5/macropad/matrix/gpiochip"
)

const passkeyFileName = "macropad.passkey.txt"

// GPIOConfig wires the multiplexer to a GPIO character device.
type GPIOConfig struct {
	Chip      string        `help:"GPIO character device" default:"/dev/gpiochip0" env:"MACROPAD_GPIO_CHIP"`
	Select    []uint32      `help:"Multiplexer select line offsets, bit 0 first" default:"0,1,2,3" env:"MACROPAD_GPIO_SELECT"`
	Strobe    uint32        `help:"Strobe line offset" default:"8" env:"MACROPAD_GPIO_STROBE"`
	Sense     uint32        `help:"Sense line offset" default:"7" env:"MACROPAD_GPIO_SENSE"`
	Settle    time.Duration `help:"Delay between strobe and sample" default:"10ms" env:"MACROPAD_GPIO_SETTLE"`
	ActiveLow bool          `help:"A closed switch pulls the sense line low" default:"true" negatable:"" env:"MACROPAD_GPIO_ACTIVE_LOW"`
}

type ScanConfig struct {
	Interval time.Duration `help:"Time between scan cycles; 0 scans back to back" default:"1ms" env:"MACROPAD_SCAN_INTERVAL"`
}

type LinkConfig struct {
	Addr         string        `help:"Listen address for the paired host" default:":3243" env:"MACROPAD_LINK_ADDR"`
	Passkey      string        `help:"Pairing passkey; empty uses the stored one" env:"MACROPAD_LINK_PASSKEY"`
	Open         bool          `help:"Serve without pairing or encryption" env:"MACROPAD_LINK_OPEN"`
	Queue        int           `help:"Reports buffered for the host before dropping" default:"256" env:"MACROPAD_LINK_QUEUE"`
	WriteTimeout time.Duration `help:"Per-report write timeout" default:"2s" env:"MACROPAD_LINK_WRITE_TIMEOUT"`
}

// Run scans the matrix and serves reports.
type Run struct {
	Keymap string     `help:"Keymap file (json, yaml or toml); empty uses the built-in keymap" env:"MACROPAD_KEYMAP"`
	Reader string     `help:"Matrix source" default:"gpio" enum:"gpio,terminal" env:"MACROPAD_READER"`
	GPIO   GPIOConfig `embed:"" prefix:"gpio."`
	Scan   ScanConfig `embed:"" prefix:"scan."`
	Link   LinkConfig `embed:"" prefix:"link."`
	DryRun bool       `help:"Log reports instead of serving a host" env:"MACROPAD_DRY_RUN"`

	reader keypad.MatrixReader
}

// Run is called by kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.Execute(ctx, logger, rawLogger)
}

// Execute runs the keypad until ctx is done.
func (r *Run) Execute(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	km, err := loadKeymap(r.Keymap)
	if err != nil {
		return err
	}
	layout := km.Layout()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reader, closeReader, err := r.openReader(layout, cancel)
	if err != nil {
		return err
	}
	defer closeReader.Close()

	var sink keypad.OutputSink
	if r.DryRun {
		sink = logSink{logger: logger}
	} else {
		srv, err := r.startLink(logger, rawLogger)
		if err != nil {
			return err
		}
		defer srv.Close()
		sink = srv
	}

	logger.Info("scanning keypad",
		"reader", r.Reader,
		"keys", layout.Size,
		"primary", layout.Primary,
		"secondary", layout.Secondary,
		"interval", r.Scan.Interval)
	engine := keypad.New(reader, sink, km, keypad.WithLogger(logger))
	if err := keypad.Run(ctx, engine, r.Scan.Interval, logger); err != nil {
		return err
	}
	logger.Info("keypad stopped")
	return nil
}

func loadKeymap(path string) (*keypad.Keymap, error) {
	if path == "" {
		return keypad.DefaultKeymap(), nil
	}
	return keymapfile.Load(path)
}

func (r *Run) openReader(layout keypad.Layout, quit func()) (keypad.MatrixReader, io.Closer, error) {
	if r.reader != nil {
		return r.reader, nopCloser{}, nil
	}
	switch r.Reader {
	case "terminal":
		t, err := matrix.OpenTerminal(os.Stdin, layout.Size, os.Stdout, quit)
		if err != nil {
			return nil, nil, err
		}
		return t, t, nil
	case "gpio", "":
		return r.openMux(layout)
	}
	return nil, nil, fmt.Errorf("unknown reader %q", r.Reader)
}

func (r *Run) openMux(layout keypad.Layout) (keypad.MatrixReader, io.Closer, error) {
	sel := make([]matrix.Pin, len(r.GPIO.Select))
	for i, p := range r.GPIO.Select {
		sel[i] = matrix.Pin(p)
	}
	if lines := 1 << len(sel); lines < layout.Size {
		return nil, nil, fmt.Errorf("%d select lines address %d keys, keymap needs %d", len(sel), lines, layout.Size)
	}
	strobe, sense := matrix.Pin(r.GPIO.Strobe), matrix.Pin(r.GPIO.Sense)
	chip, err := gpiochip.Open(gpiochip.Config{
		Path:    r.GPIO.Chip,
		Outputs: append(append([]matrix.Pin{}, sel...), strobe),
		Inputs:  []matrix.Pin{sense},
		Label:   "macropad",
	})
	if err != nil {
		return nil, nil, err
	}
	mux := matrix.NewMux(chip, sel, strobe, sense)
	mux.Settle = r.GPIO.Settle
	mux.ActiveLow = r.GPIO.ActiveLow
	if err := mux.Init(); err != nil {
		_ = chip.Close()
		return nil, nil, err
	}
	return mux, chip, nil
}

func (r *Run) startLink(logger *slog.Logger, rawLogger log.RawLogger) (*link.Server, error) {
	cfg := link.Config{
		Addr:         r.Link.Addr,
		QueueSize:    r.Link.Queue,
		WriteTimeout: r.Link.WriteTimeout,
	}
	if !r.Link.Open {
		passkey, err := resolvePasskey(r.Link.Passkey, logger)
		if err != nil {
			return nil, err
		}
		cfg.Passkey = passkey
	}

	srv, err := link.New(cfg, logger, rawLogger)
	if err != nil {
		return nil, err
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if err == nil {
			err = errors.New("link closed before listening")
		}
		return nil, err
	case <-srv.Ready():
	}
	go func() {
		if err := <-errCh; err != nil {
			logger.Error("link server failed", "error", err)
		}
	}()
	return srv, nil
}

// resolvePasskey returns explicit, else the stored passkey, else a newly
// generated one which is stored for next time.
func resolvePasskey(explicit string, logger *slog.Logger) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	dir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve passkey file path: %w", err)
	}
	path := filepath.Join(dir, passkeyFileName)
	if b, err := os.ReadFile(path); err == nil {
		if key := strings.TrimSpace(string(b)); key != "" {
			return key, nil
		}
	}
	key, err := auth.GeneratePasskey()
	if err != nil {
		return "", fmt.Errorf("generate passkey: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create config dir for passkey file: %w", err)
	}
	if err := os.WriteFile(path, []byte(key), 0o600); err != nil {
		return "", fmt.Errorf("write passkey file: %w", err)
	}
	logger.Info("generated pairing passkey", "path", path)
	logger.Info("-------------------------------------")
	logger.Info("Pairing passkey: " + key)
	logger.Info("-------------------------------------")
	return key, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// logSink prints what would be sent to a host.
type logSink struct {
	logger *slog.Logger
}

func (s logSink) SendReport(r hid.Report) error {
	s.logger.Info("report", "keys", r.String())
	return nil
}

func (s logSink) SendText(text string) error {
	s.logger.Info("text", "text", text, "reports", len(hid.TypeText(text)))
	return nil
}
