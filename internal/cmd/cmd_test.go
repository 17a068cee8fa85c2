package cmd_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Alia5/macropad/hid"
	"github.com/Alia5/macropad/internal/cmd"
	"github.com/Alia5/macropad/internal/log"
	mocks "github.com/Alia5/macropad/internal/testing"
	"github.com/Alia5/macropad/link"
	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseCLI(t *testing.T) {
	var cli cmd.CLI
	parser, err := kong.New(&cli, kong.Name("macropad"), kong.Exit(func(int) { t.Fatal("exit") }))
	require.NoError(t, err)

	_, err = parser.Parse([]string{
		"run", "--dry-run",
		"--keymap", "pad.yaml",
		"--gpio.select", "5,6,7,8",
		"--gpio.settle", "2ms",
		"--no-gpio.active-low",
		"--link.addr", ":9999",
		"--log.level", "debug",
	})
	require.NoError(t, err)

	assert.True(t, cli.Run.DryRun)
	assert.Equal(t, "pad.yaml", cli.Run.Keymap)
	assert.Equal(t, "gpio", cli.Run.Reader)
	assert.Equal(t, []uint32{5, 6, 7, 8}, cli.Run.GPIO.Select)
	assert.Equal(t, uint32(8), cli.Run.GPIO.Strobe)
	assert.Equal(t, 2*time.Millisecond, cli.Run.GPIO.Settle)
	assert.False(t, cli.Run.GPIO.ActiveLow)
	assert.Equal(t, ":9999", cli.Run.Link.Addr)
	assert.Equal(t, 256, cli.Run.Link.Queue)
	assert.Equal(t, time.Millisecond, cli.Run.Scan.Interval)
	assert.Equal(t, "debug", cli.Log.Level)
}

func TestRunDryRun(t *testing.T) {
	m := mocks.NewMatrix()
	out := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(out, nil))

	r := &cmd.Run{DryRun: true, Reader: "gpio", Scan: cmd.ScanConfig{Interval: time.Millisecond}}
	cmd.SetReader(r, m)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Execute(ctx, logger, log.NewRaw(nil)) }()

	m.Set(true, 5)
	require.Eventually(t, func() bool {
		for _, l := range m.Reads() {
			if l == 5 {
				return true
			}
		}
		return false
	}, 2*time.Second, time.Millisecond)
	m.Set(false, 5)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "keys=Home")
	}, 2*time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Contains(t, out.String(), "keys=idle")
	assert.Contains(t, out.String(), "keypad stopped")
}

func TestRunRejectsBadKeymap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bindings":[{"mode":"base","key":42,"actions":[]}]}`), 0o644))

	r := &cmd.Run{Keymap: path, DryRun: true}
	cmd.SetReader(r, mocks.NewMatrix())
	err := r.Execute(context.Background(), discard(), log.NewRaw(nil))
	assert.Error(t, err)
}

func TestResolvePasskey(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("AppData", t.TempDir())

	explicit, err := cmd.ResolvePasskey("424242", discard())
	require.NoError(t, err)
	assert.Equal(t, "424242", explicit)

	first, err := cmd.ResolvePasskey("", discard())
	require.NoError(t, err)
	assert.Regexp(t, "^[0-9]{6}$", first)

	second, err := cmd.ResolvePasskey("", discard())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMonitor(t *testing.T) {
	srv, err := link.New(link.Config{Addr: "127.0.0.1:0", Passkey: "135790"}, discard(), nil)
	require.NoError(t, err)
	go func() { _ = srv.ListenAndServe() }()
	<-srv.Ready()
	defer srv.Close()

	out := &syncBuffer{}
	mon := &cmd.Monitor{Addr: srv.Addr().String(), Passkey: "135790", LEDs: "caps"}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mon.Execute(ctx, out, discard()) }()

	require.Eventually(t, srv.Connected, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return srv.LEDs().CapsLock }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, srv.SendReport(hid.Press(hid.ModLeftCtrl, hid.KeyF)))
	require.NoError(t, srv.SendReport(hid.Idle()))

	require.Eventually(t, func() bool {
		return out.String() == "ctrl+F\nidle\n"
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestParseLEDs(t *testing.T) {
	type testCase struct {
		in      string
		want    hid.LEDState
		wantErr bool
	}
	testCases := []testCase{
		{in: "", want: hid.LEDState{}},
		{in: "caps", want: hid.LEDState{CapsLock: true}},
		{in: "num, Scroll", want: hid.LEDState{NumLock: true, ScrollLock: true}},
		{in: "none", want: hid.LEDState{}},
		{in: "shift", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := cmd.ParseLEDs(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestKeymapCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pad.toml")
	dump := &cmd.KeymapDump{Format: "toml", Output: path}
	require.NoError(t, dump.Run())

	var out bytes.Buffer
	require.NoError(t, (&cmd.KeymapCheck{File: path}).Execute(&out))
	assert.Contains(t, out.String(), "layout: 10 keys, primary 9, secondary 4\n")
	assert.Contains(t, out.String(), "base:\n")
	assert.Contains(t, out.String(), "  3: Home shift+End Delete\n")
	assert.Contains(t, out.String(), "  8: \"Text-8\"\n")
}
