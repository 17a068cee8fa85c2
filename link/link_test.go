package link_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Alia5/macropad/hid"
	"github.com/Alia5/macropad/internal/log"
	"github.com/Alia5/macropad/link"
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

func startServer(t *testing.T, cfg link.Config, raw log.RawLogger) *link.Server {
	t.Helper()
	cfg.Addr = "127.0.0.1:0"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := link.New(cfg, logger, raw)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe() }()
	select {
	case <-s.Ready():
	case err := <-done:
		t.Fatalf("listen: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server not ready")
	}
	t.Cleanup(func() {
		_ = s.Close()
		<-done
	})
	return s
}

func dial(t *testing.T, s *link.Server, cfg link.Config) *link.Host {
	t.Helper()
	cfg.ReadTimeout = 2 * time.Second
	h, err := link.Dial(context.Background(), s.Addr().String(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	require.Eventually(t, s.Connected, 2*time.Second, 5*time.Millisecond)
	return h
}

func next(t *testing.T, h *link.Host, n int) []hid.Report {
	t.Helper()
	out := make([]hid.Report, 0, n)
	for range n {
		r, err := h.Next()
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

func TestReportsArriveInOrder(t *testing.T) {
	for _, passkey := range []string{"", "482913"} {
		name := "open"
		if passkey != "" {
			name = "paired"
		}
		t.Run(name, func(t *testing.T) {
			s := startServer(t, link.Config{Passkey: passkey}, nil)
			h := dial(t, s, link.Config{Passkey: passkey})

			press := hid.Press(hid.ModLeftShift, hid.KeyEnd)
			require.NoError(t, s.SendReport(hid.Press(0, hid.KeyHome)))
			require.NoError(t, s.SendReport(hid.Idle()))
			require.NoError(t, s.SendReport(press))
			require.NoError(t, s.SendReport(hid.Idle()))

			assert.Equal(t, []hid.Report{
				hid.Press(0, hid.KeyHome), hid.Idle(), press, hid.Idle(),
			}, next(t, h, 4))
		})
	}
}

func TestSendTextExpandsToKeystrokes(t *testing.T) {
	s := startServer(t, link.Config{}, nil)
	h := dial(t, s, link.Config{})

	require.NoError(t, s.SendText("Hi"))
	require.NoError(t, s.SendText(""))
	assert.Equal(t, hid.TypeText("Hi"), next(t, h, 4))
}

func TestDropsWithoutHost(t *testing.T) {
	s := startServer(t, link.Config{}, nil)
	assert.False(t, s.Connected())
	assert.ErrorIs(t, s.SendReport(hid.Idle()), link.ErrNotConnected)
	assert.ErrorIs(t, s.SendText("x"), link.ErrNotConnected)
}

func TestQueueFull(t *testing.T) {
	s := startServer(t, link.Config{QueueSize: 2}, nil)
	dial(t, s, link.Config{})

	// six reports never fit in two slots
	err := s.SendText("abc")
	assert.ErrorIs(t, err, link.ErrQueueFull)
}

func TestWrongPasskeyGetsProblemLine(t *testing.T) {
	s := startServer(t, link.Config{Passkey: "111111"}, nil)

	_, err := link.Dial(context.Background(), s.Addr().String(), link.Config{Passkey: "222222"})
	var pe link.PairError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 401, pe.Status)
	assert.Equal(t, "Unauthorized", pe.Title)
	assert.False(t, s.Connected())
}

func TestLEDsFromHost(t *testing.T) {
	raw := &syncBuffer{}
	s := startServer(t, link.Config{}, log.NewRaw(raw))
	h := dial(t, s, link.Config{})

	require.NoError(t, h.SetLEDs(hid.LEDState{CapsLock: true, NumLock: true}))
	require.Eventually(t, func() bool { return s.LEDs().CapsLock }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, s.LEDs().NumLock)
	assert.False(t, s.LEDs().ScrollLock)

	require.NoError(t, s.SendReport(hid.Press(hid.ModLeftCtrl, hid.KeyF)))
	next(t, h, 1)
	require.Eventually(t, func() bool {
		out := raw.String()
		return strings.Contains(out, "H->K 1 bytes: 03") &&
			strings.Contains(out, "K->H 8 bytes: 01 00 09")
	}, 2*time.Second, 5*time.Millisecond)
}

func TestNewHostReplacesOld(t *testing.T) {
	s := startServer(t, link.Config{}, nil)
	first := dial(t, s, link.Config{})
	second := dial(t, s, link.Config{})

	_, err := first.Next()
	assert.Error(t, err)

	require.Eventually(t, func() bool { return s.SendReport(hid.Idle()) == nil }, 2*time.Second, 5*time.Millisecond)
	r, err := second.Next()
	require.NoError(t, err)
	assert.True(t, r.IsIdle())
}

func TestHostDisconnect(t *testing.T) {
	s := startServer(t, link.Config{}, nil)
	h := dial(t, s, link.Config{})
	require.NoError(t, h.Close())

	require.Eventually(t, func() bool { return !s.Connected() }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, errors.Is(s.SendReport(hid.Idle()), link.ErrNotConnected))
}

func TestPairErrorString(t *testing.T) {
	assert.Equal(t, "401 Unauthorized: passkey mismatch",
		link.PairError{Status: 401, Title: "Unauthorized", Detail: "passkey mismatch"}.Error())
}
