package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/Alia5/macropad/hid"
	"github.com/Alia5/macropad/internal/auth"
)

// Host is the computer end of the link.
type Host struct {
	conn net.Conn
	cfg  Config
	wmu  sync.Mutex
}

// Dial connects to a keypad and pairs with cfg.Passkey when set.
func Dial(ctx context.Context, addr string, cfg Config) (*Host, error) {
	cfg = cfg.withDefaults()
	d := net.Dialer{Timeout: cfg.DialTimeout}
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if cfg.Passkey == "" {
		return &Host{conn: c, cfg: cfg}, nil
	}

	conn, err := clientPair(c, cfg)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return &Host{conn: conn, cfg: cfg}, nil
}

func clientPair(c net.Conn, cfg Config) (net.Conn, error) {
	key, err := auth.DeriveKey(cfg.Passkey)
	if err != nil {
		return nil, fmt.Errorf("derive pairing key: %w", err)
	}
	_ = c.SetDeadline(time.Now().Add(cfg.PairTimeout))
	clientNonce, serverNonce, err := auth.ClientHandshake(c, key)
	if err != nil {
		var rej *auth.RejectedError
		if errors.As(err, &rej) {
			if pe, ok := parsePairError(rej.Response); ok {
				return nil, pe
			}
		}
		return nil, fmt.Errorf("pair: %w", err)
	}
	_ = c.SetDeadline(time.Time{})
	return auth.WrapConn(c, auth.DeriveSessionKey(key, serverNonce, clientNonce))
}

// Next blocks until the keypad sends a report.
func (h *Host) Next() (hid.Report, error) {
	if h.cfg.ReadTimeout > 0 {
		_ = h.conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	}
	var buf [hid.ReportSize]byte
	if _, err := io.ReadFull(h.conn, buf[:]); err != nil {
		return hid.Report{}, err
	}
	var r hid.Report
	err := r.UnmarshalBinary(buf[:])
	return r, err
}

// SetLEDs pushes the host's LED state to the keypad.
func (h *Host) SetLEDs(st hid.LEDState) error {
	h.wmu.Lock()
	defer h.wmu.Unlock()
	if h.cfg.WriteTimeout > 0 {
		_ = h.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
	}
	_, err := h.conn.Write([]byte{st.Byte()})
	return err
}

func (h *Host) Close() error { return h.conn.Close() }
