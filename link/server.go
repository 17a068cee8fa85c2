package link

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Alia5/macropad/hid"
	"github.com/Alia5/macropad/internal/auth"
	"github.com/Alia5/macropad/internal/log"
)

// Server is the keypad end of the link and implements keypad.OutputSink.
// Sends never block: reports go into the paired host's FIFO and a single
// writer goroutine drains it.
type Server struct {
	cfg       Config
	key       []byte
	logger    *slog.Logger
	rawLogger log.RawLogger

	ready     chan struct{}
	readyOnce sync.Once

	mu     sync.Mutex
	ln     net.Listener
	host   *session
	closed bool

	leds atomic.Uint32
}

type session struct {
	conn   net.Conn
	remote string
	queue  chan hid.Report
	done   chan struct{}
	once   sync.Once
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

func New(cfg Config, logger *slog.Logger, rawLogger log.RawLogger) (*Server, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	if rawLogger == nil {
		rawLogger = log.NewRaw(nil)
	}
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		rawLogger: rawLogger,
		ready:     make(chan struct{}),
	}
	if cfg.Passkey != "" {
		key, err := auth.DeriveKey(cfg.Passkey)
		if err != nil {
			return nil, fmt.Errorf("derive pairing key: %w", err)
		}
		s.key = key
	}
	return s, nil
}

// ListenAndServe accepts hosts until Close is called.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = ln.Close()
		return nil
	}
	s.ln = ln
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
	s.logger.Info("link listening", "addr", ln.Addr().String(), "paired", s.key != nil)

	for {
		c, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.logger.Info("link stopped")
				return nil
			}
			s.logger.Error("accept error", "error", err)
			continue
		}
		go s.handleConn(c)
	}
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound address, or nil before Ready.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Close stops accepting and drops the paired host.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	ln, h := s.ln, s.host
	s.host = nil
	s.mu.Unlock()

	if h != nil {
		h.close()
	}
	if ln != nil {
		return ln.Close()
	}
	return nil
}

// Connected reports whether a host is paired.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.host != nil
}

// LEDs returns the last LED state the host sent.
func (s *Server) LEDs() hid.LEDState {
	var st hid.LEDState
	_ = st.UnmarshalBinary([]byte{byte(s.leds.Load())})
	return st
}

func (s *Server) SendReport(r hid.Report) error {
	return s.enqueue(r)
}

// SendText types s as press/release pairs, queued back to back.
func (s *Server) SendText(text string) error {
	reports := hid.TypeText(text)
	if len(reports) == 0 {
		return nil
	}
	return s.enqueue(reports...)
}

func (s *Server) enqueue(reports ...hid.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.host
	if h == nil {
		return ErrNotConnected
	}
	if cap(h.queue)-len(h.queue) < len(reports) {
		return ErrQueueFull
	}
	for _, r := range reports {
		h.queue <- r
	}
	return nil
}

func (s *Server) handleConn(c net.Conn) {
	remote := c.RemoteAddr().String()
	logger := s.logger.With("remote", remote)

	conn, err := s.pair(c)
	if err != nil {
		logger.Warn("pairing failed", "error", err)
		_ = c.Close()
		return
	}

	sess := &session{
		conn:   conn,
		remote: remote,
		queue:  make(chan hid.Report, s.cfg.QueueSize),
		done:   make(chan struct{}),
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sess.close()
		return
	}
	prev := s.host
	s.host = sess
	s.mu.Unlock()
	if prev != nil {
		logger.Info("replacing paired host", "previous", prev.remote)
		prev.close()
	}
	logger.Info("host paired")

	go s.writeLoop(sess, logger)
	s.readLoop(sess, logger)

	s.detach(sess)
	logger.Info("host disconnected")
}

func (s *Server) pair(c net.Conn) (net.Conn, error) {
	if s.key == nil {
		return c, nil
	}
	_ = c.SetDeadline(time.Now().Add(s.cfg.PairTimeout))
	clientNonce, serverNonce, err := auth.ServerHandshake(c, s.key)
	if errors.Is(err, auth.ErrBadPasskey) {
		line, _ := json.Marshal(errUnauthorized("passkey mismatch"))
		_, _ = c.Write(append(line, '\n'))
	}
	if err != nil {
		return nil, err
	}
	_ = c.SetDeadline(time.Time{})
	return auth.WrapConn(c, auth.DeriveSessionKey(s.key, serverNonce, clientNonce))
}

func (s *Server) detach(sess *session) {
	s.mu.Lock()
	if s.host == sess {
		s.host = nil
	}
	s.mu.Unlock()
	sess.close()
}

func (s *Server) writeLoop(sess *session, logger *slog.Logger) {
	for {
		select {
		case <-sess.done:
			return
		case r := <-sess.queue:
			b, _ := r.MarshalBinary()
			if s.cfg.WriteTimeout > 0 {
				_ = sess.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			}
			if _, err := sess.conn.Write(b); err != nil {
				logger.Debug("report write failed", "error", err)
				s.detach(sess)
				return
			}
			s.rawLogger.Log(log.ToHost, b)
		}
	}
}

func (s *Server) readLoop(sess *session, logger *slog.Logger) {
	buf := make([]byte, 1)
	for {
		if _, err := sess.conn.Read(buf); err != nil {
			return
		}
		s.rawLogger.Log(log.FromHost, buf)
		s.leds.Store(uint32(buf[0]))
		logger.Debug("host LEDs", "mask", fmt.Sprintf("%#02x", buf[0]))
	}
}
