// Package link carries keyboard reports from the keypad to one paired host
// over TCP.
//
// Keypad to host, every frame is an 8-byte boot keyboard report. Host to
// keypad, every frame is a single LED bitmask byte. With a passkey set both
// ends run the pairing handshake first and the stream is encrypted.
package link

import "time"

// DefaultAddr is the keypad's listen address.
const DefaultAddr = ":3243"

// Config configures both ends of the link.
type Config struct {
	Addr         string
	Passkey      string
	QueueSize    int
	WriteTimeout time.Duration
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	// PairTimeout bounds the handshake on the keypad side.
	PairTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:         DefaultAddr,
		QueueSize:    256,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  3 * time.Second,
		PairTimeout:  5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.QueueSize <= 0 {
		c.QueueSize = d.QueueSize
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = d.DialTimeout
	}
	if c.PairTimeout <= 0 {
		c.PairTimeout = d.PairTimeout
	}
	return c
}
