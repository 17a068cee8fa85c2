package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
)

const (
	HandshakeMagic = "mPD1\x00"
	NonceSize      = 32
	pairContext    = "MacroPad-Pair-v1"
	okPrefix       = "OK\x00"
)

// ErrBadPasskey is returned by ServerHandshake when the host proved a
// different passkey.
var ErrBadPasskey = errors.New("invalid passkey")

// RejectedError carries the keypad's reply when it refused the handshake.
type RejectedError struct {
	Response string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("pairing rejected: %s", e.Response)
}

func proof(key, clientNonce []byte) []byte {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(pairContext))
	_, _ = mac.Write(clientNonce)
	return mac.Sum(nil)
}

// ClientHandshake runs the host side: send magic, nonce and proof, then
// expect "OK\0" and the keypad's nonce. Reads are unbuffered so nothing after
// the handshake is consumed.
func ClientHandshake(rw io.ReadWriter, key []byte) (clientNonce, serverNonce []byte, err error) {
	if len(key) == 0 {
		return nil, nil, fmt.Errorf("handshake: missing key")
	}
	clientNonce = make([]byte, NonceSize)
	if _, err := rand.Read(clientNonce); err != nil {
		return nil, nil, fmt.Errorf("generate client nonce: %w", err)
	}
	msg := append([]byte(HandshakeMagic), clientNonce...)
	msg = append(msg, proof(key, clientNonce)...)
	if _, err := rw.Write(msg); err != nil {
		return nil, nil, fmt.Errorf("write handshake: %w", err)
	}

	prefix := make([]byte, len(okPrefix))
	if _, err := io.ReadFull(rw, prefix); err != nil {
		return nil, nil, fmt.Errorf("read handshake response: %w", err)
	}
	if string(prefix) != okPrefix {
		rest, _ := io.ReadAll(rw)
		return nil, nil, &RejectedError{Response: string(append(prefix, rest...))}
	}
	serverNonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(rw, serverNonce); err != nil {
		return nil, nil, fmt.Errorf("read server nonce: %w", err)
	}
	return clientNonce, serverNonce, nil
}

// ServerHandshake runs the keypad side: verify the host's proof and answer
// with "OK\0" and a fresh nonce. On ErrBadPasskey nothing has been written.
func ServerHandshake(rw io.ReadWriter, key []byte) (clientNonce, serverNonce []byte, err error) {
	if len(key) == 0 {
		return nil, nil, fmt.Errorf("handshake: missing key")
	}
	magic := make([]byte, len(HandshakeMagic))
	if _, err := io.ReadFull(rw, magic); err != nil {
		return nil, nil, fmt.Errorf("read handshake magic: %w", err)
	}
	if string(magic) != HandshakeMagic {
		return nil, nil, fmt.Errorf("unexpected handshake magic %q", magic)
	}
	clientNonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(rw, clientNonce); err != nil {
		return nil, nil, fmt.Errorf("read client nonce: %w", err)
	}
	clientProof := make([]byte, sha256.Size)
	if _, err := io.ReadFull(rw, clientProof); err != nil {
		return nil, nil, fmt.Errorf("read client proof: %w", err)
	}
	if !hmac.Equal(clientProof, proof(key, clientNonce)) {
		return nil, nil, ErrBadPasskey
	}

	serverNonce = make([]byte, NonceSize)
	if _, err := rand.Read(serverNonce); err != nil {
		return nil, nil, fmt.Errorf("generate server nonce: %w", err)
	}
	if _, err := rw.Write(append([]byte(okPrefix), serverNonce...)); err != nil {
		return nil, nil, fmt.Errorf("write response: %w", err)
	}
	return clientNonce, serverNonce, nil
}
