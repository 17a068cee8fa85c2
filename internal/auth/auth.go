// Package auth implements keypad/host pairing: passkey stretching, a
// mutual-nonce HMAC handshake and an AEAD-framed connection.
package auth

import (
	"crypto/pbkdf2"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"math/big"
)

const (
	PasskeyDigits    = 6
	PBKDF2Iterations = 100000
	PBKDF2Salt       = "MacroPad-Passkey-v1"
)

// GeneratePasskey returns a random six-digit numeric passkey.
func GeneratePasskey() (string, error) {
	key := make([]byte, PasskeyDigits)
	ten := big.NewInt(10)
	for i := range key {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		key[i] = byte('0' + n.Int64())
	}
	return string(key), nil
}

// DeriveKey stretches a passkey to 32 bytes with PBKDF2-SHA256.
func DeriveKey(passkey string) ([]byte, error) {
	if passkey == "" {
		return nil, errors.New("passkey cannot be empty")
	}
	return pbkdf2.Key(
		sha256.New,
		passkey,
		[]byte(PBKDF2Salt),
		PBKDF2Iterations,
		32,
	)
}

// DeriveSessionKey mixes the pairing key with both nonces.
func DeriveSessionKey(key, serverNonce, clientNonce []byte) []byte {
	h := sha256.New()
	h.Write(key)
	h.Write(serverNonce)
	h.Write(clientNonce)
	h.Write([]byte("MacroPad-Session-v1"))
	return h.Sum(nil)
}
