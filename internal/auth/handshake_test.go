package auth_test

import (
	"net"
	"testing"

	"github.com/Alia5/macropad/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	cn, sn []byte
	err    error
}

func TestHandshake(t *testing.T) {
	good, err := auth.DeriveKey("123456")
	require.NoError(t, err)
	bad, err := auth.DeriveKey("654321")
	require.NoError(t, err)

	t.Run("matching passkeys", func(t *testing.T) {
		c, s := net.Pipe()
		defer c.Close()
		defer s.Close()

		done := make(chan result, 1)
		go func() {
			cn, sn, err := auth.ServerHandshake(s, good)
			done <- result{cn, sn, err}
		}()
		cn, sn, err := auth.ClientHandshake(c, good)
		require.NoError(t, err)
		srv := <-done
		require.NoError(t, srv.err)
		assert.Equal(t, cn, srv.cn)
		assert.Equal(t, sn, srv.sn)
		assert.Len(t, sn, auth.NonceSize)
	})

	t.Run("wrong passkey", func(t *testing.T) {
		c, s := net.Pipe()
		defer c.Close()

		done := make(chan error, 1)
		go func() {
			_, _, err := auth.ServerHandshake(s, good)
			if err == auth.ErrBadPasskey {
				_, _ = s.Write([]byte("rejected\n"))
			}
			s.Close()
			done <- err
		}()
		_, _, err := auth.ClientHandshake(c, bad)
		var rej *auth.RejectedError
		require.ErrorAs(t, err, &rej)
		assert.Equal(t, "rejected\n", rej.Response)
		assert.ErrorIs(t, <-done, auth.ErrBadPasskey)
	})

	t.Run("bad magic", func(t *testing.T) {
		c, s := net.Pipe()
		defer s.Close()
		go func() {
			_, _ = c.Write([]byte("nope!"))
			c.Close()
		}()
		_, _, err := auth.ServerHandshake(s, good)
		assert.ErrorContains(t, err, "magic")
	})

	t.Run("missing key", func(t *testing.T) {
		c, s := net.Pipe()
		defer c.Close()
		defer s.Close()
		_, _, err := auth.ClientHandshake(c, nil)
		assert.Error(t, err)
	})
}
