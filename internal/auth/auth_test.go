package auth_test

import (
	"testing"

	"github.com/Alia5/macropad/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePasskey(t *testing.T) {
	key, err := auth.GeneratePasskey()
	require.NoError(t, err)
	assert.Regexp(t, "^[0-9]{6}$", key)
}

func TestDeriveKey(t *testing.T) {
	type testCase struct {
		name    string
		passkey string
		wantErr bool
	}
	testCases := []testCase{
		{name: "digits", passkey: "123456"},
		{name: "single char", passkey: "1"},
		{name: "long", passkey: "dkfghdfg90d78h350ß8dgfjkdfg#---23489dfg!!!@!@#$$%&/()="},
		{name: "empty", passkey: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			k, err := auth.DeriveKey(tc.passkey)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, k, 32)
			again, err := auth.DeriveKey(tc.passkey)
			require.NoError(t, err)
			assert.Equal(t, k, again)
		})
	}

	a, _ := auth.DeriveKey("123456")
	b, _ := auth.DeriveKey("123457")
	assert.NotEqual(t, a, b)
}

func TestDeriveSessionKey(t *testing.T) {
	key := make([]byte, 32)
	sn := make([]byte, 32)
	cn := make([]byte, 32)
	k1 := auth.DeriveSessionKey(key, sn, cn)
	assert.Len(t, k1, 32)
	assert.Equal(t, k1, auth.DeriveSessionKey(key, sn, cn))

	cn[0] = 1
	assert.NotEqual(t, k1, auth.DeriveSessionKey(key, sn, cn))
}
