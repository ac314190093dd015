package encryption

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap scrypt cost so the suite stays fast
func newTestEncryption(t testing.TB, secret string) *PassphraseEncryption {
	e, err := NewPassphraseEncryption(secret)
	require.NoError(t, err)
	e.n = 1 << 10
	return e
}

func Test_PassphraseEncryption(t *testing.T) {
	const key = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

	t.Run("Should round trip", func(t *testing.T) {
		e := newTestEncryption(t, "k1")
		ct, err := e.Encrypt(key)
		require.NoError(t, err)

		pt := e.Decrypt(ct)
		value, ok := pt.Value()
		require.True(t, ok)
		assert.Equal(t, key, value)
		assert.False(t, pt.IsEmpty())
	})

	t.Run("Should not be deterministic", func(t *testing.T) {
		e := newTestEncryption(t, "k1")
		a, err := e.Encrypt(key)
		require.NoError(t, err)
		b, err := e.Encrypt(key)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("Should return empty for a different secret", func(t *testing.T) {
		ct, err := newTestEncryption(t, "k1").Encrypt(key)
		require.NoError(t, err)
		assert.True(t, newTestEncryption(t, "k2").Decrypt(ct).IsEmpty())
	})

	t.Run("Should return empty for malformed input", func(t *testing.T) {
		e := newTestEncryption(t, "k1")
		assert.True(t, e.Decrypt("not base64 !!").IsEmpty())
		assert.True(t, e.Decrypt("").IsEmpty())
		assert.True(t, e.Decrypt(base64.StdEncoding.EncodeToString([]byte("short"))).IsEmpty())
	})

	t.Run("Should return empty for tampered ciphertext", func(t *testing.T) {
		e := newTestEncryption(t, "k1")
		ct, err := e.Encrypt(key)
		require.NoError(t, err)
		raw, err := base64.StdEncoding.DecodeString(ct)
		require.NoError(t, err)
		raw[len(raw)-1] ^= 0xFF
		assert.True(t, e.Decrypt(base64.StdEncoding.EncodeToString(raw)).IsEmpty())
	})

	t.Run("Should reject an empty secret", func(t *testing.T) {
		_, err := NewPassphraseEncryption("")
		assert.Error(t, err)
	})
}

func FuzzPassphraseEncryptDecrypt(f *testing.F) {
	f.Add("hello")
	f.Add("")
	f.Add("0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	f.Add("a very long message that tests boundary conditions")

	e := newTestEncryption(f, "fuzz-secret")
	f.Fuzz(func(t *testing.T, plaintext string) {
		ct, err := e.Encrypt(plaintext)
		require.NoError(t, err)

		value, ok := e.Decrypt(ct).Value()
		require.True(t, ok)
		require.Equal(t, plaintext, value)
	})
}
