package fieldcrypt

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, KeySize)
}

func TestNew(t *testing.T) {
	_, err := New(make([]byte, 16))
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = New(testKey(1))
	assert.NoError(t, err)
}

func TestNewFromBase64(t *testing.T) {
	c, err := NewFromBase64(base64.StdEncoding.EncodeToString(testKey(7)))
	require.NoError(t, err)
	require.NotNil(t, c)

	_, err = NewFromBase64("not base64!!")
	assert.Error(t, err)

	_, err = NewFromBase64(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestEncryptDecrypt(t *testing.T) {
	c, err := New(testKey(3))
	require.NoError(t, err)

	for _, plaintext := range []string{"Ada Lovelace", "", "上海市 浦东新区 1号", strings.Repeat("x", 4096)} {
		sealed, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		assert.Len(t, strings.Split(sealed, "."), 3)
		if plaintext != "" {
			assert.NotContains(t, sealed, plaintext)
		}

		opened, err := c.Decrypt(sealed)
		require.NoError(t, err)
		assert.Equal(t, plaintext, opened)
	}
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	c, err := New(testKey(3))
	require.NoError(t, err)

	a, err := c.Encrypt("same")
	require.NoError(t, err)
	b, err := c.Encrypt("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptRejectsTampering(t *testing.T) {
	c, err := New(testKey(3))
	require.NoError(t, err)
	sealed, err := c.Encrypt("+1 555 0100")
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		other, err := New(testKey(4))
		require.NoError(t, err)
		_, err = other.Decrypt(sealed)
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("flipped cipher text", func(t *testing.T) {
		parts := strings.Split(sealed, ".")
		ct, err := base64.StdEncoding.DecodeString(parts[2])
		require.NoError(t, err)
		ct[0] ^= 0xff
		parts[2] = base64.StdEncoding.EncodeToString(ct)
		_, err = c.Decrypt(strings.Join(parts, "."))
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, in := range []string{"", "a.b", "a.b.c.d", "!!.!!.!!"} {
			_, err := c.Decrypt(in)
			assert.ErrorIs(t, err, ErrMalformed, "input %q", in)
		}
	})
}
