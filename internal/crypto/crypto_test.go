package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipher_RoundTrip(t *testing.T) {
	c, err := NewCipher(DeriveKey("access-key"))
	require.NoError(t, err)

	ct, nonce, err := c.Encrypt("GB123456789")
	require.NoError(t, err)
	assert.NotContains(t, string(ct), "GB123456789")

	pt, err := c.Decrypt(ct, nonce)
	require.NoError(t, err)
	assert.Equal(t, "GB123456789", pt)
}

func TestCipher_WrongKey(t *testing.T) {
	a, err := NewCipher(DeriveKey("one"))
	require.NoError(t, err)
	b, err := NewCipher(DeriveKey("two"))
	require.NoError(t, err)

	ct, nonce, err := a.Encrypt("secret")
	require.NoError(t, err)
	_, err = b.Decrypt(ct, nonce)
	assert.Error(t, err)
}

func TestCipher_Optional(t *testing.T) {
	c, err := NewCipher(DeriveKey("k"))
	require.NoError(t, err)

	ct, nonce, err := c.EncryptOptional(nil)
	require.NoError(t, err)
	assert.Nil(t, ct)
	assert.Nil(t, nonce)

	out, err := c.DecryptOptional(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, out)

	v := "VAT-42"
	ct, nonce, err = c.EncryptOptional(&v)
	require.NoError(t, err)
	out, err = c.DecryptOptional(ct, nonce)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, v, *out)
}

func TestNewCipher_KeySize(t *testing.T) {
	_, err := NewCipher([]byte("short"))
	assert.ErrorIs(t, err, ErrKeySize)
}
