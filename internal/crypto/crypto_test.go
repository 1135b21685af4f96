package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()
	key := testKey(0x01)

	cipherText, err := Encrypt("sensitive payload", key)
	require.NoError(t, err)
	assert.NotContains(t, cipherText, "sensitive")

	plain, err := Decrypt(cipherText, key)
	require.NoError(t, err)
	assert.Equal(t, "sensitive payload", plain)
}

func TestEncryptUsesFreshIV(t *testing.T) {
	t.Parallel()
	key := testKey(0x02)

	first, err := Encrypt("same input", key)
	require.NoError(t, err)
	second, err := Encrypt("same input", key)
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "a fresh IV must make identical plaintexts encrypt differently")
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	t.Parallel()

	cipherText, err := Encrypt("payload", testKey(0x03))
	require.NoError(t, err)

	plain, err := Decrypt(cipherText, testKey(0x04))
	if err == nil {
		// CBC with a wrong key usually breaks the padding; if it happens
		// to unpad, the recovered bytes still must not match.
		assert.NotEqual(t, "payload", plain)
	}
}

func TestKeyLengthEnforced(t *testing.T) {
	t.Parallel()

	_, err := Encrypt("payload", []byte("short"))
	assert.Error(t, err)

	_, err = Decrypt("whatever", []byte("short"))
	assert.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	t.Parallel()
	key := testKey(0x05)

	_, err := Decrypt("%%% not base64 %%%", key)
	assert.Error(t, err)

	_, err = Decrypt("c2hvcnQ=", key) // decodes, but too short for an IV
	assert.Error(t, err)
}

func TestDescriptorRoundTrip(t *testing.T) {
	t.Parallel()
	key := testKey(0x06)

	descriptor := make([]float64, 128)
	for i := range descriptor {
		descriptor[i] = float64(i) * 0.25
	}

	encrypted, err := EncryptDescriptor(descriptor, key)
	require.NoError(t, err)

	decrypted, err := DecryptDescriptor(encrypted, key)
	require.NoError(t, err)
	assert.Equal(t, descriptor, decrypted)
}
