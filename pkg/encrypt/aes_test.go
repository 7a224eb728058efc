package encrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("0123456789abcdef"))
	assert.NoError(t, ValidateKey("0123456789abcdef01234567"))
	assert.NoError(t, ValidateKey("0123456789abcdef0123456789abcdef"))
	assert.Error(t, ValidateKey(""))
	assert.Error(t, ValidateKey("short"))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := "0123456789abcdef"

	sealed, err := AESEncrypt(key, `[{"id":"plan-1","content":"secret plan"}]`)
	require.NoError(t, err)
	assert.NotContains(t, sealed, "secret plan")

	plain, err := AESDecrypt(key, sealed)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"plan-1","content":"secret plan"}]`, plain)

	// Nonces are random, so equal plaintexts never produce equal ciphertexts.
	again, err := AESEncrypt(key, `[{"id":"plan-1","content":"secret plan"}]`)
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again)
}

func TestDecryptRejectsBadInput(t *testing.T) {
	key := "0123456789abcdef"

	_, err := AESDecrypt(key, "not base64!!!")
	assert.Error(t, err)

	_, err = AESDecrypt(key, "c2hvcnQ=")
	assert.Error(t, err, "ciphertext shorter than a nonce")

	sealed, err := AESEncrypt(key, "data")
	require.NoError(t, err)
	_, err = AESDecrypt("fedcba9876543210", sealed)
	assert.Error(t, err, "wrong key must not decrypt")
}
