package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestEncryptDecryptSecret(t *testing.T) {
	sealed, err := EncryptSecret(testKey, "s3cr3t")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cr3t", sealed)

	plain, err := DecryptSecret(testKey, sealed)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", plain)
}

func TestEncryptSecretUsesFreshNonce(t *testing.T) {
	a, err := EncryptSecret(testKey, "same")
	require.NoError(t, err)
	b, err := EncryptSecret(testKey, "same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptSecretWrongKey(t *testing.T) {
	sealed, err := EncryptSecret(testKey, "s3cr3t")
	require.NoError(t, err)

	_, err = DecryptSecret("fedcba9876543210fedcba9876543210", sealed)
	assert.Error(t, err)
}

func TestDecryptSecretRejectsGarbage(t *testing.T) {
	_, err := DecryptSecret(testKey, "not-base64!")
	assert.Error(t, err)

	_, err = DecryptSecret(testKey, "AAAA")
	assert.Error(t, err)
}

func TestEncryptSecretInvalidKey(t *testing.T) {
	_, err := EncryptSecret("short", "x")
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	assert.True(t, CheckPassword("secret1", hash))
	assert.False(t, CheckPassword("secret2", hash))
}
