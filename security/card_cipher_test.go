package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test_key_32_chars_for_aes_256!!!"

func TestCardCipher_RoundTrip(t *testing.T) {
	c, err := NewCardCipher(testKey)
	require.NoError(t, err)

	encrypted, err := c.Encrypt("4111111111111111")
	require.NoError(t, err)
	assert.NotContains(t, encrypted, "4111111111111111")

	again, err := c.Encrypt("4111111111111111")
	require.NoError(t, err)
	assert.NotEqual(t, encrypted, again, "nonces must differ between encryptions")

	plain, err := c.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "4111111111111111", plain)
}

func TestCardCipher_RejectsTamperedCiphertext(t *testing.T) {
	c, err := NewCardCipher(testKey)
	require.NoError(t, err)

	other, err := NewCardCipher("another_key_with_32_characters!!")
	require.NoError(t, err)

	encrypted, err := c.Encrypt("4111111111111111")
	require.NoError(t, err)

	_, err = other.Decrypt(encrypted)
	assert.Error(t, err)

	_, err = c.Decrypt("bm90LWVub3VnaA==")
	assert.Error(t, err)
}

func TestNewCardCipher_KeyLength(t *testing.T) {
	_, err := NewCardCipher("short")
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}

func TestGenerateCardNumber(t *testing.T) {
	number, err := GenerateCardNumber()
	require.NoError(t, err)
	assert.Len(t, number, CardNumberLength)
	assert.Regexp(t, `^[0-9]{16}$`, number)
}

func TestMaskCardNumber(t *testing.T) {
	assert.Equal(t, "1234 **** **** 3456", MaskCardNumber("1234567890123456"))
	assert.Equal(t, "12345", MaskCardNumber("12345"))
}
