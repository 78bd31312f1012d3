// Package security holds the card number helpers: generation, masking and
// encryption at rest.
package security

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

const CardNumberLength = 16

var ErrInvalidKeyLength = fmt.Errorf("encryption key must be %d bytes", chacha20poly1305.KeySize)

// CardCipher encrypts card numbers with XChaCha20-Poly1305. Ciphertexts are
// base64(nonce || sealed).
type CardCipher struct {
	aead cipher.AEAD
}

func NewCardCipher(key string) (*CardCipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrInvalidKeyLength
	}
	aead, err := chacha20poly1305.NewX([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("failed to create card cipher: %w", err)
	}
	return &CardCipher{aead: aead}, nil
}

func (c *CardCipher) Encrypt(plain string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plain)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *CardCipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	if len(raw) < c.aead.NonceSize() {
		return "", errors.New("ciphertext too short")
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt card number: %w", err)
	}
	return string(plain), nil
}

// GenerateCardNumber returns CardNumberLength random decimal digits.
func GenerateCardNumber() (string, error) {
	var sb strings.Builder
	sb.Grow(CardNumberLength)
	ten := big.NewInt(10)
	for i := 0; i < CardNumberLength; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("failed to generate card number: %w", err)
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String(), nil
}

// MaskCardNumber renders "1234 **** **** 5678". Numbers of any other length
// are returned unchanged.
func MaskCardNumber(number string) string {
	if len(number) != CardNumberLength {
		return number
	}
	return number[:4] + " **** **** " + number[12:]
}
