package store

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrDecryption is returned when a stored token cannot be decrypted.
var ErrDecryption = errors.New("token decryption failed")

const cipherPrefix = "enc:v1:"

// TokenCipher encrypts tokens before they are written and decrypts them on
// read.
type TokenCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(stored string) (string, error)
}

// PlaintextCipher stores tokens unmodified.
type PlaintextCipher struct{}

// Encrypt returns plaintext.
func (PlaintextCipher) Encrypt(plaintext string) (string, error) { return plaintext, nil }

// Decrypt returns stored.
func (PlaintextCipher) Decrypt(stored string) (string, error) { return stored, nil }

// AESCipher seals tokens with AES-256-GCM. Values written before encryption
// was enabled carry no prefix and are returned as-is.
type AESCipher struct {
	aead cipher.AEAD
}

// NewAESCipher builds an AESCipher. key must be 32 bytes.
func NewAESCipher(key []byte) (*AESCipher, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating gcm: %w", err)
	}
	return &AESCipher{aead: gcm}, nil
}

// Encrypt seals plaintext with a random nonce.
func (c *AESCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return cipherPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func (c *AESCipher) Decrypt(stored string) (string, error) {
	if stored == "" || !strings.HasPrefix(stored, cipherPrefix) {
		return stored, nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, cipherPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64", ErrDecryption)
	}

	nonceSize := c.aead.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryption)
	}

	plaintext, err := c.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryption, err)
	}
	return string(plaintext), nil
}
