// Package fieldcrypt encrypts individual string fields at rest with AES-256-GCM.
//
// Sealed values are three standard-base64 segments joined by dots:
// nonce, authentication tag, cipher text. The nonce is 16 random bytes.
package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	KeySize   = 32
	NonceSize = 16
	TagSize   = 16
)

var (
	ErrInvalidKey     = errors.New("fieldcrypt: key must be 32 bytes for AES-256")
	ErrMalformed      = errors.New("fieldcrypt: malformed sealed value")
	ErrAuthentication = errors.New("fieldcrypt: message authentication failed")
)

// Cipher seals and opens field values with one key. It is safe for
// concurrent use.
type Cipher struct {
	aead cipher.AEAD
}

// New builds a Cipher from a raw 32-byte key.
func New(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("fieldcrypt: create block cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("fieldcrypt: create GCM: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// DecodeKey decodes a standard-base64 key and checks its length.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("fieldcrypt: decode key: %w", err)
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	return key, nil
}

// NewFromBase64 decodes a standard-base64 key and builds a Cipher.
func NewFromBase64(encoded string) (*Cipher, error) {
	key, err := DecodeKey(encoded)
	if err != nil {
		return nil, err
	}
	return New(key)
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("fieldcrypt: generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-TagSize], sealed[len(sealed)-TagSize:]

	enc := base64.StdEncoding
	return enc.EncodeToString(nonce) + "." + enc.EncodeToString(tag) + "." + enc.EncodeToString(ct), nil
}

// Decrypt opens a value produced by Encrypt.
func (c *Cipher) Decrypt(sealed string) (string, error) {
	parts := strings.Split(sealed, ".")
	if len(parts) != 3 {
		return "", ErrMalformed
	}
	enc := base64.StdEncoding
	nonce, err := enc.DecodeString(parts[0])
	if err != nil || len(nonce) != NonceSize {
		return "", ErrMalformed
	}
	tag, err := enc.DecodeString(parts[1])
	if err != nil || len(tag) != TagSize {
		return "", ErrMalformed
	}
	ct, err := enc.DecodeString(parts[2])
	if err != nil {
		return "", ErrMalformed
	}

	plaintext, err := c.aead.Open(nil, nonce, append(ct, tag...), nil)
	if err != nil {
		return "", ErrAuthentication
	}
	return string(plaintext), nil
}
