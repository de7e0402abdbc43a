// Package secrets issues admin keys and derives the keyed digests stores index
// them by.
package secrets

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	dErrors "secretsanta/pkg/domain-errors"
)

const digestInfo = "secretsanta admin-key digest v1"

// Generate creates a cryptographically secure random secret.
// Returns a base64url string suitable for use as an admin key.
func Generate() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Digester computes HMAC-SHA256 digests of admin keys under a subkey derived
// from the service master key.
type Digester struct {
	key []byte
}

// NewDigester derives the digest key from master with HKDF-SHA256.
func NewDigester(master []byte) (*Digester, error) {
	if len(master) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "master key cannot be empty")
	}
	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(digestInfo)), key); err != nil {
		return nil, fmt.Errorf("derive digest key: %w", err)
	}
	return &Digester{key: key}, nil
}

// Digest returns the base64url HMAC of secret.
func (d *Digester) Digest(secret string) string {
	mac := hmac.New(sha256.New, d.key)
	mac.Write([]byte(secret))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether secret hashes to digest, in constant time.
func (d *Digester) Verify(secret, digest string) bool {
	if secret == "" || digest == "" {
		return false
	}
	return hmac.Equal([]byte(d.Digest(secret)), []byte(digest))
}
