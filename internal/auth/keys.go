package auth

import (
	"crypto/rand"
	"fmt"
)

// SigningKey is the process-wide symmetric HMAC key. It is generated once at
// startup, held in memory only, and never persisted; tokens signed by a
// previous process become unverifiable after a restart.
type SigningKey []byte

const signingKeySize = 32

// GenerateSigningKey produces a fresh random key. A failure here is fatal to
// process startup.
func GenerateSigningKey() (SigningKey, error) {
	key := make([]byte, signingKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return key, nil
}
