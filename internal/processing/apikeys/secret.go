package apikeys

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	SecretPrefix = "sk_"

	secretBytes  = 24 // 48 hex characters
	displayChars = len(SecretPrefix) + 8
)

func generateSecret() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return SecretPrefix + hex.EncodeToString(b), nil
}

// HashSecret is the lookup value stored for a secret.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func displayPrefix(secret string) string {
	if len(secret) <= displayChars {
		return secret
	}
	return secret[:displayChars]
}
