package common

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateSecret returns a random URL safe string of n characters.
func GenerateSecret(n int) (string, error) {
	// each 3 bytes → 4 Base64 chars
	raw := make([]byte, (n*3+3)/4)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw)[:n], nil
}
