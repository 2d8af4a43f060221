package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewToken returns 32 random bytes hex-encoded. Used for invitation and
// signup tokens; must be unguessable, so only crypto/rand.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
