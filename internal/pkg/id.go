package pkg

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const sessionIDBytes = 16

// GenerateNewSessionID - random hex id for a client session.
func GenerateNewSessionID() (string, error) {
	buf := make([]byte, sessionIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
