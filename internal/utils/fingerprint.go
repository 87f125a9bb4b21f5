package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the SHA256 hex digest of the concatenated parts, separated by NUL bytes.
func Fingerprint(parts ...string) string {
	hasher := sha256.New()
	for i, p := range parts {
		if i > 0 {
			hasher.Write([]byte{0})
		}
		hasher.Write([]byte(p))
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
