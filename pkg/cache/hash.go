package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// hashKey joins prefix with the SHA-256 of the parts.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...string) string {
	return prefix + ":" + Hash([]byte(strings.Join(parts, "\x00")))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
