package utils

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// HashPrefix identifies the hash algorithm used by Hash.
const HashPrefix = "h1:"

// Hash computes the h1 hash (base64 encoded SHA256) of the given content.
//
// Example:
//
//	utils.Hash("CREATE TABLE users (id INT);")
//	// Result: h1:<base64 sha256>
func Hash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return HashPrefix + base64.StdEncoding.EncodeToString(sum[:])
}

// IsHash reports whether s looks like a value produced by Hash.
func IsHash(s string) bool {
	encoded, ok := strings.CutPrefix(s, HashPrefix)
	if !ok {
		return false
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	return err == nil && len(raw) == sha256.Size
}
