package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Sanitize replaces every run of characters outside [a-zA-Z0-9_-] with "-"
// and trims dashes and underscores from both ends.
func Sanitize(id string) string {
	return strings.Trim(unsafeChars.ReplaceAllString(id, "-"), "-_")
}

// EntryName derives a file-name-safe key from id: the sanitized id for
// readability, followed by 16 hex digits of its SHA-256 so that ids which
// sanitize identically stay distinct.
func EntryName(id, ext string) string {
	safe := Sanitize(id)
	if safe == "" {
		safe = "entry"
	}
	return safe + "-" + Hash([]byte(id))[:16] + ext
}
