package cache

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKey is returned for keys that are empty or could escape the
// store's namespace.
var ErrInvalidKey = errors.New("invalid cache key")

// ValidateKey rejects empty keys, path separators and parent references.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
