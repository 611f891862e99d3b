package errors

import (
	"net/url"
	"path/filepath"
	"strings"
	"unicode"
)

// Theme file extensions accepted by the theme pipeline.
const (
	ThemeExtCSS  = ".css"
	ThemeExtSCSS = ".scss"
	ThemeExtSASS = ".sass"
)

// MaxIconIDLength bounds icon identifiers.
const MaxIconIDLength = 256

// ValidateIconID checks an icon identifier such as "mdi:router" before it
// becomes part of a fetch URL or a cache file name. Identifiers must be
// non-empty, at most [MaxIconIDLength] bytes, free of whitespace and control
// characters, and must not contain path separators or "..".
func ValidateIconID(id string) error {
	switch {
	case id == "":
		return New(ErrCodeInvalidInput, "icon identifier is empty")
	case len(id) > MaxIconIDLength:
		return New(ErrCodeInvalidInput, "icon identifier is longer than %d bytes", MaxIconIDLength).At(id[:32] + "...")
	case strings.Contains(id, ".."):
		return New(ErrCodeInvalidInput, "icon identifier %q contains \"..\"", id).At(id)
	}
	for _, r := range id {
		switch {
		case r == '/' || r == '\\':
			return New(ErrCodeInvalidInput, "icon identifier %q contains a path separator", id).At(id)
		case unicode.IsSpace(r) || unicode.IsControl(r):
			return New(ErrCodeInvalidInput, "icon identifier %q contains whitespace or control characters", id).At(id)
		}
	}
	return nil
}

// ValidateThemePath checks that path names a .css, .scss or .sass file and
// returns its lower-cased extension.
func ValidateThemePath(path string) (string, error) {
	if path == "" {
		return "", New(ErrCodeInvalidTheme, "theme path is empty")
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ThemeExtCSS, ThemeExtSCSS, ThemeExtSASS:
		return ext, nil
	}
	return "", New(ErrCodeInvalidTheme, "theme %s: extension must be .css, .scss or .sass", filepath.Base(path)).At(path)
}

// ValidateURL checks that rawURL is an absolute http(s) URL with a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "URL is empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidConfig, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidConfig, "URL %q must use http or https", rawURL)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidConfig, "URL %q has no host", rawURL)
	}
	return nil
}
