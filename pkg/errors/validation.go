package errors

import (
	"strings"
	"unicode"
)

// ValidateAssetName validates the name of a dataset asset relative to the
// data directory. Names must be simple basenames such as "defaults.json" or
// "12.json".
func ValidateAssetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "asset name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidPath, "asset name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "asset name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "asset name cannot contain path separators")
	}
	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidPath, "asset name cannot be a hidden file")
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateRange checks a half-open sample range [lo, hi).
func ValidateRange(lo, hi int) error {
	if lo < 0 {
		return New(ErrCodeInvalidConfig, "min_range must be non-negative, got %d", lo)
	}
	if hi <= lo {
		return New(ErrCodeInvalidConfig, "max_range (%d) must be greater than min_range (%d)", hi, lo)
	}
	return nil
}
