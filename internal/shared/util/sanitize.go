package util

import (
	"errors"
	"strings"
)

// ErrInvalidFileName rejects names that are empty or attempt path traversal.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName strips path separators from an uploaded file name so it is
// safe to embed in a storage key.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if s == "" || strings.Contains(s, "..") {
		return "", ErrInvalidFileName
	}
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s, nil
}
