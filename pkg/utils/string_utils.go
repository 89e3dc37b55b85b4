package utils

import "strings"

// NewNullString is a helper for string pointers, returning nil if string is empty.
// Useful for optional filters that should be absent rather than match "".
func NewNullString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
