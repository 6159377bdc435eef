// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package validation provides pure input predicates for the auth flow.
// Handlers run them server-side regardless of any client-side checks.
package validation

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	pinRe   = regexp.MustCompile(`^\d{4}$`)
)

// IsValidNickname reports whether s is at least 3 characters after trimming.
func IsValidNickname(s string) bool {
	return len(strings.TrimSpace(s)) >= 3
}

// IsValidEmail reports whether s has a basic local@domain.tld shape.
func IsValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// IsValidPIN reports whether s is exactly 4 decimal digits after trimming.
func IsValidPIN(s string) bool {
	return pinRe.MatchString(strings.TrimSpace(s))
}

// NormalizeEmail trims and lower-cases an address for use as a lookup key.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
