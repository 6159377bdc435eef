// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package validation_test

import (
	"testing"

	"codeberg.org/oliverandrich/dreamride/internal/validation"
	"github.com/stretchr/testify/assert"
)

func TestIsValidNickname(t *testing.T) {
	tests := []struct {
		nickname string
		expected bool
	}{
		{"alice", true},
		{"bob", true},
		{"ab", false},
		{"", false},
		{"   ", false},
		{"  ab  ", false},
		{"  abc  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.nickname, func(t *testing.T) {
			assert.Equal(t, tt.expected, validation.IsValidNickname(tt.nickname))
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email    string
		expected bool
	}{
		{"a@x.com", true},
		{"alice.smith+tag@sub.example.org", true},
		{"  a@x.com  ", true},
		{"a@x", false},
		{"ax.com", false},
		{"a @x.com", false},
		{"a@x .com", false},
		{"@x.com", false},
		{"a@.com", false},
		{"a@b.c", true}, // shape check only, not RFC validation
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.expected, validation.IsValidEmail(tt.email))
		})
	}
}

func TestIsValidPIN(t *testing.T) {
	tests := []struct {
		pin      string
		expected bool
	}{
		{"1234", true},
		{"0000", true},
		{" 1234 ", true},
		{"123", false},
		{"12345", false},
		{"12a4", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.pin, func(t *testing.T) {
			assert.Equal(t, tt.expected, validation.IsValidPIN(tt.pin))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", validation.NormalizeEmail("  A@X.CoM  "))
	assert.Equal(t, "", validation.NormalizeEmail("   "))
}
