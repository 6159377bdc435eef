// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package password wraps bcrypt for hashing the user's permanent PIN.
package password

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies secrets. The salt is generated per call and
// embedded in the output, so verification only needs the stored hash.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the given bcrypt cost.
// A cost outside bcrypt's valid range falls back to the default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash computes a salted one-way hash of secret.
func (h *Hasher) Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether secret matches the stored hash.
func (h *Hasher) Verify(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
