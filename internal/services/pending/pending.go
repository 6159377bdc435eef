// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package pending holds in-flight registrations between the register,
// verify and set-password steps. Nothing here is persisted; a restart
// simply forces users to request a new code.
package pending

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long a verification code stays valid.
const DefaultTTL = 10 * time.Minute

// Identity is the nickname/email pair carried through the flow.
type Identity struct {
	Nickname string
	Email    string
}

type registration struct {
	nickname  string
	email     string
	code      string
	expiresAt time.Time
	verified  bool
}

// Store is an in-memory, TTL-bounded map from normalized email to a draft
// registration. All operations are serialized so concurrent requests for the
// same address cannot both observe a live entry. The store holds no lock
// while callers dispatch email; Abandon rolls back a failed dispatch.
type Store struct {
	mu      sync.Mutex
	entries map[string]*registration
	ttl     time.Duration
	now     func() time.Time
}

// NewStore creates a Store with the given code lifetime.
// A non-positive ttl falls back to DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		entries: make(map[string]*registration),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Begin stores a fresh unverified registration for email, replacing any prior
// entry for the same address, and returns the generated 4-digit code.
// The email must already be normalized (trimmed, lower-cased).
func (s *Store) Begin(nickname, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[email] = &registration{
		nickname:  nickname,
		email:     email,
		code:      code,
		expiresAt: s.now().Add(s.ttl),
	}
	return code, nil
}

// Confirm checks code against the pending entry for email and marks it
// verified on a match. It reports false when there is no entry, the entry has
// expired, or the code does not match. Confirming an already verified entry
// with the correct code succeeds again; the entry stays until consumed.
func (s *Store) Confirm(email, code string) (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.live(email)
	if entry == nil {
		return Identity{}, false
	}
	if entry.code != strings.TrimSpace(code) {
		return Identity{}, false
	}
	entry.verified = true
	return Identity{Nickname: entry.nickname, Email: entry.email}, true
}

// ConsumeVerified removes and returns the verified entry for email.
// It reports false unless a live, verified entry exists. This is the only
// operation that deletes on success.
func (s *Store) ConsumeVerified(email string) (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.live(email)
	if entry == nil || !entry.verified {
		return Identity{}, false
	}
	delete(s.entries, email)
	return Identity{Nickname: entry.nickname, Email: entry.email}, true
}

// Abandon unconditionally removes the entry for email. Used to roll back a
// Begin whose code dispatch failed.
func (s *Store) Abandon(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, email)
}

// Sweep discards all expired entries. Expiry is already enforced lazily on
// every per-address access, so this is purely a memory optimization.
func (s *Store) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for email, entry := range s.entries {
		if entry.expiresAt.Before(now) {
			delete(s.entries, email)
		}
	}
}

// live returns the entry for email after lazy expiry pruning.
// Callers must hold s.mu.
func (s *Store) live(email string) *registration {
	entry, ok := s.entries[email]
	if !ok {
		return nil
	}
	if entry.expiresAt.Before(s.now()) {
		delete(s.entries, email)
		return nil
	}
	return entry
}

// generateCode returns a cryptographically uniform 4-digit code in the range
// 1000-9999. Codes with a leading zero are excluded to match the legacy
// backend; widening to 0000-9999 would invalidate no stored state but changes
// the code space users have seen documented.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("generating verification code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}
