// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package pending

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codeRe = regexp.MustCompile(`^[1-9]\d{3}$`)

func newTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(DefaultTTL)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestBeginGeneratesFourDigitCode(t *testing.T) {
	s, _ := newTestStore(t)

	for range 50 {
		code, err := s.Begin("alice", "alice@example.com")
		require.NoError(t, err)
		assert.Regexp(t, codeRe, code)
	}
}

func TestConfirmWithCorrectCode(t *testing.T) {
	s, _ := newTestStore(t)

	code, err := s.Begin("alice", "alice@example.com")
	require.NoError(t, err)

	identity, ok := s.Confirm("alice@example.com", code)
	require.True(t, ok)
	assert.Equal(t, "alice", identity.Nickname)
	assert.Equal(t, "alice@example.com", identity.Email)
}

func TestConfirmTrimsCode(t *testing.T) {
	s, _ := newTestStore(t)

	code, err := s.Begin("alice", "alice@example.com")
	require.NoError(t, err)

	_, ok := s.Confirm("alice@example.com", "  "+code+"  ")
	assert.True(t, ok)
}

func TestConfirmWithWrongCode(t *testing.T) {
	s, _ := newTestStore(t)

	code, err := s.Begin("alice", "alice@example.com")
	require.NoError(t, err)

	wrong := "1234"
	if wrong == code {
		wrong = "5678"
	}

	_, ok := s.Confirm("alice@example.com", wrong)
	assert.False(t, ok)

	// A wrong attempt does not burn the entry; the right code still works.
	_, ok = s.Confirm("alice@example.com", code)
	assert.True(t, ok)
}

func TestConfirmUnknownEmail(t *testing.T) {
	s, _ := newTestStore(t)

	_, ok := s.Confirm("nobody@example.com", "1234")
	assert.False(t, ok)
}

func TestConfirmIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)

	code, err := s.Begin("alice", "alice@example.com")
	require.NoError(t, err)

	_, ok := s.Confirm("alice@example.com", code)
	require.True(t, ok)
	_, ok = s.Confirm("alice@example.com", code)
	assert.True(t, ok)
}

func TestConfirmExpiredEntry(t *testing.T) {
	s, now := newTestStore(t)

	code, err := s.Begin("alice", "alice@example.com")
	require.NoError(t, err)

	*now = now.Add(DefaultTTL + time.Second)

	_, ok := s.Confirm("alice@example.com", code)
	assert.False(t, ok)
	assert.Empty(t, s.entries, "expired entry should be pruned on access")
}

func TestBeginReplacesPriorEntry(t *testing.T) {
	s, _ := newTestStore(t)

	first, err := s.Begin("alice", "alice@example.com")
	require.NoError(t, err)
	second, err := s.Begin("alicia", "alice@example.com")
	require.NoError(t, err)

	// The old code is dead even if it happens to differ.
	if first != second {
		_, ok := s.Confirm("alice@example.com", first)
		assert.False(t, ok)
	}

	identity, ok := s.Confirm("alice@example.com", second)
	require.True(t, ok)
	assert.Equal(t, "alicia", identity.Nickname, "re-register overwrites the nickname")
}

func TestBeginResetsVerifiedState(t *testing.T) {
	s, _ := newTestStore(t)

	code, err := s.Begin("alice", "alice@example.com")
	require.NoError(t, err)
	_, ok := s.Confirm("alice@example.com", code)
	require.True(t, ok)

	// A fresh Begin discards the earlier verification.
	_, err = s.Begin("alice", "alice@example.com")
	require.NoError(t, err)

	_, ok = s.ConsumeVerified("alice@example.com")
	assert.False(t, ok)
}

func TestConsumeVerified(t *testing.T) {
	s, _ := newTestStore(t)

	code, err := s.Begin("alice", "alice@example.com")
	require.NoError(t, err)
	_, ok := s.Confirm("alice@example.com", code)
	require.True(t, ok)

	identity, ok := s.ConsumeVerified("alice@example.com")
	require.True(t, ok)
	assert.Equal(t, "alice", identity.Nickname)

	// Consumed means gone.
	_, ok = s.ConsumeVerified("alice@example.com")
	assert.False(t, ok)
	_, ok = s.Confirm("alice@example.com", code)
	assert.False(t, ok)
}

func TestConsumeVerifiedRequiresConfirm(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Begin("alice", "alice@example.com")
	require.NoError(t, err)

	_, ok := s.ConsumeVerified("alice@example.com")
	assert.False(t, ok)

	// The failed consume must not delete the unverified entry.
	s.mu.Lock()
	_, stillThere := s.entries["alice@example.com"]
	s.mu.Unlock()
	assert.True(t, stillThere)
}

func TestConsumeVerifiedExpired(t *testing.T) {
	s, now := newTestStore(t)

	code, err := s.Begin("alice", "alice@example.com")
	require.NoError(t, err)
	_, ok := s.Confirm("alice@example.com", code)
	require.True(t, ok)

	*now = now.Add(DefaultTTL + time.Second)

	_, ok = s.ConsumeVerified("alice@example.com")
	assert.False(t, ok)
}

func TestAbandon(t *testing.T) {
	s, _ := newTestStore(t)

	code, err := s.Begin("alice", "alice@example.com")
	require.NoError(t, err)

	s.Abandon("alice@example.com")

	_, ok := s.Confirm("alice@example.com", code)
	assert.False(t, ok)

	// Abandoning a missing entry is a no-op.
	s.Abandon("alice@example.com")
}

func TestSweep(t *testing.T) {
	s, now := newTestStore(t)

	_, err := s.Begin("alice", "alice@example.com")
	require.NoError(t, err)

	*now = now.Add(DefaultTTL + time.Second)
	codeBob, err := s.Begin("bob", "bob@example.com")
	require.NoError(t, err)

	s.Sweep()

	s.mu.Lock()
	assert.Len(t, s.entries, 1)
	s.mu.Unlock()

	_, ok := s.Confirm("bob@example.com", codeBob)
	assert.True(t, ok)
}

func TestNewStoreDefaultTTL(t *testing.T) {
	s := NewStore(0)
	assert.Equal(t, DefaultTTL, s.ttl)
}
