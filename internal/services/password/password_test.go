// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package password_test

import (
	"testing"

	"codeberg.org/oliverandrich/dreamride/internal/services/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := password.NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("1234")
	require.NoError(t, err)
	assert.NotEqual(t, "1234", hash)

	assert.True(t, h.Verify("1234", hash))
	assert.False(t, h.Verify("4321", hash))
	assert.False(t, h.Verify("1234", "not-a-hash"))
}

func TestHashIsSalted(t *testing.T) {
	h := password.NewHasher(bcrypt.MinCost)

	first, err := h.Hash("1234")
	require.NoError(t, err)
	second, err := h.Hash("1234")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("1234", first))
	assert.True(t, h.Verify("1234", second))
}

func TestNewHasherClampsCost(t *testing.T) {
	h := password.NewHasher(1000)

	hash, err := h.Hash("1234")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
