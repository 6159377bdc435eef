// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"testing"

	"codeberg.org/oliverandrich/dreamride/internal/database"
	"codeberg.org/oliverandrich/dreamride/internal/models"
	"codeberg.org/oliverandrich/dreamride/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestUser creates a verified test user in the database.
func NewTestUser(t *testing.T, repo *repository.Repository, nickname, email, passwordHash string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.NewString(),
		Nickname:     nickname,
		Email:        email,
		PasswordHash: passwordHash,
		IsVerified:   true,
	}
	err := repo.CreateUser(context.Background(), user)
	require.NoError(t, err)
	return user
}
