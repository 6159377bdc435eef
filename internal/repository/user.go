// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"

	"codeberg.org/oliverandrich/dreamride/internal/models"
)

// CreateUser inserts a new user. The email is stored lower-cased.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, nickname, email, password_hash, is_verified) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Nickname, strings.ToLower(user.Email), user.PasswordHash, user.IsVerified)
	return err
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByNicknameOrEmail retrieves a user whose nickname matches exactly or
// whose email matches case-insensitively.
func (r *Repository) GetUserByNicknameOrEmail(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT * FROM users WHERE nickname = ? OR email = ? LIMIT 1`,
		identifier, strings.ToLower(identifier))
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// UserExists checks whether a user with the given nickname or email exists.
func (r *Repository) UserExists(ctx context.Context, nickname, email string) (bool, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM users WHERE nickname = ? OR email = ?`,
		nickname, strings.ToLower(email))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
