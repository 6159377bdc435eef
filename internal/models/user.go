// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// User is a persisted account. Accounts are only ever created through the
// registration flow, so IsVerified is always true for new rows; the column
// exists for accounts imported from the legacy system.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID           string    `db:"id" json:"id"`
	Nickname     string    `db:"nickname" json:"nickname"`
	Email        string    `db:"email" json:"email"` // stored lower-cased
	PasswordHash string    `db:"password_hash" json:"-"`
	IsVerified   bool      `db:"is_verified" json:"emailVerified"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
