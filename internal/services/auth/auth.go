// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth sequences the registration, verification and login flow:
//
//  1. Register: nickname + email, send a 4-digit code. No DB write.
//  2. Verify: email + code confirm the address only. The code never becomes
//     a credential.
//  3. SetPassword: email + user-chosen 4-digit password create the account;
//     the verification code is discarded.
//  4. Login: nickname or email + the permanent password. Only the password
//     set in step 3 ever allows login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"codeberg.org/oliverandrich/dreamride/internal/models"
	"codeberg.org/oliverandrich/dreamride/internal/repository"
	"codeberg.org/oliverandrich/dreamride/internal/services/password"
	"codeberg.org/oliverandrich/dreamride/internal/services/pending"
	"codeberg.org/oliverandrich/dreamride/internal/services/token"
	"codeberg.org/oliverandrich/dreamride/internal/validation"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrAlreadyRegistered means the nickname or email belongs to an account.
	ErrAlreadyRegistered = errors.New("nickname or email already in use")
	// ErrInvalidCode covers a missing, expired or mismatched verification code.
	ErrInvalidCode = errors.New("invalid or expired verification code")
	// ErrNotVerified means set-password was called before a successful verify.
	ErrNotVerified = errors.New("email must be verified first")
	// ErrInvalidCredentials is returned for both an unknown identifier and a
	// wrong password, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("incorrect nickname, email, or password")
	// ErrEmailNotVerified means a legacy imported account never verified.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrAccountNotSetUp means the account has no usable password hash.
	ErrAccountNotSetUp = errors.New("account not set up")
)

// ValidationError is a malformed-input failure whose message is safe to show
// to the caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// DispatchError means the verification code could not be delivered. The
// pending registration has already been rolled back so the user can retry.
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string { return "could not send verification email: " + e.Err.Error() }
func (e *DispatchError) Unwrap() error { return e.Err }

// CodeSender delivers a verification code to an address.
type CodeSender interface {
	SendCode(to, code string) error
}

// dummyHash is compared against on unknown identifiers so login takes the
// same time whether or not the account exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// Service orchestrates the auth flow against the pending store and the
// persistent account store.
type Service struct {
	repo    *repository.Repository
	pending *pending.Store
	hasher  *password.Hasher
	sender  CodeSender
	tokens  *token.Issuer
}

// NewService creates the auth orchestrator.
func NewService(repo *repository.Repository, store *pending.Store, hasher *password.Hasher, sender CodeSender, tokens *token.Issuer) *Service {
	return &Service{
		repo:    repo,
		pending: store,
		hasher:  hasher,
		sender:  sender,
		tokens:  tokens,
	}
}

// Register validates the nickname/email pair, stores a pending registration
// and dispatches a verification code. Nothing is written to the database.
// It returns the normalized email the code was sent to.
func (s *Service) Register(ctx context.Context, nickname, email string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	normEmail := validation.NormalizeEmail(email)

	if nickname == "" || normEmail == "" {
		return "", &ValidationError{Message: "Nickname and email are required"}
	}
	if !validation.IsValidNickname(nickname) {
		return "", &ValidationError{Message: "Nickname must be at least 3 characters"}
	}
	if !validation.IsValidEmail(normEmail) {
		return "", &ValidationError{Message: "Invalid email format"}
	}

	exists, err := s.repo.UserExists(ctx, nickname, normEmail)
	if err != nil {
		return "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return "", ErrAlreadyRegistered
	}

	code, err := s.pending.Begin(nickname, normEmail)
	if err != nil {
		return "", fmt.Errorf("failed to create pending registration: %w", err)
	}

	// No lock is held during dispatch; roll back the entry on failure.
	if err := s.sender.SendCode(normEmail, code); err != nil {
		s.pending.Abandon(normEmail)
		slog.Error("verification_email_failed", "email", normEmail, "error", err)
		return "", &DispatchError{Err: err}
	}

	slog.Info("register_pending", "nickname", nickname, "email", normEmail)
	return normEmail, nil
}

// Verify confirms control of an address by checking the code against the
// pending registration. The account is not created yet; the user chooses
// a password next.
func (s *Service) Verify(ctx context.Context, email, code string) (pending.Identity, error) {
	normEmail := validation.NormalizeEmail(email)
	if normEmail == "" || strings.TrimSpace(code) == "" {
		return pending.Identity{}, &ValidationError{Message: "Email and code are required"}
	}

	identity, ok := s.pending.Confirm(normEmail, code)
	if !ok {
		return pending.Identity{}, ErrInvalidCode
	}

	// An account may have been created elsewhere since register; clear the
	// stale pending entry and point the user at login.
	exists, err := s.repo.UserExists(ctx, identity.Nickname, identity.Email)
	if err != nil {
		return pending.Identity{}, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		s.pending.Abandon(normEmail)
		return pending.Identity{}, ErrAlreadyRegistered
	}

	slog.Info("email_verified", "email", normEmail)
	return identity, nil
}

// SetPassword consumes the verified pending registration and creates the
// account with the user-chosen password. This is the only place accounts are
// created; the verification code is never stored.
func (s *Service) SetPassword(ctx context.Context, email, pw string) error {
	normEmail := validation.NormalizeEmail(email)
	pw = strings.TrimSpace(pw)

	if normEmail == "" || pw == "" {
		return &ValidationError{Message: "Email and password are required"}
	}
	if !validation.IsValidPIN(pw) {
		return &ValidationError{Message: "Password must be exactly 4 digits"}
	}

	identity, ok := s.pending.ConsumeVerified(normEmail)
	if !ok {
		return ErrNotVerified
	}

	exists, err := s.repo.UserExists(ctx, identity.Nickname, identity.Email)
	if err != nil {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return ErrAlreadyRegistered
	}

	hash, err := s.hasher.Hash(pw)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Nickname:     identity.Nickname,
		Email:        identity.Email,
		PasswordHash: hash,
		IsVerified:   true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		// The unique constraints are the final authority; a concurrent
		// set-password for the same identity lands here.
		if repository.IsUniqueViolation(err) {
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("account_created", "user_id", user.ID, "nickname", user.Nickname)
	return nil
}

// Login authenticates by nickname or email plus the permanent password and
// returns the user and a session token. The same error is returned for an
// unknown identifier and a wrong password.
func (s *Service) Login(ctx context.Context, identifier, pw string) (*models.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	pw = strings.TrimSpace(pw)

	if identifier == "" || pw == "" {
		return nil, "", &ValidationError{Message: "Nickname/email and password are required"}
	}
	if !validation.IsValidPIN(pw) {
		return nil, "", &ValidationError{Message: "Password must be exactly 4 digits"}
	}

	user, err := s.repo.GetUserByNicknameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always run a bcrypt comparison.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(pw))
			slog.Warn("login_failed", "identifier", identifier, "reason", "user_not_found")
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsVerified {
		return nil, "", ErrEmailNotVerified
	}
	if user.PasswordHash == "" {
		return nil, "", ErrAccountNotSetUp
	}

	if !s.hasher.Verify(pw, user.PasswordHash) {
		slog.Warn("login_failed", "identifier", identifier, "reason", "invalid_password")
		return nil, "", ErrInvalidCredentials
	}

	sessionToken, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("login_success", "user_id", user.ID)
	return user, sessionToken, nil
}

// Authenticate resolves a bearer token to the account it is bound to.
// It fails when the token is invalid or the account no longer exists.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	userID, err := s.tokens.Authenticate(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, token.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
