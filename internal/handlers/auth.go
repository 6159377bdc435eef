// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/dreamride/internal/services/auth"
	"github.com/labstack/echo/v4"
)

// AuthHandlers contains handlers for the registration and login flow.
type AuthHandlers struct {
	auth *auth.Service
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(svc *auth.Service) *AuthHandlers {
	return &AuthHandlers{auth: svc}
}

// RegisterRequest is the request body for starting registration.
type RegisterRequest struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

// Register starts registration: validates the nickname/email pair and sends
// a verification code. No account is created yet.
func (h *AuthHandlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}

	email, err := h.auth.Register(c.Request().Context(), req.Nickname, req.Email)
	if err != nil {
		var vErr *auth.ValidationError
		var dErr *auth.DispatchError
		switch {
		case errors.As(err, &vErr):
			return jsonError(c, http.StatusBadRequest, vErr.Message)
		case errors.Is(err, auth.ErrAlreadyRegistered):
			return jsonError(c, http.StatusConflict, "Nickname or email already in use")
		case errors.As(err, &dErr):
			return jsonError(c, http.StatusBadGateway, "Could not send verification email. Please try again later.")
		default:
			slog.Error("register_failed", "error", err)
			return jsonError(c, http.StatusInternalServerError, "Registration failed")
		}
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Verification code sent to your email",
		"email":   email,
	})
}

// VerifyRequest is the request body for confirming an email address.
type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Verify confirms the email with the emailed code. The code only proves
// control of the address; it is never stored as a credential.
func (h *AuthHandlers) Verify(c echo.Context) error {
	var req VerifyRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}

	identity, err := h.auth.Verify(c.Request().Context(), req.Email, req.Code)
	if err != nil {
		var vErr *auth.ValidationError
		switch {
		case errors.As(err, &vErr):
			return jsonError(c, http.StatusBadRequest, vErr.Message)
		case errors.Is(err, auth.ErrInvalidCode):
			return jsonError(c, http.StatusBadRequest, "Invalid or expired verification code. Please request a new one.")
		case errors.Is(err, auth.ErrAlreadyRegistered):
			return jsonError(c, http.StatusConflict, "User already registered. Use login instead.")
		default:
			slog.Error("verify_failed", "error", err)
			return jsonError(c, http.StatusInternalServerError, "Verification failed")
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":       "Email verified. Create your password on the next screen.",
		"emailVerified": true,
		"email":         identity.Email,
		"nickname":      identity.Nickname,
	})
}

// SetPasswordRequest is the request body for choosing the permanent password.
type SetPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SetPassword creates the account with the user-chosen 4-digit password.
// Requires a verified pending registration for the address.
func (h *AuthHandlers) SetPassword(c echo.Context) error {
	var req SetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}
	return h.setPassword(c, req.Email, req.Password)
}

// CreatePINRequest is the request body of the legacy create-pin endpoint.
type CreatePINRequest struct {
	Email string `json:"email"`
	PIN   string `json:"pin"`
}

// CreatePIN is the legacy alias for SetPassword with a renamed field.
func (h *AuthHandlers) CreatePIN(c echo.Context) error {
	var req CreatePINRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}
	return h.setPassword(c, req.Email, req.PIN)
}

func (h *AuthHandlers) setPassword(c echo.Context, email, pw string) error {
	err := h.auth.SetPassword(c.Request().Context(), email, pw)
	if err != nil {
		var vErr *auth.ValidationError
		switch {
		case errors.As(err, &vErr):
			return jsonError(c, http.StatusBadRequest, vErr.Message)
		case errors.Is(err, auth.ErrNotVerified):
			return jsonError(c, http.StatusForbidden, "Email must be verified first. Enter the code from your email, then set your password.")
		case errors.Is(err, auth.ErrAlreadyRegistered):
			return jsonError(c, http.StatusConflict, "User already registered. Use login instead.")
		default:
			slog.Error("set_password_failed", "error", err)
			return jsonError(c, http.StatusInternalServerError, "Failed to set password")
		}
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Password created. You can now log in with your nickname or email and this password.",
	})
}

// LoginRequest is the request body for logging in.
type LoginRequest struct {
	NicknameOrEmail string `json:"nicknameOrEmail"`
	Password        string `json:"password"`
}

// Login authenticates with nickname or email plus the permanent password and
// returns a session token.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}

	user, sessionToken, err := h.auth.Login(c.Request().Context(), req.NicknameOrEmail, req.Password)
	if err != nil {
		var vErr *auth.ValidationError
		switch {
		case errors.As(err, &vErr):
			return jsonError(c, http.StatusBadRequest, vErr.Message)
		case errors.Is(err, auth.ErrInvalidCredentials):
			return jsonError(c, http.StatusUnauthorized, "Incorrect nickname, email, or password")
		case errors.Is(err, auth.ErrEmailNotVerified):
			return jsonError(c, http.StatusForbidden, "Email not verified. Please verify your email first.")
		case errors.Is(err, auth.ErrAccountNotSetUp):
			return jsonError(c, http.StatusForbidden, "Account not set up. Please complete registration.")
		default:
			slog.Error("login_failed", "error", err)
			return jsonError(c, http.StatusInternalServerError, "Login failed")
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   sessionToken,
		"user": map[string]any{
			"id":            user.ID,
			"nickname":      user.Nickname,
			"email":         user.Email,
			"emailVerified": user.IsVerified,
		},
	})
}
