// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware provides Echo middleware for the API.
package middleware

import (
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/dreamride/internal/models"
	"codeberg.org/oliverandrich/dreamride/internal/services/auth"
	"github.com/labstack/echo/v4"
)

// userContextKey is the Echo context key holding the authenticated user.
const userContextKey = "auth_user"

// RequireAuth resolves the bearer token on every request and stores the
// account in the context. Requests with a missing, invalid or expired token
// are rejected, as are tokens whose account no longer exists.
func RequireAuth(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
			}

			user, err := svc.Authenticate(c.Request().Context(), strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// UserFromContext returns the authenticated user set by RequireAuth,
// or nil when the request is unauthenticated.
func UserFromContext(c echo.Context) *models.User {
	user, _ := c.Get(userContextKey).(*models.User)
	return user
}
