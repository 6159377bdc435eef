// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import "github.com/labstack/echo/v4"

// jsonError writes the uniform error envelope used across the API.
func jsonError(c echo.Context, code int, message string) error {
	return c.JSON(code, map[string]string{"error": message})
}
