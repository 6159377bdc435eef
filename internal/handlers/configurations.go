// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/dreamride/internal/middleware"
	"codeberg.org/oliverandrich/dreamride/internal/models"
	"codeberg.org/oliverandrich/dreamride/internal/repository"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// maxConfigsPerUser limits how many configurations a user may store.
const maxConfigsPerUser = 3

// ConfigHandlers contains handlers for saved car configurations.
type ConfigHandlers struct {
	repo *repository.Repository
}

// NewConfig creates a new ConfigHandlers instance.
func NewConfig(repo *repository.Repository) *ConfigHandlers {
	return &ConfigHandlers{repo: repo}
}

// ConfigRequest is the request body for saving or updating a configuration.
type ConfigRequest struct {
	ModelID           string          `json:"modelId"`
	ModelName         string          `json:"modelName"`
	ExteriorColor     string          `json:"exteriorColor"`
	Wheels            string          `json:"wheels"`
	Interior          string          `json:"interior"`
	TotalPrice        *float64        `json:"totalPrice"`
	PreviewImage      string          `json:"previewImage"`
	ConfigurationData json.RawMessage `json:"configurationData"`
}

func (r *ConfigRequest) validate() string {
	if r.ModelID == "" || r.ModelName == "" || r.ExteriorColor == "" || r.Wheels == "" ||
		r.Interior == "" || r.TotalPrice == nil || r.PreviewImage == "" {
		return "modelId, modelName, exteriorColor, wheels, interior, totalPrice, and previewImage are required"
	}
	return ""
}

func (r *ConfigRequest) configurationData() string {
	if len(r.ConfigurationData) == 0 || string(r.ConfigurationData) == "null" {
		return "{}"
	}
	return string(r.ConfigurationData)
}

// Save stores a new configuration for the authenticated user.
func (h *ConfigHandlers) Save(c echo.Context) error {
	user := middleware.UserFromContext(c)

	var req ConfigRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}
	if msg := req.validate(); msg != "" {
		return jsonError(c, http.StatusBadRequest, msg)
	}

	ctx := c.Request().Context()
	count, err := h.repo.CountSavedConfigurations(ctx, user.ID)
	if err != nil {
		slog.Error("save_config_failed", "error", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to save configuration")
	}
	if count >= maxConfigsPerUser {
		return jsonError(c, http.StatusBadRequest, "You can store only 3 configurations. Delete one to continue.")
	}

	sc := &models.SavedConfiguration{
		ID:                uuid.NewString(),
		UserID:            user.ID,
		ModelID:           req.ModelID,
		ModelName:         req.ModelName,
		ExteriorColor:     req.ExteriorColor,
		Wheels:            req.Wheels,
		Interior:          req.Interior,
		TotalPrice:        *req.TotalPrice,
		PreviewImage:      req.PreviewImage,
		ConfigurationData: req.configurationData(),
	}
	if err := h.repo.CreateSavedConfiguration(ctx, sc); err != nil {
		slog.Error("save_config_failed", "error", err, "user_id", user.ID)
		return jsonError(c, http.StatusInternalServerError, "Failed to save configuration")
	}

	// Re-read for the DB-assigned timestamp.
	saved, err := h.repo.GetSavedConfiguration(ctx, sc.ID, user.ID)
	if err != nil {
		slog.Error("save_config_failed", "error", err, "user_id", user.ID)
		return jsonError(c, http.StatusInternalServerError, "Failed to save configuration")
	}

	return c.JSON(http.StatusCreated, saved)
}

// List returns the authenticated user's configurations, oldest first.
func (h *ConfigHandlers) List(c echo.Context) error {
	user := middleware.UserFromContext(c)

	list, err := h.repo.ListSavedConfigurations(c.Request().Context(), user.ID)
	if err != nil {
		slog.Error("list_configs_failed", "error", err, "user_id", user.ID)
		return jsonError(c, http.StatusInternalServerError, "Failed to load configurations")
	}
	if list == nil {
		list = []models.SavedConfiguration{}
	}

	return c.JSON(http.StatusOK, list)
}

// Update replaces an existing configuration owned by the authenticated user.
func (h *ConfigHandlers) Update(c echo.Context) error {
	user := middleware.UserFromContext(c)
	id := c.Param("id")

	var req ConfigRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}
	if msg := req.validate(); msg != "" {
		return jsonError(c, http.StatusBadRequest, msg)
	}

	ctx := c.Request().Context()
	sc := &models.SavedConfiguration{
		ID:                id,
		UserID:            user.ID,
		ModelID:           req.ModelID,
		ModelName:         req.ModelName,
		ExteriorColor:     req.ExteriorColor,
		Wheels:            req.Wheels,
		Interior:          req.Interior,
		TotalPrice:        *req.TotalPrice,
		PreviewImage:      req.PreviewImage,
		ConfigurationData: req.configurationData(),
	}
	if err := h.repo.UpdateSavedConfiguration(ctx, sc); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "Configuration not found")
		}
		slog.Error("update_config_failed", "error", err, "user_id", user.ID)
		return jsonError(c, http.StatusInternalServerError, "Failed to update configuration")
	}

	updated, err := h.repo.GetSavedConfiguration(ctx, id, user.ID)
	if err != nil {
		slog.Error("update_config_failed", "error", err, "user_id", user.ID)
		return jsonError(c, http.StatusInternalServerError, "Failed to update configuration")
	}

	return c.JSON(http.StatusOK, updated)
}

// Delete removes a configuration owned by the authenticated user.
func (h *ConfigHandlers) Delete(c echo.Context) error {
	user := middleware.UserFromContext(c)
	id := c.Param("id")

	if err := h.repo.DeleteSavedConfiguration(c.Request().Context(), id, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return jsonError(c, http.StatusNotFound, "Configuration not found")
		}
		slog.Error("delete_config_failed", "error", err, "user_id", user.ID)
		return jsonError(c, http.StatusInternalServerError, "Failed to delete configuration")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Configuration deleted"})
}
