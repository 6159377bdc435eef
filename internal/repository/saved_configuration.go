// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/oliverandrich/dreamride/internal/models"
)

// CreateSavedConfiguration inserts a new saved configuration.
func (r *Repository) CreateSavedConfiguration(ctx context.Context, sc *models.SavedConfiguration) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO saved_configurations
		 (id, user_id, model_id, model_name, exterior_color, wheels, interior, total_price, preview_image, configuration_data)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.UserID, sc.ModelID, sc.ModelName, sc.ExteriorColor, sc.Wheels,
		sc.Interior, sc.TotalPrice, sc.PreviewImage, sc.ConfigurationData)
	return err
}

// GetSavedConfiguration retrieves a configuration by ID, scoped to its owner.
func (r *Repository) GetSavedConfiguration(ctx context.Context, id, userID string) (*models.SavedConfiguration, error) {
	var sc models.SavedConfiguration
	err := r.db.GetContext(ctx, &sc,
		`SELECT * FROM saved_configurations WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &sc, nil
}

// ListSavedConfigurations returns a user's configurations, oldest first.
// rowid breaks ties between rows created within the same second.
func (r *Repository) ListSavedConfigurations(ctx context.Context, userID string) ([]models.SavedConfiguration, error) {
	var list []models.SavedConfiguration
	err := r.db.SelectContext(ctx, &list,
		`SELECT * FROM saved_configurations WHERE user_id = ? ORDER BY created_at ASC, rowid ASC`, userID)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// CountSavedConfigurations returns how many configurations a user has stored.
func (r *Repository) CountSavedConfigurations(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM saved_configurations WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateSavedConfiguration updates a configuration owned by userID.
// Returns ErrNotFound when no row matched.
func (r *Repository) UpdateSavedConfiguration(ctx context.Context, sc *models.SavedConfiguration) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE saved_configurations
		 SET model_id = ?, model_name = ?, exterior_color = ?, wheels = ?, interior = ?,
		     total_price = ?, preview_image = ?, configuration_data = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		sc.ModelID, sc.ModelName, sc.ExteriorColor, sc.Wheels, sc.Interior,
		sc.TotalPrice, sc.PreviewImage, sc.ConfigurationData, sc.ID, sc.UserID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSavedConfiguration deletes a configuration owned by userID.
// Returns ErrNotFound when no row matched.
func (r *Repository) DeleteSavedConfiguration(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM saved_configurations WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
