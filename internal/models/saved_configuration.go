// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"encoding/json"
	"time"
)

// SavedConfiguration is a car configuration a user stored from the configurator.
// ConfigurationData holds the raw configurator state as a JSON document; it is
// stored as TEXT and inlined verbatim into API responses by MarshalJSON.
type SavedConfiguration struct { //nolint:govet // fieldalignment: readability over optimization
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"-"`
	ModelID           string    `db:"model_id" json:"modelId"`
	ModelName         string    `db:"model_name" json:"modelName"`
	ExteriorColor     string    `db:"exterior_color" json:"exteriorColor"`
	Wheels            string    `db:"wheels" json:"wheels"`
	Interior          string    `db:"interior" json:"interior"`
	TotalPrice        float64   `db:"total_price" json:"totalPrice"`
	PreviewImage      string    `db:"preview_image" json:"previewImage"`
	ConfigurationData string    `db:"configuration_data" json:"-"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"-"`
}

// MarshalJSON emits ConfigurationData as the JSON document it stores, so
// clients get back the object they saved rather than an encoded string.
func (sc SavedConfiguration) MarshalJSON() ([]byte, error) {
	type alias SavedConfiguration
	data := json.RawMessage(sc.ConfigurationData)
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}
	return json.Marshal(struct {
		alias
		ConfigurationData json.RawMessage `json:"configurationData"`
	}{alias: alias(sc), ConfigurationData: data})
}
