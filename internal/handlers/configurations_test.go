// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configBody = `{
	"modelId": "911-carrera",
	"modelName": "911 Carrera",
	"exteriorColor": "Guards Red",
	"wheels": "Carrera S",
	"interior": "Black Leather",
	"totalPrice": 127800,
	"previewImage": "https://cdn.example.com/preview.png",
	"configurationData": {"trim": "base"}
}`

func TestSaveConfiguration(t *testing.T) {
	api := newTestAPI(t)
	tok := api.signUp(t, "alice", "alice@example.com", "1234")

	status, body := api.do(t, http.MethodPost, "/config/save", configBody, tok)
	assert.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "911 Carrera", body["modelName"])
	assert.Equal(t, 127800.0, body["totalPrice"])
	assert.NotContains(t, body, "user_id")
}

func TestConfigurationDataRoundTripsAsObject(t *testing.T) {
	api := newTestAPI(t)
	tok := api.signUp(t, "alice", "alice@example.com", "1234")

	status, body := api.do(t, http.MethodPost, "/config/save", configBody, tok)
	require.Equal(t, http.StatusCreated, status)
	data, ok := body["configurationData"].(map[string]any)
	require.True(t, ok, "configurationData should be a JSON object, got %T", body["configurationData"])
	assert.Equal(t, "base", data["trim"])

	// The list response carries the same object, not an encoded string.
	req := httptest.NewRequest(http.MethodGet, "/config/user", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	rec := httptest.NewRecorder()
	api.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	data, ok = list[0]["configurationData"].(map[string]any)
	require.True(t, ok, "configurationData should be a JSON object, got %T", list[0]["configurationData"])
	assert.Equal(t, "base", data["trim"])
}

func TestSaveConfigurationOmittedDataDefaultsToEmptyObject(t *testing.T) {
	api := newTestAPI(t)
	tok := api.signUp(t, "alice", "alice@example.com", "1234")

	body := strings.Replace(configBody, `"configurationData": {"trim": "base"}`, `"configurationData": null`, 1)
	status, decoded := api.do(t, http.MethodPost, "/config/save", body, tok)
	require.Equal(t, http.StatusCreated, status)
	data, ok := decoded["configurationData"].(map[string]any)
	require.True(t, ok, "configurationData should be a JSON object, got %T", decoded["configurationData"])
	assert.Empty(t, data)
}

func TestSaveConfigurationValidation(t *testing.T) {
	api := newTestAPI(t)
	tok := api.signUp(t, "alice", "alice@example.com", "1234")

	status, body := api.do(t, http.MethodPost, "/config/save", `{"modelId":"911-carrera"}`, tok)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "required")
}

func TestSaveConfigurationLimit(t *testing.T) {
	api := newTestAPI(t)
	tok := api.signUp(t, "alice", "alice@example.com", "1234")

	for range 3 {
		status, _ := api.do(t, http.MethodPost, "/config/save", configBody, tok)
		require.Equal(t, http.StatusCreated, status)
	}

	status, body := api.do(t, http.MethodPost, "/config/save", configBody, tok)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "You can store only 3 configurations. Delete one to continue.", body["error"])
}

func TestListConfigurations(t *testing.T) {
	api := newTestAPI(t)
	tok := api.signUp(t, "alice", "alice@example.com", "1234")

	// Empty list is a JSON array, not null.
	req := httptest.NewRequest(http.MethodGet, "/config/user", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	rec := httptest.NewRecorder()
	api.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	status, _ := api.do(t, http.MethodPost, "/config/save", configBody, tok)
	require.Equal(t, http.StatusCreated, status)

	req = httptest.NewRequest(http.MethodGet, "/config/user", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	rec = httptest.NewRecorder()
	api.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "911 Carrera", list[0]["modelName"])
}

func TestUpdateConfiguration(t *testing.T) {
	api := newTestAPI(t)
	tok := api.signUp(t, "alice", "alice@example.com", "1234")

	status, saved := api.do(t, http.MethodPost, "/config/save", configBody, tok)
	require.Equal(t, http.StatusCreated, status)
	id, _ := saved["id"].(string)
	require.NotEmpty(t, id)

	updated := strings.Replace(configBody, "911 Carrera", "911 Turbo S", 1)
	status, body := api.do(t, http.MethodPut, "/config/"+id, updated, tok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "911 Turbo S", body["modelName"])

	status, body = api.do(t, http.MethodPut, "/config/missing", configBody, tok)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Configuration not found", body["error"])
}

func TestDeleteConfiguration(t *testing.T) {
	api := newTestAPI(t)
	tok := api.signUp(t, "alice", "alice@example.com", "1234")

	status, saved := api.do(t, http.MethodPost, "/config/save", configBody, tok)
	require.Equal(t, http.StatusCreated, status)
	id, _ := saved["id"].(string)

	status, _ = api.do(t, http.MethodDelete, "/config/"+id, "", tok)
	assert.Equal(t, http.StatusOK, status)

	status, body := api.do(t, http.MethodDelete, "/config/"+id, "", tok)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Configuration not found", body["error"])
}

func TestConfigurationsAreScopedToOwner(t *testing.T) {
	api := newTestAPI(t)
	aliceTok := api.signUp(t, "alice", "alice@example.com", "1234")
	bobTok := api.signUp(t, "bob", "bob@example.com", "5678")

	status, saved := api.do(t, http.MethodPost, "/config/save", configBody, aliceTok)
	require.Equal(t, http.StatusCreated, status)
	id, _ := saved["id"].(string)

	status, _ = api.do(t, http.MethodPut, "/config/"+id, configBody, bobTok)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = api.do(t, http.MethodDelete, "/config/"+id, "", bobTok)
	assert.Equal(t, http.StatusNotFound, status)

	// Bob's list stays empty.
	req := httptest.NewRequest(http.MethodGet, "/config/user", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+bobTok)
	rec := httptest.NewRecorder()
	api.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestConfigurationEndpointsRequireAuth(t *testing.T) {
	api := newTestAPI(t)

	status, body := api.do(t, http.MethodGet, "/config/user", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Authentication required", body["error"])

	status, body = api.do(t, http.MethodPost, "/config/save", configBody, "garbage")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid or expired token", body["error"])
}
