package handlers

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/vidtube-backend/pkg/apierr"
)

func TestRespond_SuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	respond(rec, 201, map[string]string{"id": "abc"}, "created")

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(201), body["statusCode"])
	assert.Equal(t, "created", body["message"])
	assert.Equal(t, "abc", body["data"].(map[string]interface{})["id"])
}

func TestRespondError_APIError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, apierr.Conflict("User with same username or email already exists"))

	assert.Equal(t, 409, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "User with same username or email already exists", body["message"])
}

func TestRespondError_UnknownErrorIsGeneric(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("dial tcp 10.0.0.5:27017: connection refused"))

	assert.Equal(t, 500, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5", "internals must not leak")
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}
