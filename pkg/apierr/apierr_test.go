package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, BadRequest("x").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("x").StatusCode)
	assert.Equal(t, http.StatusNotFound, NotFound("x").StatusCode)
	assert.Equal(t, http.StatusConflict, Conflict("x").StatusCode)
	assert.Equal(t, http.StatusInternalServerError, Internal("x").StatusCode)
}

func TestFrom_KnownError(t *testing.T) {
	orig := Conflict("duplicate identity")
	got, ok := From(orig)
	require.True(t, ok)
	assert.Same(t, orig, got)
}

func TestFrom_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("login failed: %w", Unauthorized("bad credentials"))
	got, ok := From(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, got.StatusCode)
	assert.Equal(t, "bad credentials", got.Message)
}

func TestFrom_UnknownErrorBecomesGeneric500(t *testing.T) {
	got, ok := From(errors.New("pq: connection reset"))
	assert.False(t, ok)
	assert.Equal(t, http.StatusInternalServerError, got.StatusCode)
	assert.Equal(t, "Internal Server Error", got.Message, "internals must not leak")
}
