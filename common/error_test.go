package common

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	err := Errf(http.StatusBadRequest, "invalid %s", "ID")
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "invalid ID", err.Error())
	assert.Nil(t, errors.Unwrap(err))

	err = NewAPIError(http.StatusBadRequest, "validation failed", map[string]any{"kind": "required"})
	assert.Equal(t, "required", err.Fields["kind"])
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(http.StatusServiceUnavailable, cause, "job store unavailable")

	assert.Equal(t, "job store unavailable", err.Message)
	assert.Equal(t, "job store unavailable: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	var apiErr APIError
	assert.ErrorAs(t, error(err), &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}
