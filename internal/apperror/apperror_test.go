package apperror

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Auth("nope"), http.StatusUnauthorized},
		{Forbidden("nope"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Eligibility("not yours"), http.StatusNotFound},
		{Upstream("mail", errors.New("x")), http.StatusBadGateway},
		{Persistence("db", errors.New("x")), http.StatusInternalServerError},
		{Internal("boom", errors.New("x")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Status(), tt.err.Message)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := Persistence("db", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "cause")
}

func render(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	HTTPErrorHandler(err, c)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHTTPErrorHandlerAppError(t *testing.T) {
	rec, body := render(t, NotFound("course not found"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "course not found", body["message"])
}

func TestHTTPErrorHandlerEchoError(t *testing.T) {
	rec, body := render(t, echo.NewHTTPError(http.StatusNotFound, "Not Found"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
}

// Unknown errors never leak internals to the client.
func TestHTTPErrorHandlerUnknownError(t *testing.T) {
	rec, body := render(t, errors.New("pq: secret table missing"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", body["message"])
}
