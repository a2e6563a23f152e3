package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response
}

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusOK, map[string]string{"content": "olá"})
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "olá", response["content"])
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		require.NoError(t, WriteJSON(w, http.StatusNoContent, nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteOK(w, map[string]int{"indexed": 3}))
	assert.Equal(t, http.StatusOK, w.Code)

	var response SuccessResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, float64(3), response.Data.(map[string]interface{})["indexed"])
}

func TestWriteCreated(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteCreated(w, map[string]string{"rating": "positive"}))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"data":{"rating":"positive"}`)
}

func TestWriteErrorResponses(t *testing.T) {
	tests := []struct {
		name        string
		write       func(w http.ResponseWriter) error
		wantStatus  int
		wantError   string
		wantMessage string
	}{
		{
			name:        "bad request",
			write:       func(w http.ResponseWriter) error { return WriteBadRequest(w, "Validation failed", nil) },
			wantStatus:  http.StatusBadRequest,
			wantError:   "bad_request",
			wantMessage: "Validation failed",
		},
		{
			name:        "unauthorized default message",
			write:       func(w http.ResponseWriter) error { return WriteUnauthorized(w, "") },
			wantStatus:  http.StatusUnauthorized,
			wantError:   "unauthorized",
			wantMessage: "Authentication required",
		},
		{
			name:        "forbidden default message",
			write:       func(w http.ResponseWriter) error { return WriteForbidden(w, "") },
			wantStatus:  http.StatusForbidden,
			wantError:   "forbidden",
			wantMessage: "Access forbidden",
		},
		{
			name:        "not found",
			write:       func(w http.ResponseWriter) error { return WriteNotFound(w, "Brand not found") },
			wantStatus:  http.StatusNotFound,
			wantError:   "not_found",
			wantMessage: "Brand not found",
		},
		{
			name:        "conflict",
			write:       func(w http.ResponseWriter) error { return WriteConflict(w, "Conflict", nil) },
			wantStatus:  http.StatusConflict,
			wantError:   "conflict",
			wantMessage: "Conflict",
		},
		{
			name:        "too many requests default message",
			write:       func(w http.ResponseWriter) error { return WriteTooManyRequests(w, "", nil) },
			wantStatus:  http.StatusTooManyRequests,
			wantError:   "rate_limit_exceeded",
			wantMessage: "Rate limit exceeded",
		},
		{
			name:        "internal default message",
			write:       func(w http.ResponseWriter) error { return WriteInternalServerError(w, "") },
			wantStatus:  http.StatusInternalServerError,
			wantError:   "internal_error",
			wantMessage: "Internal server error",
		},
		{
			name:        "bad gateway",
			write:       func(w http.ResponseWriter) error { return WriteBadGateway(w, "claude request failed", nil) },
			wantStatus:  http.StatusBadGateway,
			wantError:   "bad_gateway",
			wantMessage: "claude request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, tt.write(w))

			assert.Equal(t, tt.wantStatus, w.Code)
			response := decodeError(t, w)
			assert.Equal(t, tt.wantError, response.Error)
			assert.Equal(t, tt.wantMessage, response.Message)
		})
	}
}

func TestWriteTooManyRequests_Details(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteTooManyRequests(w, "Exceeded rate limit", map[string]interface{}{"limit": 100}))

	response := decodeError(t, w)
	assert.Equal(t, float64(100), response.Details["limit"])
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Prompt string `json:"prompt"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"prompt":"olá"}`))
		var b body
		require.NoError(t, DecodeJSON(r, &b))
		assert.Equal(t, "olá", b.Prompt)
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var b body
		err := DecodeJSON(r, &b)
		assert.EqualError(t, err, "request body is required")
	})

	t.Run("unknown field", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"prompt":"x","model":"gpt"}`))
		var b body
		err := DecodeJSON(r, &b)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid request body")
	})

	t.Run("malformed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"prompt":`))
		var b body
		assert.Error(t, DecodeJSON(r, &b))
	})
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=50&offset=abc", nil)

	v, err := QueryInt(r, "limit", 20)
	require.NoError(t, err)
	assert.Equal(t, 50, v)

	v, err = QueryInt(r, "page", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = QueryInt(r, "offset", 0)
	assert.EqualError(t, err, "offset must be an integer")
}
