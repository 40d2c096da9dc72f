package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrSnakeDoc/promoavail/internal/apperrors"
	"github.com/MrSnakeDoc/promoavail/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int{"products": 3})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"products":3}`, rec.Body.String())
}

func TestError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"validation", apperrors.Validation("q is required"), http.StatusBadRequest, apperrors.CodeValidation, "q is required"},
		{"catalog", apperrors.CatalogUnavailable(nil), http.StatusServiceUnavailable, apperrors.CodeCatalogUnavailable, ""},
		{"upstream", apperrors.Upstream("catalog refresh failed", errors.New("dial tcp")), http.StatusBadGateway, apperrors.CodeUpstream, "catalog refresh failed"},
		{"unknown", errors.New("pq: connection reset"), http.StatusInternalServerError, apperrors.CodeInternal, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, req, logger.Nop(), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			got := decodeEnvelope(t, rec)
			assert.Equal(t, tt.code, got.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, got.Message)
			}
			assert.NotContains(t, rec.Body.String(), "dial tcp")
			assert.NotContains(t, rec.Body.String(), "connection reset")
		})
	}
}

func TestCode(t *testing.T) {
	rec := httptest.NewRecorder()
	Code(rec, http.StatusForbidden, "forbidden", "admin role required")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, errorDetail{Code: "forbidden", Message: "admin role required"}, decodeEnvelope(t, rec))
}
