package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantHTTP int
	}{
		{"validation helper", Validation("query is required"), CodeValidation, http.StatusBadRequest},
		{"wrapped validation sentinel", fmt.Errorf("decode: %w", ErrValidation), CodeValidation, http.StatusBadRequest},
		{"catalog unavailable", fmt.Errorf("search: %w", ErrCatalogUnavailable), CodeCatalogUnavailable, http.StatusServiceUnavailable},
		{"upstream", Upstream("catalog store unreachable", errors.New("dial tcp")), CodeUpstream, http.StatusBadGateway},
		{"unknown", errors.New("boom"), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := From(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantHTTP, got.Status)
			assert.NotContains(t, got.Message, "boom")
		})
	}
}

func TestFromNil(t *testing.T) {
	assert.Nil(t, From(nil))
}

func TestUpstreamUnwrapsToSentinel(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream("catalog store unreachable", cause)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, cause)
}
