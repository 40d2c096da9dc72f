package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/promoavail/internal/logger"
)

func principalEcho(t *testing.T, got *Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		require.True(t, ok)
		*got = p
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticateDisabled(t *testing.T) {
	var p Principal
	h := Authenticate(AuthConfig{}, logger.Nop())(principalEcho(t, &p))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, RoleAdmin, p.Role)
	assert.Equal(t, "anonymous", p.Method)
}

func TestAuthenticateToken(t *testing.T) {
	secret := []byte("s3cret")
	cfg := AuthConfig{Enabled: true, JWTSecret: secret}

	tests := []struct {
		name     string
		token    func(t *testing.T) string
		wantCode int
		wantRole Role
	}{
		{
			name: "user by default",
			token: func(t *testing.T) string {
				tok, err := IssueToken(secret, "", "alice", "", time.Minute)
				require.NoError(t, err)
				return tok
			},
			wantCode: http.StatusNoContent,
			wantRole: RoleUser,
		},
		{
			name: "admin claim",
			token: func(t *testing.T) string {
				tok, err := IssueToken(secret, "", "bob", RoleAdmin, time.Minute)
				require.NoError(t, err)
				return tok
			},
			wantCode: http.StatusNoContent,
			wantRole: RoleAdmin,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				tok, err := IssueToken([]byte("other"), "", "eve", RoleAdmin, time.Minute)
				require.NoError(t, err)
				return tok
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "carol",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
				}}
				tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
				require.NoError(t, err)
				return tok
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "no expiry",
			token: func(t *testing.T) string {
				claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "dave"}}
				tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
				require.NoError(t, err)
				return tok
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "none algorithm",
			token: func(t *testing.T) string {
				claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "mallory",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				}}
				tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return tok
			},
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Principal
			h := Authenticate(cfg, logger.Nop())(principalEcho(t, &p))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token(t))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusNoContent {
				assert.Equal(t, tt.wantRole, p.Role)
				assert.Equal(t, "jwt", p.Method)
			}
		})
	}
}

func TestAuthenticateRejectsMalformedHeader(t *testing.T) {
	cfg := AuthConfig{Enabled: true, APIKeys: []string{"k"}}
	var p Principal
	h := Authenticate(cfg, logger.Nop())(principalEcho(t, &p))

	for _, v := range []string{"Basic k", "Bearer", "Bearer   ", "k"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", v)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, v)
		assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RequireRole(RoleAdmin)(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIssueTokenValidation(t *testing.T) {
	_, err := IssueToken(nil, "", "x", RoleUser, time.Minute)
	assert.Error(t, err)
	_, err = IssueToken([]byte("s"), "", "x", RoleUser, 0)
	assert.Error(t, err)
}

func TestKeyIn(t *testing.T) {
	assert.True(t, keyIn([]string{"a", "b"}, "b"))
	assert.False(t, keyIn([]string{"a", ""}, ""))
	assert.False(t, keyIn(nil, "a"))
}
