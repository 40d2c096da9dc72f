package mw

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrSnakeDoc/promoavail/internal/apperrors"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver/respond"
	"github.com/MrSnakeDoc/promoavail/internal/logger"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AuthConfig controls API authentication. When Enabled is false every caller is an
// anonymous admin and only the CIDR allow-list protects admin routes.
type AuthConfig struct {
	Enabled      bool
	JWTSecret    []byte
	Issuer       string
	APIKeys      []string
	AdminAPIKeys []string
}

// Claims are the bearer token claims. Role defaults to user.
type Claims struct {
	jwt.RegisteredClaims
	Role Role `json:"role,omitempty"`
}

// Principal is the authenticated caller.
type Principal struct {
	Subject string `json:"subject"`
	Role    Role   `json:"role"`
	Method  string `json:"method"` // "jwt", "api_key" or "anonymous"
}

type principalKey struct{}

// PrincipalFrom returns the caller stored by Authenticate.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

var errNoCredentials = errors.New("missing credentials")

// Authenticate accepts an X-API-Key header or an Authorization bearer value that is
// either a configured API key or an HS256 token signed with JWTSecret.
func Authenticate(cfg AuthConfig, log logger.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				p := Principal{Subject: "anonymous", Role: RoleAdmin, Method: "anonymous"}
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
			})
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := cfg.authenticate(r)
			if err != nil {
				log.Debug("authentication rejected",
					logger.String("path", r.URL.Path),
					logger.Error(err))
				w.Header().Set("WWW-Authenticate", `Bearer realm="promoavail"`)
				respond.Code(w, http.StatusUnauthorized, apperrors.CodeUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
		})
	}
}

// RequireRole rejects callers below role with 403.
func RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				respond.Code(w, http.StatusUnauthorized, apperrors.CodeUnauthorized, "authentication required")
				return
			}
			if role == RoleAdmin && p.Role != RoleAdmin {
				respond.Code(w, http.StatusForbidden, apperrors.CodeForbidden, "admin role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (cfg AuthConfig) authenticate(r *http.Request) (Principal, error) {
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return cfg.fromAPIKey(key)
	}

	h := r.Header.Get("Authorization")
	if h == "" {
		return Principal{}, errNoCredentials
	}
	scheme, value, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(value) == "" {
		return Principal{}, errors.New("malformed authorization header")
	}
	value = strings.TrimSpace(value)

	if p, err := cfg.fromAPIKey(value); err == nil {
		return p, nil
	}
	return cfg.fromToken(value)
}

func (cfg AuthConfig) fromAPIKey(key string) (Principal, error) {
	if keyIn(cfg.AdminAPIKeys, key) {
		return Principal{Subject: "api-key", Role: RoleAdmin, Method: "api_key"}, nil
	}
	if keyIn(cfg.APIKeys, key) {
		return Principal{Subject: "api-key", Role: RoleUser, Method: "api_key"}, nil
	}
	return Principal{}, errors.New("unknown api key")
}

func (cfg AuthConfig) fromToken(raw string) (Principal, error) {
	if len(cfg.JWTSecret) == 0 {
		return Principal{}, errors.New("bearer tokens are not accepted")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return cfg.JWTSecret, nil
	}, opts...)
	if err != nil {
		return Principal{}, fmt.Errorf("invalid token: %w", err)
	}

	role := claims.Role
	if role != RoleAdmin {
		role = RoleUser
	}
	return Principal{Subject: claims.Subject, Role: role, Method: "jwt"}, nil
}

// keyIn compares in constant time against every configured key.
func keyIn(keys []string, key string) bool {
	found := false
	for _, k := range keys {
		if k != "" && subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			found = true
		}
	}
	return found
}

// IssueToken signs an HS256 token for subject with the given role.
func IssueToken(secret []byte, issuer, subject string, role Role, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
