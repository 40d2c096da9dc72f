package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, BackendWorkbook, cfg.Catalog.Backend)
	assert.Equal(t, "catalog.xlsx", cfg.Catalog.Path)
	assert.Equal(t, 15*time.Minute, cfg.Catalog.ReloadInterval)
	assert.Equal(t, ProviderNone, cfg.Extractor.Provider)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 168*time.Hour, cfg.Redis.MirrorTTL)
	assert.False(t, cfg.Auth.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PROMOAVAIL_CATALOG_BACKEND", "postgres")
	t.Setenv("PROMOAVAIL_DATABASE_URL", "postgres://u:p@localhost/promo")
	t.Setenv("PROMOAVAIL_REDIS_ADDR", "localhost:6379")
	t.Setenv("PROMOAVAIL_API_KEYS", ` key-one , "key-two",`)
	t.Setenv("PROMOAVAIL_ALLOWED_CIDRS", "10.0.0.0/8, 192.168.1.10")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Catalog.Backend)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"key-one", "key-two"}, cfg.Auth.APIKeys)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.10"}, cfg.Access.AllowedCIDRs)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalog:
  backend: yaml
  path: /srv/catalog.yaml
  reload_interval: 1h
extractor:
  provider: openai
  endpoint: http://localhost:11434/v1
  model: llama3
`), 0o600))

	t.Setenv("PROMOAVAIL_RELOAD_INTERVAL", "2m")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendYAML, cfg.Catalog.Backend)
	assert.Equal(t, "/srv/catalog.yaml", cfg.Catalog.Path)
	// env wins over the file
	assert.Equal(t, 2*time.Minute, cfg.Catalog.ReloadInterval)
	assert.Equal(t, ProviderOpenAI, cfg.Extractor.Provider)
	assert.Equal(t, "llama3", cfg.Extractor.Model)
}

func TestLoadFromConfigEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  listen_addr: \":9090\"\n"), 0o600))
	t.Setenv("PROMOAVAIL_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"postgres without url", map[string]string{"PROMOAVAIL_CATALOG_BACKEND": "postgres"}, "PROMOAVAIL_DATABASE_URL"},
		{"unknown backend", map[string]string{"PROMOAVAIL_CATALOG_BACKEND": "sheets"}, "unknown catalog backend"},
		{"anthropic without key", map[string]string{"PROMOAVAIL_EXTRACTOR": "anthropic"}, "PROMOAVAIL_EXTRACTOR_API_KEY"},
		{"openai without key or endpoint", map[string]string{"PROMOAVAIL_EXTRACTOR": "openai"}, "openai"},
		{"unknown provider", map[string]string{"PROMOAVAIL_EXTRACTOR": "bard"}, "unknown extractor provider"},
		{"redis password required", map[string]string{
			"PROMOAVAIL_REDIS_ADDR":              "localhost:6379",
			"PROMOAVAIL_REDIS_PASSWORD_REQUIRED": "true",
		}, "PROMOAVAIL_REDIS_PASSWORD"},
		{"auth without credentials", map[string]string{"PROMOAVAIL_AUTH_ENABLED": "true"}, "auth is enabled"},
		{"zero reload interval", map[string]string{"PROMOAVAIL_RELOAD_INTERVAL": "0s"}, "PROMOAVAIL_RELOAD_INTERVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMustLoadPanics(t *testing.T) {
	t.Setenv("PROMOAVAIL_CATALOG_BACKEND", "postgres")
	assert.Panics(t, func() { MustLoad("") })
}

func TestRedacted(t *testing.T) {
	cfg := &Config{
		Catalog:   CatalogConfig{DatabaseURL: "postgres://u:secret@db/promo"},
		Redis:     RedisConfig{Password: "hunter2"},
		Extractor: ExtractorConfig{APIKey: "sk-live"},
		Auth:      AuthConfig{JWTSecret: "s3cret", APIKeys: []string{"a", "b"}},
	}

	r := cfg.Redacted()
	assert.Equal(t, redacted, r.Catalog.DatabaseURL)
	assert.Equal(t, redacted, r.Redis.Password)
	assert.Equal(t, redacted, r.Extractor.APIKey)
	assert.Equal(t, redacted, r.Auth.JWTSecret)
	assert.Equal(t, []string{redacted}, r.Auth.APIKeys)
	assert.Empty(t, r.Auth.AdminAPIKeys)
	// original untouched
	assert.Equal(t, "hunter2", cfg.Redis.Password)
	assert.Equal(t, []string{"a", "b"}, cfg.Auth.APIKeys)
}
