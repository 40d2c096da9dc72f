package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/promoavail/internal/availability"
	"github.com/MrSnakeDoc/promoavail/internal/domain"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver/deps"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver/mw"
	"github.com/MrSnakeDoc/promoavail/internal/index"
	"github.com/MrSnakeDoc/promoavail/internal/ingest"
	"github.com/MrSnakeDoc/promoavail/internal/logger"
	"github.com/MrSnakeDoc/promoavail/internal/scheduler"
)

type fakeRefresher struct {
	res   scheduler.RefreshResult
	err   error
	calls int
}

func (f *fakeRefresher) Refresh(context.Context) (scheduler.RefreshResult, error) {
	f.calls++
	return f.res, f.err
}

type fakeImporter struct {
	filename string
	body     string
	opts     ingest.Options
}

func (f *fakeImporter) Import(_ context.Context, filename string, r io.Reader, opts ingest.Options) (ingest.Report, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return ingest.Report{}, err
	}
	f.filename, f.body, f.opts = filename, string(b), opts
	return ingest.Report{File: filename, Format: "csv", DryRun: opts.DryRun, TotalRows: 1, New: 1}, nil
}

type fakeFlusher struct{ n int }

func (f fakeFlusher) FlushExtractions(context.Context) (int, error) { return f.n, nil }

func testCatalog(populated bool) *index.Catalog {
	cat := index.NewCatalog()
	if !populated {
		return cat
	}
	cat.Swap(index.NewSnapshot([]domain.Product{
		{
			Name:          "Card Holder",
			Category:      "Badges & Accessories",
			WebsiteColors: []string{"Black"},
			Sourcing: domain.Sourcing{
				Local: domain.LocalSourcing{Supplier: "ABC Supplies", MOQ: domain.IntPtr(100), LeadTime: "5-7 days"},
				China: domain.ChinaSourcing{Available: true, MOQ: domain.IntPtr(1000), Air: true},
			},
		},
		{
			Name:          "Hoodie",
			Category:      "Apparel",
			WebsiteColors: []string{"Black", "Grey"},
			Sourcing: domain.Sourcing{
				Local: domain.LocalSourcing{Supplier: "Warm Wear", MOQ: domain.IntPtr(25)},
			},
		},
	}, []domain.Synonym{
		{CustomerSays: "badge case", WeCallIt: "Card Holder"},
		{CustomerSays: "jumper", WeCallIt: "Hoodie"},
	}, time.Now(), index.OriginStore))
	return cat
}

func testDeps(cat *index.Catalog) deps.Deps {
	log := logger.Nop()
	return deps.Deps{
		Logger:         log,
		StartTime:      time.Now().Add(-time.Minute),
		Version:        "test",
		Catalog:        cat,
		Availability:   availability.NewService(cat, nil, log),
		Refresher:      &fakeRefresher{res: scheduler.RefreshResult{Products: 2, Stats: index.DiffStats{Unchanged: 2}}},
		MaxUploadBytes: 1 << 20,
	}
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[errorEnvelope](t, rec).Error.Code
}

func TestProbes(t *testing.T) {
	h := NewRouter(time.Second, testDeps(testCatalog(true)))

	rec := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "test", health["version"])
	assert.Greater(t, health["uptime_seconds"], 0.0)

	rec = do(t, h, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["ready"])

	empty := NewRouter(time.Second, testDeps(testCatalog(false)))
	rec = do(t, empty, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec = do(t, empty, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearch(t *testing.T) {
	h := NewRouter(time.Second, testDeps(testCatalog(true)))

	rec := do(t, h, http.MethodGet, "/api/search?q=jumper&includeSourcing=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[availability.SearchResult](t, rec)
	require.NotNil(t, res.SynonymResolved)
	assert.Equal(t, "Hoodie", *res.SynonymResolved)
	require.Equal(t, 1, res.TotalFound)
	assert.NotNil(t, res.Products[0].Sourcing)

	rec = do(t, h, http.MethodGet, "/api/search?q=hoodie", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[availability.SearchResult](t, rec).Products[0].Sourcing)

	rec = do(t, h, http.MethodGet, "/api/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", errorCode(t, rec))

	rec = do(t, h, http.MethodGet, "/api/search?q=hoodie&includeSourcing=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckAvailability(t *testing.T) {
	h := NewRouter(time.Second, testDeps(testCatalog(true)))

	rec := do(t, h, http.MethodPost, "/api/availability", `{"query":"do you have badge case","quantity":50}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[availability.AvailabilityResult](t, rec)
	assert.True(t, res.Availability.Found)
	require.NotNil(t, res.SynonymResolved)
	assert.Equal(t, "Card Holder", *res.SynonymResolved)
	require.NotNil(t, res.Parsed.Quantity)
	assert.Equal(t, 50, *res.Parsed.Quantity)
	assert.NotEmpty(t, res.Summary)

	rec = do(t, h, http.MethodPost, "/api/availability", `{"query":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", errorCode(t, rec))

	rec = do(t, h, http.MethodPost, "/api/availability", `{"query":"hoodie","quantity":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/availability", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCatalogNotLoaded(t *testing.T) {
	h := NewRouter(time.Second, testDeps(testCatalog(false)))

	rec := do(t, h, http.MethodPost, "/api/availability", `{"query":"hoodie"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "catalog_unavailable", errorCode(t, rec))

	rec = do(t, h, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, availability.HealthDegraded, decode[availability.Status](t, rec).Status)
}

func TestMultiResolveSynonymsStatus(t *testing.T) {
	h := NewRouter(time.Second, testDeps(testCatalog(true)))

	rec := do(t, h, http.MethodPost, "/api/availability/multi", `{"query":"30 pcs hoodie and 10 flying carpets"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	multi := decode[availability.MultiAvailabilityResult](t, rec)
	assert.Equal(t, 2, multi.TotalProductsRequested)
	assert.Equal(t, 1, multi.TotalProductsFound)
	assert.NotEmpty(t, multi.CombinedSummary)

	rec = do(t, h, http.MethodPost, "/api/resolve", `{"terms":["jumper","hoodie","zeppelin"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resolved := decode[availability.ResolveResult](t, rec)
	require.Len(t, resolved.Resolutions, 3)
	assert.Equal(t, availability.ConfidenceSynonym, resolved.Resolutions[0].Confidence)
	assert.Equal(t, availability.ConfidenceExact, resolved.Resolutions[1].Confidence)
	assert.Equal(t, availability.ConfidenceNotFound, resolved.Resolutions[2].Confidence)

	rec = do(t, h, http.MethodPost, "/api/resolve", `{"terms":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/synonyms", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[availability.SynonymList](t, rec).Total)

	rec = do(t, h, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[availability.Status](t, rec)
	assert.Equal(t, availability.HealthOK, st.Status)
	assert.Equal(t, 2, st.Catalog.Products)
}

func TestUnknownRoute(t *testing.T) {
	h := NewRouter(time.Second, testDeps(testCatalog(true)))
	rec := do(t, h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))
}

func TestAdminRefresh(t *testing.T) {
	d := testDeps(testCatalog(true))
	h := NewRouter(time.Second, d)

	rec := do(t, h, http.MethodPost, "/api/admin/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "refreshed", body["status"])
	assert.Equal(t, 2.0, body["unchanged"])

	d.Refresher = &fakeRefresher{err: errors.New("workbook locked")}
	h = NewRouter(time.Second, d)
	rec = do(t, h, http.MethodPost, "/api/admin/refresh", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	env := decode[errorEnvelope](t, rec)
	assert.Equal(t, "upstream_error", env.Error.Code)
	assert.NotContains(t, env.Error.Message, "workbook locked")
}

func multipartBody(t *testing.T, field, filename, content string, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range extra {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestAdminIngest(t *testing.T) {
	imp := &fakeImporter{}
	d := testDeps(testCatalog(true))
	d.Importer = imp
	h := NewRouter(time.Second, d)

	body, ct := multipartBody(t, "file", "feed.csv", "name\nMug\n", map[string]string{"dryRun": "true"})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/ingest", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "feed.csv", imp.filename)
	assert.Equal(t, "name\nMug\n", imp.body)
	assert.True(t, imp.opts.DryRun)
	report := decode[ingest.Report](t, rec)
	assert.Equal(t, 1, report.New)

	body, ct = multipartBody(t, "", "", "", map[string]string{"dryRun": "false"})
	req = httptest.NewRequest(http.MethodPost, "/api/admin/ingest", body)
	req.Header.Set("Content-Type", ct)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	d.Importer = nil
	rec = do(t, NewRouter(time.Second, d), http.MethodPost, "/api/admin/ingest", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminCacheFlush(t *testing.T) {
	d := testDeps(testCatalog(true))

	rec := do(t, NewRouter(time.Second, d), http.MethodPost, "/api/admin/cache/flush", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	d.CacheFlusher = fakeFlusher{n: 7}
	rec = do(t, NewRouter(time.Second, d), http.MethodPost, "/api/admin/cache/flush", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7.0, decode[map[string]any](t, rec)["deleted"])
}

func TestAuthentication(t *testing.T) {
	secret := []byte("test-secret")
	d := testDeps(testCatalog(true))
	d.Auth = mw.AuthConfig{
		Enabled:      true,
		JWTSecret:    secret,
		Issuer:       "promoavail",
		APIKeys:      []string{"user-key"},
		AdminAPIKeys: []string{"admin-key"},
	}
	h := NewRouter(time.Second, d)

	rec := do(t, h, http.MethodGet, "/api/synonyms", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errorCode(t, rec))

	rec = do(t, h, http.MethodGet, "/api/synonyms", "", "X-API-Key", "user-key")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/admin/refresh", "", "X-API-Key", "user-key")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorCode(t, rec))

	rec = do(t, h, http.MethodPost, "/api/admin/refresh", "", "Authorization", "Bearer admin-key")
	assert.Equal(t, http.StatusOK, rec.Code)

	token, err := mw.IssueToken(secret, "promoavail", "ops@example.com", mw.RoleAdmin, time.Hour)
	require.NoError(t, err)
	rec = do(t, h, http.MethodPost, "/api/admin/refresh", "", "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)

	other, err := mw.IssueToken(secret, "someone-else", "ops@example.com", mw.RoleAdmin, time.Hour)
	require.NoError(t, err)
	rec = do(t, h, http.MethodGet, "/api/synonyms", "", "Authorization", "Bearer "+other)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// probes stay open
	rec = do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminCIDR(t *testing.T) {
	d := testDeps(testCatalog(true))
	d.AllowedCIDRs = []string{"10.0.0.0/8"}
	h := NewRouter(time.Second, d)

	// httptest requests come from 192.0.2.1
	rec := do(t, h, http.MethodPost, "/api/admin/refresh", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, h, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/synonyms", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	d.TrustProxy = true
	h = NewRouter(time.Second, d)
	rec = do(t, h, http.MethodPost, "/api/admin/refresh", "", "X-Forwarded-For", "10.1.2.3")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	d := testDeps(testCatalog(true))
	d.RateLimit = mw.RateLimitConfig{RatePerSecond: 0.01, Burst: 2}
	h := NewRouter(time.Second, d)

	for i := 0; i < 2; i++ {
		rec := do(t, h, http.MethodGet, "/api/synonyms", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := do(t, h, http.MethodGet, "/api/synonyms", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", errorCode(t, rec))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// probes are not throttled
	rec = do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
