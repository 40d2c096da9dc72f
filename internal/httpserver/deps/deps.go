package deps

import (
	"context"
	"io"
	"time"

	"github.com/MrSnakeDoc/promoavail/internal/availability"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver/mw"
	"github.com/MrSnakeDoc/promoavail/internal/index"
	"github.com/MrSnakeDoc/promoavail/internal/ingest"
	"github.com/MrSnakeDoc/promoavail/internal/logger"
	"github.com/MrSnakeDoc/promoavail/internal/scheduler"
)

// Refresher forces a synchronous catalog reload
type Refresher interface {
	Refresh(ctx context.Context) (scheduler.RefreshResult, error)
}

// Importer applies an uploaded product feed
type Importer interface {
	Import(ctx context.Context, filename string, r io.Reader, opts ingest.Options) (ingest.Report, error)
}

// CacheFlusher drops cached extractor answers
type CacheFlusher interface {
	FlushExtractions(ctx context.Context) (int, error)
}

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time     // for testing, defaults to time.Now
	AllowedCIDRs   []string             // IPs allowed to reach probes and admin routes
	TrustProxy     bool                 // true if running behind a trusted reverse proxy
	Auth           mw.AuthConfig        // API authentication
	RateLimit      mw.RateLimitConfig   // per-IP throttle on /api
	MaxUploadBytes int64                // cap on ingestion uploads
	Catalog        *index.Catalog       // live catalog snapshot
	Availability   *availability.Service
	Refresher      Refresher
	Importer       Importer     // nil disables ingestion
	CacheFlusher   CacheFlusher // nil when redis is not configured
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
