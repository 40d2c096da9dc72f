package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/promoavail/internal/config"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver/deps"
	"github.com/MrSnakeDoc/promoavail/internal/httpserver/mw"
	"github.com/MrSnakeDoc/promoavail/internal/logger"
	"github.com/MrSnakeDoc/promoavail/internal/scheduler"
	"github.com/MrSnakeDoc/promoavail/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	pipeline *Pipeline
}

// New wires the long-running service. The catalog is not loaded until Run.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	p, err := NewPipeline(ctx, cfg, log, PipelineOptions{UseRedis: true})
	if err != nil {
		return nil, err
	}

	d := deps.Deps{
		Logger:       log,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedCIDRs: cfg.Access.AllowedCIDRs,
		TrustProxy:   cfg.Access.TrustProxy,
		Auth: mw.AuthConfig{
			Enabled:      cfg.Auth.Enabled,
			JWTSecret:    []byte(cfg.Auth.JWTSecret),
			Issuer:       cfg.Auth.JWTIssuer,
			APIKeys:      cfg.Auth.APIKeys,
			AdminAPIKeys: cfg.Auth.AdminAPIKeys,
		},
		RateLimit: mw.RateLimitConfig{
			RatePerSecond: cfg.Access.RatePerSecond,
			Burst:         cfg.Access.RateBurst,
			MaxEntries:    10_000,
			TrustProxy:    cfg.Access.TrustProxy,
		},
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Catalog:        p.Catalog,
		Availability:   p.Service,
		Refresher:      p.Reloader,
		Importer:       p.Importer,
	}
	if p.Redis != nil {
		d.CacheFlusher = p.Redis
	}

	return &App{
		cfg:      cfg,
		logger:   log,
		server:   httpserver.New(cfg, d),
		pipeline: p,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting promoavail %s on %s", version.Version, a.cfg.Server.ListenAddr)
	a.logger.Infof("promoavail %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)
	defer a.pipeline.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Serve the last mirrored snapshot while the store is read
	if a.pipeline.Redis != nil {
		syncer := scheduler.NewRedisSyncer(a.pipeline.Redis, a.pipeline.Catalog, a.logger)
		if _, err := syncer.Sync(ctx); err != nil {
			a.logger.Warn("failed to warm start from redis, waiting for the catalog store",
				logger.Stage("warm_start"),
				logger.Error(err))
		}
	}

	reloader := a.pipeline.Reloader
	if err := reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start catalog reloader: %w", err)
	}
	a.logger.Info("catalog reloader started",
		logger.String("backend", a.cfg.Catalog.Backend),
		logger.Duration("interval", a.cfg.Catalog.ReloadInterval))

	// SIGHUP forces a reload
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				a.logger.Info("SIGHUP received, reloading catalog")
				reloader.Trigger()
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		reloader.Stop()
		return err
	}

	reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("✅ promoavail stopped cleanly")
	return nil
}
