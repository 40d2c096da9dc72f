package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/promoavail/internal/availability"
	"github.com/MrSnakeDoc/promoavail/internal/catalog"
	"github.com/MrSnakeDoc/promoavail/internal/config"
	"github.com/MrSnakeDoc/promoavail/internal/extract"
	"github.com/MrSnakeDoc/promoavail/internal/index"
	"github.com/MrSnakeDoc/promoavail/internal/ingest"
	"github.com/MrSnakeDoc/promoavail/internal/logger"
	"github.com/MrSnakeDoc/promoavail/internal/redis"
	"github.com/MrSnakeDoc/promoavail/internal/scheduler"
	"github.com/MrSnakeDoc/promoavail/internal/sources/workbook"
	"github.com/MrSnakeDoc/promoavail/internal/sources/yamlfile"
	"github.com/MrSnakeDoc/promoavail/internal/store/postgres"
	redisstore "github.com/MrSnakeDoc/promoavail/internal/store/redis"
	"github.com/MrSnakeDoc/promoavail/internal/utils"
)

// Pipeline is the resolution stack shared by the server and the one-shot CLI commands.
type Pipeline struct {
	Store     catalog.Store
	Catalog   *index.Catalog
	Reloader  *scheduler.CatalogReloader
	Service   *availability.Service
	Importer  *ingest.Importer
	Extractor extract.Extractor

	// Redis is nil when redis is not configured or unreachable at boot.
	Redis       *redisstore.Store
	redisClient *goredis.Client
	log         logger.Logger
}

// PipelineOptions tune what NewPipeline connects to.
type PipelineOptions struct {
	// UseRedis dials redis when an address is configured.
	UseRedis bool
}

// NewPipeline opens the catalog store, the optional redis instance and the extractor,
// and wires the resolution service on top of an empty catalog cache.
func NewPipeline(ctx context.Context, cfg *config.Config, log logger.Logger, opts PipelineOptions) (*Pipeline, error) {
	store, err := OpenStore(ctx, cfg.Catalog, log)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		Store:   store,
		Catalog: index.NewCatalog(),
		log:     log,
	}

	if opts.UseRedis && cfg.Redis.Enabled() {
		p.redisClient, p.Redis = connectRedis(ctx, cfg.Redis, log)
	}

	var (
		mirror scheduler.CatalogMirror
		cache  extract.Cache
	)
	if p.Redis != nil {
		mirror = p.Redis
		cache = p.Redis
	}

	p.Reloader = scheduler.NewCatalogReloader(store, mirror, p.Catalog, log, cfg.Catalog.ReloadInterval)
	p.Extractor = NewExtractor(cfg.Extractor, cache, log)

	svcOpts := []availability.Option{}
	if p.Redis != nil {
		svcOpts = append(svcOpts, availability.WithProbe("redis", p.Redis.Ping))
	}
	if pg, ok := store.(*postgres.Store); ok {
		svcOpts = append(svcOpts, availability.WithProbe("postgres", pg.Ping))
	}
	p.Service = availability.NewService(p.Catalog, p.Extractor, log, svcOpts...)
	p.Importer = ingest.New(store, p.Reloader, log)

	return p, nil
}

// LoadCatalog performs one synchronous refresh with the configured load timeout.
func (p *Pipeline) LoadCatalog(ctx context.Context, cfg config.CatalogConfig) (scheduler.RefreshResult, error) {
	if cfg.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.LoadTimeout)
		defer cancel()
	}
	return p.Reloader.Refresh(ctx)
}

// Close releases the store and the redis client.
func (p *Pipeline) Close() {
	utils.CloseLogged(p.Store, "catalog store", p.log)
	if p.redisClient != nil {
		utils.CloseLogged(p.redisClient, "redis", p.log)
	}
}

// OpenStore builds the configured catalog backend.
func OpenStore(ctx context.Context, cfg config.CatalogConfig, log logger.Logger) (catalog.Store, error) {
	switch cfg.Backend {
	case config.BackendWorkbook:
		return workbook.New(cfg.Path, log), nil
	case config.BackendYAML:
		return yamlfile.New(cfg.Path), nil
	case config.BackendPostgres:
		store, err := postgres.Open(ctx, postgres.Config{
			URL:            cfg.DatabaseURL,
			MaxConnections: cfg.MaxConnections,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres catalog: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			utils.Close(store)
			return nil, fmt.Errorf("failed to prepare postgres schema: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown catalog backend %q", cfg.Backend)
	}
}

// NewExtractor returns the deterministic fallback, or the configured model behind the
// resilient wrapper. cache may be nil.
func NewExtractor(cfg config.ExtractorConfig, cache extract.Cache, log logger.Logger) extract.Extractor {
	var completer extract.Completer
	switch cfg.Provider {
	case config.ProviderOpenAI:
		completer = extract.NewOpenAI(extract.OpenAIConfig{
			APIKey:   cfg.APIKey,
			Endpoint: cfg.Endpoint,
			Model:    cfg.Model,
		})
	case config.ProviderAnthropic:
		completer = extract.NewAnthropic(extract.AnthropicConfig{
			APIKey:    cfg.APIKey,
			Endpoint:  cfg.Endpoint,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		})
	default:
		log.Info("no extraction model configured, using the deterministic extractor")
		return extract.Fallback{}
	}

	log.Info("extraction model configured",
		logger.String("provider", completer.Name()),
		logger.String("model", cfg.Model))

	return extract.NewResilient(extract.NewRemote(completer), completer.Name(), extract.ResilientConfig{
		Timeout:          cfg.Timeout,
		BreakerThreshold: cfg.BreakerThreshold,
		BreakerReset:     cfg.BreakerReset,
		RatePerSecond:    cfg.RatePerSecond,
		Burst:            cfg.Burst,
	}, cache, log)
}

// connectRedis dials redis. Failure is logged and the pipeline runs without it.
func connectRedis(ctx context.Context, cfg config.RedisConfig, log logger.Logger) (*goredis.Client, *redisstore.Store) {
	log.Infof("Connecting to Redis at %s", cfg.Addr)
	client, err := redis.Connect(ctx, redis.ConnectOptions{
		Addr:           cfg.Addr,
		User:           cfg.User,
		Password:       cfg.Password,
		RedisDB:        cfg.DB,
		DialTimeout:    cfg.DialTimeout,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		PoolSize:       cfg.PoolSize,
		ConnectTimeout: cfg.ConnectTimeout,
		RetryInterval:  cfg.RetryInterval,
		MaxWait:        cfg.MaxWait,
		PingTimeout:    cfg.PingTimeout,
		WarnThreshold:  cfg.WarnThreshold,
	}, log)
	if err != nil {
		log.Warn("redis unavailable, running without catalog mirror and extraction cache",
			logger.Stage("redis"),
			logger.Error(err))
		return nil, nil
	}
	log.Info("Redis initialized successfully")
	return client, redisstore.NewStore(client, cfg.MirrorTTL, cfg.ExtractionTTL)
}
