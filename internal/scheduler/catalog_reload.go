package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/promoavail/internal/catalog"
	"github.com/MrSnakeDoc/promoavail/internal/domain"
	"github.com/MrSnakeDoc/promoavail/internal/index"
	"github.com/MrSnakeDoc/promoavail/internal/logger"
)

// CatalogMirror receives every snapshot that was swapped in.
// The redis store implements it; nil disables mirroring.
type CatalogMirror interface {
	SaveCatalog(ctx context.Context, products []domain.Product, synonyms []domain.Synonym, loadedAt time.Time) error
}

// RefreshResult describes one successful refresh
type RefreshResult struct {
	Stats    index.DiffStats `json:"stats"`
	Products int             `json:"products"`
	Synonyms int             `json:"synonyms"`
	LoadedAt time.Time       `json:"loadedAt"`
	Duration time.Duration   `json:"-"`
}

// CatalogReloader handles periodic and on-demand reloading of the catalog
type CatalogReloader struct {
	reader   catalog.Reader
	mirror   CatalogMirror
	catalog  *index.Catalog
	logger   logger.Logger
	interval time.Duration

	mu            sync.Mutex // one refresh at a time
	stopOnce      sync.Once
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewCatalogReloader creates a new catalog reloader
func NewCatalogReloader(
	reader catalog.Reader,
	mirror CatalogMirror,
	cat *index.Catalog,
	log logger.Logger,
	interval time.Duration,
) *CatalogReloader {
	return &CatalogReloader{
		reader:        reader,
		mirror:        mirror,
		catalog:       cat,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: make(chan struct{}, 1),
	}
}

// Start loads the catalog once and then reloads it on every tick or trigger.
// A failed initial load is logged and the previous snapshot (possibly the redis
// warm start) keeps serving.
func (cr *CatalogReloader) Start(ctx context.Context) error {
	if cr.interval <= 0 {
		return fmt.Errorf("reload interval must be positive, got %s", cr.interval)
	}

	if _, err := cr.Refresh(ctx); err != nil {
		cr.logger.Error("initial catalog load failed, serving previous snapshot",
			logger.Bool("populated", cr.catalog.Populated()),
			logger.Error(err))
	}

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cr.refreshAndLog(ctx)
			case <-cr.manualTrigger:
				cr.logger.Info("manual catalog reload triggered")
				cr.refreshAndLog(ctx)
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader. Safe to call more than once.
func (cr *CatalogReloader) Stop() {
	cr.stopOnce.Do(func() { close(cr.stopCh) })
}

// Trigger asks the background loop for a reload without waiting for it.
// Triggers that arrive while one is pending are coalesced.
func (cr *CatalogReloader) Trigger() {
	select {
	case cr.manualTrigger <- struct{}{}:
	default:
	}
}

func (cr *CatalogReloader) refreshAndLog(ctx context.Context) {
	if _, err := cr.Refresh(ctx); err != nil {
		cr.logger.Error("failed to reload catalog", logger.Error(err))
	}
}

// Refresh reads products and synonyms from the store and swaps in a new snapshot.
// On failure the live snapshot is left untouched and the failure is recorded.
func (cr *CatalogReloader) Refresh(ctx context.Context) (RefreshResult, error) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	start := time.Now()
	cr.logger.Info("reloading catalog")

	products, err := cr.reader.ListProducts(ctx)
	if err != nil {
		err = fmt.Errorf("failed to load products: %w", err)
		cr.catalog.RecordFailure(err)
		return RefreshResult{}, err
	}

	synonyms, err := cr.reader.ListSynonyms(ctx)
	if err != nil {
		err = fmt.Errorf("failed to load synonyms: %w", err)
		cr.catalog.RecordFailure(err)
		return RefreshResult{}, err
	}

	next := index.NewSnapshot(products, synonyms, start, index.OriginStore)
	prev := cr.catalog.Swap(next)
	stats := index.Diff(prev.Products(), next.Products())

	result := RefreshResult{
		Stats:    stats,
		Products: next.ProductCount(),
		Synonyms: next.SynonymCount(),
		LoadedAt: next.LoadedAt(),
		Duration: time.Since(start),
	}

	cr.logger.Info("catalog reloaded",
		logger.Int("products", result.Products),
		logger.Int("synonyms", result.Synonyms),
		logger.Int("new", stats.New),
		logger.Int("updated", stats.Updated),
		logger.Int("removed", stats.Removed),
		logger.Duration("took", result.Duration))

	// Update redis mirror (best effort)
	if cr.mirror != nil {
		if err := cr.mirror.SaveCatalog(ctx, next.Products(), next.Synonyms(), next.LoadedAt()); err != nil {
			cr.logger.Warn("failed to mirror catalog to redis",
				logger.Stage("mirror"),
				logger.Error(err))
		}
	}

	return result, nil
}
