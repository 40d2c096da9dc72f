// Package ingest imports product feeds into the catalog store and reports what changed.
package ingest

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/promoavail/internal/apperrors"
	"github.com/MrSnakeDoc/promoavail/internal/catalog"
	"github.com/MrSnakeDoc/promoavail/internal/domain"
	"github.com/MrSnakeDoc/promoavail/internal/logger"
	"github.com/MrSnakeDoc/promoavail/internal/scheduler"
)

// Store is the catalog backend an import reads from and writes to.
type Store interface {
	catalog.Reader
	catalog.Writer
}

// Refresher reloads the catalog cache once an import changed the store.
type Refresher interface {
	Refresh(ctx context.Context) (scheduler.RefreshResult, error)
}

// RowError explains why one feed row was not applied.
type RowError struct {
	Row     int    `json:"row"`
	Name    string `json:"name,omitempty"`
	Message string `json:"message"`
}

// Report summarizes an import run.
type Report struct {
	RunID     string     `json:"runId"`
	File      string     `json:"file"`
	Format    string     `json:"format"`
	DryRun    bool       `json:"dryRun"`
	TotalRows int        `json:"totalRows"`
	New       int        `json:"new"`
	Updated   int        `json:"updated"`
	Unchanged int        `json:"unchanged"`
	Errored   int        `json:"errored"`
	Errors    []RowError `json:"errors"`

	Refreshed    bool   `json:"refreshed"`
	RefreshError string `json:"refreshError,omitempty"`

	StartedAt    time.Time `json:"startedAt"`
	ProcessingMs int64     `json:"processingMs"`
}

// Options tune a single import run.
type Options struct {
	// DryRun validates and diffs without writing.
	DryRun bool
}

// Importer applies product feeds to a catalog store.
type Importer struct {
	store     Store
	refresher Refresher
	logger    logger.Logger
	now       func() time.Time
}

// New creates an importer. refresher may be nil.
func New(store Store, refresher Refresher, log logger.Logger) *Importer {
	return &Importer{
		store:     store,
		refresher: refresher,
		logger:    log.Named("ingest"),
		now:       time.Now,
	}
}

type pending struct {
	row     int
	product domain.Product
}

// Import parses the feed, diffs it against the store and applies the difference.
// Invalid rows are reported and skipped; they never abort the run.
func (im *Importer) Import(ctx context.Context, filename string, r io.Reader, opts Options) (Report, error) {
	start := im.now()
	report := Report{
		RunID:     uuid.NewString(),
		File:      filename,
		DryRun:    opts.DryRun,
		Errors:    make([]RowError, 0),
		StartedAt: start,
	}

	format, err := FormatFor(filename)
	if err != nil {
		return report, apperrors.Validation("%s", err.Error())
	}
	report.Format = format

	records, err := parseRecords(format, r)
	if err != nil {
		return report, apperrors.Validation("%s", err.Error())
	}

	existing, err := im.store.ListProducts(ctx)
	if err != nil {
		return report, apperrors.Upstream("catalog store unavailable", err)
	}
	current := make(map[string]domain.Product, len(existing))
	for _, p := range existing {
		current[nameKey(p.Name)] = p
	}

	var toAdd, toUpdate []pending
	seen := make(map[string]int, len(records))

	for _, rec := range records {
		line, _ := strconv.Atoi(rec[rowKey])
		cells := catalog.RowFromRecord(rec)
		if catalog.IsBlankRow(cells) {
			continue
		}
		report.TotalRows++

		p, err := catalog.ParseProductRow(cells)
		if err != nil {
			report.addError(line, "", err.Error())
			continue
		}
		key := nameKey(p.Name)
		if first, dup := seen[key]; dup {
			report.addError(line, p.Name, fmt.Sprintf("duplicate product name, first seen on row %d", first))
			continue
		}
		seen[key] = line

		if p.LastUpdated.IsZero() {
			p.LastUpdated = start
		}

		before, ok := current[key]
		if !ok {
			toAdd = append(toAdd, pending{row: line, product: p})
			continue
		}
		// keep the stored spelling so the row is updated in place
		p.Name = before.Name
		if before.Equal(p) {
			report.Unchanged++
			continue
		}
		toUpdate = append(toUpdate, pending{row: line, product: p})
	}

	if opts.DryRun {
		report.New = len(toAdd)
		report.Updated = len(toUpdate)
		report.ProcessingMs = im.now().Sub(start).Milliseconds()
		return report, nil
	}

	if err := im.apply(ctx, &report, toAdd, toUpdate); err != nil {
		return report, err
	}

	im.logger.Info("import applied",
		logger.String("run_id", report.RunID),
		logger.String("file", filename),
		logger.Int("new", report.New),
		logger.Int("updated", report.Updated),
		logger.Int("unchanged", report.Unchanged),
		logger.Int("errored", report.Errored))

	if im.refresher != nil && report.New+report.Updated > 0 {
		if _, err := im.refresher.Refresh(ctx); err != nil {
			im.logger.Error("refresh after import failed",
				logger.String("run_id", report.RunID),
				logger.Stage("refresh"),
				logger.Error(err))
			report.RefreshError = "catalog refresh failed, the next scheduled reload will pick up the changes"
		} else {
			report.Refreshed = true
		}
	}

	report.ProcessingMs = im.now().Sub(start).Milliseconds()
	return report, nil
}

func (im *Importer) apply(ctx context.Context, report *Report, toAdd, toUpdate []pending) error {
	if len(toAdd) > 0 {
		products := make([]domain.Product, 0, len(toAdd))
		for _, a := range toAdd {
			products = append(products, a.product)
		}
		if err := im.store.AppendProducts(ctx, products); err != nil {
			im.logger.Error("failed to append products",
				logger.String("run_id", report.RunID),
				logger.Stage("append"),
				logger.Error(err))
			return apperrors.Upstream("failed to write new products to the catalog store", err)
		}
		report.New = len(toAdd)
	}

	for _, u := range toUpdate {
		if err := im.store.UpdateProduct(ctx, u.product); err != nil {
			im.logger.Warn("failed to update product",
				logger.String("run_id", report.RunID),
				logger.String("product", u.product.Name),
				logger.Stage("update"),
				logger.Error(err))
			report.addError(u.row, u.product.Name, "update failed")
			continue
		}
		report.Updated++
	}
	return nil
}

func (r *Report) addError(row int, name, msg string) {
	r.Errored++
	r.Errors = append(r.Errors, RowError{Row: row, Name: name, Message: msg})
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
