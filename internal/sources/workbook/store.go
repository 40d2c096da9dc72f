// Package workbook is a catalog store backed by a single .xlsx file with a
// "Products" and a "Synonyms" sheet laid out in catalog.ProductHeaders order.
package workbook

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/MrSnakeDoc/promoavail/internal/catalog"
	"github.com/MrSnakeDoc/promoavail/internal/domain"
	"github.com/MrSnakeDoc/promoavail/internal/logger"
	"github.com/xuri/excelize/v2"
)

// Store reads and writes the workbook at path. Every call opens the file fresh
// so edits made by a curator are picked up on the next refresh.
type Store struct {
	path string
	log  logger.Logger

	mu sync.Mutex // serializes writes against reads of the same file
}

var _ catalog.Store = (*Store)(nil)

// New creates a workbook store
func New(path string, log logger.Logger) *Store {
	return &Store{path: path, log: log.Named("workbook")}
}

// ListProducts returns every valid product row in sheet order.
// Rows without a name are skipped and logged.
func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.readSheet(ctx, catalog.ProductsSheet)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(rows))
	for i, row := range rows {
		if catalog.IsBlankRow(row) {
			continue
		}
		p, err := catalog.ParseProductRow(row)
		if err != nil {
			s.log.Warn("skipping product row", logger.Int("row", i+2), logger.Error(err))
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// ListSynonyms returns every complete synonym row in sheet order.
// A workbook without a Synonyms sheet has no synonyms.
func (s *Store) ListSynonyms(ctx context.Context) ([]domain.Synonym, error) {
	rows, err := s.readSheet(ctx, catalog.SynonymsSheet)
	if err != nil {
		return nil, err
	}

	synonyms := make([]domain.Synonym, 0, len(rows))
	for i, row := range rows {
		if catalog.IsBlankRow(row) {
			continue
		}
		syn, err := catalog.ParseSynonymRow(row)
		if err != nil {
			s.log.Debug("skipping synonym row", logger.Int("row", i+2), logger.Error(err))
			continue
		}
		synonyms = append(synonyms, syn)
	}
	return synonyms, nil
}

// AppendProducts writes products after the last used row of the Products sheet
func (s *Store) AppendProducts(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(catalog.ProductsSheet)
	if err != nil {
		return fmt.Errorf("failed to read products sheet: %w", err)
	}

	next := len(rows) + 1
	for i, p := range products {
		if err := writeRow(f, catalog.ProductsSheet, next+i, catalog.ProductRow(p)); err != nil {
			return err
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// UpdateProduct overwrites the first row whose name matches p.Name
func (s *Store) UpdateProduct(ctx context.Context, p domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(catalog.ProductsSheet)
	if err != nil {
		return fmt.Errorf("failed to read products sheet: %w", err)
	}

	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(row[catalog.ColName]), strings.TrimSpace(p.Name)) {
			if err := writeRow(f, catalog.ProductsSheet, i+1, catalog.ProductRow(p)); err != nil {
				return err
			}
			if err := f.Save(); err != nil {
				return fmt.Errorf("failed to save workbook: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", catalog.ErrProductNotFound, p.Name)
}

// Close is a no-op; the file is opened per call.
func (s *Store) Close() error { return nil }

// readSheet returns the data rows of sheet, without the header.
func (s *Store) readSheet(ctx context.Context, sheet string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		if sheet == catalog.SynonymsSheet {
			return nil, nil
		}
		return nil, fmt.Errorf("workbook has no %q sheet", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, row []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}
