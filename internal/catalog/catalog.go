// Package catalog defines the contracts of the external catalog store and the
// positional row schema shared by the tabular backends.
package catalog

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/promoavail/internal/domain"
)

// ErrProductNotFound is returned by UpdateProduct when no row carries the name.
var ErrProductNotFound = errors.New("product not found in catalog store")

// Reader is the read side used by the catalog cache refresh.
type Reader interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListSynonyms(ctx context.Context) ([]domain.Synonym, error)
}

// Writer is the maintenance side used by ingestion.
type Writer interface {
	AppendProducts(ctx context.Context, products []domain.Product) error
	// UpdateProduct replaces the row whose name matches p.Name case-insensitively.
	UpdateProduct(ctx context.Context, p domain.Product) error
}

// Store is a full catalog backend.
type Store interface {
	Reader
	Writer
	Close() error
}
