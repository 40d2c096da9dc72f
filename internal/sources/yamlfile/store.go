// Package yamlfile is a catalog store backed by a YAML document:
//
//	products:
//	  - name: Card Holder
//	    category: Badges & Accessories
//	    websiteColors: [Black, Clear]
//	    sourcing:
//	      local: {supplier: ABC Supplies, moq: 100}
//	      china: {available: true, moq: 1000, colors: any pantone color}
//	synonyms:
//	  - customerSays: badge case
//	    weCallIt: Card Holder
package yamlfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/MrSnakeDoc/promoavail/internal/catalog"
	"github.com/MrSnakeDoc/promoavail/internal/domain"
	"gopkg.in/yaml.v3"
)

// Document is the top-level structure of the catalog file
type Document struct {
	Products []domain.Product `yaml:"products"`
	Synonyms []domain.Synonym `yaml:"synonyms,omitempty"`
}

// Store handles loading and saving the catalog YAML file
type Store struct {
	filePath string
	mu       sync.Mutex
}

var _ catalog.Store = (*Store)(nil)

// New creates a new YAML catalog store
func New(filePath string) *Store {
	return &Store{filePath: filePath}
}

// Load reads and parses the catalog file
func (s *Store) Load() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Document, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}

	for i, p := range doc.Products {
		if err := p.Validate(); err != nil {
			return Document{}, fmt.Errorf("product #%d: %w", i+1, err)
		}
	}
	return doc, nil
}

// ListProducts returns products in file order
func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	return doc.Products, nil
}

// ListSynonyms returns complete synonym rows in file order
func (s *Store) ListSynonyms(ctx context.Context) ([]domain.Synonym, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}

	out := make([]domain.Synonym, 0, len(doc.Synonyms))
	for _, syn := range doc.Synonyms {
		if strings.TrimSpace(syn.CustomerSays) == "" || strings.TrimSpace(syn.WeCallIt) == "" {
			continue
		}
		out = append(out, syn)
	}
	return out, nil
}

// AppendProducts adds products at the end of the file
func (s *Store) AppendProducts(ctx context.Context, products []domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Products = append(doc.Products, products...)
	return s.save(doc)
}

// UpdateProduct replaces the first product with the same name
func (s *Store) UpdateProduct(ctx context.Context, p domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	for i := range doc.Products {
		if strings.EqualFold(strings.TrimSpace(doc.Products[i].Name), strings.TrimSpace(p.Name)) {
			doc.Products[i] = p
			return s.save(doc)
		}
	}
	return fmt.Errorf("%w: %s", catalog.ErrProductNotFound, p.Name)
}

// Close is a no-op
func (s *Store) Close() error { return nil }

// save writes through a temp file so readers never see a half-written document
func (s *Store) save(doc Document) error {
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to encode catalog yaml: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.filePath), ".catalog-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.filePath)
}
