package index

import (
	"slices"
	"time"

	"github.com/MrSnakeDoc/promoavail/internal/domain"
)

// Snapshot is an immutable view of the catalog at one point in time.
// It is built off to the side and never modified after NewSnapshot returns.
type Snapshot struct {
	products []domain.Product
	synonyms []domain.Synonym
	loadedAt time.Time
	origin   string

	matcher  *domain.ProductMatcher
	resolver *domain.SynonymResolver
}

// Snapshot origins
const (
	OriginStore = "store"
	OriginRedis = "redis"
	OriginEmpty = "empty"
)

// NewSnapshot copies the given rows and prepares the matcher and resolver.
func NewSnapshot(products []domain.Product, synonyms []domain.Synonym, loadedAt time.Time, origin string) *Snapshot {
	p := slices.Clone(products)
	s := slices.Clone(synonyms)
	return &Snapshot{
		products: p,
		synonyms: s,
		loadedAt: loadedAt,
		origin:   origin,
		matcher:  domain.NewProductMatcher(p),
		resolver: domain.NewSynonymResolver(s),
	}
}

// EmptySnapshot is served until the first successful load.
func EmptySnapshot() *Snapshot {
	return NewSnapshot(nil, nil, time.Time{}, OriginEmpty)
}

// Products returns the ordered product rows. Callers must not modify the slice.
func (s *Snapshot) Products() []domain.Product { return s.products }

// Synonyms returns the ordered synonym rows. Callers must not modify the slice.
func (s *Snapshot) Synonyms() []domain.Synonym { return s.synonyms }

func (s *Snapshot) ProductCount() int { return len(s.products) }
func (s *Snapshot) SynonymCount() int { return len(s.synonyms) }

// LoadedAt is when the rows were read from their origin.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Origin tells whether the rows came from the catalog store or the redis mirror.
func (s *Snapshot) Origin() string { return s.origin }

func (s *Snapshot) Matcher() *domain.ProductMatcher   { return s.matcher }
func (s *Snapshot) Resolver() *domain.SynonymResolver { return s.resolver }

// ─────────────────────────────────────────────────────────────────
// Diff
// ─────────────────────────────────────────────────────────────────

// DiffStats summarizes how a product set changed between two loads.
type DiffStats struct {
	New       int `json:"new"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Removed   int `json:"removed"`
}

// Diff compares two product lists keyed on name.
// Duplicate names in next are compared against the first occurrence in prev.
func Diff(prev, next []domain.Product) DiffStats {
	old := make(map[string]domain.Product, len(prev))
	for _, p := range prev {
		if _, ok := old[p.Name]; !ok {
			old[p.Name] = p
		}
	}

	var stats DiffStats
	seen := make(map[string]struct{}, len(next))
	for _, p := range next {
		seen[p.Name] = struct{}{}
		before, ok := old[p.Name]
		switch {
		case !ok:
			stats.New++
		case before.Equal(p):
			stats.Unchanged++
		default:
			stats.Updated++
		}
	}
	for name := range old {
		if _, ok := seen[name]; !ok {
			stats.Removed++
		}
	}
	return stats
}
