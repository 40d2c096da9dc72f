// Package availability answers product availability questions against the live
// catalog snapshot: resolve the customer's wording, match products, check colors and
// recommend a sourcing tier.
package availability

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MrSnakeDoc/promoavail/internal/apperrors"
	"github.com/MrSnakeDoc/promoavail/internal/domain"
	"github.com/MrSnakeDoc/promoavail/internal/extract"
	"github.com/MrSnakeDoc/promoavail/internal/index"
	"github.com/MrSnakeDoc/promoavail/internal/logger"
	"github.com/MrSnakeDoc/promoavail/internal/textnorm"
)

// maxAlternates caps the alternates listed per resolved term.
const maxAlternates = 5

// Probe checks an optional dependency for the status surface.
type Probe func(ctx context.Context) error

// Service is the resolution orchestrator. It holds no per-request state and is safe
// for concurrent use.
type Service struct {
	catalog   *index.Catalog
	extractor extract.Extractor
	probes    map[string]Probe
	logger    logger.Logger
}

// Option configures a Service
type Option func(*Service)

// WithProbe reports the named dependency in Status.
func WithProbe(name string, p Probe) Option {
	return func(s *Service) { s.probes[name] = p }
}

// NewService creates the orchestrator. A nil extractor uses the deterministic fallback.
func NewService(cat *index.Catalog, extractor extract.Extractor, log logger.Logger, opts ...Option) *Service {
	if extractor == nil {
		extractor = extract.Fallback{}
	}
	s := &Service{
		catalog:   cat,
		extractor: extractor,
		probes:    make(map[string]Probe),
		logger:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// snapshot returns the live catalog, or catalog_unavailable before the first load.
func (s *Service) snapshot() (*index.Snapshot, error) {
	if !s.catalog.Populated() {
		return nil, apperrors.CatalogUnavailable(s.catalog.LastError())
	}
	return s.catalog.Current(), nil
}

// ─────────────────────────────────────────────────────────────────
// Search
// ─────────────────────────────────────────────────────────────────

// Search matches the query directly, after synonym resolution, without the extractor.
func (s *Service) Search(_ context.Context, query string, includeSourcing bool) (SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, apperrors.Validation("query is required")
	}
	snap, err := s.snapshot()
	if err != nil {
		return SearchResult{}, err
	}

	term := query
	var resolved *string
	if canonical, ok := snap.Resolver().Resolve(query); ok {
		resolved = &canonical
		term = canonical
	}

	products := findWithSingular(snap.Matcher(), term)
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p, includeSourcing))
	}

	return SearchResult{
		Query:           query,
		SynonymResolved: resolved,
		Products:        views,
		TotalFound:      len(views),
	}, nil
}

// ─────────────────────────────────────────────────────────────────
// Single item
// ─────────────────────────────────────────────────────────────────

// CheckAvailability answers a free-text question about one product.
// Explicit quantity and urgent override anything read from the text.
func (s *Service) CheckAvailability(ctx context.Context, query string, quantity *int, urgent *bool) (AvailabilityResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return AvailabilityResult{}, apperrors.Validation("query is required")
	}
	if quantity != nil && *quantity < 0 {
		return AvailabilityResult{}, apperrors.Validation("quantity must not be negative")
	}
	snap, err := s.snapshot()
	if err != nil {
		return AvailabilityResult{}, err
	}

	parsed := s.extract(ctx, query)

	if quantity != nil {
		parsed.Quantity = quantity
	} else if scanned := ScanQuantity(query); scanned != nil {
		parsed.Quantity = scanned
	}
	if urgent != nil {
		parsed.Urgent = *urgent
	}

	res := resolveItem(snap, query, parsed)
	return AvailabilityResult{
		Query:           query,
		Parsed:          parsed,
		SynonymResolved: res.synonym,
		Availability:    res.availability,
		Summary:         renderSummary(res.term, parsed, res.availability),
	}, nil
}

func (s *Service) extract(ctx context.Context, query string) domain.ParsedQueryItem {
	parsed, err := s.extractor.Extract(ctx, query)
	if err != nil {
		s.logger.Warn("extractor failed, using fallback",
			logger.String("query", query),
			logger.Stage("extract"),
			logger.Error(err))
		parsed, _ = extract.Fallback{}.Extract(ctx, query)
	}
	return parsed
}

// ─────────────────────────────────────────────────────────────────
// Multi item
// ─────────────────────────────────────────────────────────────────

// CheckMultiAvailability answers a message naming several products. Items are
// resolved independently; an explicit urgent flag applies to all of them.
func (s *Service) CheckMultiAvailability(ctx context.Context, query string, urgent *bool) (MultiAvailabilityResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return MultiAvailabilityResult{}, apperrors.Validation("query is required")
	}
	snap, err := s.snapshot()
	if err != nil {
		return MultiAvailabilityResult{}, err
	}

	batch, err := s.extractor.ExtractMulti(ctx, query)
	if err != nil {
		s.logger.Warn("extractor failed, using fallback",
			logger.String("query", query),
			logger.Stage("extract_multi"),
			logger.Error(err))
		batch, _ = extract.Fallback{}.ExtractMulti(ctx, query)
	}

	out := MultiAvailabilityResult{
		Query:                  query,
		TotalProductsRequested: len(batch.Items),
		Results:                make([]ItemResult, 0, len(batch.Items)),
	}

	var found, missing []string
	for _, item := range batch.Items {
		switch {
		case urgent != nil:
			item.Urgent = *urgent
		case batch.GlobalUrgent:
			item.Urgent = true
		}

		res := resolveItem(snap, item.ProductType, item)
		out.Results = append(out.Results, ItemResult{
			Parsed:          item,
			SynonymResolved: res.synonym,
			Availability:    res.availability,
			Summary:         renderSummary(res.term, item, res.availability),
		})

		if res.availability.Found {
			out.TotalProductsFound++
			found = append(found, combinedEntry(item, res.availability.MatchingProducts[0]))
		} else {
			missing = append(missing, res.term)
		}
	}

	out.CombinedSummary = renderCombined(found, missing)
	return out, nil
}

// ─────────────────────────────────────────────────────────────────
// Shared resolve → match → check → recommend
// ─────────────────────────────────────────────────────────────────

type itemResolution struct {
	synonym      *string
	term         string
	availability Availability
}

// resolveItem prefers a synonym found in the raw text over one found in the
// extracted product type, since the raw text keeps more context.
func resolveItem(snap *index.Snapshot, raw string, item domain.ParsedQueryItem) itemResolution {
	resolver := snap.Resolver()

	var res itemResolution
	if canonical, ok := resolver.Resolve(raw); ok {
		res.synonym = &canonical
	} else if canonical, ok := resolver.Resolve(item.ProductType); ok {
		res.synonym = &canonical
	}

	switch {
	case res.synonym != nil:
		res.term = *res.synonym
	case strings.TrimSpace(item.ProductType) != "":
		res.term = strings.TrimSpace(item.ProductType)
	default:
		res.term = raw
	}

	products := findWithSingular(snap.Matcher(), res.term)
	matches := make([]domain.ProductMatch, 0, len(products))
	colorAvailable := false
	for _, p := range products {
		if domain.CheckColor(p, item.Color).Available {
			colorAvailable = true
		}
		matches = append(matches, matchFor(p, item))
	}

	res.availability = Availability{
		Found:            len(matches) > 0,
		ColorAvailable:   colorAvailable,
		MatchingProducts: matches,
	}
	return res
}

func matchFor(p domain.Product, item domain.ParsedQueryItem) domain.ProductMatch {
	cm := domain.ColorMatchFor(p, item.Color)
	rec := domain.Recommend(p, item.Quantity, item.Urgent)

	// the color can only come from the overseas tier but local was picked
	if c := colorLabel(item.Color); c != "" && rec.Source == domain.SourceLocal &&
		cm.FromChina && !cm.OnWebsite && !cm.FromLocal {
		rec.Warning = overseasOnlyWarning(c, p.Sourcing.China.MOQ)
	}

	return domain.ProductMatch{
		Product:    p,
		ColorMatch: cm,
		Sourcing:   rec,
	}
}

func overseasOnlyWarning(color string, moq *int) string {
	if moq == nil {
		return fmt.Sprintf("%s is only available as an overseas custom order", color)
	}
	return fmt.Sprintf("%s is only available as an overseas custom order (MOQ %d)", color, *moq)
}

// findWithSingular retries with the singular form when the term as given finds nothing.
func findWithSingular(m *domain.ProductMatcher, term string) []domain.Product {
	products := m.FindProducts(term)
	if len(products) > 0 {
		return products
	}
	normalized := textnorm.Normalize(term)
	if singular := textnorm.SingularizePhrase(normalized); singular != normalized {
		return m.FindProducts(singular)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Term resolution
// ─────────────────────────────────────────────────────────────────

// ResolveTerms grades each term as exact, synonym, fuzzy or not_found.
func (s *Service) ResolveTerms(_ context.Context, terms []string) (ResolveResult, error) {
	if len(terms) == 0 {
		return ResolveResult{}, apperrors.Validation("terms must not be empty")
	}
	snap, err := s.snapshot()
	if err != nil {
		return ResolveResult{}, err
	}

	byName := make(map[string]domain.Product, snap.ProductCount())
	for _, p := range snap.Products() {
		key := textnorm.Normalize(p.Name)
		if _, ok := byName[key]; !ok {
			byName[key] = p
		}
	}

	out := ResolveResult{Resolutions: make([]Resolution, 0, len(terms))}
	for _, term := range terms {
		out.Resolutions = append(out.Resolutions, resolveTerm(snap, byName, term))
	}
	return out, nil
}

func resolveTerm(snap *index.Snapshot, byName map[string]domain.Product, term string) Resolution {
	r := Resolution{Input: term, Confidence: ConfidenceNotFound, Alternates: []string{}}
	if textnorm.Normalize(term) == "" {
		return r
	}

	var canonical string
	switch {
	case hasProduct(byName, term):
		canonical, r.Confidence = byName[textnorm.Normalize(term)].Name, ConfidenceExact
	default:
		if syn, ok := snap.Resolver().Resolve(term); ok {
			canonical, r.Confidence = syn, ConfidenceSynonym
		} else if found := findWithSingular(snap.Matcher(), term); len(found) > 0 {
			canonical, r.Confidence = found[0].Name, ConfidenceFuzzy
		} else {
			return r
		}
	}

	r.CanonicalName = &canonical
	if p, ok := byName[textnorm.Normalize(canonical)]; ok {
		category := p.Category
		r.Category = &category
	}
	r.Alternates = alternates(snap, term, canonical)
	return r
}

func hasProduct(byName map[string]domain.Product, term string) bool {
	_, ok := byName[textnorm.Normalize(term)]
	return ok
}

// alternates lists other products the term or its canonical name also matches.
func alternates(snap *index.Snapshot, term, canonical string) []string {
	seen := map[string]struct{}{textnorm.Normalize(canonical): {}}
	out := []string{}
	for _, t := range []string{term, canonical} {
		for _, p := range findWithSingular(snap.Matcher(), t) {
			key := textnorm.Normalize(p.Name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, p.Name)
			if len(out) == maxAlternates {
				return out
			}
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────
// Synonyms & status
// ─────────────────────────────────────────────────────────────────

func (s *Service) ListSynonyms(_ context.Context) (SynonymList, error) {
	snap, err := s.snapshot()
	if err != nil {
		return SynonymList{}, err
	}
	synonyms := snap.Synonyms()
	if synonyms == nil {
		synonyms = []domain.Synonym{}
	}
	return SynonymList{Synonyms: synonyms, Total: len(synonyms)}, nil
}

// extractorStatus is implemented by extract.Resilient
type extractorStatus interface {
	Status() extract.Status
}

// Status reports catalog counts and refresh bookkeeping. It is degraded until the
// catalog has been populated once.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{
		Status:    HealthOK,
		Catalog:   s.catalog.Status(),
		CheckedAt: time.Now(),
	}
	if !st.Catalog.Populated {
		st.Status = HealthDegraded
	}
	if es, ok := s.extractor.(extractorStatus); ok {
		xs := es.Status()
		st.Extractor = &xs
	}

	if len(s.probes) > 0 {
		names := make([]string, 0, len(s.probes))
		for name := range s.probes {
			names = append(names, name)
		}
		sort.Strings(names)

		st.Dependencies = make(map[string]ProbeResult, len(names))
		for _, name := range names {
			if err := s.probes[name](ctx); err != nil {
				s.logger.Warn("dependency probe failed",
					logger.String("dependency", name),
					logger.Stage("status"),
					logger.Error(err))
				st.Dependencies[name] = ProbeResult{Status: "down", Error: "unreachable"}
				continue
			}
			st.Dependencies[name] = ProbeResult{Status: "up"}
		}
	}
	return st
}
