package availability

import (
	"time"

	"github.com/MrSnakeDoc/promoavail/internal/domain"
	"github.com/MrSnakeDoc/promoavail/internal/extract"
	"github.com/MrSnakeDoc/promoavail/internal/index"
)

// ProductView is a product as listed by Search. Sourcing is only filled on request.
type ProductView struct {
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	URL           string           `json:"url,omitempty"`
	OtherNames    string           `json:"otherNames,omitempty"`
	WebsiteColors []string         `json:"websiteColors"`
	Sourcing      *domain.Sourcing `json:"sourcing,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

func newProductView(p domain.Product, includeSourcing bool) ProductView {
	v := ProductView{
		Name:          p.Name,
		Category:      p.Category,
		URL:           p.URL,
		OtherNames:    p.OtherNames,
		WebsiteColors: nonNilStrings(p.WebsiteColors),
		Notes:         p.Notes,
	}
	if includeSourcing {
		s := p.Sourcing
		v.Sourcing = &s
	}
	return v
}

type SearchResult struct {
	Query           string        `json:"query"`
	SynonymResolved *string       `json:"synonymResolved"`
	Products        []ProductView `json:"products"`
	TotalFound      int           `json:"totalFound"`
}

// Availability is the per-item outcome of resolve, match, check and recommend.
type Availability struct {
	Found            bool                  `json:"found"`
	ColorAvailable   bool                  `json:"colorAvailable"`
	MatchingProducts []domain.ProductMatch `json:"matchingProducts"`
}

type AvailabilityResult struct {
	Query           string                 `json:"query"`
	Parsed          domain.ParsedQueryItem `json:"parsed"`
	SynonymResolved *string                `json:"synonymResolved"`
	Availability    Availability           `json:"availability"`
	Summary         string                 `json:"summary"`
}

// ItemResult is one entry of a multi-item answer, in message order.
type ItemResult struct {
	Parsed          domain.ParsedQueryItem `json:"parsed"`
	SynonymResolved *string                `json:"synonymResolved"`
	Availability    Availability           `json:"availability"`
	Summary         string                 `json:"summary"`
}

type MultiAvailabilityResult struct {
	Query                  string       `json:"query"`
	TotalProductsRequested int          `json:"totalProductsRequested"`
	TotalProductsFound     int          `json:"totalProductsFound"`
	Results                []ItemResult `json:"results"`
	CombinedSummary        string       `json:"combinedSummary"`
}

// Confidence grades how a term was resolved, strongest first.
type Confidence string

const (
	ConfidenceExact    Confidence = "exact"
	ConfidenceSynonym  Confidence = "synonym"
	ConfidenceFuzzy    Confidence = "fuzzy"
	ConfidenceNotFound Confidence = "not_found"
)

type Resolution struct {
	Input         string     `json:"input"`
	CanonicalName *string    `json:"canonicalName"`
	Confidence    Confidence `json:"confidence"`
	Alternates    []string   `json:"alternates"`
	Category      *string    `json:"category"`
}

type ResolveResult struct {
	Resolutions []Resolution `json:"resolutions"`
}

type SynonymList struct {
	Synonyms []domain.Synonym `json:"synonyms"`
	Total    int              `json:"total"`
}

// Health states reported by Status
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
)

// ProbeResult is the reachability of an optional dependency.
type ProbeResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type Status struct {
	Status       string                 `json:"status"`
	Catalog      index.RefreshStatus    `json:"catalog"`
	Extractor    *extract.Status        `json:"extractor,omitempty"`
	Dependencies map[string]ProbeResult `json:"dependencies,omitempty"`
	CheckedAt    time.Time              `json:"checkedAt"`
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
