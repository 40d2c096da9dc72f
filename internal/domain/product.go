package domain

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// ErrEmptyProductName is returned when a catalog row has no name.
var ErrEmptyProductName = errors.New("product name is empty")

// Product is one catalog entry as curated in the catalog store.
//
// It is read-only inside the resolution pipeline and replaced wholesale on every
// catalog refresh. Name is the matching key and must be non-empty.
type Product struct {
	// ─────────────────────────────
	// Identity & public listing
	// ─────────────────────────────

	// Name is the canonical display name.
	// Example: Card Holder
	Name string `json:"name" yaml:"name"`

	// Category is the storefront category.
	// Example: Badges & Accessories
	Category string `json:"category" yaml:"category"`

	// URL links to the public product page. Informational only.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// OtherNames is the comma-separated list of alternate terms kept by a curator.
	// Example: "badge holder, id holder"
	OtherNames string `json:"otherNames,omitempty" yaml:"otherNames,omitempty"`

	// WebsiteColors is the ordered list of colors shown on the storefront.
	WebsiteColors []string `json:"websiteColors" yaml:"websiteColors"`

	// ─────────────────────────────
	// Sourcing intelligence
	// ─────────────────────────────

	Sourcing Sourcing `json:"sourcing" yaml:"sourcing"`

	// ─────────────────────────────
	// Metadata (not used for matching)
	// ─────────────────────────────

	Notes       string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	LastUpdated time.Time `json:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`
}

// Sourcing groups the two fulfilment tiers of a product.
type Sourcing struct {
	Local LocalSourcing `json:"local" yaml:"local"`
	China ChinaSourcing `json:"china" yaml:"china"`
}

// LocalSourcing describes the local supplier tier.
type LocalSourcing struct {
	Supplier string   `json:"supplier,omitempty" yaml:"supplier,omitempty"`
	MOQ      *int     `json:"moq" yaml:"moq,omitempty"`
	LeadTime string   `json:"leadTime,omitempty" yaml:"leadTime,omitempty"`
	Colors   []string `json:"colors" yaml:"colors,omitempty"`
}

// ChinaSourcing describes the overseas custom-order tier.
// When Available is false the rest of the fields carry no meaning.
type ChinaSourcing struct {
	Available bool `json:"available" yaml:"available"`
	MOQ       *int `json:"moq" yaml:"moq,omitempty"`
	Air       bool `json:"air" yaml:"air"`
	Sea       bool `json:"sea" yaml:"sea"`

	// Colors is usually a capability statement such as "any pantone color".
	Colors string `json:"colors,omitempty" yaml:"colors,omitempty"`
}

// Validate checks the invariants a catalog row must hold before it is served.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyProductName
	}
	return nil
}

// AlternateNames splits OtherNames into trimmed, non-empty entries.
func (p Product) AlternateNames() []string {
	return SplitList(p.OtherNames)
}

// WithoutSourcing returns a copy suitable for public search listings.
func (p Product) WithoutSourcing() Product {
	p.Sourcing = Sourcing{}
	return p
}

// SplitList splits a comma-separated cell into trimmed, non-empty values.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, part := range raw {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IntPtr is a small helper for optional integers.
func IntPtr(v int) *int { return &v }

// StringPtr is a small helper for optional strings.
func StringPtr(v string) *string { return &v }

// Equal compares two products field by field, ignoring LastUpdated.
// Nil and empty color lists are considered equal.
func (p Product) Equal(o Product) bool {
	return p.Name == o.Name &&
		p.Category == o.Category &&
		p.URL == o.URL &&
		p.OtherNames == o.OtherNames &&
		p.Notes == o.Notes &&
		slices.Equal(p.WebsiteColors, o.WebsiteColors) &&
		p.Sourcing.Local.Supplier == o.Sourcing.Local.Supplier &&
		p.Sourcing.Local.LeadTime == o.Sourcing.Local.LeadTime &&
		slices.Equal(p.Sourcing.Local.Colors, o.Sourcing.Local.Colors) &&
		intPtrEqual(p.Sourcing.Local.MOQ, o.Sourcing.Local.MOQ) &&
		p.Sourcing.China.Available == o.Sourcing.China.Available &&
		p.Sourcing.China.Air == o.Sourcing.China.Air &&
		p.Sourcing.China.Sea == o.Sourcing.China.Sea &&
		p.Sourcing.China.Colors == o.Sourcing.China.Colors &&
		intPtrEqual(p.Sourcing.China.MOQ, o.Sourcing.China.MOQ)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
