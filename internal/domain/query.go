package domain

// Synonym maps customer phrasing to the catalog's canonical term.
// Several rows may point at the same WeCallIt value.
type Synonym struct {
	CustomerSays string `json:"customerSays" yaml:"customerSays"`
	WeCallIt     string `json:"weCallIt" yaml:"weCallIt"`
	Notes        string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// ParsedQueryItem is the structured draft for one product mention.
// ProductType is free text that has not been resolved against the catalog yet.
type ParsedQueryItem struct {
	ProductType string  `json:"productType"`
	Color       *string `json:"color"`
	Quantity    *int    `json:"quantity"`
	Urgent      bool    `json:"urgent"`
}

// ParsedBatch is the multi-item extraction result, in message order.
type ParsedBatch struct {
	Items        []ParsedQueryItem `json:"items"`
	GlobalUrgent bool              `json:"globalUrgent"`
}

// SourceTier is a fulfilment tier.
type SourceTier string

const (
	SourceLocal SourceTier = "local"
	SourceChina SourceTier = "china"
)

// SourcingRecommendation is the chosen tier plus the reason it was chosen.
type SourcingRecommendation struct {
	Source   SourceTier `json:"source"`
	Supplier string     `json:"supplier,omitempty"`
	MOQ      *int       `json:"moq,omitempty"`
	LeadTime string     `json:"leadTime,omitempty"`
	Reason   string     `json:"reason"`

	// Warning is set when the recommendation is a compromise.
	Warning string `json:"warning,omitempty"`
}

// ColorMatch records, tier by tier, whether a requested color is obtainable.
type ColorMatch struct {
	OnWebsite bool `json:"onWebsite"`
	FromLocal bool `json:"fromLocal"`
	FromChina bool `json:"fromChina"`
}

// ProductMatch is computed per request and never persisted.
type ProductMatch struct {
	Product    Product                `json:"product"`
	ColorMatch ColorMatch             `json:"colorMatch"`
	Sourcing   SourcingRecommendation `json:"sourcing"`
}
