package domain

import (
	"strings"

	"github.com/MrSnakeDoc/promoavail/internal/textnorm"
)

// ProductMatcher finds catalog products for a normalized term.
//
// A product matches when its name or category contains the term, or when one of its
// alternate names and the term contain each other. Results keep catalog order.
type ProductMatcher struct {
	products []Product
	prepared []preparedProduct
}

type preparedProduct struct {
	name     string
	category string
	aliases  []string
}

// NewProductMatcher normalizes every searchable field once.
func NewProductMatcher(products []Product) *ProductMatcher {
	prepared := make([]preparedProduct, len(products))
	for i, p := range products {
		alts := p.AlternateNames()
		aliases := make([]string, 0, len(alts))
		for _, a := range alts {
			if n := textnorm.Normalize(a); n != "" {
				aliases = append(aliases, n)
			}
		}
		prepared[i] = preparedProduct{
			name:     textnorm.Normalize(p.Name),
			category: textnorm.Normalize(p.Category),
			aliases:  aliases,
		}
	}
	return &ProductMatcher{products: products, prepared: prepared}
}

// FindProducts returns every product matching term. An empty term matches nothing.
func (m *ProductMatcher) FindProducts(term string) []Product {
	t := textnorm.Normalize(term)
	if t == "" || m == nil {
		return nil
	}

	var out []Product
	for i, pp := range m.prepared {
		if pp.matches(t) {
			out = append(out, m.products[i])
		}
	}
	return out
}

// Len is the number of products known to the matcher.
func (m *ProductMatcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.products)
}

func (pp preparedProduct) matches(t string) bool {
	if strings.Contains(pp.name, t) {
		return true
	}
	if pp.category != "" && strings.Contains(pp.category, t) {
		return true
	}
	for _, a := range pp.aliases {
		if strings.Contains(a, t) || strings.Contains(t, a) {
			return true
		}
	}
	return false
}
