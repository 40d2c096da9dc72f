package availability

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/promoavail/internal/domain"
)

const noProductsRequested = "No products requested."

// renderSummary describes the top match of one item.
func renderSummary(term string, item domain.ParsedQueryItem, avail Availability) string {
	if !avail.Found || len(avail.MatchingProducts) == 0 {
		return fmt.Sprintf("Sorry, we couldn't find any products matching \"%s\". "+
			"Please check the product name or contact our team for help.", term)
	}

	top := avail.MatchingProducts[0]
	color := colorLabel(item.Color)

	if color != "" && !avail.ColorAvailable {
		listed := "none listed"
		if len(top.Product.WebsiteColors) > 0 {
			listed = strings.Join(top.Product.WebsiteColors, ", ")
		}
		return fmt.Sprintf("We carry %s, but %s isn't available from any of our sources. Available colors: %s.",
			top.Product.Name, color, listed)
	}

	var b strings.Builder
	b.WriteString("Yes, we have ")
	b.WriteString(top.Product.Name)
	if color != "" {
		b.WriteString(" in " + color)
	}
	if item.Quantity != nil {
		fmt.Fprintf(&b, " for %d pcs", *item.Quantity)
	}

	rec := top.Sourcing
	b.WriteString(". Recommended source: ")
	b.WriteString(sourceLabel(rec))
	if rec.MOQ != nil {
		fmt.Fprintf(&b, " (MOQ %d)", *rec.MOQ)
	}
	if rec.LeadTime != "" {
		b.WriteString(", lead time " + rec.LeadTime)
	}
	b.WriteString(". " + sentence(rec.Reason))

	if note := domain.CheckColor(top.Product, item.Color).Note; note != "" {
		b.WriteString(" Note: " + sentence(note))
	}
	if rec.Warning != "" {
		b.WriteString(" Warning: " + sentence(rec.Warning))
	}
	return b.String()
}

func sourceLabel(rec domain.SourcingRecommendation) string {
	if rec.Source == domain.SourceChina {
		return "overseas custom order"
	}
	if rec.Supplier == "" {
		return "local supplier"
	}
	return "local supplier " + rec.Supplier
}

// renderCombined lists found items then unmatched terms, in message order.
func renderCombined(found []string, missing []string) string {
	var parts []string
	if len(found) > 0 {
		parts = append(parts, "Found: "+strings.Join(found, ", ")+".")
	}
	if len(missing) > 0 {
		parts = append(parts, "Not found: "+strings.Join(missing, ", ")+".")
	}
	if len(parts) == 0 {
		return noProductsRequested
	}
	return strings.Join(parts, " ")
}

// combinedEntry renders "Hoodie (navy) x500 via local (ABC Supplies)".
func combinedEntry(item domain.ParsedQueryItem, top domain.ProductMatch) string {
	var b strings.Builder
	b.WriteString(top.Product.Name)
	if c := colorLabel(item.Color); c != "" {
		b.WriteString(" (" + c + ")")
	}
	if item.Quantity != nil {
		fmt.Fprintf(&b, " x%d", *item.Quantity)
	}
	b.WriteString(" via ")
	switch {
	case top.Sourcing.Source == domain.SourceChina:
		b.WriteString("overseas")
	case top.Sourcing.Supplier != "":
		b.WriteString("local (" + top.Sourcing.Supplier + ")")
	default:
		b.WriteString("local")
	}
	return b.String()
}

func colorLabel(color *string) string {
	if color == nil {
		return ""
	}
	return strings.TrimSpace(*color)
}

// sentence terminates s with a period unless it already ends a sentence.
func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?") {
		return s
	}
	return s + "."
}
