package domain

import (
	"regexp"
	"strings"

	"github.com/MrSnakeDoc/promoavail/internal/textnorm"
)

// ColorSource names the tier that satisfied a color check.
type ColorSource string

const (
	ColorFromWebsite ColorSource = "website"
	ColorFromLocal   ColorSource = "local"
	ColorFromChina   ColorSource = "china"
	ColorAny         ColorSource = "any"
)

// NoteCustomColor is attached when the overseas tier covers a color through a generic
// custom-color capability rather than an explicit listing.
const NoteCustomColor = "custom color available via overseas sourcing"

var anyWord = regexp.MustCompile(`\bany\b`)

// ColorCheck is the outcome of CheckColor.
type ColorCheck struct {
	Available bool        `json:"available"`
	Source    ColorSource `json:"source"`
	Note      string      `json:"note,omitempty"`
}

// CheckColor reports whether a product can be delivered in the requested color.
// Tiers are tried in order website, local, overseas and the first hit wins.
// A nil or blank color is always available.
func CheckColor(p Product, color *string) ColorCheck {
	c := requestedColor(color)
	if c == "" {
		return ColorCheck{Available: true, Source: ColorAny}
	}
	if listContainsColor(p.WebsiteColors, c) {
		return ColorCheck{Available: true, Source: ColorFromWebsite}
	}
	if listContainsColor(p.Sourcing.Local.Colors, c) {
		return ColorCheck{Available: true, Source: ColorFromLocal}
	}
	if ok, generic := chinaCoversColor(p.Sourcing.China, c); ok {
		check := ColorCheck{Available: true, Source: ColorFromChina}
		if generic {
			check.Note = NoteCustomColor
		}
		return check
	}
	return ColorCheck{Available: false, Source: ColorAny}
}

// ColorMatchFor evaluates every tier independently. Without a color constraint each tier
// the product actually offers counts as a match.
func ColorMatchFor(p Product, color *string) ColorMatch {
	c := requestedColor(color)
	if c == "" {
		return ColorMatch{OnWebsite: true, FromLocal: true, FromChina: p.Sourcing.China.Available}
	}
	fromChina, _ := chinaCoversColor(p.Sourcing.China, c)
	return ColorMatch{
		OnWebsite: listContainsColor(p.WebsiteColors, c),
		FromLocal: listContainsColor(p.Sourcing.Local.Colors, c),
		FromChina: fromChina,
	}
}

func requestedColor(color *string) string {
	if color == nil {
		return ""
	}
	return textnorm.Normalize(*color)
}

// listContainsColor matches in both directions so "blue" finds "navy blue"
// and "light blue" finds "blue".
func listContainsColor(colors []string, c string) bool {
	for _, listed := range colors {
		l := textnorm.Normalize(listed)
		if l == "" {
			continue
		}
		if strings.Contains(l, c) || strings.Contains(c, l) {
			return true
		}
	}
	return false
}

// chinaCoversColor returns ok when the overseas tier can deliver c, and generic when
// that came from a capability statement ("pantone", "any") instead of a literal listing.
func chinaCoversColor(china ChinaSourcing, c string) (ok, generic bool) {
	if !china.Available {
		return false, false
	}
	desc := textnorm.Normalize(china.Colors)
	if desc == "" {
		return false, false
	}
	if strings.Contains(desc, c) {
		return true, false
	}
	if strings.Contains(desc, "pantone") || anyWord.MatchString(desc) {
		return true, true
	}
	return false, false
}
