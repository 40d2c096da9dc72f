package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/MrSnakeDoc/promoavail/internal/domain"
)

// number matches a plain or thousands-comma-grouped integer.
const number = `(\d{1,3}(?:,\d{3})+|\d+)`

const unitTokens = `pcs|pc|pieces|piece|units|unit|qty`

var (
	quantityAfterNumber = regexp.MustCompile(`(?i)\b` + number + `\s*(?:` + unitTokens + `)\b`)
	quantityAfterLabel  = regexp.MustCompile(`(?i)\b(?:qty|quantity)\s*[:=]?\s*` + number + `\b`)

	urgencyPattern = regexp.MustCompile(`(?i)\b(?:urgent|urgently|asap|rush|quickly|fast)\b`)
	colorPattern   = regexp.MustCompile(`(?i)\b(white|black|red|blue|green|yellow|orange|purple|pink|brown|grey|gray|silver|gold|tan|navy|maroon)\b`)

	quantityTokens = regexp.MustCompile(`(?i)\b` + number + `k?\s*(?:(?:` + unitTokens + `)\b)?(?:\s*of\b)?|\b(?:` + unitTokens + `|quantity)\b\s*[:=]?`)
	framingPattern = regexp.MustCompile(`(?i)\b(?:do you have|looking for|can i get|need|want|any)\b`)

	segmentNumber = regexp.MustCompile(number)
	segmentK      = regexp.MustCompile(`(?i)^k\b`)
	segmentLead   = regexp.MustCompile(`(?i)^\s*(?:(?:` + unitTokens + `)\b)?\s*(?:of\b)?`)
	segmentStop   = regexp.MustCompile(`(?i)[,;)]|\band\b`)
)

// minPhraseLen is the shortest product phrase a multi-item segment may yield.
const minPhraseLen = 2

// Fallback is the deterministic extractor. It never fails.
type Fallback struct{}

var _ Extractor = Fallback{}

// Extract scans text for a single product mention.
func (Fallback) Extract(_ context.Context, text string) (domain.ParsedQueryItem, error) {
	return extractSingle(text), nil
}

// ExtractMulti segments text on quantities ("500 pcs hoodies, 200 mugs"). When no
// segment survives, the single-item result is returned as a one-item batch.
func (Fallback) ExtractMulti(_ context.Context, text string) (domain.ParsedBatch, error) {
	urgent := DetectUrgency(text)

	items := segment(text)
	if len(items) == 0 {
		return domain.ParsedBatch{Items: []domain.ParsedQueryItem{extractSingle(text)}, GlobalUrgent: urgent}, nil
	}
	for i := range items {
		items[i].Urgent = urgent
	}
	return domain.ParsedBatch{Items: items, GlobalUrgent: urgent}, nil
}

func extractSingle(text string) domain.ParsedQueryItem {
	return domain.ParsedQueryItem{
		ProductType: productType(text),
		Color:       DetectColor(text),
		Quantity:    DetectQuantity(text),
		Urgent:      DetectUrgency(text),
	}
}

// DetectQuantity returns the first integer adjacent to a unit token, e.g. "200 pieces"
// or "qty: 50". It returns nil when there is none.
func DetectQuantity(text string) *int {
	best := -1
	var digits string

	for _, re := range []*regexp.Regexp{quantityAfterNumber, quantityAfterLabel} {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		if best < 0 || loc[0] < best {
			best = loc[0]
			digits = text[loc[2]:loc[3]]
		}
	}
	if best < 0 {
		return nil
	}
	return parseInt(digits)
}

// DetectUrgency reports whether text carries an urgency keyword.
func DetectUrgency(text string) bool {
	return urgencyPattern.MatchString(text)
}

// DetectColor returns the earliest known color word in text, lowercased.
func DetectColor(text string) *string {
	m := colorPattern.FindString(text)
	if m == "" {
		return nil
	}
	c := strings.ToLower(m)
	return &c
}

// productType strips quantities, urgency, colors and request framing. When nothing is
// left the raw text is used so the product type is never empty.
func productType(text string) string {
	s := strings.ToLower(text)
	s = quantityTokens.ReplaceAllString(s, " ")
	s = urgencyPattern.ReplaceAllString(s, " ")
	s = colorPattern.ReplaceAllString(s, " ")
	s = framingPattern.ReplaceAllString(s, " ")
	s = trimPhrase(s)

	if s == "" {
		return strings.TrimSpace(text)
	}
	return s
}

func segment(text string) []domain.ParsedQueryItem {
	matches := segmentNumber.FindAllStringSubmatchIndex(text, -1)
	items := make([]domain.ParsedQueryItem, 0, len(matches))

	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		qty := parseInt(text[m[2]:m[3]])
		rest := text[m[1]:end]
		if segmentK.MatchString(rest) && qty != nil {
			*qty *= 1000
			rest = rest[1:]
		}
		rest = rest[len(segmentLead.FindString(rest)):]
		if loc := segmentStop.FindStringIndex(rest); loc != nil {
			rest = rest[:loc[0]]
		}

		color := DetectColor(rest)
		if loc := colorPattern.FindStringIndex(rest); loc != nil {
			rest = rest[:loc[0]] + " " + rest[loc[1]:]
		}
		rest = urgencyPattern.ReplaceAllString(rest, " ")

		phrase := trimPhrase(strings.ToLower(rest))
		if len(phrase) < minPhraseLen {
			continue
		}

		items = append(items, domain.ParsedQueryItem{
			ProductType: phrase,
			Color:       color,
			Quantity:    qty,
		})
	}
	return items
}

// trimPhrase collapses whitespace and drops punctuation at both ends.
func trimPhrase(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}

func parseInt(digits string) *int {
	n, err := strconv.Atoi(strings.ReplaceAll(digits, ",", ""))
	if err != nil {
		return nil
	}
	return &n
}
