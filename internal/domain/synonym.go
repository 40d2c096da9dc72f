package domain

import (
	"strings"

	"github.com/MrSnakeDoc/promoavail/internal/textnorm"
)

// SynonymResolver maps customer terms to canonical names using the synonym table.
//
// Resolution order, first hit wins, rows in catalog order:
//  1. exact: the term equals a row's customerSays
//  2. substring: the term contains a row's customerSays
//
// The substring test is one-way on purpose: a long customer phrase that contains a
// short known synonym resolves, a synonym that contains the term does not.
// Both sides are compared through textnorm.NormalizeForSynonym so simple plurals match.
type SynonymResolver struct {
	entries []synonymEntry
}

type synonymEntry struct {
	variants []string
	weCallIt string
}

// NewSynonymResolver prepares the table. Rows with an empty side are ignored.
func NewSynonymResolver(synonyms []Synonym) *SynonymResolver {
	entries := make([]synonymEntry, 0, len(synonyms))
	for _, s := range synonyms {
		variants := textnorm.NormalizeForSynonym(s.CustomerSays)
		target := strings.TrimSpace(s.WeCallIt)
		if len(variants) == 0 || target == "" {
			continue
		}
		entries = append(entries, synonymEntry{variants: variants, weCallIt: target})
	}
	return &SynonymResolver{entries: entries}
}

// Resolve returns the canonical name for term. ok is false when nothing matched, in
// which case callers treat the term as already canonical.
func (r *SynonymResolver) Resolve(term string) (canonical string, ok bool) {
	termVariants := textnorm.NormalizeForSynonym(term)
	if len(termVariants) == 0 || r == nil {
		return "", false
	}

	for _, e := range r.entries {
		if anyPair(termVariants, e.variants, func(t, s string) bool { return t == s }) {
			return e.weCallIt, true
		}
	}

	for _, e := range r.entries {
		if anyPair(termVariants, e.variants, strings.Contains) {
			return e.weCallIt, true
		}
	}

	return "", false
}

func anyPair(left, right []string, match func(l, r string) bool) bool {
	for _, l := range left {
		for _, r := range right {
			if match(l, r) {
				return true
			}
		}
	}
	return false
}
