// Package textnorm canonicalizes free text so catalog terms and customer phrasing can be
// compared. Everything here is pure and safe for concurrent use.
package textnorm

import (
	"strings"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
)

// irregularPlurals is checked before any suffix rule.
var irregularPlurals = map[string]string{
	"mice":     "mouse",
	"geese":    "goose",
	"feet":     "foot",
	"teeth":    "tooth",
	"children": "child",
	"people":   "person",
	"men":      "man",
	"women":    "woman",
	"oxen":     "ox",
	"knives":   "knife",
	"leaves":   "leaf",
	"scarves":  "scarf",
	"shelves":  "shelf",
	"halves":   "half",
	"wolves":   "wolf",
	"loaves":   "loaf",
	"cacti":    "cactus",
	"octopi":   "octopus",
}

// uncountable words ("species", "jeans") read like plurals but keep their form.
var uncountable = func() map[string]struct{} {
	words := inflection.GetUncountable()
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// esSuffixes drop a trailing "es" rather than "s".
var esSuffixes = []string{"shes", "ches", "xes", "zes", "sses"}

// Normalize lowercases (Unicode case folding), trims and collapses whitespace runs.
func Normalize(s string) string {
	// cases.Caser is stateful, so one per call.
	folded := cases.Fold().String(s)
	return strings.Join(strings.Fields(folded), " ")
}

// Singularize is a best-effort English singularizer for a single lowercase word.
// It improves matching recall and is not meant to be linguistically complete.
func Singularize(word string) string {
	if word == "" {
		return word
	}
	if s, ok := irregularPlurals[word]; ok {
		return s
	}
	if _, ok := uncountable[word]; ok {
		return word
	}

	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 3:
		return word[:len(word)-3] + "y"
	case hasAnySuffix(word, esSuffixes):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") && len(word) > 2:
		return word[:len(word)-1]
	default:
		return word
	}
}

// SingularizePhrase normalizes a phrase and singularizes every word in it.
func SingularizePhrase(phrase string) string {
	words := strings.Fields(Normalize(phrase))
	for i, w := range words {
		words[i] = Singularize(w)
	}
	return strings.Join(words, " ")
}

// NormalizeForSynonym returns the normalized term and, when different, its singular form.
func NormalizeForSynonym(term string) []string {
	n := Normalize(term)
	if n == "" {
		return nil
	}
	s := SingularizePhrase(n)
	if s == n {
		return []string{n}
	}
	return []string{n, s}
}

// ContainsIgnoreCase reports whether haystack contains needle after normalizing both.
// An empty needle never matches.
func ContainsIgnoreCase(haystack, needle string) bool {
	n := Normalize(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Normalize(haystack), n)
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
