package availability

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	thousandsQuantity = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*k\s*(?:pcs|pieces|units)\b`)
	unitQuantity      = regexp.MustCompile(`(?i)\b(\d{1,3}(?:,\d{3})+|\d+)\s*(?:pcs|pieces|units)\b`)
	labelQuantity     = regexp.MustCompile(`(?i)\b(?:quantity|qty)\s*:\s*(\d{1,3}(?:,\d{3})+|\d+)\b`)
)

// ScanQuantity reads an order quantity from raw text without the extractor.
// It understands "200 pcs", "1.5k pieces" and "qty: 300". When several are present
// the largest wins.
func ScanQuantity(text string) *int {
	best := -1

	for _, m := range thousandsQuantity.FindAllStringSubmatch(text, -1) {
		f, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		best = max(best, int(f*1000))
	}
	for _, re := range []*regexp.Regexp{unitQuantity, labelQuantity} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
			if err != nil {
				continue
			}
			best = max(best, n)
		}
	}

	if best < 0 {
		return nil
	}
	return &best
}
