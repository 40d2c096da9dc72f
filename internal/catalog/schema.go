package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/promoavail/internal/domain"
)

// Sheet names of the tabular catalog.
const (
	ProductsSheet = "Products"
	SynonymsSheet = "Synonyms"
)

// Product columns, in positional order.
const (
	ColName = iota
	ColCategory
	ColURL
	ColOtherNames
	ColWebsiteColors
	ColLocalSupplier
	ColLocalMOQ
	ColLocalLeadTime
	ColLocalColors
	ColChinaAvailable
	ColChinaMOQ
	ColChinaAir
	ColChinaSea
	ColChinaColors
	ColNotes
	ColLastUpdated
	productColumnCount
)

// ProductHeaders are the header cells of the products dataset.
var ProductHeaders = []string{
	"name", "category", "url", "other_names", "website_colors",
	"local_supplier", "local_moq", "local_lead_time", "local_colors",
	"china_available", "china_moq", "china_air", "china_sea", "china_colors",
	"notes", "last_updated",
}

// SynonymHeaders are the header cells of the synonyms dataset.
var SynonymHeaders = []string{"customer_says", "we_call_it", "notes"}

const dateLayout = "2006-01-02"

// ParseProductRow maps one positional row to a Product.
//
// Missing trailing cells read as empty. Empty lists become nil, unparseable numbers
// become nil and unparseable booleans read as false. Only an empty name is an error.
func ParseProductRow(cells []string) (domain.Product, error) {
	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}

	p := domain.Product{
		Name:          cell(ColName),
		Category:      cell(ColCategory),
		URL:           cell(ColURL),
		OtherNames:    cell(ColOtherNames),
		WebsiteColors: domain.SplitList(cell(ColWebsiteColors)),
		Sourcing: domain.Sourcing{
			Local: domain.LocalSourcing{
				Supplier: cell(ColLocalSupplier),
				MOQ:      ParseQuantity(cell(ColLocalMOQ)),
				LeadTime: cell(ColLocalLeadTime),
				Colors:   domain.SplitList(cell(ColLocalColors)),
			},
			China: domain.ChinaSourcing{
				Available: ParseFlag(cell(ColChinaAvailable)),
				MOQ:       ParseQuantity(cell(ColChinaMOQ)),
				Air:       ParseFlag(cell(ColChinaAir)),
				Sea:       ParseFlag(cell(ColChinaSea)),
				Colors:    cell(ColChinaColors),
			},
		},
		Notes:       cell(ColNotes),
		LastUpdated: parseDate(cell(ColLastUpdated)),
	}

	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// ProductRow is the inverse of ParseProductRow.
func ProductRow(p domain.Product) []string {
	row := make([]string, productColumnCount)
	row[ColName] = p.Name
	row[ColCategory] = p.Category
	row[ColURL] = p.URL
	row[ColOtherNames] = p.OtherNames
	row[ColWebsiteColors] = strings.Join(p.WebsiteColors, ", ")
	row[ColLocalSupplier] = p.Sourcing.Local.Supplier
	row[ColLocalMOQ] = formatQuantity(p.Sourcing.Local.MOQ)
	row[ColLocalLeadTime] = p.Sourcing.Local.LeadTime
	row[ColLocalColors] = strings.Join(p.Sourcing.Local.Colors, ", ")
	row[ColChinaAvailable] = formatFlag(p.Sourcing.China.Available)
	row[ColChinaMOQ] = formatQuantity(p.Sourcing.China.MOQ)
	row[ColChinaAir] = formatFlag(p.Sourcing.China.Air)
	row[ColChinaSea] = formatFlag(p.Sourcing.China.Sea)
	row[ColChinaColors] = p.Sourcing.China.Colors
	row[ColNotes] = p.Notes
	if !p.LastUpdated.IsZero() {
		row[ColLastUpdated] = p.LastUpdated.Format(dateLayout)
	}
	return row
}

// ParseSynonymRow maps one positional row to a Synonym. Rows missing either side are rejected.
func ParseSynonymRow(cells []string) (domain.Synonym, error) {
	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}
	s := domain.Synonym{CustomerSays: cell(0), WeCallIt: cell(1), Notes: cell(2)}
	if s.CustomerSays == "" || s.WeCallIt == "" {
		return domain.Synonym{}, fmt.Errorf("synonym row needs both customer_says and we_call_it")
	}
	return s, nil
}

// SynonymRow is the inverse of ParseSynonymRow.
func SynonymRow(s domain.Synonym) []string {
	return []string{s.CustomerSays, s.WeCallIt, s.Notes}
}

// RowFromRecord orders a header-keyed record (as read from a feed) into a positional row.
func RowFromRecord(record map[string]string) []string {
	row := make([]string, productColumnCount)
	for i, h := range ProductHeaders {
		row[i] = record[h]
	}
	return row
}

// IsBlankRow reports whether every cell is empty.
func IsBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ParseQuantity reads an integer cell such as "1,000". Anything else yields nil.
func ParseQuantity(s string) *int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// ParseFlag reads a yes/no cell.
func ParseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1", "x":
		return true
	default:
		return false
	}
}

func formatQuantity(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFlag(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
