package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/MrSnakeDoc/promoavail/internal/availability"
	"github.com/MrSnakeDoc/promoavail/internal/domain"
	"github.com/MrSnakeDoc/promoavail/internal/ingest"
)

type printer struct {
	w io.Writer

	good  *color.Color
	bad   *color.Color
	warn  *color.Color
	muted *color.Color
	title *color.Color
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:     w,
		good:  color.New(color.FgGreen),
		bad:   color.New(color.FgRed),
		warn:  color.New(color.FgYellow),
		muted: color.New(color.Faint),
		title: color.New(color.Bold),
	}
}

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) ok(format string, args ...any) {
	p.good.Fprintf(p.w, "✔ "+format+"\n", args...)
}

func (p *printer) summary(found bool, text string) {
	if found {
		p.good.Fprintln(p.w, text)
		return
	}
	p.bad.Fprintln(p.w, text)
}

func (p *printer) availability(res availability.AvailabilityResult) {
	p.summary(res.Availability.Found && res.Availability.ColorAvailable, res.Summary)
	p.parsed(res.Parsed, res.SynonymResolved)
	p.matches(res.Availability.MatchingProducts)
}

func (p *printer) multi(res availability.MultiAvailabilityResult) {
	p.title.Fprintf(p.w, "%d of %d products found\n", res.TotalProductsFound, res.TotalProductsRequested)
	for i, item := range res.Results {
		fmt.Fprintln(p.w)
		p.title.Fprintf(p.w, "#%d %s\n", i+1, item.Parsed.ProductType)
		p.summary(item.Availability.Found && item.Availability.ColorAvailable, item.Summary)
		p.matches(item.Availability.MatchingProducts)
	}
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, res.CombinedSummary)
}

func (p *printer) parsed(item domain.ParsedQueryItem, synonym *string) {
	parts := []string{"product=" + item.ProductType}
	if item.Color != nil {
		parts = append(parts, "color="+*item.Color)
	}
	if item.Quantity != nil {
		parts = append(parts, fmt.Sprintf("quantity=%d", *item.Quantity))
	}
	if item.Urgent {
		parts = append(parts, "urgent")
	}
	if synonym != nil {
		parts = append(parts, "synonym="+*synonym)
	}
	p.muted.Fprintln(p.w, strings.Join(parts, " "))
}

func (p *printer) matches(matches []domain.ProductMatch) {
	if len(matches) == 0 {
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tCATEGORY\tSOURCE\tMOQ\tLEAD TIME")
	for _, m := range matches {
		rec := m.Sourcing
		source := string(rec.Source)
		if rec.Supplier != "" {
			source += " (" + rec.Supplier + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.Product.Name, m.Product.Category, source, moq(rec.MOQ), dash(rec.LeadTime))
	}
	_ = tw.Flush()

	for _, m := range matches {
		if m.Sourcing.Warning != "" {
			p.warn.Fprintf(p.w, "⚠ %s: %s\n", m.Product.Name, m.Sourcing.Warning)
		}
	}
}

func (p *printer) resolutions(res availability.ResolveResult) {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TERM\tPRODUCT\tCONFIDENCE\tALTERNATES")
	for _, r := range res.Resolutions {
		name := "-"
		if r.CanonicalName != nil {
			name = *r.CanonicalName
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Input, name, r.Confidence, dash(strings.Join(r.Alternates, ", ")))
	}
	_ = tw.Flush()
}

func (p *printer) importReport(r ingest.Report) {
	if r.DryRun {
		p.warn.Fprintln(p.w, "dry run, nothing was written")
	}
	p.title.Fprintf(p.w, "%s (%s): %d rows\n", r.File, r.Format, r.TotalRows)
	fmt.Fprintf(p.w, "  new        %d\n", r.New)
	fmt.Fprintf(p.w, "  updated    %d\n", r.Updated)
	fmt.Fprintf(p.w, "  unchanged  %d\n", r.Unchanged)
	fmt.Fprintf(p.w, "  errored    %d\n", r.Errored)
	for _, e := range r.Errors {
		p.bad.Fprintf(p.w, "  row %d %s: %s\n", e.Row, e.Name, e.Message)
	}
	switch {
	case r.RefreshError != "":
		p.bad.Fprintf(p.w, "catalog refresh failed: %s\n", r.RefreshError)
	case r.Refreshed:
		p.ok("catalog refreshed")
	}
	p.muted.Fprintf(p.w, "run %s in %dms\n", r.RunID, r.ProcessingMs)
}

func moq(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
