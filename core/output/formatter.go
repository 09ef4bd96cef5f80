// Package output renders cost breakdowns for humans and machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"bomcost/core/bom"
	"bomcost/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// Options control rendering
type Options struct {
	// Precision is the number of decimal places for amounts
	Precision int32

	// ShowExcluded lists XOR-excluded and unpriced materials
	ShowExcluded bool
}

// DefaultOptions returns two-place amounts with excluded lines shown
func DefaultOptions() Options {
	return Options{Precision: 2, ShowExcluded: true}
}

// Report is the input to every formatter
type Report struct {
	// Workspace names the product set the breakdowns came from
	Workspace string

	// Breakdowns holds one accumulation pass per product
	Breakdowns []*bom.CostBreakdown

	Options Options
}

// NewReport evaluates every product and collects the breakdowns
func NewReport(workspace string, products []*bom.Product, opts Options) *Report {
	r := &Report{Workspace: workspace, Options: opts}
	for _, p := range products {
		r.Breakdowns = append(r.Breakdowns, p.Breakdown())
	}
	return r
}

// GrandTotal sums product totals in decimal
func (r *Report) GrandTotal() decimal.Decimal {
	total := decimal.Zero
	for _, b := range r.Breakdowns {
		total = total.Add(decimal.NewFromFloat(b.Total))
	}
	return total
}

func (r *Report) amount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(r.Options.Precision)
}

// Registry maps formats to formatters
type Registry struct {
	formatters map[Format]Formatter
}

// NewRegistry returns a registry holding the built-in formatters
func NewRegistry() *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	r.Register(CLIFormatter{})
	r.Register(JSONFormatter{})
	r.Register(MarkdownFormatter{})
	return r
}

// Register adds or replaces a formatter
func (r *Registry) Register(f Formatter) {
	r.formatters[f.Format()] = f
}

// Get returns the formatter for format
func (r *Registry) Get(format Format) (Formatter, error) {
	f, ok := r.formatters[format]
	if !ok {
		return nil, errors.Newf(errors.TypeInput, "unknown output format %q (have %s)", format, strings.Join(r.names(), ", "))
	}
	return f, nil
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.formatters))
	for f := range r.formatters {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// CLIFormatter draws a boxed table
type CLIFormatter struct{}

func (CLIFormatter) Format() Format { return FormatCLI }

const boxWidth = 73

func (CLIFormatter) Render(w io.Writer, r *Report) error {
	bw := &errWriter{w: w}
	rule := strings.Repeat("─", boxWidth)

	bw.printf("┌%s┐\n", rule)
	bw.printf("│ %-*s │\n", boxWidth-2, truncate("COST SUMMARY: "+r.Workspace, boxWidth-2))
	for _, b := range r.Breakdowns {
		bw.printf("├%s┤\n", rule)
		bw.printf("│ %-50s %20s │\n", truncate(fmt.Sprintf("%s (uid %d)", b.Product, b.ProductUID), 50), r.amount(b.Total))
		if b.Base != 0 {
			bw.printf("│   ├─ %-46s %20s │\n", "offset", r.amount(b.Base))
		}
		for _, l := range b.Lines {
			switch l.Status {
			case bom.LineIncluded:
				bw.printf("│   ├─ %-46s %20s │\n", truncate(l.Material, 46), r.amount(l.Amount))
			default:
				if r.Options.ShowExcluded {
					bw.printf("│   ├─ %-46s %20s │\n", truncate(l.Material, 46), string(l.Status))
				}
			}
		}
	}
	bw.printf("├%s┤\n", rule)
	bw.printf("│ %-50s %20s │\n", "TOTAL", r.GrandTotal().StringFixed(r.Options.Precision))
	bw.printf("└%s┘\n", rule)
	return bw.err
}

// JSONFormatter writes indented JSON with amounts as fixed-point strings
type JSONFormatter struct{}

func (JSONFormatter) Format() Format { return FormatJSON }

type jsonReport struct {
	Workspace string        `json:"workspace"`
	Products  []jsonProduct `json:"products"`
	Total     string        `json:"total"`
}

type jsonProduct struct {
	UID    bom.UID    `json:"uid"`
	Name   string     `json:"name"`
	Offset string     `json:"offset"`
	Total  string     `json:"total"`
	Lines  []jsonLine `json:"lines"`
}

type jsonLine struct {
	UID      bom.UID        `json:"uid"`
	Material string         `json:"material"`
	Status   bom.LineStatus `json:"status"`
	Amount   string         `json:"amount,omitempty"`
}

func (JSONFormatter) Render(w io.Writer, r *Report) error {
	out := jsonReport{
		Workspace: r.Workspace,
		Products:  make([]jsonProduct, 0, len(r.Breakdowns)),
		Total:     r.GrandTotal().StringFixed(r.Options.Precision),
	}
	for _, b := range r.Breakdowns {
		jp := jsonProduct{
			UID:    b.ProductUID,
			Name:   b.Product,
			Offset: r.amount(b.Base),
			Total:  r.amount(b.Total),
			Lines:  make([]jsonLine, 0, len(b.Lines)),
		}
		for _, l := range b.Lines {
			if l.Status != bom.LineIncluded && !r.Options.ShowExcluded {
				continue
			}
			jl := jsonLine{UID: l.MaterialUID, Material: l.Material, Status: l.Status}
			if l.Status == bom.LineIncluded {
				jl.Amount = r.amount(l.Amount)
			}
			jp.Lines = append(jp.Lines, jl)
		}
		out.Products = append(out.Products, jp)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// MarkdownFormatter writes one table per product
type MarkdownFormatter struct{}

func (MarkdownFormatter) Format() Format { return FormatMarkdown }

func (MarkdownFormatter) Render(w io.Writer, r *Report) error {
	bw := &errWriter{w: w}
	bw.printf("# Cost summary: %s\n\n", r.Workspace)
	for _, b := range r.Breakdowns {
		bw.printf("## %s (uid %d)\n\n", b.Product, b.ProductUID)
		bw.printf("| Material | Status | Amount |\n|---|---|---:|\n")
		if b.Base != 0 {
			bw.printf("| _offset_ | | %s |\n", r.amount(b.Base))
		}
		for _, l := range b.Lines {
			if l.Status == bom.LineIncluded {
				bw.printf("| %s | %s | %s |\n", l.Material, l.Status, r.amount(l.Amount))
			} else if r.Options.ShowExcluded {
				bw.printf("| %s | %s | |\n", l.Material, l.Status)
			}
		}
		bw.printf("| **Total** | | **%s** |\n\n", r.amount(b.Total))
	}
	bw.printf("**Grand total:** %s\n", r.GrandTotal().StringFixed(r.Options.Precision))
	return bw.err
}

// errWriter keeps the first write error so renderers can print freely
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// truncate shortens s to maxLen runes
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
