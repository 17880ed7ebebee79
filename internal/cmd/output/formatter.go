package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	md "github.com/nao1215/markdown"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Format types for report output.
type Format string

const (
	// FormatTable renders an aligned console table.
	FormatTable Format = "table"
	// FormatCSV renders the owner rows as RFC 4180 CSV.
	FormatCSV Format = "csv"
	// FormatJSON renders the full report as JSON.
	FormatJSON Format = "json"
	// FormatYAML renders the full report as YAML.
	FormatYAML Format = "yaml"
	// FormatMarkdown renders a markdown document.
	FormatMarkdown Format = "markdown"
)

// Formatter renders a report to a writer.
type Formatter interface {
	Format(w io.Writer, report *Report) error
}

// NewFormatter creates the formatter for a format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatCSV:
		return &CSVFormatter{}
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

// DetectFormat auto-detects the output format: table on a terminal, JSON
// for pipes and redirects.
func DetectFormat(explicit string) Format {
	if explicit != "" {
		return Format(strings.ToLower(explicit))
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return FormatTable
	}
	return FormatJSON
}

// ParseFormat converts a string to a Format with validation.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(s))
	switch format {
	case FormatTable, FormatCSV, FormatJSON, FormatYAML, FormatMarkdown, "":
		return format, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be one of: table, csv, json, yaml, markdown", s)
	}
}

// JSONFormatter outputs the report as JSON.
type JSONFormatter struct {
	Indent string
}

// Format implements the Formatter interface for JSON output.
func (f *JSONFormatter) Format(w io.Writer, report *Report) error {
	encoder := json.NewEncoder(w)
	if f.Indent != "" {
		encoder.SetIndent("", f.Indent)
	}
	return encoder.Encode(report)
}

// YAMLFormatter outputs the report as YAML.
type YAMLFormatter struct{}

// Format implements the Formatter interface for YAML output.
func (f *YAMLFormatter) Format(w io.Writer, report *Report) error {
	data, err := yaml.MarshalWithOptions(report,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// CSVFormatter outputs the owner rows as CSV. encoding/csv quotes embedded
// commas and quotes, which the naive comma-join this replaces did not.
type CSVFormatter struct{}

// Format implements the Formatter interface for CSV output.
func (f *CSVFormatter) Format(w io.Writer, report *Report) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ownerColumns); err != nil {
		return err
	}
	for _, row := range report.Owners {
		if err := writer.Write(row.values()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// TableFormatter outputs aligned console tables with a summary block.
type TableFormatter struct{}

// Format implements the Formatter interface for table output.
func (f *TableFormatter) Format(w io.Writer, report *Report) error {
	caser := cases.Title(language.English)

	if len(report.Owners) > 0 {
		table := tablewriter.NewTable(w)
		table.Header(titled(caser, ownerColumns)...)
		for _, row := range report.Owners {
			if err := table.Append(anySlice(row.values())...); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(w, "All owners fully reconciled.")
	}

	fmt.Fprintf(w, "\nTotal entitlement: %s\n", report.Totals.Entitlement)
	fmt.Fprintf(w, "Total received:    %s\n", report.Totals.Received)
	fmt.Fprintf(w, "Total delta:       %s\n", report.Totals.Delta)
	fmt.Fprintf(w, "Owners: %d discovered, %d outstanding\n", report.Totals.Owners, report.Totals.Outstanding)

	if len(report.NonQualify) > 0 {
		fmt.Fprintf(w, "\nTransfers to non-qualifying addresses (%d):\n", len(report.NonQualify))
		table := tablewriter.NewTable(w)
		table.Header(titled(caser, transferColumns)...)
		for _, row := range report.NonQualify {
			if err := table.Append(anySlice(row.values())...); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "\nWARNING: %s\n", warning)
	}
	return nil
}

// MarkdownFormatter outputs the report as a markdown document.
type MarkdownFormatter struct{}

// Format implements the Formatter interface for markdown output.
func (f *MarkdownFormatter) Format(w io.Writer, report *Report) error {
	caser := cases.Title(language.English)

	doc := md.NewMarkdown(w).
		H1("Distribution Audit").
		PlainTextf("Generated at %s", report.GeneratedAt.String()).
		LF()

	if !report.Complete {
		doc = doc.PlainText(md.Bold("Partial data:")).LF()
		for _, warning := range report.Warnings {
			doc = doc.BulletList(warning)
		}
		doc = doc.LF()
	}

	doc = doc.H2("Outstanding owners")
	if len(report.Owners) > 0 {
		rows := make([][]string, 0, len(report.Owners))
		for _, row := range report.Owners {
			rows = append(rows, row.values())
		}
		doc = doc.Table(md.TableSet{Header: titledStrings(caser, ownerColumns), Rows: rows})
	} else {
		doc = doc.PlainText("All owners fully reconciled.").LF()
	}

	doc = doc.H2("Totals").
		BulletList(
			"Entitlement: "+report.Totals.Entitlement,
			"Received: "+report.Totals.Received,
			"Delta: "+report.Totals.Delta,
			fmt.Sprintf("Owners: %d discovered, %d outstanding", report.Totals.Owners, report.Totals.Outstanding),
		)

	if len(report.NonQualify) > 0 {
		rows := make([][]string, 0, len(report.NonQualify))
		for _, row := range report.NonQualify {
			rows = append(rows, row.values())
		}
		doc = doc.H2("Non-qualifying transfers").
			Table(md.TableSet{Header: titledStrings(caser, transferColumns), Rows: rows})
	}

	return doc.Build()
}

// titled converts column keys to title-cased header cells.
func titled(caser cases.Caser, columns []string) []any {
	return anySlice(titledStrings(caser, columns))
}

func titledStrings(caser cases.Caser, columns []string) []string {
	headers := make([]string, len(columns))
	for i, column := range columns {
		headers[i] = caser.String(strings.ReplaceAll(column, "_", " "))
	}
	return headers
}

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func itoa(v int) string { return strconv.Itoa(v) }

func utoa(v uint64) string { return strconv.FormatUint(v, 10) }
