// Package report renders quality reports as text, JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"dwetl/internal/quality"
)

// Format names.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// worstColumns is how many least-complete columns the text report lists.
const worstColumns = 3

// Formats lists the accepted format names.
func Formats() []string { return []string{FormatText, FormatJSON, FormatYAML} }

// Document is what gets rendered: the report plus the input it describes.
type Document struct {
	Source string         `json:"source,omitempty" yaml:"source,omitempty"`
	Report quality.Report `json:"report" yaml:"report"`
}

// Write renders doc to w in the named format. An empty format means text.
func Write(w io.Writer, format string, doc Document) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return Text(w, doc)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("report: encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("report: encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("report: unknown format %q (want %s)", format, strings.Join(Formats(), ", "))
	}
}

// Text writes the human-readable report.
func Text(w io.Writer, doc Document) error {
	rep := doc.Report
	var b strings.Builder

	b.WriteString("DATA QUALITY REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	if doc.Source != "" {
		fmt.Fprintf(&b, "Source:        %s\n", doc.Source)
	}
	fmt.Fprintf(&b, "Overall score: %.2f/100\n", rep.OverallScore)
	fmt.Fprintf(&b, "Grade:         %s\n", rep.Grade)
	fmt.Fprintf(&b, "Status:        %s\n", passFail(rep.Passed))
	if rows, ok := asInt(rep.Metadata["row_count"]); ok {
		fmt.Fprintf(&b, "Rows:          %s\n", humanize.Comma(int64(rows)))
	}
	if cols, ok := asInt(rep.Metadata["column_count"]); ok {
		fmt.Fprintf(&b, "Columns:       %d\n", cols)
	}

	b.WriteString("\nMETRICS\n")
	for _, m := range rep.Metrics {
		fmt.Fprintf(&b, "  %-13s %6.2f%%  (threshold %.0f%%)  %s\n",
			m.Name, 100*m.Value, 100*m.Threshold, passFail(m.Passed))
	}

	if m, ok := rep.Metric(quality.Completeness); ok {
		if worst := leastComplete(m, worstColumns); len(worst) > 0 {
			b.WriteString("\nLEAST COMPLETE COLUMNS\n")
			for _, c := range worst {
				fmt.Fprintf(&b, "  %-24s %6.2f%%\n", c.name, 100*c.value)
			}
		}
	}
	if m, ok := rep.Metric(quality.Uniqueness); ok {
		if dups, ok := asInt(m.Details["duplicate_rows"]); ok {
			fmt.Fprintf(&b, "\nDuplicate rows: %s\n", humanize.Comma(int64(dups)))
		}
	}

	writeList(&b, "RECOMMENDATIONS", rep.Recommendations)
	writeList(&b, "WARNINGS", rep.Warnings)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n" + title + "\n")
	for _, s := range items {
		fmt.Fprintf(b, "  - %s\n", s)
	}
}

type columnValue struct {
	name  string
	value float64
}

// leastComplete returns up to n columns with the lowest completeness,
// ties broken by name.
func leastComplete(m quality.Metric, n int) []columnValue {
	per, ok := m.Details["column_completeness"].(map[string]float64)
	if !ok || len(per) == 0 {
		return nil
	}
	out := make([]columnValue, 0, len(per))
	for k, v := range per {
		out = append(out, columnValue{k, v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].value != out[j].value {
			return out[i].value < out[j].value
		}
		return out[i].name < out[j].name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	}
	return 0, false
}
