// Package dataset holds the immutable tabular snapshot that flows between
// pipeline stages. Every operation returns a new Dataset; the receiver and its
// rows are never modified.
package dataset

import (
	"fmt"
	"math"
	"slices"

	"dwetl/pkg/records"
)

// Dataset is an ordered set of columns plus an ordered set of rows.
type Dataset struct {
	columns []string
	rows    []records.Record
}

// New builds a Dataset. The column slice is copied; rows are adopted as-is and
// must not be mutated by the caller afterwards.
func New(columns []string, rows []records.Record) *Dataset {
	return &Dataset{columns: slices.Clone(columns), rows: rows}
}

// Empty returns a dataset with the given columns and no rows.
func Empty(columns []string) *Dataset { return New(columns, nil) }

// Columns returns a copy of the column order.
func (d *Dataset) Columns() []string { return slices.Clone(d.columns) }

// Rows exposes the underlying rows for read-only iteration.
func (d *Dataset) Rows() []records.Record { return d.rows }

// Len is the row count.
func (d *Dataset) Len() int { return len(d.rows) }

// Width is the column count.
func (d *Dataset) Width() int { return len(d.columns) }

// Has reports whether col is one of the dataset's columns.
func (d *Dataset) Has(col string) bool { return slices.Contains(d.columns, col) }

// Column returns col's values in row order.
func (d *Dataset) Column(col string) []any {
	out := make([]any, len(d.rows))
	for i, r := range d.rows {
		out[i] = r[col]
	}
	return out
}

// MissingCount counts missing values in col.
func (d *Dataset) MissingCount(col string) int {
	n := 0
	for _, r := range d.rows {
		if IsMissing(r[col]) {
			n++
		}
	}
	return n
}

// TotalMissing counts missing cells across all columns.
func (d *Dataset) TotalMissing() int {
	n := 0
	for _, c := range d.columns {
		n += d.MissingCount(c)
	}
	return n
}

// Cells is rows × columns.
func (d *Dataset) Cells() int { return len(d.rows) * len(d.columns) }

// Select projects the dataset onto cols in the given order. Unknown columns
// are an error.
func (d *Dataset) Select(cols []string) (*Dataset, error) {
	for _, c := range cols {
		if !d.Has(c) {
			return nil, fmt.Errorf("dataset: unknown column %q", c)
		}
	}
	rows := make([]records.Record, len(d.rows))
	for i, r := range d.rows {
		rows[i] = r.Project(cols)
	}
	return New(cols, rows), nil
}

// FilterRows keeps the rows for which keep returns true, preserving order.
func (d *Dataset) FilterRows(keep func(records.Record) bool) *Dataset {
	rows := make([]records.Record, 0, len(d.rows))
	for _, r := range d.rows {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return New(d.columns, rows)
}

// WithColumn returns a copy where col holds values. An existing column keeps
// its position; a new one is appended.
func (d *Dataset) WithColumn(col string, values []any) (*Dataset, error) {
	if len(values) != len(d.rows) {
		return nil, fmt.Errorf("dataset: column %q has %d values for %d rows", col, len(values), len(d.rows))
	}
	cols := d.columns
	if !d.Has(col) {
		cols = append(slices.Clone(d.columns), col)
	}
	rows := make([]records.Record, len(d.rows))
	for i, r := range d.rows {
		nr := r.Clone()
		nr[col] = values[i]
		rows[i] = nr
	}
	return New(cols, rows), nil
}

// IsMissing reports whether v counts as a missing cell: nil or a float NaN.
func IsMissing(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(t)
	case float32:
		return math.IsNaN(float64(t))
	default:
		return false
	}
}
