// Package clean implements the two missing-value filters that run before
// transformation: a percentage-based column filter and an absolute-count
// column filter followed by dropping incomplete rows.
package clean

import (
	"fmt"

	"dwetl/internal/dataset"
	"dwetl/internal/infer"
	"dwetl/pkg/records"
)

const (
	// DefaultMissingThreshold is the completeness filter's percentage ceiling.
	DefaultMissingThreshold = 30.0
	// DefaultMaxNull is the density filter's absolute null-count ceiling.
	DefaultMaxNull = 26
)

// ColumnProfile summarises one column's missing values.
type ColumnProfile struct {
	Name              string     `json:"name" yaml:"name"`
	Type              infer.Type `json:"type" yaml:"type"`
	MissingCount      int        `json:"missing_count" yaml:"missing_count"`
	MissingPercentage float64    `json:"missing_percentage" yaml:"missing_percentage"`
}

// Profile computes a ColumnProfile for every column. types may be zero, in
// which case Type is left empty.
func Profile(ds *dataset.Dataset, types infer.Types) []ColumnProfile {
	cols := ds.Columns()
	out := make([]ColumnProfile, 0, len(cols))
	for _, c := range cols {
		missing := ds.MissingCount(c)
		p := ColumnProfile{
			Name:              c,
			MissingCount:      missing,
			MissingPercentage: percent(missing, ds.Len()),
		}
		if types.ByName != nil {
			p.Type = types.Of(c)
		}
		out = append(out, p)
	}
	return out
}

// CompletenessResult reports what FilterByMissingPercentage kept.
type CompletenessResult struct {
	Dataset  *dataset.Dataset
	Kept     []string
	Removed  []string
	Profiles []ColumnProfile
}

// FilterByMissingPercentage keeps, in original order, the columns whose
// missing percentage is at most threshold. A dataset with no rows counts
// every column as 0% missing.
func FilterByMissingPercentage(ds *dataset.Dataset, threshold float64, types infer.Types) (CompletenessResult, error) {
	if threshold < 0 || threshold > 100 {
		return CompletenessResult{}, fmt.Errorf("clean: missing threshold %.2f outside [0,100]", threshold)
	}

	profiles := Profile(ds, types)
	var kept, removed []string
	for _, p := range profiles {
		if p.MissingPercentage <= threshold {
			kept = append(kept, p.Name)
		} else {
			removed = append(removed, p.Name)
		}
	}

	out, err := ds.Select(kept)
	if err != nil {
		return CompletenessResult{}, err
	}
	return CompletenessResult{Dataset: out, Kept: kept, Removed: removed, Profiles: profiles}, nil
}

// DensityResult reports what FilterByDensity kept.
type DensityResult struct {
	Dataset       *dataset.Dataset
	Selected      []string
	Removed       []string
	RowsKept      int
	RowsRemoved   int
	MissingBefore int
	MissingAfter  int
}

// FilterByDensity keeps the columns with at most maxNull missing values and
// then drops every row still holding a missing value in those columns. The
// result contains no missing cells.
func FilterByDensity(ds *dataset.Dataset, maxNull int) (DensityResult, error) {
	if maxNull < 0 {
		return DensityResult{}, fmt.Errorf("clean: max null count %d must be >= 0", maxNull)
	}

	var selected, removed []string
	for _, c := range ds.Columns() {
		if ds.MissingCount(c) <= maxNull {
			selected = append(selected, c)
		} else {
			removed = append(removed, c)
		}
	}

	projected, err := ds.Select(selected)
	if err != nil {
		return DensityResult{}, err
	}
	before := projected.TotalMissing()

	dense := projected.FilterRows(func(r records.Record) bool {
		for _, c := range selected {
			if dataset.IsMissing(r[c]) {
				return false
			}
		}
		return true
	})

	return DensityResult{
		Dataset:       dense,
		Selected:      selected,
		Removed:       removed,
		RowsKept:      dense.Len(),
		RowsRemoved:   ds.Len() - dense.Len(),
		MissingBefore: before,
		MissingAfter:  dense.TotalMissing(),
	}, nil
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
