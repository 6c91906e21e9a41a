// Package starschema turns a cleaned dataset into dimension tables with dense
// surrogate keys and a fact table that references them.
package starschema

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"dwetl/internal/dataset"
	"dwetl/pkg/records"
)

// DimensionSpec names one column to promote to a dimension.
type DimensionSpec struct {
	Column string `json:"column" mapstructure:"column" yaml:"column"`
	// Name defaults to Column. The sink writes it as <Name>_dim.
	Name string `json:"name,omitempty" mapstructure:"name" yaml:"name,omitempty"`
	// Date adds calendar attributes to the dimension rows.
	Date bool `json:"date,omitempty" mapstructure:"date" yaml:"date,omitempty"`
}

// DisplayName returns Name or, when unset, Column.
func (s DimensionSpec) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Column
}

// DimensionTable is one dimension: a distinct value per row, keyed by a dense
// surrogate id assigned in first-seen order.
type DimensionTable struct {
	Name         string
	NaturalKey   string
	SurrogateKey string
	Columns      []string
	Rows         []records.Record

	index map[string]int
}

// TableName is the sink table name.
func (d *DimensionTable) TableName() string { return d.Name + "_dim" }

// Lookup returns the surrogate key for a natural value.
func (d *DimensionTable) Lookup(v any) (int, bool) {
	if dataset.IsMissing(v) {
		return 0, false
	}
	id, ok := d.index[naturalKey(v)]
	return id, ok
}

// Len is the number of members.
func (d *DimensionTable) Len() int { return len(d.Rows) }

// Dimensions is the ordered output of BuildDimensions.
type Dimensions struct {
	Tables  []*DimensionTable
	Skipped []string
}

// BuildDimensions builds one table per spec whose column exists in ds. Specs
// naming absent columns are listed in Skipped. Missing values are not
// dimension members.
func BuildDimensions(ds *dataset.Dataset, specs []DimensionSpec) (Dimensions, error) {
	var out Dimensions
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if spec.Column == "" {
			return Dimensions{}, fmt.Errorf("starschema: dimension with empty column")
		}
		name := spec.DisplayName()
		if _, dup := seen[name]; dup {
			return Dimensions{}, fmt.Errorf("starschema: duplicate dimension %q", name)
		}
		seen[name] = struct{}{}

		if spec.Column == name+"_id" {
			return Dimensions{}, fmt.Errorf("starschema: dimension %q: column %q collides with its surrogate key", name, spec.Column)
		}

		if !ds.Has(spec.Column) {
			out.Skipped = append(out.Skipped, spec.Column)
			continue
		}
		out.Tables = append(out.Tables, buildDimension(ds, spec))
	}
	return out, nil
}

func buildDimension(ds *dataset.Dataset, spec DimensionSpec) *DimensionTable {
	name := spec.DisplayName()
	dim := &DimensionTable{
		Name:         name,
		NaturalKey:   spec.Column,
		SurrogateKey: name + "_id",
		index:        map[string]int{},
	}
	dim.Columns = []string{dim.SurrogateKey, spec.Column}
	var attrs []string
	if spec.Date {
		attrs = dateAttributes(name, spec.Column)
		dim.Columns = append(dim.Columns, attrs...)
	}

	for _, v := range ds.Column(spec.Column) {
		if dataset.IsMissing(v) {
			continue
		}
		k := naturalKey(v)
		if _, ok := dim.index[k]; ok {
			continue
		}
		id := len(dim.Rows)
		dim.index[k] = id

		row := records.Record{dim.SurrogateKey: int32(id), spec.Column: v}
		if spec.Date {
			addDateAttributes(row, attrs, v)
		}
		dim.Rows = append(dim.Rows, row)
	}
	return dim
}

var calendarColumns = []string{"year", "month", "quarter", "month_name", "day_of_week"}

// dateAttributes names the calendar columns of a date dimension. They are
// prefixed with "<name>_" when a bare name would shadow the natural or
// surrogate key.
func dateAttributes(name, natural string) []string {
	out := slices.Clone(calendarColumns)
	if !slices.Contains(out, natural) && !slices.Contains(out, name+"_id") {
		return out
	}
	for i, c := range out {
		out[i] = name + "_" + c
	}
	return out
}

// addDateAttributes fills the calendar columns in calendarColumns order.
// Non-time values leave them missing.
func addDateAttributes(row records.Record, attrs []string, v any) {
	t, ok := v.(time.Time)
	if !ok {
		for _, c := range attrs {
			row[c] = nil
		}
		return
	}
	row[attrs[0]] = int32(t.Year())
	row[attrs[1]] = int32(t.Month())
	row[attrs[2]] = int32((int(t.Month())-1)/3 + 1)
	row[attrs[3]] = t.Month().String()
	// Monday=0 .. Sunday=6.
	row[attrs[4]] = int32((int(t.Weekday()) + 6) % 7)
}

// naturalKey gives every natural value a comparable identity.
func naturalKey(v any) string {
	switch t := v.(type) {
	case string:
		return "s:" + t
	case time.Time:
		return "t:" + t.UTC().Format(time.RFC3339Nano)
	case int32:
		return "i:" + strconv.FormatInt(int64(t), 10)
	case int64:
		return "i:" + strconv.FormatInt(t, 10)
	case int:
		return "i:" + strconv.Itoa(t)
	case float64:
		return "f:" + strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return "b:" + strconv.FormatBool(t)
	default:
		return fmt.Sprintf("x:%T:%v", v, v)
	}
}
