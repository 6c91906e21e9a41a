package starschema

import (
	"fmt"
	"slices"

	"dwetl/internal/dataset"
	"dwetl/pkg/records"
)

// DefaultFactName is the fact table written when none is configured.
const DefaultFactName = "loans_fact"

// DefaultMeasures is the fact measure allow-list for the loan dataset.
var DefaultMeasures = []string{"application_type", "loan_amnt", "funded_amnt", "term", "int_rate", "installment"}

// DefaultDimensions are the loan dataset's dimensions.
var DefaultDimensions = []DimensionSpec{
	{Column: "home_ownership"},
	{Column: "loan_status"},
	{Column: "issue_d", Date: true},
}

// FactSpec configures fact assembly.
type FactSpec struct {
	Name     string
	Measures []string
}

// FactTable is the assembled fact table.
type FactTable struct {
	Name    string
	Columns []string
	Rows    []records.Record
	// Unresolved counts rows per foreign key whose value had no dimension
	// member (including missing natural values).
	Unresolved map[string]int
	// MissingMeasures lists configured measures absent from the dataset.
	MissingMeasures []string
}

// Len is the row count.
func (f *FactTable) Len() int { return len(f.Rows) }

// AssembleFact maps every row's natural values to surrogate keys and projects
// the present measures followed by one <dim>_id column per dimension.
func AssembleFact(ds *dataset.Dataset, dims Dimensions, spec FactSpec) (*FactTable, error) {
	name := spec.Name
	if name == "" {
		name = DefaultFactName
	}

	fact := &FactTable{Name: name, Unresolved: map[string]int{}}
	for _, m := range spec.Measures {
		if ds.Has(m) {
			fact.Columns = append(fact.Columns, m)
		} else {
			fact.MissingMeasures = append(fact.MissingMeasures, m)
		}
	}
	for _, d := range dims.Tables {
		if slices.Contains(fact.Columns, d.SurrogateKey) {
			return nil, fmt.Errorf("starschema: foreign key %q collides with a measure", d.SurrogateKey)
		}
		fact.Columns = append(fact.Columns, d.SurrogateKey)
	}

	fact.Rows = make([]records.Record, 0, ds.Len())
	for _, r := range ds.Rows() {
		row := make(records.Record, len(fact.Columns))
		for _, m := range fact.Columns[:len(fact.Columns)-len(dims.Tables)] {
			row[m] = r[m]
		}
		for _, d := range dims.Tables {
			if id, ok := d.Lookup(r[d.NaturalKey]); ok {
				row[d.SurrogateKey] = int32(id)
			} else {
				row[d.SurrogateKey] = nil
				fact.Unresolved[d.SurrogateKey]++
			}
		}
		fact.Rows = append(fact.Rows, row)
	}
	return fact, nil
}
