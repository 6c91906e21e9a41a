package builtin

import (
	"time"

	"dwetl/internal/dataset"
	"dwetl/internal/infer"
	"dwetl/internal/transformer"
)

// DeriveDateParts adds <col>_year, <col>_month and <col>_quarter for every
// column the month_year rule handled earlier in the chain.
type DeriveDateParts struct{}

var _ transformer.Transformer = DeriveDateParts{}

func (DeriveDateParts) Apply(ds *dataset.Dataset, _ infer.Types, st *transformer.Stats) (*dataset.Dataset, error) {
	out := ds
	for _, col := range ds.Columns() {
		if st.Rules[col] != "month_year" {
			continue
		}
		src := ds.Column(col)
		years := make([]any, len(src))
		months := make([]any, len(src))
		quarters := make([]any, len(src))
		for i, v := range src {
			t, ok := v.(time.Time)
			if !ok {
				continue
			}
			years[i] = int32(t.Year())
			months[i] = int32(t.Month())
			quarters[i] = int32(Quarter(t))
		}

		parts := []struct {
			suffix string
			vals   []any
		}{{"_year", years}, {"_month", months}, {"_quarter", quarters}}
		for _, p := range parts {
			name := col + p.suffix
			var err error
			if out, err = out.WithColumn(name, p.vals); err != nil {
				return nil, err
			}
			st.Derived = append(st.Derived, name)
		}
	}
	return out, nil
}

// Quarter returns 1..4 for t's month.
func Quarter(t time.Time) int { return (int(t.Month())-1)/3 + 1 }
