package builtin

import (
	"strings"

	"dwetl/internal/dataset"
	"dwetl/internal/infer"
	"dwetl/internal/transformer"
)

// Normalize trims string cells and repairs the mis-decoded non-breaking space
// ("Â ") that shows up in exported spreadsheets. Cells left blank become
// missing.
type Normalize struct{}

var _ transformer.Transformer = Normalize{}

func (Normalize) Apply(ds *dataset.Dataset, _ infer.Types, _ *transformer.Stats) (*dataset.Dataset, error) {
	out := ds
	for _, col := range ds.Columns() {
		vals := ds.Column(col)
		changed := false
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				continue
			}
			n := strings.TrimSpace(strings.ReplaceAll(s, "Â ", " "))
			if n == s {
				continue
			}
			changed = true
			if n == "" {
				vals[i] = nil
			} else {
				vals[i] = n
			}
		}
		if !changed {
			continue
		}
		var err error
		if out, err = out.WithColumn(col, vals); err != nil {
			return nil, err
		}
	}
	return out, nil
}
