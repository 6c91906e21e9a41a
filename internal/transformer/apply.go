package transformer

import (
	"dwetl/internal/dataset"
	"dwetl/internal/infer"
)

// Apply converts each column with the rule that matches it, making a Registry
// usable as a Transformer. Columns with no matching rule are left untouched.
func (r *Registry) Apply(ds *dataset.Dataset, types infer.Types, st *Stats) (*dataset.Dataset, error) {
	out := ds
	for _, col := range ds.Columns() {
		raw := ds.Column(col)
		present := make([]any, 0, len(raw))
		for _, v := range raw {
			if !dataset.IsMissing(v) {
				present = append(present, v)
			}
		}

		typ := types.Of(col)
		rule, ok := r.Resolve(col, typ, present)
		if !ok {
			continue
		}
		st.Rules[col] = rule.Name

		converted := make([]any, len(raw))
		failed := 0
		for i, v := range raw {
			if dataset.IsMissing(v) {
				continue
			}
			nv, err := rule.Convert(typ, v)
			if err != nil {
				failed++
				continue
			}
			converted[i] = nv
		}
		if failed > 0 {
			st.Coercions[col] += failed
		}

		var err error
		if out, err = out.WithColumn(col, converted); err != nil {
			return nil, err
		}
	}
	return out, nil
}
