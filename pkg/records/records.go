// Package records defines the in-memory row representation shared by the
// parser, the cleaning stages and the star-schema builder.
package records

// Record is one row keyed by column name. A nil value means missing.
type Record map[string]any

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Project returns a new Record holding only cols. Columns absent from r are
// set to nil.
func (r Record) Project(cols []string) Record {
	out := make(Record, len(cols))
	for _, c := range cols {
		out[c] = r[c]
	}
	return out
}

// Values returns r's values in column order.
func (r Record) Values(cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = r[c]
	}
	return out
}
