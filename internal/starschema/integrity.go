package starschema

import "fmt"

// Violation is one foreign key value that does not resolve.
type Violation struct {
	Row        int
	ForeignKey string
	Value      any
}

func (v Violation) String() string {
	return fmt.Sprintf("row %d: %s=%v has no dimension member", v.Row, v.ForeignKey, v.Value)
}

// VerifyIntegrity checks that every non-missing foreign key in fact resolves
// to exactly one member of its dimension.
func VerifyIntegrity(fact *FactTable, dims Dimensions) []Violation {
	var out []Violation
	for _, d := range dims.Tables {
		members := make(map[int32]int, d.Len())
		for _, r := range d.Rows {
			if id, ok := r[d.SurrogateKey].(int32); ok {
				members[id]++
			}
		}
		for i, r := range fact.Rows {
			v := r[d.SurrogateKey]
			if v == nil {
				continue
			}
			id, ok := v.(int32)
			if !ok || members[id] != 1 {
				out = append(out, Violation{Row: i, ForeignKey: d.SurrogateKey, Value: v})
			}
		}
	}
	return out
}
