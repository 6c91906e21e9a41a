// Package transformer applies per-column value rules to a dataset.
//
// Rules live in an explicit Registry and are tried in registration order; the
// first rule whose Match accepts a column owns every value in it. A value that
// a rule cannot parse becomes missing and is counted, never fatal.
package transformer

import (
	"dwetl/internal/dataset"
	"dwetl/internal/infer"
)

// Stats accumulates what a transform pass did.
type Stats struct {
	// Rules maps column -> name of the rule that handled it.
	Rules map[string]string
	// Coercions maps column -> number of values that failed to parse and were
	// set to missing.
	Coercions map[string]int
	// Derived lists columns added by the pass.
	Derived []string
}

// NewStats returns an initialised Stats.
func NewStats() *Stats {
	return &Stats{Rules: map[string]string{}, Coercions: map[string]int{}}
}

// TotalCoercions sums Coercions.
func (s *Stats) TotalCoercions() int {
	n := 0
	for _, c := range s.Coercions {
		n += c
	}
	return n
}

// Transformer is one dataset-level step.
type Transformer interface {
	Apply(ds *dataset.Dataset, types infer.Types, st *Stats) (*dataset.Dataset, error)
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every step in order, stopping at the first error.
func (c Chain) Apply(ds *dataset.Dataset, types infer.Types, st *Stats) (*dataset.Dataset, error) {
	out := ds
	for _, t := range c {
		var err error
		if out, err = t.Apply(out, types, st); err != nil {
			return nil, err
		}
	}
	return out, nil
}
