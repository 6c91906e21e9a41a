package transformer

import (
	"fmt"

	"dwetl/internal/infer"
)

// Rule is a named column rule.
type Rule struct {
	Name string
	// Match decides whether the rule owns col. vals are the column's
	// non-missing values.
	Match func(col string, typ infer.Type, vals []any) bool
	// Convert parses one non-missing value. An error turns the value into
	// missing.
	Convert func(typ infer.Type, v any) (any, error)
}

// Registry is an ordered rule table.
type Registry struct {
	rules []Rule
}

// NewRegistry builds a registry from rules in priority order.
func NewRegistry(rules ...Rule) *Registry {
	r := &Registry{}
	for _, rule := range rules {
		r.Add(rule)
	}
	return r
}

// Add appends rule with the lowest priority so far. Rules without a name,
// matcher or converter are a programming error.
func (r *Registry) Add(rule Rule) {
	if rule.Name == "" || rule.Match == nil || rule.Convert == nil {
		panic(fmt.Sprintf("transformer: incomplete rule %q", rule.Name))
	}
	r.rules = append(r.rules, rule)
}

// Names lists rule names in priority order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.rules))
	for i, rule := range r.rules {
		out[i] = rule.Name
	}
	return out
}

// Resolve returns the first rule that matches.
func (r *Registry) Resolve(col string, typ infer.Type, vals []any) (Rule, bool) {
	for _, rule := range r.rules {
		if rule.Match(col, typ, vals) {
			return rule, true
		}
	}
	return Rule{}, false
}
