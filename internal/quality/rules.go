package quality

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
	phoneRe = regexp.MustCompile(`^[\d\-\+\(\)\s]{10,}$`)
)

// Rule is a consistency check owned by columns whose name it accepts.
type Rule struct {
	Name string
	// Applies reports whether the rule owns col (col is lower-cased).
	Applies func(col string) bool
	// Check returns checked=false for values the rule does not judge, such as
	// a string in a numeric rule.
	Check func(v any) (checked, ok bool)
}

// Registry is an ordered consistency rule table; the first rule that applies
// to a column owns it.
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

// Add appends rule with the lowest priority so far.
func (r *Registry) Add(rule Rule) {
	if rule.Name == "" || rule.Applies == nil || rule.Check == nil {
		panic(fmt.Sprintf("quality: incomplete rule %q", rule.Name))
	}
	r.rules = append(r.rules, rule)
}

// For returns the rule owning col.
func (r *Registry) For(col string) (Rule, bool) {
	lc := strings.ToLower(col)
	for _, rule := range r.rules {
		if rule.Applies(lc) {
			return rule, true
		}
	}
	return Rule{}, false
}

// AmountWords are the name fragments that mark a column as a money amount.
var AmountWords = []string{"amount", "amnt", "price", "salary", "income", "installment"}

// DefaultRegistry holds email_format, phone_format and non_negative.
func DefaultRegistry() *Registry {
	return NewRegistry(
		PatternRule("email_format", "email", emailRe),
		PatternRule("phone_format", "phone", phoneRe),
		NonNegativeRule(AmountWords...),
	)
}

// PatternRule checks string values of columns whose name contains fragment.
func PatternRule(name, fragment string, re *regexp.Regexp) Rule {
	return Rule{
		Name:    name,
		Applies: func(col string) bool { return strings.Contains(col, fragment) },
		Check: func(v any) (bool, bool) {
			s, ok := v.(string)
			if !ok {
				return false, false
			}
			return true, re.MatchString(s)
		},
	}
}

// NonNegativeRule checks numeric values of columns whose name contains any of
// words.
func NonNegativeRule(words ...string) Rule {
	return Rule{
		Name: "non_negative",
		Applies: func(col string) bool {
			for _, w := range words {
				if strings.Contains(col, w) {
					return true
				}
			}
			return false
		},
		Check: func(v any) (bool, bool) {
			f, ok := asFloat(v)
			if !ok || math.IsNaN(f) {
				return false, false
			}
			return true, f >= 0
		},
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}
