// Package builtin contains the stock column rules and dataset steps used by
// the transform stage.
package builtin

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"dwetl/internal/infer"
	"dwetl/internal/transformer"
)

// MonthYearLayout is the abbreviated month-year format, e.g. "Dec-2015".
const MonthYearLayout = "Jan-2006"

var monthYearRe = regexp.MustCompile(`^[A-Za-z]{3}-\d{4}$`)

// Options selects the columns the named rules own regardless of content.
type Options struct {
	PercentColumns   []string
	MonthYearColumns []string
}

// DefaultOptions returns the loan-dataset column names.
func DefaultOptions() Options {
	return Options{
		PercentColumns:   []string{"int_rate", "revol_util"},
		MonthYearColumns: []string{"issue_d"},
	}
}

// NewRegistry returns the stock registry: percent, month_year, typed.
func NewRegistry(opt Options) *transformer.Registry {
	return transformer.NewRegistry(
		Percent(opt.PercentColumns),
		MonthYear(opt.MonthYearColumns),
		Typed(),
	)
}

// Percent owns the listed columns and any string column whose values all end
// in '%'. "12.34%" becomes 0.1234.
func Percent(cols []string) transformer.Rule {
	return transformer.Rule{
		Name: "percent",
		Match: func(col string, _ infer.Type, vals []any) bool {
			if slices.Contains(cols, col) {
				return true
			}
			return len(vals) > 0 && allStrings(vals, func(s string) bool {
				return strings.HasSuffix(strings.TrimSpace(s), "%")
			})
		},
		Convert: func(_ infer.Type, v any) (any, error) {
			switch t := v.(type) {
			case float64:
				return t, nil
			case string:
				s := strings.TrimSuffix(strings.TrimSpace(t), "%")
				f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
				if err != nil {
					return nil, fmt.Errorf("percent %q: %w", t, err)
				}
				return f / 100, nil
			default:
				return nil, fmt.Errorf("percent: unsupported %T", v)
			}
		},
	}
}

// MonthYear owns the listed columns and any column whose values all look like
// "Mon-YYYY". Values become the first day of that month in UTC.
func MonthYear(cols []string) transformer.Rule {
	return transformer.Rule{
		Name: "month_year",
		Match: func(col string, _ infer.Type, vals []any) bool {
			if slices.Contains(cols, col) {
				return true
			}
			return len(vals) > 0 && allStrings(vals, func(s string) bool {
				return monthYearRe.MatchString(strings.TrimSpace(s))
			})
		},
		Convert: func(_ infer.Type, v any) (any, error) {
			switch t := v.(type) {
			case time.Time:
				return t, nil
			case string:
				ts, err := time.Parse(MonthYearLayout, strings.TrimSpace(t))
				if err != nil {
					return nil, fmt.Errorf("month-year %q: %w", t, err)
				}
				return ts, nil
			default:
				return nil, fmt.Errorf("month-year: unsupported %T", v)
			}
		},
	}
}

// Typed coerces by inferred type. Integers narrow to int32 when they fit so
// sinks see a uniform width; string-like types pass through.
func Typed() transformer.Rule {
	return transformer.Rule{
		Name:    "typed",
		Match:   func(string, infer.Type, []any) bool { return true },
		Convert: convertTyped,
	}
}

func convertTyped(typ infer.Type, v any) (any, error) {
	s, isStr := v.(string)
	if !isStr {
		return v, nil
	}
	s = strings.TrimSpace(s)

	switch typ {
	case infer.Integer:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		if n >= -1<<31 && n <= 1<<31-1 {
			return int32(n), nil
		}
		return n, nil
	case infer.Float:
		return strconv.ParseFloat(s, 64)
	case infer.Boolean:
		return parseBool(s)
	case infer.Date:
		return time.Parse(time.DateOnly, s)
	case infer.Datetime:
		return time.Parse(time.DateTime, s)
	default:
		return v, nil
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "t", "yes", "y":
		return true, nil
	case "false", "f", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("bool %q: invalid syntax", s)
}

func allStrings(vals []any, fn func(string) bool) bool {
	for _, v := range vals {
		s, ok := v.(string)
		if !ok || !fn(s) {
			return false
		}
	}
	return true
}
