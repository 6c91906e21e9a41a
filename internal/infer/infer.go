// Package infer classifies dataset columns into semantic types from the
// values they hold.
//
// Classification order for a column's non-missing values:
//
//  1. every value looks like "YYYY-MM-DD HH:MM:SS"  -> datetime
//  2. every value looks like "YYYY-MM-DD"           -> date
//  3. every value is a base-10 int64                -> integer
//  4. every value is a textual boolean              -> boolean
//  5. every value is a float                        -> float
//  6. otherwise                                     -> string, or categorical
//     when the distinct ratio is low enough
//
// A column with no non-missing values is "empty". Values that are already
// typed (int, float, bool, time.Time) are classified by their Go type, so
// inference over a transformed dataset returns the same answer.
package infer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"dwetl/internal/dataset"
)

// Type is a semantic column type.
type Type string

const (
	Integer     Type = "integer"
	Float       Type = "float"
	String      Type = "string"
	Boolean     Type = "boolean"
	Date        Type = "date"
	Datetime    Type = "datetime"
	Categorical Type = "categorical"
	Empty       Type = "empty"
)

var (
	datetimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)
	dateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Options tunes inference. The zero value inspects every row and never
// reports categorical.
type Options struct {
	// SampleSize limits inspection to the first N rows; 0 means all rows.
	SampleSize int
	// CategoricalMaxRatio is the distinct/non-missing ratio at or below which
	// a string column is reported as categorical. 0 disables categorical.
	CategoricalMaxRatio float64
	// CategoricalMinValues is the minimum non-missing count before a column
	// may be called categorical.
	CategoricalMinValues int
}

// DefaultOptions mirrors the pipeline defaults.
func DefaultOptions() Options {
	return Options{CategoricalMaxRatio: 0.05, CategoricalMinValues: 20}
}

// Types is the per-column result, keeping the dataset's column order.
type Types struct {
	Order  []string
	ByName map[string]Type
}

// Of returns the type of col, or Empty when unknown.
func (t Types) Of(col string) Type {
	if v, ok := t.ByName[col]; ok {
		return v
	}
	return Empty
}

// AsMap returns a name->type-string copy, handy for metadata.
func (t Types) AsMap() map[string]string {
	out := make(map[string]string, len(t.ByName))
	for k, v := range t.ByName {
		out[k] = string(v)
	}
	return out
}

// Infer classifies every column of ds.
func Infer(ds *dataset.Dataset, opt Options) Types {
	cols := ds.Columns()
	res := Types{Order: cols, ByName: make(map[string]Type, len(cols))}

	rows := ds.Rows()
	if opt.SampleSize > 0 && opt.SampleSize < len(rows) {
		rows = rows[:opt.SampleSize]
	}

	for _, c := range cols {
		vals := make([]any, 0, len(rows))
		for _, r := range rows {
			if v := r[c]; !dataset.IsMissing(v) {
				vals = append(vals, v)
			}
		}
		res.ByName[c] = Column(vals, opt)
	}
	return res
}

// Column classifies a single column given its non-missing values.
func Column(vals []any, opt Options) Type {
	if len(vals) == 0 {
		return Empty
	}
	if t, ok := typedColumn(vals); ok {
		return t
	}

	strs := make([]string, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			return String
		}
		strs[i] = strings.TrimSpace(s)
	}

	switch {
	case allMatch(strs, datetimeRe.MatchString):
		return Datetime
	case allMatch(strs, dateRe.MatchString):
		return Date
	case allMatch(strs, isInt):
		return Integer
	case allMatch(strs, isBool):
		return Boolean
	case allMatch(strs, isFloat):
		return Float
	}

	if isCategorical(strs, opt) {
		return Categorical
	}
	return String
}

// typedColumn handles columns whose values were already coerced.
func typedColumn(vals []any) (Type, bool) {
	var kind Type
	for _, v := range vals {
		var k Type
		switch t := v.(type) {
		case int, int8, int16, int32, int64, uint8, uint16, uint32:
			k = Integer
		case float32, float64:
			k = Float
		case bool:
			k = Boolean
		case time.Time:
			k = Datetime
			if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
				k = Date
			}
		default:
			return "", false
		}
		switch {
		case kind == "":
			kind = k
		case kind == k:
		case kind == Date && k == Datetime, kind == Datetime && k == Date:
			kind = Datetime
		case kind == Integer && k == Float, kind == Float && k == Integer:
			kind = Float
		default:
			return String, true
		}
	}
	return kind, true
}

func isCategorical(vals []string, opt Options) bool {
	if opt.CategoricalMaxRatio <= 0 || len(vals) < opt.CategoricalMinValues {
		return false
	}
	distinct := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		distinct[v] = struct{}{}
	}
	return float64(len(distinct))/float64(len(vals)) <= opt.CategoricalMaxRatio
}

// allMatch reports whether every value satisfies fn.
func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

// isInt requires a signed base-10 integer that fits in int64.
func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// isBool accepts common textual booleans.
func isBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false", "t", "f", "yes", "no", "y", "n":
		return true
	default:
		return false
	}
}

// isFloat accepts decimal or scientific notation floats.
func isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
