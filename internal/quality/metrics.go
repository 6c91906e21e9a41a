package quality

import (
	"math"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"dwetl/internal/dataset"
)

func (s *Scorer) completeness(ds *dataset.Dataset) Metric {
	total := ds.Cells()
	missing := ds.TotalMissing()

	perColumn := make(map[string]float64, ds.Width())
	for _, c := range ds.Columns() {
		perColumn[c] = 1 - float64(ds.MissingCount(c))/float64(ds.Len())
	}

	return newMetric(Completeness, float64(total-missing)/float64(total), s.Thresholds.Completeness, map[string]any{
		"total_cells":         total,
		"missing_cells":       missing,
		"column_completeness": perColumn,
	})
}

func (s *Scorer) uniqueness(ds *dataset.Dataset) Metric {
	cols := ds.Columns()
	seen := make(map[xxh3.Uint128]struct{}, ds.Len())
	for _, r := range ds.Rows() {
		seen[dataset.RowKey(r, cols)] = struct{}{}
	}
	unique := len(seen)
	rowScore := float64(unique) / float64(ds.Len())

	perColumn := map[string]float64{}
	for _, c := range cols {
		distinct := map[string]struct{}{}
		count := 0
		stringCol := true
		for _, v := range ds.Column(c) {
			if dataset.IsMissing(v) {
				continue
			}
			str, ok := v.(string)
			if !ok {
				stringCol = false
				break
			}
			distinct[str] = struct{}{}
			count++
		}
		if stringCol && count > 0 {
			perColumn[c] = float64(len(distinct)) / float64(count)
		}
	}

	value := rowScore
	if s.BlendColumnUniqueness && len(perColumn) > 0 {
		sum := 0.0
		for _, v := range perColumn {
			sum += v
		}
		value = 0.5*rowScore + 0.5*sum/float64(len(perColumn))
	}

	return newMetric(Uniqueness, value, s.Thresholds.Uniqueness, map[string]any{
		"total_rows":        ds.Len(),
		"unique_rows":       unique,
		"duplicate_rows":    ds.Len() - unique,
		"column_uniqueness": perColumn,
	})
}

func (s *Scorer) consistency(ds *dataset.Dataset) Metric {
	checks := map[string]float64{}
	owners := map[string]string{}
	for _, c := range ds.Columns() {
		rule, ok := s.Rules.For(c)
		if !ok {
			continue
		}
		checked, good := 0, 0
		for _, v := range ds.Column(c) {
			if dataset.IsMissing(v) {
				continue
			}
			did, ok := rule.Check(v)
			if !did {
				continue
			}
			checked++
			if ok {
				good++
			}
		}
		if checked == 0 {
			continue
		}
		checks[c] = float64(good) / float64(checked)
		owners[c] = rule.Name
	}

	value := 1.0
	if len(checks) > 0 {
		sum := 0.0
		for _, v := range checks {
			sum += v
		}
		value = sum / float64(len(checks))
	}
	return newMetric(Consistency, value, s.Thresholds.Consistency, map[string]any{
		"checks_performed": len(checks),
		"column_scores":    checks,
		"rules":            owners,
	})
}

func (s *Scorer) validity(ds *dataset.Dataset) Metric {
	maxYear := s.Now().Year() + 10
	checks := map[string]float64{}
	for _, c := range ds.Columns() {
		total, good := 0, 0
		for _, v := range ds.Column(c) {
			if dataset.IsMissing(v) {
				continue
			}
			total++
			if wellFormed(v, maxYear) {
				good++
			}
		}
		if total > 0 {
			checks[c] = float64(good) / float64(total)
		}
	}

	value := 1.0
	if len(checks) > 0 {
		sum := 0.0
		for _, v := range checks {
			sum += v
		}
		value = sum / float64(len(checks))
	}
	return newMetric(Validity, value, s.Thresholds.Validity, map[string]any{
		"checks_performed": len(checks),
		"column_scores":    checks,
	})
}

// wellFormed judges a non-missing value by its Go type.
func wellFormed(v any, maxYear int) bool {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case float64:
		return !math.IsInf(t, 0) && !math.IsNaN(t)
	case float32:
		return !math.IsInf(float64(t), 0) && !math.IsNaN(float64(t))
	case time.Time:
		return t.Year() >= 1900 && t.Year() <= maxYear
	default:
		return true
	}
}
