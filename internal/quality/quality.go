// Package quality scores a dataset on completeness, uniqueness, consistency
// and validity, and folds the four into a weighted 0-100 score and a letter
// grade.
package quality

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"dwetl/internal/dataset"
)

// Metric weights; they sum to 1.
const (
	WeightCompleteness = 0.30
	WeightUniqueness   = 0.25
	WeightConsistency  = 0.25
	WeightValidity     = 0.20
)

// Metric names.
const (
	Completeness = "completeness"
	Uniqueness   = "uniqueness"
	Consistency  = "consistency"
	Validity     = "validity"
)

// Thresholds are the per-metric pass marks in [0,1].
type Thresholds struct {
	Completeness float64 `json:"completeness" mapstructure:"completeness" yaml:"completeness"`
	Uniqueness   float64 `json:"uniqueness" mapstructure:"uniqueness" yaml:"uniqueness"`
	Consistency  float64 `json:"consistency" mapstructure:"consistency" yaml:"consistency"`
	Validity     float64 `json:"validity" mapstructure:"validity" yaml:"validity"`
}

// DefaultThresholds returns the stock pass marks.
func DefaultThresholds() Thresholds {
	return Thresholds{Completeness: 0.85, Uniqueness: 0.90, Consistency: 0.90, Validity: 0.85}
}

// Metric is one scored dimension of quality.
type Metric struct {
	Name        string         `json:"name" yaml:"name"`
	Value       float64        `json:"value" yaml:"value"`
	Threshold   float64        `json:"threshold" yaml:"threshold"`
	Passed      bool           `json:"passed" yaml:"passed"`
	Description string         `json:"description" yaml:"description"`
	Details     map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
}

// Report is the scorer's verdict.
type Report struct {
	OverallScore    float64        `json:"overall_score" yaml:"overall_score"`
	Grade           string         `json:"grade" yaml:"grade"`
	Passed          bool           `json:"passed" yaml:"passed"`
	Metrics         []Metric       `json:"metrics" yaml:"metrics"`
	Recommendations []string       `json:"recommendations" yaml:"recommendations"`
	Warnings        []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Metadata        map[string]any `json:"metadata" yaml:"metadata"`
}

// Metric returns the named metric.
func (r Report) Metric(name string) (Metric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Scorer computes Reports. The zero value is not usable; use NewScorer.
type Scorer struct {
	Thresholds Thresholds
	Rules      *Registry
	// BlendColumnUniqueness averages row uniqueness with the mean distinct
	// ratio of string columns.
	BlendColumnUniqueness bool
	// Now anchors the validity date range.
	Now    func() time.Time
	Logger logrus.FieldLogger
}

// NewScorer returns a Scorer with the default rule registry.
func NewScorer(th Thresholds, logger logrus.FieldLogger) *Scorer {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}
	return &Scorer{Thresholds: th, Rules: DefaultRegistry(), Now: time.Now, Logger: logger}
}

// Score evaluates ds. warnings (typically integrity violations found
// upstream) are carried into the report. An empty dataset scores 0 with
// grade F.
func (s *Scorer) Score(ds *dataset.Dataset, warnings ...string) Report {
	meta := map[string]any{
		"row_count":    ds.Len(),
		"column_count": ds.Width(),
		"assessed_at":  s.Now().UTC().Format(time.RFC3339),
	}

	if ds.Len() == 0 || ds.Width() == 0 {
		metrics := []Metric{
			s.emptyMetric(Completeness, s.Thresholds.Completeness),
			s.emptyMetric(Uniqueness, s.Thresholds.Uniqueness),
			s.emptyMetric(Consistency, s.Thresholds.Consistency),
			s.emptyMetric(Validity, s.Thresholds.Validity),
		}
		return Report{
			OverallScore:    0,
			Grade:           "F",
			Metrics:         metrics,
			Recommendations: s.recommend(ds, metrics),
			Warnings:        warnings,
			Metadata:        meta,
		}
	}

	metrics := []Metric{
		s.completeness(ds),
		s.uniqueness(ds),
		s.consistency(ds),
		s.validity(ds),
	}

	score := 100 * (WeightCompleteness*metrics[0].Value +
		WeightUniqueness*metrics[1].Value +
		WeightConsistency*metrics[2].Value +
		WeightValidity*metrics[3].Value)
	score = clamp(score, 0, 100)

	passed := true
	for _, m := range metrics {
		passed = passed && m.Passed
	}

	rep := Report{
		OverallScore:    score,
		Grade:           Grade(score),
		Passed:          passed,
		Metrics:         metrics,
		Recommendations: s.recommend(ds, metrics),
		Warnings:        warnings,
		Metadata:        meta,
	}
	s.Logger.WithFields(logrus.Fields{
		"score": fmt.Sprintf("%.1f", rep.OverallScore),
		"grade": rep.Grade,
	}).Info("quality: checks completed")
	return rep
}

// Grade maps a 0-100 score to A..F.
func Grade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

func (s *Scorer) emptyMetric(name string, th float64) Metric {
	return Metric{
		Name:        name,
		Threshold:   th,
		Description: "No data to assess " + name,
	}
}

func newMetric(name string, value, th float64, details map[string]any) Metric {
	value = clamp(value, 0, 1)
	return Metric{
		Name:        name,
		Value:       value,
		Threshold:   th,
		Passed:      value >= th,
		Description: fmt.Sprintf("Data %s: %.2f%%", name, value*100),
		Details:     details,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
