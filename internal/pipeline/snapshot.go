package pipeline

import (
	"slices"
	"time"

	"dwetl/internal/dataset"
	"dwetl/internal/infer"
	"dwetl/internal/quality"
	"dwetl/internal/starschema"
)

// Stage names, in execution order.
const (
	StageLoad         = "load"
	StageInfer        = "infer"
	StageCompleteness = "completeness"
	StageDensity      = "density"
	StageTransform    = "transform"
	StageDimensions   = "dimensions"
	StageFact         = "fact"
	StageQuality      = "quality"
	StageSink         = "sink"
)

// Stages lists every stage in execution order.
func Stages() []string {
	return []string{
		StageLoad, StageInfer, StageCompleteness, StageDensity, StageTransform,
		StageDimensions, StageFact, StageQuality, StageSink,
	}
}

// Snapshot is the state threaded between stages. Stages never modify the
// snapshot they receive; they return a new one.
type Snapshot struct {
	Input string
	// Raw is the dataset as loaded.
	Raw *dataset.Dataset
	// Data is the working dataset after the latest cleaning or transform
	// stage.
	Data       *dataset.Dataset
	Types      infer.Types
	Dimensions starschema.Dimensions
	Fact       *starschema.FactTable
	Violations []starschema.Violation
	Quality    *quality.Report
	// Written lists the tables committed by the sink, in write order.
	Written []string

	done []string
}

// Done reports whether stage has completed on this snapshot.
func (s Snapshot) Done(stage string) bool { return slices.Contains(s.done, stage) }

// Completed lists finished stages in order.
func (s Snapshot) Completed() []string { return slices.Clone(s.done) }

// next returns a copy of s with stage marked complete. The done slice is
// cloned so sibling snapshots never share it.
func (s Snapshot) next(stage string) Snapshot {
	s.done = append(slices.Clone(s.done), stage)
	return s
}

// StageResult describes one stage execution.
type StageResult struct {
	Stage    string         `json:"stage" yaml:"stage"`
	Success  bool           `json:"success" yaml:"success"`
	Errors   []string       `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Duration time.Duration  `json:"duration" yaml:"duration"`
}

// Result is the outcome of a whole run.
type Result struct {
	RunID            string          `json:"run_id" yaml:"run_id"`
	Job              string          `json:"job" yaml:"job"`
	Input            string          `json:"input" yaml:"input"`
	Success          bool            `json:"success" yaml:"success"`
	ProcessedRecords int             `json:"processed_records" yaml:"processed_records"`
	QualityScore     float64         `json:"quality_score" yaml:"quality_score"`
	Grade            string          `json:"grade,omitempty" yaml:"grade,omitempty"`
	Duration         time.Duration   `json:"duration" yaml:"duration"`
	Errors           []string        `json:"errors,omitempty" yaml:"errors,omitempty"`
	Stages           []StageResult   `json:"stages" yaml:"stages"`
	Metadata         map[string]any  `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Quality          *quality.Report `json:"quality,omitempty" yaml:"quality,omitempty"`

	// Data is the transformed dataset, set once the transform stage succeeds.
	Data *dataset.Dataset `json:"-" yaml:"-"`

	// Err is the first stage failure, if any.
	Err error `json:"-" yaml:"-"`
}

// Stage returns the result for the named stage.
func (r Result) Stage(name string) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return StageResult{}, false
}
