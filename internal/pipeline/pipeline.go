// Package pipeline runs the staged star-schema ETL:
//
//	load → infer → completeness → density → transform →
//	dimensions → fact → quality → sink
//
// Each stage takes a Snapshot and returns a new one plus a StageResult. A
// stage called before its prerequisite fails immediately with a sequencing
// error. Run stops at the first failing stage and always returns a Result.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dwetl/internal/config"
	"dwetl/internal/logging"
	"dwetl/internal/metrics"
	"dwetl/internal/storage"
)

// Pipeline holds the configuration and collaborators for runs. It is safe to
// call Run repeatedly; runs do not share state.
type Pipeline struct {
	cfg    config.Pipeline
	repo   storage.Repository
	logger logrus.FieldLogger

	newRunID func() string
}

// New returns a Pipeline. A nil repo skips the sink stage; a nil logger
// discards logs.
func New(cfg config.Pipeline, repo storage.Repository, logger logrus.FieldLogger) *Pipeline {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{
		cfg:      cfg,
		repo:     repo,
		logger:   logger.WithField("component", "pipeline"),
		newRunID: uuid.NewString,
	}
}

func (p *Pipeline) job() string {
	if p.cfg.Job == "" {
		return "dwetl"
	}
	return p.cfg.Job
}

type step struct {
	name string
	run  func(context.Context, Snapshot) (Snapshot, StageResult, error)
}

func (p *Pipeline) steps(inputPath string) []step {
	pure := func(fn func(Snapshot) (Snapshot, StageResult, error)) func(context.Context, Snapshot) (Snapshot, StageResult, error) {
		return func(_ context.Context, s Snapshot) (Snapshot, StageResult, error) { return fn(s) }
	}
	return []step{
		{StageLoad, func(ctx context.Context, _ Snapshot) (Snapshot, StageResult, error) { return p.Load(ctx, inputPath) }},
		{StageInfer, pure(p.Infer)},
		{StageCompleteness, pure(p.Completeness)},
		{StageDensity, pure(p.Density)},
		{StageTransform, pure(p.Transform)},
		{StageDimensions, pure(p.BuildDimensions)},
		{StageFact, pure(p.AssembleFact)},
		{StageQuality, pure(p.Score)},
		{StageSink, p.Sink},
	}
}

// Run executes every stage against inputPath.
func (p *Pipeline) Run(ctx context.Context, inputPath string) Result {
	start := time.Now()
	res := Result{
		RunID: p.newRunID(),
		Job:   p.job(),
		Input: inputPath,
	}
	log := p.logger.WithFields(logrus.Fields{"run_id": res.RunID, "job": res.Job})
	log.WithField("input", inputPath).Info("pipeline: run started")

	var (
		snap    Snapshot
		written []string
	)
	for _, st := range p.steps(inputPath) {
		if err := ctx.Err(); err != nil {
			res.fail(StageResult{Stage: st.name}, err)
			break
		}

		t0 := time.Now()
		next, sr, err := st.run(ctx, snap)
		sr.Stage = st.name
		sr.Duration = time.Since(t0)
		sr.Success = err == nil
		metrics.RecordStage(res.Job, st.name, err, sr.Duration)

		if next.Quality != nil {
			res.Quality = next.Quality
		}
		if len(next.Written) > 0 {
			written = next.Written
		}
		for _, w := range sr.Warnings {
			log.WithField("stage", st.name).Warn(w)
		}
		if err != nil {
			log.WithError(err).WithField("stage", st.name).Error("pipeline: stage failed")
			res.fail(sr, err)
			break
		}
		log.WithFields(logrus.Fields{
			"stage":    st.name,
			"duration": sr.Duration.Truncate(time.Microsecond),
		}).Info("pipeline: stage completed")
		res.Stages = append(res.Stages, sr)
		snap = next
	}

	res.Duration = time.Since(start)
	res.Success = res.Err == nil
	if res.Quality != nil {
		res.QualityScore = res.Quality.OverallScore
		res.Grade = res.Quality.Grade
	}
	if snap.Fact != nil {
		res.ProcessedRecords = snap.Fact.Len()
	}
	if snap.Done(StageTransform) {
		res.Data = snap.Data
	}

	stages := make(map[string]any, len(res.Stages))
	for _, sr := range res.Stages {
		stages[sr.Stage] = sr.Metadata
	}
	res.Metadata = map[string]any{
		"completed": snap.Completed(),
		"stages":    stages,
	}
	if snap.Raw != nil {
		res.Metadata["input_rows"] = snap.Raw.Len()
	}
	if len(written) > 0 {
		res.Metadata["tables_written"] = written
	}

	log.WithFields(logrus.Fields{
		"success":  res.Success,
		"records":  res.ProcessedRecords,
		"score":    res.QualityScore,
		"grade":    res.Grade,
		"duration": res.Duration.Truncate(time.Millisecond),
	}).Info("pipeline: run finished")
	return res
}

func (r *Result) fail(sr StageResult, err error) {
	sr.Success = false
	sr.Errors = append(sr.Errors, err.Error())
	r.Stages = append(r.Stages, sr)
	r.Errors = append(r.Errors, err.Error())
	r.Err = err
}
