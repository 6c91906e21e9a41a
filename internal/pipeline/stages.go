package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"dwetl/internal/clean"
	"dwetl/internal/dataset"
	"dwetl/internal/datasource/file"
	"dwetl/internal/infer"
	"dwetl/internal/metrics"
	csvparser "dwetl/internal/parser/csv"
	"dwetl/internal/quality"
	"dwetl/internal/starschema"
	"dwetl/internal/transformer"
	"dwetl/internal/transformer/builtin"
)

// maxIntegrityWarnings caps how many violations are copied into the quality
// report; the total is always reported.
const maxIntegrityWarnings = 20

// Load reads and parses the input file.
func (p *Pipeline) Load(ctx context.Context, path string) (Snapshot, StageResult, error) {
	res := StageResult{Stage: StageLoad}

	buf, err := file.NewLocal(path).ReadAll(ctx, p.logger)
	if err != nil {
		return Snapshot{}, res, newError(KindIO, StageLoad, err)
	}

	pc := p.cfg.Parser
	ps := csvparser.NewParser(csvparser.Options{
		HasHeader:        pc.HasHeader,
		Comma:            csvparser.DecodeDelimiter(pc.Delimiter),
		TrimSpace:        pc.TrimSpace,
		MissingTokens:    pc.MissingTokens,
		NormalizeHeaders: pc.NormalizeHeaders,
		Logger:           p.logger,
	})
	ds, skipped, err := ps.Parse(bytes.NewReader(buf))
	switch {
	case errors.Is(err, csvparser.ErrNoHeader):
		ds = dataset.Empty(nil)
		res.Warnings = append(res.Warnings, "input is empty")
	case err != nil:
		return Snapshot{}, res, newError(KindIO, StageLoad, err)
	}
	if skipped > 0 {
		res.Warnings = append(res.Warnings, newError(KindParse, StageLoad,
			fmt.Errorf("%d malformed rows skipped", skipped)).Error())
	}

	metrics.RecordRows(p.job(), "read", int64(ds.Len()))
	metrics.RecordRows(p.job(), "skipped", int64(skipped))

	res.Success = true
	res.Metadata = map[string]any{
		"rows":         ds.Len(),
		"columns":      ds.Width(),
		"skipped_rows": skipped,
		"bytes":        len(buf),
	}
	s := Snapshot{Input: path, Raw: ds, Data: ds}
	return s.next(StageLoad), res, nil
}

// Infer classifies every loaded column.
func (p *Pipeline) Infer(s Snapshot) (Snapshot, StageResult, error) {
	res := StageResult{Stage: StageInfer}
	if !s.Done(StageLoad) {
		return s, res, sequencingError(StageInfer, StageLoad)
	}

	types := infer.Infer(s.Data, p.inferOptions())
	counts := map[string]int{}
	for _, t := range types.ByName {
		counts[string(t)]++
	}

	res.Success = true
	res.Metadata = map[string]any{"types": types.AsMap(), "type_counts": counts}
	s.Types = types
	return s.next(StageInfer), res, nil
}

// Completeness drops columns whose missing percentage exceeds
// cleaning.missing_threshold.
func (p *Pipeline) Completeness(s Snapshot) (Snapshot, StageResult, error) {
	res := StageResult{Stage: StageCompleteness}
	if !s.Done(StageInfer) {
		return s, res, sequencingError(StageCompleteness, StageInfer)
	}

	cr, err := clean.FilterByMissingPercentage(s.Data, p.cfg.Cleaning.MissingThreshold, s.Types)
	if err != nil {
		return s, res, newError(KindConfig, StageCompleteness, err)
	}

	missing := make(map[string]float64, len(cr.Profiles))
	for _, pr := range cr.Profiles {
		missing[pr.Name] = pr.MissingPercentage
	}
	metrics.RecordColumnsRemoved(p.job(), StageCompleteness, len(cr.Removed))

	res.Success = true
	res.Metadata = map[string]any{
		"threshold":      p.cfg.Cleaning.MissingThreshold,
		"columns_before": s.Data.Width(),
		"columns_after":  len(cr.Kept),
		"removed":        cr.Removed,
		"missing_pct":    missing,
	}
	s.Data = cr.Dataset
	return s.next(StageCompleteness), res, nil
}

// Density re-selects columns by cleaning.max_null_count and drops every row
// still holding a missing value.
func (p *Pipeline) Density(s Snapshot) (Snapshot, StageResult, error) {
	res := StageResult{Stage: StageDensity}
	if !s.Done(StageCompleteness) {
		return s, res, sequencingError(StageDensity, StageCompleteness)
	}

	dr, err := clean.FilterByDensity(s.Data, p.cfg.Cleaning.MaxNullCount)
	if err != nil {
		return s, res, newError(KindConfig, StageDensity, err)
	}
	metrics.RecordColumnsRemoved(p.job(), StageDensity, len(dr.Removed))
	metrics.RecordRows(p.job(), "dropped", int64(dr.RowsRemoved))

	res.Success = true
	res.Metadata = map[string]any{
		"max_null_count": p.cfg.Cleaning.MaxNullCount,
		"selected":       len(dr.Selected),
		"removed":        dr.Removed,
		"rows_kept":      dr.RowsKept,
		"rows_removed":   dr.RowsRemoved,
		"missing_before": dr.MissingBefore,
		"missing_after":  dr.MissingAfter,
	}
	s.Data = dr.Dataset
	return s.next(StageDensity), res, nil
}

// Transform applies the value rules and re-infers the resulting types.
// Unparseable values become missing and are reported as warnings.
func (p *Pipeline) Transform(s Snapshot) (Snapshot, StageResult, error) {
	res := StageResult{Stage: StageTransform}
	if !s.Done(StageDensity) {
		return s, res, sequencingError(StageTransform, StageDensity)
	}

	tc := p.cfg.Transform
	chain := builtin.NewChain(builtin.Options{
		PercentColumns:   tc.PercentColumns,
		MonthYearColumns: tc.MonthYearColumns,
	}, tc.DeriveDateParts)

	st := transformer.NewStats()
	out, err := chain.Apply(s.Data, s.Types, st)
	if err != nil {
		return s, res, newError(KindConfig, StageTransform, err)
	}

	cols := make([]string, 0, len(st.Coercions))
	for c, n := range st.Coercions {
		if n > 0 {
			cols = append(cols, c)
		}
	}
	sort.Strings(cols)
	for _, c := range cols {
		res.Warnings = append(res.Warnings, newError(KindParse, StageTransform,
			fmt.Errorf("column %s: %d values could not be parsed and were set to missing", c, st.Coercions[c])).Error())
	}
	metrics.RecordRows(p.job(), "coerced", int64(st.TotalCoercions()))

	types := infer.Infer(out, p.inferOptions())
	res.Success = true
	res.Metadata = map[string]any{
		"rules":     st.Rules,
		"coercions": st.Coercions,
		"derived":   st.Derived,
		"types":     types.AsMap(),
	}
	s.Data = out
	s.Types = types
	return s.next(StageTransform), res, nil
}

// BuildDimensions builds one dimension table per configured column.
func (p *Pipeline) BuildDimensions(s Snapshot) (Snapshot, StageResult, error) {
	res := StageResult{Stage: StageDimensions}
	if !s.Done(StageTransform) {
		return s, res, sequencingError(StageDimensions, StageTransform)
	}

	specs := make([]starschema.DimensionSpec, len(p.cfg.Star.Dimensions))
	for i, d := range p.cfg.Star.Dimensions {
		specs[i] = starschema.DimensionSpec{Column: d.Column, Name: d.Name, Date: d.Date}
	}
	dims, err := starschema.BuildDimensions(s.Data, specs)
	if err != nil {
		return s, res, newError(KindConfig, StageDimensions, err)
	}

	members := make(map[string]int, len(dims.Tables))
	for _, d := range dims.Tables {
		members[d.TableName()] = d.Len()
		metrics.RecordDimension(p.job(), d.Name, d.Len())
	}
	for _, c := range dims.Skipped {
		res.Warnings = append(res.Warnings, fmt.Sprintf("dimension column %q not present; skipped", c))
	}

	res.Success = true
	res.Metadata = map[string]any{"members": members, "skipped": dims.Skipped}
	s.Dimensions = dims
	return s.next(StageDimensions), res, nil
}

// AssembleFact builds the fact table and verifies its foreign keys.
func (p *Pipeline) AssembleFact(s Snapshot) (Snapshot, StageResult, error) {
	res := StageResult{Stage: StageFact}
	if !s.Done(StageDimensions) {
		return s, res, sequencingError(StageFact, StageDimensions)
	}

	fact, err := starschema.AssembleFact(s.Data, s.Dimensions, starschema.FactSpec{
		Name:     p.cfg.Star.FactTable,
		Measures: p.cfg.Star.Measures,
	})
	if err != nil {
		return s, res, newError(KindConfig, StageFact, err)
	}
	violations := starschema.VerifyIntegrity(fact, s.Dimensions)

	for _, m := range fact.MissingMeasures {
		res.Warnings = append(res.Warnings, fmt.Sprintf("measure %q not present; omitted", m))
	}
	if len(violations) > 0 {
		res.Warnings = append(res.Warnings, newError(KindIntegrity, StageFact,
			fmt.Errorf("%d foreign key values do not resolve", len(violations))).Error())
	}
	metrics.RecordRows(p.job(), "fact", int64(fact.Len()))

	res.Success = true
	res.Metadata = map[string]any{
		"table":      fact.Name,
		"rows":       fact.Len(),
		"columns":    fact.Columns,
		"unresolved": fact.Unresolved,
		"violations": len(violations),
	}
	s.Fact = fact
	s.Violations = violations
	return s.next(StageFact), res, nil
}

// Score computes the quality report over the transformed dataset. Integrity
// violations become report warnings. When quality.fail_below is set and the
// score is lower the stage fails, but the report is still attached to the
// returned snapshot.
func (p *Pipeline) Score(s Snapshot) (Snapshot, StageResult, error) {
	res := StageResult{Stage: StageQuality}
	if !s.Done(StageFact) {
		return s, res, sequencingError(StageQuality, StageFact)
	}

	qc := p.cfg.Quality
	scorer := quality.NewScorer(quality.Thresholds{
		Completeness: qc.Thresholds.Completeness,
		Uniqueness:   qc.Thresholds.Uniqueness,
		Consistency:  qc.Thresholds.Consistency,
		Validity:     qc.Thresholds.Validity,
	}, p.logger)
	scorer.BlendColumnUniqueness = qc.BlendColumnUniqueness

	rep := scorer.Score(s.Data, integrityWarnings(s.Violations)...)

	metrics.RecordQuality(p.job(), "overall", rep.OverallScore)
	values := make(map[string]float64, len(rep.Metrics))
	for _, m := range rep.Metrics {
		metrics.RecordQuality(p.job(), m.Name, m.Value)
		values[m.Name] = m.Value
	}

	res.Metadata = map[string]any{
		"score":   rep.OverallScore,
		"grade":   rep.Grade,
		"passed":  rep.Passed,
		"metrics": values,
	}
	res.Warnings = append(res.Warnings, rep.Warnings...)
	s.Quality = &rep

	if qc.FailBelow > 0 && rep.OverallScore < qc.FailBelow {
		return s, res, newError(KindQuality, StageQuality,
			fmt.Errorf("score %.2f below %.2f", rep.OverallScore, qc.FailBelow))
	}
	res.Success = true
	return s.next(StageQuality), res, nil
}

func integrityWarnings(vs []starschema.Violation) []string {
	if len(vs) == 0 {
		return nil
	}
	n := min(len(vs), maxIntegrityWarnings)
	out := make([]string, 0, n+1)
	for _, v := range vs[:n] {
		out = append(out, "integrity: "+v.String())
	}
	if len(vs) > n {
		out = append(out, fmt.Sprintf("integrity: %d more violations not shown", len(vs)-n))
	}
	return out
}

func (p *Pipeline) inferOptions() infer.Options {
	return infer.Options{
		SampleSize:           p.cfg.Inference.SampleSize,
		CategoricalMaxRatio:  p.cfg.Inference.CategoricalMaxRatio,
		CategoricalMinValues: p.cfg.Inference.CategoricalMinValues,
	}
}
