package pipeline

import (
	"context"
	"fmt"
	"strings"

	"dwetl/internal/metrics"
	"dwetl/internal/starschema"
	"dwetl/internal/storage"
	"dwetl/pkg/records"
)

// Sink replaces every dimension table and then the fact table in the
// repository, one table at a time. Tables written before a failure stay
// committed and are named in the error. With no repository the stage is
// skipped.
func (p *Pipeline) Sink(ctx context.Context, s Snapshot) (Snapshot, StageResult, error) {
	res := StageResult{Stage: StageSink}
	if !s.Done(StageQuality) {
		return s, res, sequencingError(StageSink, StageQuality)
	}
	if p.repo == nil {
		p.logger.WithField("stage", StageSink).Info("sink: skipped, no repository")
		res.Success = true
		res.Metadata = map[string]any{"sink": "skipped"}
		return s.next(StageSink), res, nil
	}

	w := &storage.Writer{
		Repo:      p.repo,
		Kind:      p.cfg.Storage.Kind,
		Schema:    p.cfg.Storage.DB.Schema,
		BatchSize: p.cfg.Storage.BatchSize,
		Logger:    p.logger.WithField("stage", StageSink),
	}

	tables := starTables(s.Dimensions, s.Fact)
	var written []string
	rows := map[string]int64{}
	for _, t := range tables {
		if len(t.Columns) == 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("table %s has no columns; not written", t.Name))
			continue
		}
		n, err := w.ReplaceTable(ctx, t)
		if err != nil {
			committed := "none"
			if len(written) > 0 {
				committed = strings.Join(written, ", ")
			}
			res.Metadata = map[string]any{"written": written, "rows": rows}
			s.Written = written
			return s, res, newError(KindSink, StageSink, fmt.Errorf("%w (committed tables: %s)", err, committed))
		}
		written = append(written, t.Name)
		rows[t.Name] = n
		metrics.RecordRows(p.job(), "written", n)
	}

	res.Success = true
	res.Metadata = map[string]any{"kind": p.cfg.Storage.Kind, "written": written, "rows": rows}
	s.Written = written
	return s.next(StageSink), res, nil
}

// starTables converts the star schema into writable tables: dimensions
// first, keyed by their surrogate key, then the fact table.
func starTables(dims starschema.Dimensions, fact *starschema.FactTable) []storage.Table {
	out := make([]storage.Table, 0, len(dims.Tables)+1)
	for _, d := range dims.Tables {
		out = append(out, storage.Table{
			Name:    d.TableName(),
			Columns: d.Columns,
			Rows:    rowsOf(d.Rows, d.Columns),
			Key:     d.SurrogateKey,
		})
	}
	if fact != nil {
		out = append(out, storage.Table{
			Name:    fact.Name,
			Columns: fact.Columns,
			Rows:    rowsOf(fact.Rows, fact.Columns),
		})
	}
	return out
}

func rowsOf(recs []records.Record, cols []string) [][]any {
	out := make([][]any, len(recs))
	for i, r := range recs {
		out[i] = r.Values(cols)
	}
	return out
}
