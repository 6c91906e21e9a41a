package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"dwetl/internal/ddl"
)

// Dialect renders backend-specific DDL. Backends register one per storage
// kind at init time so callers can create tables knowing only the kind.
type Dialect interface {
	// MapType returns the column type for a logical kind.
	MapType(k ddl.Kind) string

	// CreateTableSQL renders CREATE TABLE for def.
	CreateTableSQL(def ddl.TableDef) (string, error)

	// DropTableSQL renders a statement that drops fqn if it exists.
	DropTableSQL(fqn string) string
}

var (
	ddlMu    sync.RWMutex
	dialects = map[string]Dialect{}
)

// RegisterDDL registers (or replaces) the Dialect for kind.
func RegisterDDL(kind string, d Dialect) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	dialects[kind] = d
}

// DialectFor returns the Dialect registered for kind.
func DialectFor(kind string) (Dialect, error) {
	ddlMu.RLock()
	d, ok := dialects[kind]
	ddlMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no DDL dialect registered for storage.kind=%q", kind)
	}
	return d, nil
}

// Table is an in-memory table ready to be written. Rows are aligned to
// Columns.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any

	// Key names the primary-key column; empty means no key.
	Key string
}

// Column returns the values of column i across all rows.
func (t Table) Column(i int) []any {
	out := make([]any, len(t.Rows))
	for r, row := range t.Rows {
		if i < len(row) {
			out[r] = row[i]
		}
	}
	return out
}

// Definition builds a TableDef for t, deriving each column type from the
// values it holds.
func (t Table) Definition(d Dialect, schema string) ddl.TableDef {
	def := ddl.TableDef{FQN: Qualify(schema, t.Name), Columns: make([]ddl.ColumnDef, len(t.Columns))}
	for i, c := range t.Columns {
		pk := c == t.Key
		def.Columns[i] = ddl.ColumnDef{
			Name:       c,
			SQLType:    d.MapType(ddl.KindOf(t.Column(i))),
			Nullable:   !pk,
			PrimaryKey: pk,
		}
	}
	return def
}

// Writer replaces whole tables through a Repository.
type Writer struct {
	Repo      Repository
	Kind      string
	Schema    string
	BatchSize int
	Logger    logrus.FieldLogger
}

// ReplaceTable drops t if it exists, recreates it and bulk-loads its rows.
// It returns the number of rows written.
func (w *Writer) ReplaceTable(ctx context.Context, t Table) (int64, error) {
	d, err := DialectFor(w.Kind)
	if err != nil {
		return 0, err
	}
	def := t.Definition(d, w.Schema)

	if err := w.Repo.Exec(ctx, d.DropTableSQL(def.FQN)); err != nil {
		return 0, fmt.Errorf("drop %s: %w", def.FQN, err)
	}
	create, err := d.CreateTableSQL(def)
	if err != nil {
		return 0, fmt.Errorf("render DDL for %s: %w", def.FQN, err)
	}
	if err := w.Repo.Exec(ctx, create); err != nil {
		return 0, fmt.Errorf("create %s: %w", def.FQN, err)
	}

	logger := w.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("table", def.FQN)

	batch := w.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	in := make(chan []any, batch)
	go func() {
		defer close(in)
		for _, row := range t.Rows {
			select {
			case in <- row:
			case <-ctx.Done():
				return
			}
		}
	}()

	n, err := LoadBatches(ctx, logger, t.Columns, in, batch, func(ctx context.Context, cols []string, rows [][]any) (int64, error) {
		return w.Repo.CopyFrom(ctx, def.FQN, cols, rows)
	})
	if err != nil {
		// Unblock the producer if LoadBatches stopped early.
		for range in {
		}
		return n, fmt.Errorf("load %s: %w", def.FQN, err)
	}
	logger.WithField("rows", n).Info("storage: table written")
	return n, nil
}
