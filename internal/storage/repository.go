// Package storage contains storage-agnostic contracts for writing the star
// schema to a relational database. Concrete backends (postgres, mssql, mysql,
// sqlite) register themselves at init time; callers obtain a Repository via
// New and never import a backend directly.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config carries connection settings shared by all backends. When DSN is
// empty each backend assembles one from the discrete fields.
type Config struct {
	Kind     string
	DSN      string
	Host     string
	Port     int
	Database string
	User     string
	Password string
	Schema   string
	Params   map[string]string
}

// Repository is the minimal surface the pipeline sink needs.
type Repository interface {
	// Exec runs a single DDL or DML statement.
	Exec(ctx context.Context, sql string) error

	// CopyFrom bulk-inserts rows aligned to columns into table and returns
	// the number of rows written.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Close releases connections held by the repository.
	Close()
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds in sorted order. The slice is a
// copy owned by the caller.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Qualify prefixes name with schema when schema is non-empty.
func Qualify(schema, name string) string {
	if schema == "" {
		return name
	}
	return schema + "." + name
}
