package mssql

import (
	"context"
	"testing"

	"dwetl/internal/storage"
)

// TestMSSQLStorageRegistrationUsesNewRepositoryHook verifies that the "mssql"
// storage backend registered in init() uses the newRepository hook and that
// the wrappedRepo correctly propagates close behavior.
func TestMSSQLStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	origNewRepository := newRepository
	defer func() { newRepository = origNewRepository }()

	var (
		gotCfg   Config
		closed   bool
		fakeRepo = &Repository{}
	)
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return fakeRepo, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "mssql", DSN: "sqlserver://example"})
	if err != nil {
		t.Fatalf("storage.New() error = %v, want nil", err)
	}
	if gotCfg.DSN != "sqlserver://example" {
		t.Errorf("hook cfg.DSN = %q", gotCfg.DSN)
	}
	w, ok := repo.(*wrappedRepo)
	if !ok || w.Repository != fakeRepo {
		t.Fatalf("storage.New() = %T, want wrapped fake repository", repo)
	}

	repo.Close()
	if !closed {
		t.Fatalf("Close() did not invoke closeFn")
	}

	if _, err := storage.DialectFor("mssql"); err != nil {
		t.Fatalf("mssql dialect not registered: %v", err)
	}
}

func TestMSSQLStorageBuildsDSN(t *testing.T) {
	origNewRepository := newRepository
	defer func() { newRepository = origNewRepository }()

	var gotCfg Config
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{}, nil, nil
	}

	_, err := storage.New(context.Background(), storage.Config{
		Kind:     "mssql",
		Host:     "db",
		Database: "warehouse",
		User:     "sa",
		Password: "secret",
		Params:   map[string]string{"encrypt": "disable"},
	})
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	want := "sqlserver://sa:secret@db:1433?database=warehouse&encrypt=disable"
	if gotCfg.DSN != want {
		t.Fatalf("DSN = %q, want %q", gotCfg.DSN, want)
	}
}
