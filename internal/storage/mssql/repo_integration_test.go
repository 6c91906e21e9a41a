//go:build integration

package mssql

import (
	"context"
	"os"
	"testing"
	"time"

	"dwetl/internal/storage"
)

// getTestDSN reads the MSSQL_TEST_DSN environment variable.
// If it is empty, the caller should skip the test.
func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("MSSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MSSQL_TEST_DSN not set; skipping MSSQL integration tests")
	}
	return dsn
}

// TestReplaceTableIntegration writes a small dimension through the storage
// writer against a real SQL Server.
func TestReplaceTableIntegration(t *testing.T) {
	dsn := getTestDSN(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, closeFn, err := NewRepository(ctx, Config{DSN: dsn})
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	defer closeFn()

	w := &storage.Writer{Repo: &wrappedRepo{Repository: repo}, Kind: "mssql", Schema: "dbo"}
	n, err := w.ReplaceTable(ctx, storage.Table{
		Name:    "dwetl_integration_dim",
		Columns: []string{"d_id", "d"},
		Key:     "d_id",
		Rows:    [][]any{{int32(0), "x"}, {int32(1), "y"}},
	})
	if err != nil {
		t.Fatalf("ReplaceTable() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("rows = %d, want 2", n)
	}
	_ = repo.Exec(ctx, "DROP TABLE IF EXISTS [dbo].[dwetl_integration_dim]")
}
