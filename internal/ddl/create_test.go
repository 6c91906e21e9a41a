package ddl

import (
	"math"
	"strings"
	"testing"
	"time"
)

func bracket(id string) string { return "[" + id + "]" }

// TestBuildCreateTableSQL covers rendering and validation with a few styles.
func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		def         TableDef
		style       Style
		wantSQL     string
		errContains string
	}{
		{
			name:        "empty FQN",
			def:         TableDef{Columns: []ColumnDef{{Name: "id", SQLType: "INT"}}},
			errContains: "ddl: table FQN must not be empty",
		},
		{
			name:        "no columns names dialect",
			def:         TableDef{FQN: "t"},
			style:       Style{Dialect: "sqlite"},
			errContains: "sqlite ddl: at least one column is required",
		},
		{
			name:        "empty column name",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{SQLType: "INT"}}},
			errContains: "column with empty name",
		},
		{
			name:        "missing type",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id"}}},
			errContains: "missing SQLType",
		},
		{
			name: "duplicate column",
			def: TableDef{FQN: "t", Columns: []ColumnDef{
				{Name: "a", SQLType: "INT"}, {Name: " a ", SQLType: "INT"},
			}},
			errContains: "duplicate column a",
		},
		{
			name: "plain style",
			def: TableDef{FQN: " s.t ", Columns: []ColumnDef{
				{Name: "id", SQLType: "INT", PrimaryKey: true},
				{Name: "name", SQLType: "TEXT", Nullable: true},
				{Name: "flag", SQLType: "BOOLEAN", Default: " false "},
			}},
			wantSQL: "CREATE TABLE s.t (\n  id INT NOT NULL,\n  name TEXT,\n  flag BOOLEAN NOT NULL DEFAULT false,\n  PRIMARY KEY (id)\n);",
		},
		{
			name: "quoted if not exists with nullable pk forced",
			def: TableDef{FQN: "grade_dim", Columns: []ColumnDef{
				{Name: "grade_id", SQLType: "INTEGER", Nullable: true, PrimaryKey: true},
				{Name: "grade", SQLType: "TEXT", Nullable: true},
			}},
			style:   Style{QuoteIdent: bracket, IfNotExists: true, PKNotNull: true},
			wantSQL: "CREATE TABLE IF NOT EXISTS [grade_dim] (\n  [grade_id] INTEGER NOT NULL,\n  [grade] TEXT,\n  PRIMARY KEY ([grade_id])\n);",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := BuildCreateTableSQL(tt.def, tt.style)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("error = %v, want substring %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.wantSQL {
				t.Fatalf("got:\n%s\nwant:\n%s", got, tt.wantSQL)
			}
		})
	}
}

func TestQuoteFQN(t *testing.T) {
	t.Parallel()

	s := Style{QuoteIdent: bracket}
	if got := s.QuoteFQN("dbo..loans_fact"); got != "[dbo].[loans_fact]" {
		t.Fatalf("QuoteFQN = %q", got)
	}
	if got := (Style{}).QuoteFQN("a.b"); got != "a.b" {
		t.Fatalf("QuoteFQN without quoter = %q", got)
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		vals []any
		want Kind
	}{
		{"all nil", []any{nil, nil}, KindText},
		{"empty", nil, KindText},
		{"int32", []any{int32(1), nil, int32(3)}, KindInt32},
		{"int32 widens to integer", []any{int32(1), int64(1 << 40)}, KindInteger},
		{"integer then int32", []any{int64(7), int32(1)}, KindInteger},
		{"int and float widen", []any{int32(1), 2.5}, KindFloat},
		{"nan ignored", []any{math.NaN(), int64(4)}, KindInteger},
		{"bool", []any{true, false}, KindBoolean},
		{"time", []any{time.Now()}, KindTimestamp},
		{"mixed", []any{int32(1), "x"}, KindText},
		{"bool and int", []any{true, 1}, KindText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.vals); got != tt.want {
				t.Fatalf("KindOf = %q, want %q", got, tt.want)
			}
		})
	}
}
