package ddl

import (
	"strings"
	"testing"

	gddl "dwetl/internal/ddl"
)

func TestMapType(t *testing.T) {
	t.Parallel()

	tests := []struct{ kind, want string }{
		{"int32", "INT"},
		{"  int  ", "BIGINT"},
		{"boolean", "BIT"},
		{"timestamp", "DATETIME2"},
		{"float", "FLOAT"},
		{"decimal", "DECIMAL(38, 10)"},
		{"text", "NVARCHAR(MAX)"},
		{"", "NVARCHAR(MAX)"},
	}
	for _, tt := range tests {
		if got := MapType(tt.kind); got != tt.want {
			t.Errorf("MapType(%q) = %q, want %q", tt.kind, got, tt.want)
		}
	}
	if got := (Dialect{}).MapType(gddl.KindBoolean); got != "BIT" {
		t.Errorf("Dialect.MapType(boolean) = %q", got)
	}
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	if got := QuoteIdent("brack]et"); got != "[brack]]et]" {
		t.Fatalf("QuoteIdent = %q", got)
	}
	if got := Style.QuoteFQN("dbo.loans_fact"); got != "[dbo].[loans_fact]" {
		t.Fatalf("QuoteFQN = %q", got)
	}
}

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	got, err := Dialect{}.CreateTableSQL(gddl.TableDef{
		FQN: "dbo.grade_dim",
		Columns: []gddl.ColumnDef{
			{Name: "grade_id", SQLType: "BIGINT", Nullable: true, PrimaryKey: true},
			{Name: "grade", SQLType: "NVARCHAR(MAX)", Nullable: true},
		},
	})
	if err != nil {
		t.Fatalf("CreateTableSQL: %v", err)
	}
	if !strings.HasPrefix(got, "IF OBJECT_ID(N'[dbo].[grade_dim]', N'U') IS NULL\nBEGIN\nCREATE TABLE [dbo].[grade_dim] (") {
		t.Fatalf("unexpected prefix:\n%s", got)
	}
	for _, want := range []string{"[grade_id] BIGINT NOT NULL", "[grade] NVARCHAR(MAX)", "PRIMARY KEY ([grade_id])"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if !strings.HasSuffix(got, "END;") {
		t.Errorf("missing END; in:\n%s", got)
	}

	if _, err := (Dialect{}).CreateTableSQL(gddl.TableDef{FQN: "t"}); err == nil {
		t.Fatal("expected error for table without columns")
	}
}

func TestDropTableSQL(t *testing.T) {
	t.Parallel()

	want := "IF OBJECT_ID(N'[o''neil]', N'U') IS NOT NULL DROP TABLE [o'neil];"
	if got := (Dialect{}).DropTableSQL("o'neil"); got != want {
		t.Fatalf("DropTableSQL = %q, want %q", got, want)
	}
}
