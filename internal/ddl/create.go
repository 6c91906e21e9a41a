// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// to render CREATE TABLE statements from that model. Dialect packages under
// internal/storage/<backend>/ddl supply a Style and a type mapping.
package ddl

import (
	"fmt"
	"strings"
)

// Style captures the dialect-specific parts of rendering.
type Style struct {
	// Dialect names the backend in error messages.
	Dialect string

	// QuoteIdent quotes a single identifier segment. Nil emits names as-is.
	QuoteIdent func(string) string

	// IfNotExists adds IF NOT EXISTS after CREATE TABLE.
	IfNotExists bool

	// PKNotNull forces NOT NULL on primary-key columns.
	PKNotNull bool
}

// QuoteFQN quotes each dot-separated segment of fqn. Empty segments are
// dropped.
func (s Style) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, s.quote(p))
	}
	return strings.Join(out, ".")
}

func (s Style) quote(id string) string {
	if s.QuoteIdent == nil {
		return id
	}
	return s.QuoteIdent(id)
}

func (s Style) errorf(format string, args ...any) error {
	prefix := "ddl"
	if s.Dialect != "" {
		prefix = s.Dialect + " ddl"
	}
	return fmt.Errorf(prefix+": "+format, args...)
}

// BuildCreateTableSQL renders a CREATE TABLE statement from t.
//
// Each column is rendered as
//
//	<Name> <SQLType> [NOT NULL] [DEFAULT <Default>]
//
// and primary-key columns are collected into a trailing PRIMARY KEY clause in
// declaration order. Default is emitted as raw SQL.
func BuildCreateTableSQL(t TableDef, s Style) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", s.errorf("table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", s.errorf("at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string
	seen := make(map[string]struct{}, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", s.errorf("column with empty name in table %s", fqn)
		}
		if _, dup := seen[name]; dup {
			return "", s.errorf("duplicate column %s in table %s", name, fqn)
		}
		seen[name] = struct{}{}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", s.errorf("column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(s.quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable || (c.PrimaryKey && s.PKNotNull) {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, s.quote(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	create := "CREATE TABLE "
	if s.IfNotExists {
		create += "IF NOT EXISTS "
	}
	return fmt.Sprintf("%s%s (\n  %s\n);", create, s.QuoteFQN(fqn), strings.Join(cols, ",\n  ")), nil
}
