// Package ddl contains MySQL-specific helpers for generating DDL.
package ddl

import (
	"strings"

	gddl "dwetl/internal/ddl"
)

// MapType maps a logical type string into a MySQL column type.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int32":
		return "INT"
	case "int", "integer", "bigint":
		return "BIGINT"
	case "float", "double":
		return "DOUBLE"
	case "bool", "boolean":
		return "BOOLEAN"
	case "date":
		return "DATE"
	case "timestamp", "datetime":
		return "DATETIME"
	default:
		return "TEXT"
	}
}

// Style renders backtick-quoted identifiers and CREATE TABLE IF NOT EXISTS.
var Style = gddl.Style{
	Dialect:     "mysql",
	QuoteIdent:  QuoteIdent,
	IfNotExists: true,
	PKNotNull:   true,
}

// QuoteIdent backtick-quotes id, doubling embedded backticks.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// Dialect implements storage.Dialect for MySQL.
type Dialect struct{}

// MapType maps a logical column kind.
func (Dialect) MapType(k gddl.Kind) string { return MapType(string(k)) }

// CreateTableSQL implements storage.Dialect.
func (Dialect) CreateTableSQL(def gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(def, Style)
}

// DropTableSQL implements storage.Dialect.
func (Dialect) DropTableSQL(fqn string) string {
	return "DROP TABLE IF EXISTS " + Style.QuoteFQN(fqn)
}
