package ddl

import (
	"strings"

	gddl "dwetl/internal/ddl"
)

// Style renders double-quoted identifiers and CREATE TABLE IF NOT EXISTS.
// Primary-key columns are always NOT NULL.
var Style = gddl.Style{
	Dialect:     "postgres",
	QuoteIdent:  QuoteIdent,
	IfNotExists: true,
	PKNotNull:   true,
}

// QuoteIdent quotes a single identifier segment, e.g.:
//
//	QuoteIdent(`grade`)      => `"grade"`
//	QuoteIdent(`weird"name`) => `"weird""name"`
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// BuildCreateTableSQL returns a Postgres CREATE TABLE statement for def.
func BuildCreateTableSQL(def gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(def, Style)
}

// CreateTableSQL implements storage.Dialect.
func (Dialect) CreateTableSQL(def gddl.TableDef) (string, error) {
	return BuildCreateTableSQL(def)
}

// DropTableSQL implements storage.Dialect.
func (Dialect) DropTableSQL(fqn string) string {
	return "DROP TABLE IF EXISTS " + Style.QuoteFQN(fqn)
}
