package ddl

import (
	"strings"

	gddl "dwetl/internal/ddl"
)

// Style renders double-quoted identifiers and CREATE TABLE IF NOT EXISTS.
var Style = gddl.Style{
	Dialect:     "sqlite",
	QuoteIdent:  QuoteIdent,
	IfNotExists: true,
}

// QuoteIdent double-quotes id, doubling embedded quotes.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// CreateTableSQL implements storage.Dialect.
func (Dialect) CreateTableSQL(def gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(def, Style)
}

// DropTableSQL implements storage.Dialect.
func (Dialect) DropTableSQL(fqn string) string {
	return "DROP TABLE IF EXISTS " + Style.QuoteFQN(fqn)
}
