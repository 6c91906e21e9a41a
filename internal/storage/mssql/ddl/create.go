package ddl

import (
	"fmt"
	"strings"

	gddl "dwetl/internal/ddl"
)

// Style renders bracket-quoted identifiers. T-SQL has no CREATE TABLE IF NOT
// EXISTS, so the guard is added by CreateTableSQL.
var Style = gddl.Style{
	Dialect:    "mssql",
	QuoteIdent: QuoteIdent,
	PKNotNull:  true,
}

// QuoteIdent quotes a single identifier segment using bracket syntax,
// escaping any closing brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// CreateTableSQL returns a T-SQL script that creates def if it does not
// already exist:
//
//	IF OBJECT_ID(N'[schema].[table]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [schema].[table] (...);
//	END;
func (Dialect) CreateTableSQL(def gddl.TableDef) (string, error) {
	create, err := gddl.BuildCreateTableSQL(def, Style)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n%s\nEND;", escapeLiteral(Style.QuoteFQN(def.FQN)), create), nil
}

// DropTableSQL implements storage.Dialect.
func (Dialect) DropTableSQL(fqn string) string {
	q := Style.QuoteFQN(fqn)
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NOT NULL DROP TABLE %s;", escapeLiteral(q), q)
}

func escapeLiteral(s string) string { return strings.ReplaceAll(s, "'", "''") }
