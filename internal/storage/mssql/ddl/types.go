// Package ddl contains MSSQL-specific helpers for generating DDL.
package ddl

import (
	"strings"

	gddl "dwetl/internal/ddl"
)

// MapType maps a logical type string into a SQL Server column type. Unknown
// or empty kinds fall back to NVARCHAR(MAX).
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int32":
		return "INT"
	case "int", "integer", "bigint":
		return "BIGINT"
	case "bool", "boolean":
		return "BIT"
	case "date":
		return "DATE"
	case "timestamp", "datetime", "timestamptz":
		return "DATETIME2"
	case "float", "double":
		return "FLOAT"
	case "numeric", "decimal":
		return "DECIMAL(38, 10)"
	case "uuid":
		return "UNIQUEIDENTIFIER"
	default:
		return "NVARCHAR(MAX)"
	}
}

// Dialect implements storage.Dialect for SQL Server.
type Dialect struct{}

// MapType maps a logical column kind.
func (Dialect) MapType(k gddl.Kind) string { return MapType(string(k)) }
