// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import (
	"strings"

	gddl "dwetl/internal/ddl"
)

// MapType normalizes a loosely-specified logical type into a Postgres SQL type.
//
//	"int32"                     -> INTEGER
//	"int"/"integer"/"bigint"    -> BIGINT
//	"float"/"double"            -> DOUBLE PRECISION
//	"bool"/"boolean"            -> BOOLEAN
//	"date"                      -> DATE
//	"timestamp"/"timestamptz"   -> TIMESTAMPTZ
//	everything else             -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int32":
		return "INTEGER"
	case "int", "integer", "bigint":
		return "BIGINT"
	case "float", "double":
		return "DOUBLE PRECISION"
	case "bool", "boolean":
		return "BOOLEAN"
	case "date":
		return "DATE"
	case "timestamp", "timestamptz":
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

// Dialect implements storage.Dialect for Postgres.
type Dialect struct{}

// MapType maps a logical column kind.
func (Dialect) MapType(k gddl.Kind) string { return MapType(string(k)) }
