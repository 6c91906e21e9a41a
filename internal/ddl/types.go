package ddl

import (
	"math"
	"time"
)

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, TIMESTAMPTZ)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression (e.g., 'anon', CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the fully-qualified table name (FQN) and an ordered list of
// columns. The FQN is expected in dotted form (e.g., "schema.table").
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Kind is a backend-neutral column type derived from Go values. Dialects map
// it to a concrete SQL type.
type Kind string

const (
	// KindInt32 holds values that fit in 32 bits, such as surrogate keys and
	// narrowed integer measures.
	KindInt32     Kind = "int32"
	KindInteger   Kind = "integer"
	KindFloat     Kind = "float"
	KindBoolean   Kind = "boolean"
	KindTimestamp Kind = "timestamp"
	KindText      Kind = "text"
)

// KindOf returns the narrowest Kind able to hold every non-nil value in vals.
// Numeric kinds widen int32 → integer → float; any other mix is text. A
// column of only nil values is text.
func KindOf(vals []any) Kind {
	var k Kind
	for _, v := range vals {
		vk := kindOfValue(v)
		if vk == "" {
			continue
		}
		switch {
		case k == "":
			k = vk
		case k == vk:
		case numericRank[k] > 0 && numericRank[vk] > 0:
			if numericRank[vk] > numericRank[k] {
				k = vk
			}
		default:
			return KindText
		}
	}
	if k == "" {
		return KindText
	}
	return k
}

var numericRank = map[Kind]int{KindInt32: 1, KindInteger: 2, KindFloat: 3}

func kindOfValue(v any) Kind {
	switch t := v.(type) {
	case nil:
		return ""
	case int8, int16, int32, uint8, uint16:
		return KindInt32
	case int, int64, uint32:
		return KindInteger
	case float32:
		if math.IsNaN(float64(t)) {
			return ""
		}
		return KindFloat
	case float64:
		if math.IsNaN(t) {
			return ""
		}
		return KindFloat
	case bool:
		return KindBoolean
	case time.Time:
		return KindTimestamp
	default:
		return KindText
	}
}
