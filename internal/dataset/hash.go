package dataset

import (
	"fmt"
	"strconv"
	"time"

	"github.com/zeebo/xxh3"

	"dwetl/pkg/records"
)

// unitSep terminates each encoded cell. Variable-length text is also length
// prefixed, so cell contents can never forge a boundary.
const unitSep = 0x1f

// RowKey hashes r over cols into a 128-bit identity. Two rows share a key
// exactly when every cell has the same type and value.
func RowKey(r records.Record, cols []string) xxh3.Uint128 {
	buf := make([]byte, 0, 16*len(cols))
	for _, c := range cols {
		buf = appendCell(buf, r[c])
		buf = append(buf, unitSep)
	}
	return xxh3.Hash128(buf)
}

// appendCell writes a type-tagged canonical form of v.
func appendCell(buf []byte, v any) []byte {
	switch t := v.(type) {
	case nil:
		return append(buf, 'n')
	case string:
		buf = append(buf, 's')
		buf = strconv.AppendInt(buf, int64(len(t)), 10)
		buf = append(buf, ':')
		return append(buf, t...)
	case bool:
		buf = append(buf, 'b')
		return strconv.AppendBool(buf, t)
	case int:
		buf = append(buf, 'i')
		return strconv.AppendInt(buf, int64(t), 10)
	case int32:
		buf = append(buf, 'i')
		return strconv.AppendInt(buf, int64(t), 10)
	case int64:
		buf = append(buf, 'i')
		return strconv.AppendInt(buf, t, 10)
	case float64:
		buf = append(buf, 'f')
		return strconv.AppendFloat(buf, t, 'g', -1, 64)
	case time.Time:
		buf = append(buf, 't')
		return t.UTC().AppendFormat(buf, time.RFC3339Nano)
	default:
		text := fmt.Sprintf("%T:%v", v, v)
		buf = append(buf, 'x')
		buf = strconv.AppendInt(buf, int64(len(text)), 10)
		buf = append(buf, ':')
		return append(buf, text...)
	}
}
