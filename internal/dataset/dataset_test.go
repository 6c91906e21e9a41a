package dataset

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwetl/pkg/records"
)

func sample() *Dataset {
	return New([]string{"a", "b", "c"}, []records.Record{
		{"a": "1", "b": nil, "c": "x"},
		{"a": "2", "b": "y", "c": nil},
		{"a": nil, "b": "z", "c": "w"},
	})
}

func TestMissingCounts(t *testing.T) {
	t.Parallel()

	d := sample()
	assert.Equal(t, 1, d.MissingCount("a"))
	assert.Equal(t, 1, d.MissingCount("b"))
	assert.Equal(t, 3, d.TotalMissing())
	assert.Equal(t, 9, d.Cells())
}

func TestSelectPreservesOrderAndSource(t *testing.T) {
	t.Parallel()

	d := sample()
	s, err := d.Select([]string{"c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, s.Columns())
	assert.Equal(t, 3, d.Width(), "source must not change")
	_, ok := s.Rows()[0]["b"]
	assert.False(t, ok)

	_, err = d.Select([]string{"nope"})
	require.Error(t, err)
}

func TestFilterRows(t *testing.T) {
	t.Parallel()

	d := sample()
	f := d.FilterRows(func(r records.Record) bool { return r["a"] != nil })
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, 3, d.Len())
}

func TestWithColumn(t *testing.T) {
	t.Parallel()

	d := sample()
	n, err := d.WithColumn("d", []any{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, n.Columns())
	assert.Nil(t, d.Rows()[0]["d"])
	assert.Equal(t, 1, n.Rows()[0]["d"])

	r, err := d.WithColumn("a", []any{"x", "y", "z"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, r.Columns())
	assert.Equal(t, "1", d.Rows()[0]["a"])

	_, err = d.WithColumn("a", []any{1})
	require.Error(t, err)
}

func TestIsMissing(t *testing.T) {
	t.Parallel()

	assert.True(t, IsMissing(nil))
	assert.True(t, IsMissing(math.NaN()))
	assert.False(t, IsMissing(""))
	assert.False(t, IsMissing(0))
}

func TestRowKey(t *testing.T) {
	t.Parallel()

	cols := []string{"a", "b"}
	ts := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	k1 := RowKey(records.Record{"a": "ab", "b": "c"}, cols)
	k2 := RowKey(records.Record{"a": "a", "b": "bc"}, cols)
	assert.NotEqual(t, k1, k2)

	// Separator bytes inside a cell must not line up with a cell boundary.
	assert.NotEqual(t,
		RowKey(records.Record{"a": "a\x1fsb", "b": "c"}, cols),
		RowKey(records.Record{"a": "a", "b": "b\x1fsc"}, cols))

	assert.Equal(t,
		RowKey(records.Record{"a": int64(1), "b": ts}, cols),
		RowKey(records.Record{"a": int64(1), "b": ts}, cols))
	assert.NotEqual(t,
		RowKey(records.Record{"a": int64(1), "b": nil}, cols),
		RowKey(records.Record{"a": "1", "b": nil}, cols))
}
