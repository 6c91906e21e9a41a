package sample

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var end = time.Date(2016, time.March, 15, 0, 0, 0, 0, time.UTC)

func generate(t *testing.T, o Options) [][]string {
	t.Helper()
	var buf bytes.Buffer
	n, err := Loans(&buf, o)
	require.NoError(t, err)
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, n+1)
	return rows
}

func TestLoansShape(t *testing.T) {
	t.Parallel()

	rows := generate(t, Options{Records: 300, End: end})
	assert.Equal(t, Columns, rows[0])

	col := func(name string) int {
		for i, c := range Columns {
			if c == name {
				return i
			}
		}
		t.Fatalf("no column %s", name)
		return -1
	}
	earliest := time.Date(2014, time.April, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range rows[1:] {
		require.Len(t, r, len(Columns))
		assert.Equal(t, strconv.Itoa(i+1), r[col("id")])

		amt, err := strconv.ParseFloat(r[col("loan_amnt")], 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, amt, 1000.0)
		assert.LessOrEqual(t, amt, 40000.0)

		assert.Contains(t, []string{" 36 months", " 60 months"}, r[col("term")])
		assert.True(t, strings.HasSuffix(r[col("int_rate")], "%"), r[col("int_rate")])

		issued, err := time.Parse("Jan-2006", r[col("issue_d")])
		require.NoError(t, err)
		assert.False(t, issued.Before(earliest), issued)
		assert.False(t, issued.After(end), issued)
	}
}

func TestLoansIsReproducible(t *testing.T) {
	t.Parallel()

	var a, b, c bytes.Buffer
	_, err := Loans(&a, Options{Records: 50, Seed: 7, End: end})
	require.NoError(t, err)
	_, err = Loans(&b, Options{Records: 50, Seed: 7, End: end})
	require.NoError(t, err)
	_, err = Loans(&c, Options{Records: 50, Seed: 8, End: end})
	require.NoError(t, err)

	assert.Equal(t, a.String(), b.String())
	assert.NotEqual(t, a.String(), c.String())
}

func TestLoansMissingShares(t *testing.T) {
	t.Parallel()

	rows := generate(t, Options{Records: 2000, End: end})[1:]
	missing := make([]int, len(Columns))
	for _, r := range rows {
		for i, v := range r {
			if v == "" {
				missing[i]++
			}
		}
	}
	share := func(i int) float64 { return float64(missing[i]) / float64(len(rows)) }

	// id and loan_amnt are never missing; the sparse delinquency column is
	// well above the 30% completeness cut.
	assert.Zero(t, missing[0])
	assert.Zero(t, missing[1])
	assert.InDelta(t, missingEmpLength, share(7), 0.03)
	assert.InDelta(t, missingHomeOwnership, share(8), 0.03)
	assert.InDelta(t, missingDelinq, share(14), 0.05)
	assert.InDelta(t, missingRevolUtil, share(15), 0.03)
}

func TestLoansDefaults(t *testing.T) {
	t.Parallel()

	o := Options{}.withDefaults()
	assert.Equal(t, 1000, o.Records)
	assert.EqualValues(t, 42, o.Seed)
	assert.Equal(t, 1.0, o.MissingRate)
	assert.False(t, o.End.IsZero())
}

func TestInstallment(t *testing.T) {
	t.Parallel()

	// 10,000 at 12% over 36 months is 332.14 a month.
	assert.InDelta(t, 332.14, installment(10000, 12, 36), 0.01)
}
