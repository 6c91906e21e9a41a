package builtin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwetl/internal/dataset"
	"dwetl/internal/infer"
	"dwetl/internal/transformer"
	"dwetl/pkg/records"
)

func TestPercentConvert(t *testing.T) {
	t.Parallel()

	rule := Percent(nil)
	v, err := rule.Convert(infer.String, "12.34%")
	require.NoError(t, err)
	assert.InDelta(t, 0.1234, v, 1e-12)

	v, err = rule.Convert(infer.String, " 7 % ")
	require.NoError(t, err)
	assert.InDelta(t, 0.07, v, 1e-12)

	_, err = rule.Convert(infer.String, "n/a%")
	require.Error(t, err)
}

func TestPercentMatch(t *testing.T) {
	t.Parallel()

	rule := Percent([]string{"int_rate"})
	assert.True(t, rule.Match("int_rate", infer.Float, []any{"10.5"}))
	assert.True(t, rule.Match("other", infer.String, []any{"1%", "2%"}))
	assert.False(t, rule.Match("other", infer.String, []any{"1%", "2"}))
	assert.False(t, rule.Match("other", infer.Empty, nil))
}

func TestMonthYear(t *testing.T) {
	t.Parallel()

	rule := MonthYear(nil)
	assert.True(t, rule.Match("x", infer.String, []any{"Dec-2015", "Jan-2016"}))
	assert.False(t, rule.Match("x", infer.String, []any{"December 2015"}))

	v, err := rule.Convert(infer.String, "Dec-2015")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2015, time.December, 1, 0, 0, 0, 0, time.UTC), v)

	_, err = rule.Convert(infer.String, "Foo-2015")
	require.Error(t, err)
}

func TestTyped(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		typ     infer.Type
		in      any
		want    any
		wantErr bool
	}{
		{"small int narrows", infer.Integer, "42", int32(42), false},
		{"large int stays wide", infer.Integer, "9999999999", int64(9999999999), false},
		{"bad int", infer.Integer, "4x", nil, true},
		{"float", infer.Float, "1.25", 1.25, false},
		{"bool", infer.Boolean, "Yes", true, false},
		{"date", infer.Date, "2020-03-04", time.Date(2020, 3, 4, 0, 0, 0, 0, time.UTC), false},
		{"datetime", infer.Datetime, "2020-03-04 05:06:07", time.Date(2020, 3, 4, 5, 6, 7, 0, time.UTC), false},
		{"string passes", infer.String, "36 months", "36 months", false},
		{"typed passes", infer.Integer, int64(3), int64(3), false},
	}
	rule := Typed()
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := rule.Convert(tc.typ, tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestChainEndToEnd(t *testing.T) {
	t.Parallel()

	ds := dataset.New([]string{"int_rate", "issue_d", "loan_amnt", "term"}, []records.Record{
		{"int_rate": "10.65%", "issue_d": "Dec-2011", "loan_amnt": "5000", "term": " 36 months"},
		{"int_rate": "15.27%", "issue_d": "bogus", "loan_amnt": "2500", "term": "60 months"},
	})
	types := infer.Infer(ds, infer.Options{})

	st := transformer.NewStats()
	out, err := NewChain(DefaultOptions(), true).Apply(ds, types, st)
	require.NoError(t, err)

	row := out.Rows()[0]
	assert.InDelta(t, 0.1065, row["int_rate"], 1e-12)
	assert.Equal(t, time.Date(2011, 12, 1, 0, 0, 0, 0, time.UTC), row["issue_d"])
	assert.Equal(t, int32(5000), row["loan_amnt"])
	assert.Equal(t, "36 months", row["term"])
	assert.Equal(t, int32(2011), row["issue_d_year"])
	assert.Equal(t, int32(12), row["issue_d_month"])
	assert.Equal(t, int32(4), row["issue_d_quarter"])

	assert.Nil(t, out.Rows()[1]["issue_d"])
	assert.Nil(t, out.Rows()[1]["issue_d_year"])
	assert.Equal(t, 1, st.Coercions["issue_d"])
	assert.Equal(t, 1, st.TotalCoercions())
	assert.Equal(t, "percent", st.Rules["int_rate"])
	assert.Equal(t, "month_year", st.Rules["issue_d"])
	assert.Equal(t, "typed", st.Rules["loan_amnt"])
	assert.Equal(t, []string{"issue_d_year", "issue_d_month", "issue_d_quarter"}, st.Derived)

	assert.Equal(t, "10.65%", ds.Rows()[0]["int_rate"], "input must not change")
}

func TestQuarter(t *testing.T) {
	t.Parallel()

	for m, want := range map[time.Month]int{time.January: 1, time.March: 1, time.April: 2, time.September: 3, time.December: 4} {
		assert.Equal(t, want, Quarter(time.Date(2020, m, 1, 0, 0, 0, 0, time.UTC)), m.String())
	}
}
