package quality

import (
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwetl/internal/dataset"
	"dwetl/pkg/records"
)

func newTestScorer() *Scorer {
	logger, _ := test.NewNullLogger()
	s := NewScorer(DefaultThresholds(), logger)
	s.Now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestGrade(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  string
	}{
		{100, "A"}, {90, "A"}, {89.99, "B"}, {80, "B"}, {70, "C"}, {60, "D"}, {59.9, "F"}, {0, "F"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Grade(tc.score), "score %v", tc.score)
	}
}

func TestScoreEmptyDataset(t *testing.T) {
	t.Parallel()

	rep := newTestScorer().Score(dataset.Empty([]string{"a", "b"}))
	assert.Zero(t, rep.OverallScore)
	assert.Equal(t, "F", rep.Grade)
	assert.False(t, rep.Passed)
	require.Len(t, rep.Metrics, 4)
	for _, m := range rep.Metrics {
		assert.Zero(t, m.Value, m.Name)
		assert.False(t, m.Passed, m.Name)
	}
	assert.NotEmpty(t, rep.Recommendations)

	rep = newTestScorer().Score(dataset.Empty(nil))
	assert.Equal(t, "F", rep.Grade)
}

func TestScorePerfectDataset(t *testing.T) {
	t.Parallel()

	rows := make([]records.Record, 120)
	for i := range rows {
		rows[i] = records.Record{
			"id":        int32(i),
			"email":     "user@example.com",
			"loan_amnt": float64(1000 + i),
			"issue_d":   time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	rep := newTestScorer().Score(dataset.New([]string{"id", "email", "loan_amnt", "issue_d"}, rows))

	assert.InDelta(t, 100.0, rep.OverallScore, 1e-9)
	assert.Equal(t, "A", rep.Grade)
	assert.True(t, rep.Passed)
	assert.Equal(t, []string{acceptableMessage}, rep.Recommendations)
	assert.Equal(t, 120, rep.Metadata["row_count"])
}

func TestScoreWeightsAndRecommendations(t *testing.T) {
	t.Parallel()

	// 4 rows, 2 duplicated; one bad email; one negative amount; one missing.
	rows := []records.Record{
		{"email": "a@b.co", "loan_amnt": int32(10), "note": "x"},
		{"email": "a@b.co", "loan_amnt": int32(10), "note": "x"},
		{"email": "not-an-email", "loan_amnt": int32(-5), "note": " "},
		{"email": nil, "loan_amnt": int32(7), "note": "y"},
	}
	rep := newTestScorer().Score(dataset.New([]string{"email", "loan_amnt", "note"}, rows))

	c, _ := rep.Metric(Completeness)
	u, _ := rep.Metric(Uniqueness)
	k, _ := rep.Metric(Consistency)
	v, _ := rep.Metric(Validity)

	assert.InDelta(t, 11.0/12.0, c.Value, 1e-9)
	assert.InDelta(t, 3.0/4.0, u.Value, 1e-9)
	assert.Equal(t, 1, u.Details["duplicate_rows"])
	// email 2/3, loan_amnt 3/4.
	assert.InDelta(t, (2.0/3.0+3.0/4.0)/2, k.Value, 1e-9)
	// email 3/3, loan_amnt 4/4, note 3/4.
	assert.InDelta(t, (1+1+0.75)/3, v.Value, 1e-9)

	want := 100 * (0.30*c.Value + 0.25*u.Value + 0.25*k.Value + 0.20*v.Value)
	assert.InDelta(t, want, rep.OverallScore, 1e-9)
	assert.Equal(t, Grade(want), rep.Grade)
	assert.False(t, rep.Passed)

	assert.Len(t, rep.Recommendations, 3)
	assert.Contains(t, rep.Recommendations[0], "Uniqueness below threshold")
	assert.Contains(t, rep.Recommendations[1], "Consistency below threshold")
	assert.Contains(t, rep.Recommendations[2], "Small dataset")
}

func TestScoreHighMissingWarning(t *testing.T) {
	t.Parallel()

	rows := []records.Record{{"a": nil, "b": 1.0}, {"a": nil, "b": 2.0}}
	rep := newTestScorer().Score(dataset.New([]string{"a", "b"}, rows))
	assert.Contains(t, rep.Recommendations[len(rep.Recommendations)-1], "High percentage of missing values")
}

func TestScoreBoundedForOddValues(t *testing.T) {
	t.Parallel()

	rows := []records.Record{
		{"x": math.Inf(1), "d": time.Date(1800, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"x": math.NaN(), "d": time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	rep := newTestScorer().Score(dataset.New([]string{"x", "d"}, rows))
	assert.GreaterOrEqual(t, rep.OverallScore, 0.0)
	assert.LessOrEqual(t, rep.OverallScore, 100.0)
	v, _ := rep.Metric(Validity)
	assert.Zero(t, v.Value)
}

func TestBlendColumnUniqueness(t *testing.T) {
	t.Parallel()

	rows := []records.Record{{"k": "a", "n": int32(1)}, {"k": "a", "n": int32(2)}}
	ds := dataset.New([]string{"k", "n"}, rows)

	s := newTestScorer()
	plain, _ := s.Score(ds).Metric(Uniqueness)
	assert.InDelta(t, 1.0, plain.Value, 1e-9)

	s.BlendColumnUniqueness = true
	blended, _ := s.Score(ds).Metric(Uniqueness)
	assert.InDelta(t, 0.75, blended.Value, 1e-9)
}

func TestWarningsCarried(t *testing.T) {
	t.Parallel()

	rep := newTestScorer().Score(dataset.New([]string{"a"}, []records.Record{{"a": "x"}}), "row 0: fk dangling")
	assert.Equal(t, []string{"row 0: fk dangling"}, rep.Warnings)
}

func TestScoreLogs(t *testing.T) {
	t.Parallel()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)
	s := NewScorer(DefaultThresholds(), logger)
	s.Score(dataset.New([]string{"a"}, []records.Record{{"a": "x"}}))

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "quality: checks completed", hook.LastEntry().Message)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	for col, want := range map[string]string{
		"Email":         "email_format",
		"home_phone":    "phone_format",
		"funded_amnt":   "non_negative",
		"annual_INCOME": "non_negative",
	} {
		r, ok := reg.For(col)
		require.True(t, ok, col)
		assert.Equal(t, want, r.Name, col)
	}
	_, ok := reg.For("term")
	assert.False(t, ok)

	phone, _ := reg.For("phone")
	checked, good := phone.Check("(555) 123-4567")
	assert.True(t, checked)
	assert.True(t, good)
	checked, _ = phone.Check(12)
	assert.False(t, checked)
}
