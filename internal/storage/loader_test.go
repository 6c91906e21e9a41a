package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// factRows feeds a loans_fact shaped table through a closed channel.
func factRows(n int) (Table, <-chan []any) {
	tbl := Table{Name: "loans_fact", Columns: []string{"loan_amnt", "grade_id"}}
	for i := 0; i < n; i++ {
		tbl.Rows = append(tbl.Rows, []any{float64(1000 * (i + 1)), int32(i % 2)})
	}
	in := make(chan []any, n)
	for _, r := range tbl.Rows {
		in <- r
	}
	close(in)
	return tbl, in
}

func TestLoadBatchesKeepsRowOrderAcrossBatches(t *testing.T) {
	t.Parallel()

	tbl, in := factRows(5)
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	var sizes []int
	var got [][]any
	total, err := LoadBatches(context.Background(), logger, tbl.Columns, in, 2,
		func(_ context.Context, cols []string, rows [][]any) (int64, error) {
			assert.Equal(t, tbl.Columns, cols)
			sizes = append(sizes, len(rows))
			for _, r := range rows {
				got = append(got, append([]any(nil), r...))
			}
			return int64(len(rows)), nil
		})

	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Equal(t, []int{2, 2, 1}, sizes)
	assert.Equal(t, tbl.Rows, got)

	flushed := 0
	for _, e := range hook.AllEntries() {
		if e.Message == "loader: batch flushed" {
			flushed++
		}
	}
	assert.Equal(t, 3, flushed)
}

func TestLoadBatchesStopsAtFirstFailedBatch(t *testing.T) {
	t.Parallel()

	tbl, in := factRows(6)
	logger, hook := test.NewNullLogger()
	diskFull := errors.New("disk full")

	calls := 0
	total, err := LoadBatches(context.Background(), logger, tbl.Columns, in, 2,
		func(_ context.Context, _ []string, rows [][]any) (int64, error) {
			calls++
			if calls == 2 {
				return 0, diskFull
			}
			return int64(len(rows)), nil
		})

	require.ErrorIs(t, err, diskFull)
	assert.Equal(t, 2, calls)
	assert.EqualValues(t, 2, total)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "loader: copy failed", hook.LastEntry().Message)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestLoadBatchesRejectsBadArguments(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, []string, [][]any) (int64, error) { return 0, nil }
	_, err := LoadBatches(context.Background(), nil, nil, make(chan []any), 0, noop)
	assert.Error(t, err)
	_, err = LoadBatches(context.Background(), nil, nil, make(chan []any), 10, nil)
	assert.Error(t, err)
}

func TestLoadBatchesReturnsWhenCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The channel is never closed; only cancellation can end the loop.
	total, err := LoadBatches(ctx, nil, []string{"grade_id"}, make(chan []any), 10,
		func(context.Context, []string, [][]any) (int64, error) {
			t.Fatal("copy called after cancellation")
			return 0, nil
		})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, total)
}

func TestWriterFeedsLoaderInConfiguredBatches(t *testing.T) {
	t.Parallel()

	RegisterDDL("fake-batches", fakeDialect{})
	tbl, _ := factRows(7)
	repo := &fakeRepo{}
	logger, _ := test.NewNullLogger()
	w := &Writer{Repo: repo, Kind: "fake-batches", Schema: "mart", BatchSize: 3, Logger: logger}

	n, err := w.ReplaceTable(context.Background(), tbl)
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
	assert.Equal(t, []int{3, 3, 1}, repo.batches)
	assert.Equal(t, tbl.Rows, repo.copied["mart.loans_fact"])
}
