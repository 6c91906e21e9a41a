package export

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwetl/internal/dataset"
	"dwetl/pkg/records"
)

func processed() *dataset.Dataset {
	dec := time.Date(2015, time.December, 1, 0, 0, 0, 0, time.UTC)
	return dataset.New(
		[]string{"loan_amnt", "int_rate", "issue_d", "purpose", "joint"},
		[]records.Record{
			{"loan_amnt": int32(1000), "int_rate": 0.105, "issue_d": dec, "purpose": "car, used", "joint": false},
			{"loan_amnt": int64(5_000_000_000), "int_rate": math.NaN(), "issue_d": nil, "purpose": "other", "joint": true},
		})
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, processed()))
	assert.Equal(t,
		"loan_amnt,int_rate,issue_d,purpose,joint\n"+
			"1000,0.105,2015-12-01,\"car, used\",false\n"+
			"5000000000,,,other,true\n",
		buf.String())
}

func TestWriteJSONKeepsColumnOrder(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, processed()))
	assert.Contains(t, buf.String(), `{"loan_amnt":1000,"int_rate":0.105,"issue_d":"2015-12-01T00:00:00Z","purpose":"car, used","joint":false}`)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Nil(t, rows[1]["int_rate"])
	assert.Nil(t, rows[1]["issue_d"])
	assert.Equal(t, "other", rows[1]["purpose"])
}

func TestWriteEmptyDataset(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, dataset.Empty([]string{"a"})))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, FormatCSV, dataset.Empty([]string{"a", "b"})))
	assert.Equal(t, "a,b\n", buf.String())
}

func TestWriteUnknownFormat(t *testing.T) {
	t.Parallel()

	err := Write(&bytes.Buffer{}, "parquet", processed())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "parquet"`)
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "loans.json")
	logger, hook := test.NewNullLogger()

	sum, err := WriteFile(path, FormatJSON, processed(), logger)
	require.NoError(t, err)
	assert.Equal(t, path, sum.Path)
	assert.Equal(t, FormatJSON, sum.Format)
	assert.Equal(t, 2, sum.Rows)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, fi.Size(), sum.Bytes)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "export: data written", hook.LastEntry().Message)
	assert.Equal(t, 2, hook.LastEntry().Data["rows"])

	_, err = WriteFile(path, FormatCSV, nil, nil)
	assert.Error(t, err)
	_, err = WriteFile(filepath.Join(t.TempDir(), "missing", "x.csv"), FormatCSV, processed(), nil)
	assert.Error(t, err)
}
