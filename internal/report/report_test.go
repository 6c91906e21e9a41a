package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"dwetl/internal/quality"
)

func sampleDoc() Document {
	return Document{
		Source: "loans.csv",
		Report: quality.Report{
			OverallScore: 82.5,
			Grade:        "B",
			Passed:       false,
			Metrics: []quality.Metric{
				{
					Name: quality.Completeness, Value: 0.8, Threshold: 0.85,
					Details: map[string]any{
						"column_completeness": map[string]float64{
							"emp_length": 0.5,
							"loan_amnt":  1,
							"int_rate":   0.9,
							"title":      0.7,
							"term":       0.9,
						},
					},
				},
				{
					Name: quality.Uniqueness, Value: 0.99, Threshold: 0.9, Passed: true,
					Details: map[string]any{"duplicate_rows": 1234},
				},
			},
			Recommendations: []string{"Completeness is 80.0%; impute or drop sparse columns."},
			Warnings:        []string{"loans_fact.grade_id: 2 unresolved"},
			Metadata:        map[string]any{"row_count": 1234567, "column_count": 5},
		},
	}
}

func TestText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, sampleDoc()))
	out := buf.String()

	assert.Contains(t, out, "Overall score: 82.50/100")
	assert.Contains(t, out, "Grade:         B")
	assert.Contains(t, out, "Status:        FAIL")
	assert.Contains(t, out, "Rows:          1,234,567")
	assert.Contains(t, out, "Duplicate rows: 1,234")
	assert.Contains(t, out, "WARNINGS")

	// Three worst columns in ascending order; ties broken by name.
	worst := out[strings.Index(out, "LEAST COMPLETE COLUMNS"):]
	iEmp := strings.Index(worst, "emp_length")
	iTitle := strings.Index(worst, "title")
	iRate := strings.Index(worst, "int_rate")
	require.True(t, iEmp > 0 && iTitle > 0 && iRate > 0, worst)
	assert.Less(t, iEmp, iTitle)
	assert.Less(t, iTitle, iRate)
	assert.NotContains(t, worst, "term ")
	assert.NotContains(t, worst, "loan_amnt")
}

func TestTextWithoutDetails(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, Document{Report: quality.Report{Grade: "F"}}))
	out := buf.String()
	assert.Contains(t, out, "Grade:         F")
	assert.NotContains(t, out, "LEAST COMPLETE")
	assert.NotContains(t, out, "RECOMMENDATIONS")
}

func TestJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "JSON", sampleDoc()))

	var got struct {
		Source string `json:"source"`
		Report struct {
			OverallScore float64 `json:"overall_score"`
			Grade        string  `json:"grade"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "loans.csv", got.Source)
	assert.Equal(t, 82.5, got.Report.OverallScore)
	assert.Equal(t, "B", got.Report.Grade)
}

func TestYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sampleDoc()))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	rep, ok := got["report"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "B", rep["grade"])
}

func TestUnknownFormat(t *testing.T) {
	t.Parallel()

	err := Write(&bytes.Buffer{}, "html", sampleDoc())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "html"`)
}
