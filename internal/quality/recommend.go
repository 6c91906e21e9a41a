package quality

import (
	"fmt"

	"dwetl/internal/dataset"
)

const (
	smallDatasetRows  = 100
	highMissingRatio  = 0.20
	acceptableMessage = "Data quality is acceptable"
)

var advice = map[string]string{
	Completeness: "Consider data imputation or removing incomplete records",
	Uniqueness:   "Remove duplicate records or investigate data collection process",
	Consistency:  "Standardize data formats and validate input rules",
	Validity:     "Validate data formats and remove invalid entries",
}

func (s *Scorer) recommend(ds *dataset.Dataset, metrics []Metric) []string {
	var out []string
	for _, m := range metrics {
		if m.Passed {
			continue
		}
		out = append(out, fmt.Sprintf("%s below threshold (%.1f%% < %.1f%%): %s",
			title(m.Name), m.Value*100, m.Threshold*100, advice[m.Name]))
	}
	if ds.Len() < smallDatasetRows {
		out = append(out, "Small dataset detected. Consider collecting more data for reliable analysis")
	}
	if cells := ds.Cells(); cells > 0 && float64(ds.TotalMissing())/float64(cells) > highMissingRatio {
		out = append(out, "High percentage of missing values. Consider data collection improvements")
	}
	if len(out) == 0 {
		out = append(out, acceptableMessage)
	}
	return out
}

func title(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
