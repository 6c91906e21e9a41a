package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into
// the config, e.g. "star.dimensions[1].column".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of p. It never mutates p;
// callers decide whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateInference(p.Inference)...)
	issues = append(issues, validateCleaning(p.Cleaning)...)
	issues = append(issues, validateStar(p.Star)...)
	issues = append(issues, validateQuality(p.Quality)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	issues = append(issues, validateLogging(p.Logging)...)
	return issues
}

func validateSource(s Source) []Issue {
	if strings.TrimSpace(s.Kind) == "" {
		return []Issue{{Severity: SeverityError, Path: "source.kind", Message: "source.kind must not be empty"}}
	}
	if s.Kind != "file" {
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q; ensure a matching implementation exists", s.Kind),
		}}
	}
	return nil
}

func validateParser(p Parser) []Issue {
	var issues []Issue
	if p.Kind != "" && p.Kind != "csv" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unsupported parser kind %q; only csv is available", p.Kind),
		})
	}
	if d := p.Delimiter; d != "" && d != `\t` {
		if utf8.RuneCountInString(d) != 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parser.delimiter",
				Message:  fmt.Sprintf("delimiter %q must be a single character", d),
			})
		} else if r, _ := utf8.DecodeRuneInString(d); r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parser.delimiter",
				Message:  fmt.Sprintf("delimiter %q cannot separate fields (quote, line break or invalid UTF-8)", d),
			})
		}
	}
	if !p.HasHeader {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "parser.has_header",
			Message:  "without a header columns are named col_0..col_N; star and transform column names must match",
		})
	}
	return issues
}

func validateInference(in Inference) []Issue {
	var issues []Issue
	if in.SampleSize < 0 {
		issues = append(issues, Issue{Severity: SeverityError, Path: "inference.sample_size", Message: "sample_size must be >= 0"})
	}
	if in.CategoricalMaxRatio < 0 || in.CategoricalMaxRatio > 1 {
		issues = append(issues, Issue{Severity: SeverityError, Path: "inference.categorical_max_ratio", Message: "categorical_max_ratio must be in [0,1]"})
	}
	return issues
}

func validateCleaning(c Cleaning) []Issue {
	var issues []Issue
	if c.MissingThreshold < 0 || c.MissingThreshold > 100 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "cleaning.missing_threshold",
			Message:  fmt.Sprintf("missing_threshold %.2f must be a percentage in [0,100]", c.MissingThreshold),
		})
	}
	if c.MaxNullCount < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "cleaning.max_null_count",
			Message:  "max_null_count must be >= 0",
		})
	}
	return issues
}

func validateStar(s Star) []Issue {
	var issues []Issue
	if strings.TrimSpace(s.FactTable) == "" {
		issues = append(issues, Issue{Severity: SeverityError, Path: "star.fact_table", Message: "fact_table must not be empty"})
	}
	if len(s.Measures) == 0 {
		issues = append(issues, Issue{Severity: SeverityWarning, Path: "star.measures", Message: "no measures configured; the fact table will hold only foreign keys"})
	}
	if len(s.Dimensions) == 0 {
		issues = append(issues, Issue{Severity: SeverityWarning, Path: "star.dimensions", Message: "no dimensions configured"})
	}

	names := map[string]int{}
	for i, d := range s.Dimensions {
		path := fmt.Sprintf("star.dimensions[%d]", i)
		if strings.TrimSpace(d.Column) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".column", Message: "dimension column must not be empty"})
			continue
		}
		name := d.Name
		if name == "" {
			name = d.Column
		}
		if prev, dup := names[name]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".name",
				Message:  fmt.Sprintf("dimension %q already defined at star.dimensions[%d]", name, prev),
			})
			continue
		}
		names[name] = i
		if name+"_dim" == s.FactTable {
			issues = append(issues, Issue{Severity: SeverityError, Path: path + ".name", Message: "dimension table name collides with fact_table"})
		}
	}
	return issues
}

func validateQuality(q Quality) []Issue {
	var issues []Issue
	for name, v := range map[string]float64{
		"completeness": q.Thresholds.Completeness,
		"uniqueness":   q.Thresholds.Uniqueness,
		"consistency":  q.Thresholds.Consistency,
		"validity":     q.Thresholds.Validity,
	} {
		if v < 0 || v > 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "quality.thresholds." + name,
				Message:  fmt.Sprintf("threshold %.3f must be in [0,1]", v),
			})
		}
	}
	if q.FailBelow < 0 || q.FailBelow > 100 {
		issues = append(issues, Issue{Severity: SeverityError, Path: "quality.fail_below", Message: "fail_below must be a score in [0,100]"})
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue
	if strings.TrimSpace(s.Kind) == "" {
		return []Issue{{Severity: SeverityError, Path: "storage.kind", Message: "storage.kind must not be empty"}}
	}

	known := map[string]struct{}{"postgres": {}, "mssql": {}, "mysql": {}, "sqlite": {}}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
		return issues
	}

	if s.BatchSize < 0 {
		issues = append(issues, Issue{Severity: SeverityError, Path: "storage.batch_size", Message: "batch_size must be >= 0"})
	}

	db := s.DB
	if strings.TrimSpace(db.DSN) != "" {
		return issues
	}
	if s.Kind == "sqlite" {
		if strings.TrimSpace(db.Database) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: "storage.db.database", Message: "sqlite requires storage.db.dsn or storage.db.database (file path)"})
		}
		return issues
	}
	if strings.TrimSpace(db.Host) == "" {
		issues = append(issues, Issue{Severity: SeverityError, Path: "storage.db.host", Message: "host is required when dsn is empty"})
	}
	if strings.TrimSpace(db.Database) == "" {
		issues = append(issues, Issue{Severity: SeverityError, Path: "storage.db.database", Message: "database is required when dsn is empty"})
	}
	if db.Port < 0 || db.Port > 65535 {
		issues = append(issues, Issue{Severity: SeverityError, Path: "storage.db.port", Message: "port must be in [0,65535]"})
	}
	if db.User == "" {
		issues = append(issues, Issue{Severity: SeverityWarning, Path: "storage.db.user", Message: "no user configured; relying on driver defaults"})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
		return nil
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			return []Issue{{Severity: SeverityError, Path: "metrics.pushgateway_url", Message: "pushgateway backend requires pushgateway_url"}}
		}
		return nil
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			return []Issue{{Severity: SeverityError, Path: "metrics.datadog_addr", Message: "datadog backend requires datadog_addr"}}
		}
		return nil
	default:
		return []Issue{{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q (want none, pushgateway or datadog)", m.Backend),
		}}
	}
}

func validateLogging(l Logging) []Issue {
	var issues []Issue
	if l.Level != "" {
		if _, err := logrus.ParseLevel(l.Level); err != nil {
			issues = append(issues, Issue{Severity: SeverityError, Path: "logging.level", Message: err.Error()})
		}
	}
	switch l.Format {
	case "", "text", "json":
	default:
		issues = append(issues, Issue{Severity: SeverityError, Path: "logging.format", Message: fmt.Sprintf("unknown log format %q (want text or json)", l.Format)})
	}
	return issues
}
