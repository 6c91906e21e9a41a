// Package config defines the configuration model for a dwetl run and loads it
// from YAML/JSON files with DWETL_* environment overrides.
//
// Example (trimmed):
//
//	job: loans
//	source: { kind: file, file: { path: data/loans.csv } }
//	cleaning: { missing_threshold: 30, max_null_count: 26 }
//	star:
//	  fact_table: loans_fact
//	  dimensions:
//	    - { column: home_ownership }
//	    - { column: issue_d, date: true }
//	storage: { kind: mssql, db: { host: localhost, database: dw, user: sa } }
package config

import (
	"slices"

	"dwetl/internal/clean"
	"dwetl/internal/infer"
	"dwetl/internal/starschema"
	"dwetl/internal/transformer/builtin"
)

// Pipeline is the top-level configuration object.
type Pipeline struct {
	// Job labels logs and metrics for this run.
	Job string `json:"job" yaml:"job" mapstructure:"job"`

	Source    Source    `json:"source" yaml:"source" mapstructure:"source"`
	Parser    Parser    `json:"parser" yaml:"parser" mapstructure:"parser"`
	Inference Inference `json:"inference" yaml:"inference" mapstructure:"inference"`
	Cleaning  Cleaning  `json:"cleaning" yaml:"cleaning" mapstructure:"cleaning"`
	Transform Transform `json:"transform" yaml:"transform" mapstructure:"transform"`
	Star      Star      `json:"star" yaml:"star" mapstructure:"star"`
	Quality   Quality   `json:"quality" yaml:"quality" mapstructure:"quality"`
	Storage   Storage   `json:"storage" yaml:"storage" mapstructure:"storage"`
	Metrics   Metrics   `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
	Logging   Logging   `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// Source identifies the input. Current kind: "file".
type Source struct {
	Kind string     `json:"kind" yaml:"kind" mapstructure:"kind"`
	File SourceFile `json:"file" yaml:"file" mapstructure:"file"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// Parser configures delimited-text decoding. Current kind: "csv".
type Parser struct {
	Kind      string `json:"kind" yaml:"kind" mapstructure:"kind"`
	HasHeader bool   `json:"has_header" yaml:"has_header" mapstructure:"has_header"`
	// Delimiter is a single character; "\t" is accepted for tabs.
	Delimiter string `json:"delimiter" yaml:"delimiter" mapstructure:"delimiter"`
	TrimSpace bool   `json:"trim_space" yaml:"trim_space" mapstructure:"trim_space"`
	// MissingTokens are cell values read as missing.
	MissingTokens []string `json:"missing_tokens" yaml:"missing_tokens" mapstructure:"missing_tokens"`
	// NormalizeHeaders folds headers to lowercase ASCII snake_case.
	NormalizeHeaders bool `json:"normalize_headers" yaml:"normalize_headers" mapstructure:"normalize_headers"`
}

// Inference tunes column type inference.
type Inference struct {
	SampleSize           int     `json:"sample_size" yaml:"sample_size" mapstructure:"sample_size"`
	CategoricalMaxRatio  float64 `json:"categorical_max_ratio" yaml:"categorical_max_ratio" mapstructure:"categorical_max_ratio"`
	CategoricalMinValues int     `json:"categorical_min_values" yaml:"categorical_min_values" mapstructure:"categorical_min_values"`
}

// Cleaning holds the two missing-value filter ceilings.
type Cleaning struct {
	// MissingThreshold is a percentage in [0,100].
	MissingThreshold float64 `json:"missing_threshold" yaml:"missing_threshold" mapstructure:"missing_threshold"`
	// MaxNullCount is an absolute per-column null ceiling.
	MaxNullCount int `json:"max_null_count" yaml:"max_null_count" mapstructure:"max_null_count"`
}

// Transform configures the value rules.
type Transform struct {
	PercentColumns   []string `json:"percent_columns" yaml:"percent_columns" mapstructure:"percent_columns"`
	MonthYearColumns []string `json:"month_year_columns" yaml:"month_year_columns" mapstructure:"month_year_columns"`
	DeriveDateParts  bool     `json:"derive_date_parts" yaml:"derive_date_parts" mapstructure:"derive_date_parts"`
}

// Dimension promotes one column to a dimension table.
type Dimension struct {
	Column string `json:"column" yaml:"column" mapstructure:"column"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Date   bool   `json:"date,omitempty" yaml:"date,omitempty" mapstructure:"date"`
}

// Star describes the star schema to build.
type Star struct {
	FactTable  string      `json:"fact_table" yaml:"fact_table" mapstructure:"fact_table"`
	Measures   []string    `json:"measures" yaml:"measures" mapstructure:"measures"`
	Dimensions []Dimension `json:"dimensions" yaml:"dimensions" mapstructure:"dimensions"`
}

// Thresholds are per-metric quality pass marks in [0,1].
type Thresholds struct {
	Completeness float64 `json:"completeness" yaml:"completeness" mapstructure:"completeness"`
	Uniqueness   float64 `json:"uniqueness" yaml:"uniqueness" mapstructure:"uniqueness"`
	Consistency  float64 `json:"consistency" yaml:"consistency" mapstructure:"consistency"`
	Validity     float64 `json:"validity" yaml:"validity" mapstructure:"validity"`
}

// Quality configures the scorer.
type Quality struct {
	Thresholds            Thresholds `json:"thresholds" yaml:"thresholds" mapstructure:"thresholds"`
	BlendColumnUniqueness bool       `json:"blend_column_uniqueness" yaml:"blend_column_uniqueness" mapstructure:"blend_column_uniqueness"`
	// FailBelow fails the run when the overall score is lower. 0 disables.
	FailBelow float64 `json:"fail_below" yaml:"fail_below" mapstructure:"fail_below"`
}

// Storage selects the sink. Kinds: postgres, mssql, mysql, sqlite.
type Storage struct {
	Kind string   `json:"kind" yaml:"kind" mapstructure:"kind"`
	DB   DBConfig `json:"db" yaml:"db" mapstructure:"db"`
	// BatchSize is the number of rows per bulk copy; 0 uses the loader default.
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size"`
}

// DBConfig configures the sink connection. When DSN is empty the backend
// builds one from the discrete fields.
type DBConfig struct {
	DSN      string            `json:"dsn" yaml:"dsn" mapstructure:"dsn"`
	Host     string            `json:"host" yaml:"host" mapstructure:"host"`
	Port     int               `json:"port" yaml:"port" mapstructure:"port"`
	Database string            `json:"database" yaml:"database" mapstructure:"database"`
	User     string            `json:"user" yaml:"user" mapstructure:"user"`
	Password string            `json:"password" yaml:"password" mapstructure:"password"`
	Schema   string            `json:"schema" yaml:"schema" mapstructure:"schema"`
	Params   map[string]string `json:"params" yaml:"params" mapstructure:"params"`
}

// Metrics selects the metrics backend: "none", "pushgateway" or "datadog".
type Metrics struct {
	Backend          string   `json:"backend" yaml:"backend" mapstructure:"backend"`
	PushgatewayURL   string   `json:"pushgateway_url" yaml:"pushgateway_url" mapstructure:"pushgateway_url"`
	DatadogAddr      string   `json:"datadog_addr" yaml:"datadog_addr" mapstructure:"datadog_addr"`
	DatadogNamespace string   `json:"datadog_namespace" yaml:"datadog_namespace" mapstructure:"datadog_namespace"`
	DatadogTags      []string `json:"datadog_tags" yaml:"datadog_tags" mapstructure:"datadog_tags"`
}

// Logging configures logrus.
type Logging struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Default returns the stock configuration for the loan dataset. Column lists
// and thresholds come from the packages that consume them.
func Default() Pipeline {
	inf := infer.DefaultOptions()
	rules := builtin.DefaultOptions()

	dims := make([]Dimension, len(starschema.DefaultDimensions))
	for i, d := range starschema.DefaultDimensions {
		dims[i] = Dimension{Column: d.Column, Name: d.Name, Date: d.Date}
	}

	return Pipeline{
		Job:    "dwetl",
		Source: Source{Kind: "file"},
		Parser: Parser{
			Kind:          "csv",
			HasHeader:     true,
			Delimiter:     ",",
			TrimSpace:     true,
			MissingTokens: []string{"", "NA", "N/A", "NaN", "null", "NULL", "None"},
		},
		Inference: Inference{
			SampleSize:           inf.SampleSize,
			CategoricalMaxRatio:  inf.CategoricalMaxRatio,
			CategoricalMinValues: inf.CategoricalMinValues,
		},
		Cleaning: Cleaning{MissingThreshold: clean.DefaultMissingThreshold, MaxNullCount: clean.DefaultMaxNull},
		Transform: Transform{
			PercentColumns:   rules.PercentColumns,
			MonthYearColumns: rules.MonthYearColumns,
		},
		Star: Star{
			FactTable:  starschema.DefaultFactName,
			Measures:   slices.Clone(starschema.DefaultMeasures),
			Dimensions: dims,
		},
		Quality: Quality{
			Thresholds: Thresholds{Completeness: 0.85, Uniqueness: 0.90, Consistency: 0.90, Validity: 0.85},
		},
		Storage: Storage{Kind: "sqlite", DB: DBConfig{Database: "dwetl.db"}, BatchSize: 5000},
		Metrics: Metrics{Backend: "none"},
		Logging: Logging{Level: "info", Format: "text"},
	}
}

// Redacted returns a copy with credentials masked, for display.
func (p Pipeline) Redacted() Pipeline {
	if p.Storage.DB.Password != "" {
		p.Storage.DB.Password = "******"
	}
	if p.Storage.DB.DSN != "" {
		p.Storage.DB.DSN = redactDSN(p.Storage.DB.DSN)
	}
	return p
}
