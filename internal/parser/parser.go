// Package parser defines how raw input bytes become a dataset.
package parser

import (
	"io"

	"dwetl/internal/dataset"
)

// Parser decodes r into a dataset and reports how many malformed rows were
// skipped.
type Parser interface {
	Parse(r io.Reader) (*dataset.Dataset, int, error)
}
