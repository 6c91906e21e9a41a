// Package datasource defines where pipeline input bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens the raw input for a run.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name identifies the input in logs and results.
	Name() string
}
