package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures.
type Kind string

const (
	// KindIO means the input could not be read; nothing after load runs.
	KindIO Kind = "io"
	// KindParse covers values or rows that could not be decoded. Never fatal:
	// they surface as stage warnings.
	KindParse Kind = "parse"
	// KindIntegrity is a fact foreign key with no dimension member. Reported
	// as a quality warning.
	KindIntegrity Kind = "integrity"
	// KindQuality means the overall score fell below quality.fail_below.
	KindQuality Kind = "quality"
	// KindSink is a failed write to the target database.
	KindSink Kind = "sink"
	// KindSequencing means a stage ran without its prerequisite.
	KindSequencing Kind = "sequencing"
	// KindConfig means a stage's settings cannot be applied to the data: a
	// threshold out of range or colliding column names.
	KindConfig Kind = "config"
)

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrIO         = errors.New("pipeline: input unreadable")
	ErrParse      = errors.New("pipeline: parse failure")
	ErrIntegrity  = errors.New("pipeline: referential integrity violation")
	ErrQuality    = errors.New("pipeline: quality below threshold")
	ErrSink       = errors.New("pipeline: sink write failed")
	ErrSequencing = errors.New("pipeline: stage prerequisite missing")
	ErrConfig     = errors.New("pipeline: stage settings invalid")
)

var sentinels = map[Kind]error{
	KindIO:         ErrIO,
	KindParse:      ErrParse,
	KindIntegrity:  ErrIntegrity,
	KindQuality:    ErrQuality,
	KindSink:       ErrSink,
	KindSequencing: ErrSequencing,
	KindConfig:     ErrConfig,
}

// Error is a classified stage failure.
type Error struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Stage, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

func newError(kind Kind, stage string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Err: err}
}

func sequencingError(stage, missing string) *Error {
	return newError(KindSequencing, stage, fmt.Errorf("requires %s output", missing))
}
