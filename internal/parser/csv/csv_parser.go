// Package csv decodes delimited text into a dataset. The whole input is read
// into memory; malformed rows are skipped and counted rather than aborting
// the parse.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"dwetl/internal/dataset"
	"dwetl/internal/parser"
	"dwetl/pkg/records"
)

// Options configures the parser. The zero value reads comma-separated input
// without a header and treats only empty cells as missing.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// MissingTokens are cell values read as missing in addition to "".
	MissingTokens []string

	// NormalizeHeaders folds headers to lowercase ASCII snake_case.
	NormalizeHeaders bool

	// Logger receives skipped-row notices. Nil discards them.
	Logger logrus.FieldLogger
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs but not concurrently.
type Parser struct {
	opt     Options
	missing map[string]struct{}
}

var _ parser.Parser = (*Parser)(nil)

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	missing := map[string]struct{}{"": {}}
	for _, t := range opt.MissingTokens {
		missing[t] = struct{}{}
	}
	return &Parser{opt: opt, missing: missing}
}

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// skipLogLimit caps per-row skip notices so a broken file cannot flood logs.
const skipLogLimit = 100

// ErrNoHeader is returned when a header is expected but the input is empty.
var ErrNoHeader = errors.New("csv: input has no header row")

// Parse reads every record from r.
func (p *Parser) Parse(r io.Reader) (*dataset.Dataset, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	var headers []string
	if p.opt.HasHeader {
		h, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, 0, ErrNoHeader
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read csv header: %w", err)
		}
		headers = p.headers(h)
	}

	var rows []records.Record
	skipped := 0
	for line := 1; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			p.skip(&skipped, line, err.Error())
			continue
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("read csv line %d: %w", line, err)
		}

		if headers == nil {
			headers = synthHeaders(len(row))
		}
		if len(row) != len(headers) {
			p.skip(&skipped, line, fmt.Sprintf("incorrect number of fields (expected %d, got %d)", len(headers), len(row)))
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[headers[i]] = p.cell(val)
		}
		rows = append(rows, rec)
	}

	return dataset.New(headers, rows), skipped, nil
}

func (p *Parser) skip(n *int, line int, reason string) {
	if p.opt.Logger != nil && *n < skipLogLimit {
		p.opt.Logger.WithField("line", line).Warnf("csv: skipping row: %s", reason)
	}
	*n++
}

// cell converts a raw field to a value, mapping missing tokens to nil.
func (p *Parser) cell(s string) any {
	if _, ok := p.missing[s]; ok {
		return nil
	}
	return s
}

// headers produces unique column keys: BOM stripped, optionally normalized,
// blanks named col_N and repeats suffixed _2, _3...
func (p *Parser) headers(h []string) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if p.opt.NormalizeHeaders {
			c = NormalizeFieldName(c)
		}
		if c == "" {
			c = fmt.Sprintf("col_%d", i)
		}
		res[i] = c
	}
	return dedupe(res)
}

func dedupe(cols []string) []string {
	used := make(map[string]bool, len(cols))
	out := make([]string, len(cols))
	for i, c := range cols {
		name := c
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", c, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func synthHeaders(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("col_%d", i)
	}
	return out
}

// NormalizeFieldName converts arbitrary header text into a lowercase ASCII
// identifier: accents stripped, runs of space/dash/dot folded to one
// underscore, other symbols dropped. An empty result becomes "col".
func NormalizeFieldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "col"
	}
	return name
}

// DecodeDelimiter turns a configured delimiter string into a rune. "\t" and
// "tab" mean a tab; empty means comma.
func DecodeDelimiter(s string) rune {
	switch s {
	case "":
		return ','
	case `\t`, "tab", "\t":
		return '\t'
	}
	return []rune(s)[0]
}
