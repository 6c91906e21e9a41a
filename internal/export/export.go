// Package export writes a processed dataset to a flat file so it can be
// inspected or loaded elsewhere without a database.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"dwetl/internal/dataset"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Formats lists the supported formats.
func Formats() []string { return []string{FormatCSV, FormatJSON} }

// Summary describes a written export.
type Summary struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Rows   int    `json:"rows"`
	Bytes  int64  `json:"bytes"`
}

// Write renders ds to w. CSV carries a header row and leaves missing cells
// empty. JSON is an array of objects with keys in column order and null for
// missing cells.
func Write(w io.Writer, format string, ds *dataset.Dataset) error {
	switch format {
	case "", FormatCSV:
		return writeCSV(w, ds)
	case FormatJSON:
		return writeJSON(w, ds)
	default:
		return fmt.Errorf("export: unknown format %q (want csv or json)", format)
	}
}

// WriteFile writes ds to path, replacing any existing file.
func WriteFile(path, format string, ds *dataset.Dataset, logger logrus.FieldLogger) (Summary, error) {
	if ds == nil {
		return Summary{}, fmt.Errorf("export: no processed data")
	}
	f, err := os.Create(path)
	if err != nil {
		return Summary{}, fmt.Errorf("export: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := Write(bw, format, ds); err != nil {
		f.Close()
		return Summary{}, err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return Summary{}, fmt.Errorf("export: flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return Summary{}, fmt.Errorf("export: close %s: %w", path, err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return Summary{}, fmt.Errorf("export: %w", err)
	}
	if format == "" {
		format = FormatCSV
	}
	sum := Summary{Path: path, Format: format, Rows: ds.Len(), Bytes: fi.Size()}
	if logger != nil {
		logger.WithFields(logrus.Fields{
			"path":   path,
			"format": format,
			"rows":   sum.Rows,
			"size":   humanize.Bytes(uint64(sum.Bytes)),
		}).Info("export: data written")
	}
	return sum, nil
}

func writeCSV(w io.Writer, ds *dataset.Dataset) error {
	cw := csv.NewWriter(w)
	cols := ds.Columns()
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	rec := make([]string, len(cols))
	for _, row := range ds.Rows() {
		for i, c := range cols {
			rec[i] = formatCell(row[c])
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatCell renders one value for CSV. Dates at midnight UTC print without a
// clock so month-year values round-trip through inference.
func formatCell(v any) string {
	if dataset.IsMissing(v) {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		if t.Equal(t.Truncate(24 * time.Hour)) {
			return t.Format(time.DateOnly)
		}
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

func writeJSON(w io.Writer, ds *dataset.Dataset) error {
	cols := ds.Columns()
	keys := make([][]byte, len(cols))
	for i, c := range cols {
		k, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		keys[i] = k
	}

	buf := []byte{'['}
	for r, row := range ds.Rows() {
		if r > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, "\n  {"...)
		for i, c := range cols {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = append(buf, keys[i]...)
			buf = append(buf, ':')
			v := row[c]
			if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
				v = nil
			}
			b, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("export: column %s: %w", c, err)
			}
			buf = append(buf, b...)
		}
		buf = append(buf, '}')
		if len(buf) > 64<<10 {
			if _, err := w.Write(buf); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			buf = buf[:0]
		}
	}
	if ds.Len() > 0 {
		buf = append(buf, '\n')
	}
	buf = append(buf, "]\n"...)
	_, err := w.Write(buf)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
