// Package export writes chatsynth datasets to disk: delimited tabular files
// and a JSON summary.
package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"chatsynth/internal/dataset"
	"chatsynth/internal/logging"
)

// Delimiter separates fields within a row.
const Delimiter = ','

// EnsureDirs creates each directory and its parents. Existing directories are
// not an error.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logging.ExportDebug("Ensured directory: %s", dir)
	}
	return nil
}

// WriteTabular writes records to path as delimited text. The header row lists
// the first record's field names. Strings (header names included) are always
// quoted with embedded quotes doubled, booleans render as true/false, and
// every other value uses its natural string form. An empty record list
// produces an empty file. The parent directory is created when missing.
func WriteTabular(path string, records []dataset.Record) error {
	timer := logging.StartTimer(logging.CategoryExport, "WriteTabular")
	defer timer.Stop()

	if err := EnsureDirs(filepath.Dir(path)); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	if len(records) > 0 {
		header := records[0].Names()
		cells := make([]string, len(header))
		for i, name := range header {
			cells[i] = quote(name)
		}
		writeRow(w, cells)

		for _, rec := range records {
			cells = cells[:0]
			for _, field := range rec {
				cells = append(cells, FormatValue(field.Value))
			}
			writeRow(w, cells)
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	logging.Export("Wrote %d rows to %s", len(records), path)
	return nil
}

// FormatValue renders one cell.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return quote(val)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return quote(val.Format(dataset.TimeLayout))
	case fmt.Stringer:
		return quote(val.String())
	default:
		return fmt.Sprint(val)
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func writeRow(w *bufio.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			w.WriteByte(Delimiter)
		}
		w.WriteString(c)
	}
	w.WriteByte('\n')
}
