// Package tabular reads raw CSV files into header-keyed records for the
// dataset normalizers.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrMissingColumn indicates a required column absent from a source file.
var ErrMissingColumn = errors.New("missing required column")

// Record maps a column name to its raw cell value.
type Record map[string]string

// File is one parsed CSV file.
type File struct {
	Columns []string
	Rows    []Record
	// Skipped counts malformed rows dropped during a tolerant read.
	Skipped int
}

// Options controls how a CSV file is read.
type Options struct {
	// Comma is the field delimiter; ',' when zero.
	Comma rune
	// SkipBadRows drops rows whose field count does not match the header
	// instead of failing the parse.
	SkipBadRows bool
	// TrimQuotes strips stray quote characters and whitespace from header
	// names.
	TrimQuotes bool
}

// Read parses the CSV file at path.
func Read(path string, opts Options) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ','

	if opts.Comma != 0 {
		r.Comma = opts.Comma
	}

	if opts.SkipBadRows {
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
	}

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		if opts.TrimQuotes {
			h = strings.TrimSpace(strings.ReplaceAll(h, `"`, ""))
		}

		columns[i] = h
	}

	out := &File{Columns: columns}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			if opts.SkipBadRows {
				out.Skipped++

				continue
			}

			return nil, fmt.Errorf("failed to read row of %s: %w", path, err)
		}

		if len(record) != len(columns) {
			if opts.SkipBadRows {
				out.Skipped++

				continue
			}

			return nil, fmt.Errorf("row has %d fields, header has %d in %s", len(record), len(columns), path)
		}

		row := make(Record, len(columns))
		for i, col := range columns {
			row[col] = record[i]
		}

		out.Rows = append(out.Rows, row)
	}

	return out, nil
}

// RequireColumns returns ErrMissingColumn naming every required column the
// file lacks.
func (f *File) RequireColumns(required []string) error {
	have := make(map[string]bool, len(f.Columns))
	for _, c := range f.Columns {
		have[c] = true
	}

	var missing []string

	for _, c := range required {
		if !have[c] {
			missing = append(missing, c)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return nil
}
