package program

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ErrUnreadable is returned when the input cannot be read as CSV text.
var ErrUnreadable = errors.New("file is not readable as CSV text")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is one positional CSV record.
type Row []string

// Cell returns the cell at column i, or "" past the end of the row.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Blank reports whether every cell is empty after trimming.
func (r Row) Blank() bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ReadRows reads the whole input and returns positional rows. Every row is
// padded with empty cells to the width of the widest row. An empty input
// yields no rows and no error.
func ReadRows(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return parseRows(data)
}

func parseRows(data []byte) ([]Row, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: invalid UTF-8", ErrUnreadable)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	width := 0
	for _, rec := range records {
		width = max(width, len(rec))
	}

	rows := make([]Row, len(records))
	for i, rec := range records {
		row := make(Row, width)
		copy(row, rec)
		rows[i] = row
	}
	return rows, nil
}

// Headered treats the first non-blank row as a header and maps every later
// non-blank row onto it by column position. Header names are trimmed; when a
// name repeats, the first column with that name wins.
func Headered(rows []Row) []map[string]string {
	start := -1
	for i, r := range rows {
		if !r.Blank() {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	header := rows[start]
	cols := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		cols[i] = name
	}

	var out []map[string]string
	for _, r := range rows[start+1:] {
		if r.Blank() {
			continue
		}
		m := make(map[string]string, len(cols))
		for i, name := range cols {
			if name == "" {
				continue
			}
			m[name] = r.Cell(i)
		}
		out = append(out, m)
	}
	return out
}
