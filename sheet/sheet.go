// Package sheet describes tabular sources read as header-keyed records.
package sheet

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when the spreadsheet or worksheet does not exist.
var ErrNotFound = errors.New("sheet: not found")

// Ref names a worksheet inside a spreadsheet, both by title.
type Ref struct {
	Spreadsheet string
	Worksheet   string
}

func (r Ref) String() string {
	return r.Spreadsheet + "/" + r.Worksheet
}

// Record is one data row keyed by the header row.
type Record map[string]string

// Get returns the value under column. Headers written with stray spaces
// are matched too, the exact header wins. Records built by FromRows hold
// at most one header per trimmed name, so the match is unambiguous.
func (r Record) Get(column string) string {
	if v, ok := r[column]; ok {
		return v
	}
	want := strings.TrimSpace(column)
	for k, v := range r {
		if strings.TrimSpace(k) == want {
			return v
		}
	}
	return ""
}

// Reader reads all records of a worksheet.
type Reader interface {
	Records(ctx context.Context, ref Ref) ([]Record, error)
}

// FromRows turns raw rows into records using the first row as headers.
// Short rows are padded with empty values and fully blank rows are skipped.
// Headers that only differ by surrounding spaces name one column, the
// leftmost one.
func FromRows(rows [][]string) []Record {
	if len(rows) == 0 {
		return nil
	}

	headers := columns(rows[0])
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec := make(Record, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}

// columns blanks out empty and duplicate headers.
func columns(header []string) []string {
	seen := make(map[string]struct{}, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		key := strings.TrimSpace(h)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out[i] = h
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
