// Package sheets turns survey workbooks into ordered tables of named fields.
package sheets

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrMalformed         = errors.New("malformed table")
	ErrUnsupportedFormat = errors.New("unsupported workbook format")
)

type columns struct {
	names []string
	pos   map[string]int
}

// Record is one data row. Empty cells read as "" and are treated as null.
type Record struct {
	cols   *columns
	values []string
}

// Get returns the cell for col and whether the column exists at all.
func (r Record) Get(col string) (string, bool) {
	if r.cols == nil {
		return "", false
	}
	i, ok := r.cols.pos[col]
	if !ok {
		return "", false
	}
	return r.values[i], true
}

// Value is Get without the presence flag.
func (r Record) Value(col string) string {
	v, _ := r.Get(col)
	return v
}

// Set overwrites an existing column's cell. Unknown columns are ignored.
func (r Record) Set(col, value string) bool {
	if r.cols == nil {
		return false
	}
	i, ok := r.cols.pos[col]
	if !ok {
		return false
	}
	r.values[i] = value
	return true
}

// Map copies the record into a column -> value map.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	if r.cols == nil {
		return out
	}
	for i, name := range r.cols.names {
		out[name] = r.values[i]
	}
	return out
}

// Table is a rectangular sheet with a header row, column order as declared.
type Table struct {
	Sheet string
	cols  *columns
	rows  []Record
}

// NewTable validates the header and pads ragged rows. Fully blank rows are dropped.
func NewTable(sheet string, header []string, rows [][]string) (*Table, error) {
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
	}
	for len(names) > 0 && names[len(names)-1] == "" {
		names = names[:len(names)-1]
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no header row", ErrMalformed, sheet)
	}
	cols := &columns{names: names, pos: make(map[string]int, len(names))}
	for i, n := range names {
		if n == "" {
			return nil, fmt.Errorf("%w: sheet %q has an empty header in column %d", ErrMalformed, sheet, i+1)
		}
		if _, dup := cols.pos[n]; dup {
			return nil, fmt.Errorf("%w: sheet %q has duplicate column %q", ErrMalformed, sheet, n)
		}
		cols.pos[n] = i
	}

	t := &Table{Sheet: sheet, cols: cols, rows: make([]Record, 0, len(rows))}
	for ri, raw := range rows {
		if blankRow(raw) {
			continue
		}
		vals := make([]string, len(names))
		for ci, cell := range raw {
			if ci >= len(names) {
				if strings.TrimSpace(cell) != "" {
					return nil, fmt.Errorf("%w: sheet %q row %d has data beyond the header", ErrMalformed, sheet, ri+2)
				}
				continue
			}
			vals[ci] = strings.TrimSpace(cell)
		}
		t.rows = append(t.rows, Record{cols: cols, values: vals})
	}
	return t, nil
}

func blankRow(raw []string) bool {
	for _, c := range raw {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (t *Table) Columns() []string {
	out := make([]string, len(t.cols.names))
	copy(out, t.cols.names)
	return out
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.cols.pos[name]
	return ok
}

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) Records() []Record { return t.rows }

// Require fails with ErrMalformed when any of names is missing from the header.
func (t *Table) Require(names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: sheet %q missing columns %s", ErrMalformed, t.Sheet, strings.Join(missing, ", "))
	}
	return nil
}
