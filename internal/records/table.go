// Package records holds the flat tables the dashboard persists and the
// normalizer that coerces them into their canonical column layout.
package records

import "slices"

// Table is an ordered set of string rows under a header. Insertion order is
// append order. Cells are kept as text so values survive any text-based
// medium unchanged.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// NewTable returns an empty table with a private copy of columns.
func NewTable(name string, columns []string) Table {
	return Table{Name: name, Columns: slices.Clone(columns), Rows: [][]string{}}
}

func (t Table) Len() int { return len(t.Rows) }

// Index returns the position of column, or -1.
func (t Table) Index(column string) int {
	return slices.Index(t.Columns, column)
}

// Cell returns the value at row/column, blank when either is out of range.
func (t Table) Cell(row int, column string) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	i := t.Index(column)
	if i < 0 || i >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][i]
}

// Column returns every value of column in row order.
func (t Table) Column(column string) []string {
	out := make([]string, len(t.Rows))
	for r := range t.Rows {
		out[r] = t.Cell(r, column)
	}
	return out
}

// Append adds a row and returns the updated table. Short rows are padded
// and long rows are cut to the header width. The receiver's rows are never
// shared with the result.
func (t Table) Append(row []string) Table {
	cells := make([]string, len(t.Columns))
	copy(cells, row)
	t.Rows = append(slices.Clip(t.Rows), cells)
	return t
}

// Clone deep-copies the table.
func (t Table) Clone() Table {
	out := Table{Name: t.Name, Columns: slices.Clone(t.Columns), Rows: make([][]string, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = slices.Clone(r)
	}
	return out
}

// Equal compares name, header and every cell.
func (t Table) Equal(o Table) bool {
	if t.Name != o.Name || !slices.Equal(t.Columns, o.Columns) || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i := range t.Rows {
		if !slices.Equal(t.Rows[i], o.Rows[i]) {
			return false
		}
	}
	return true
}
