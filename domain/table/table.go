// Package table holds the in-memory representation of an uploaded dataset.
//
// A Table is immutable once built: Filter returns a new Table that shares
// the column set and cell values of its source, so a Table can be read
// from concurrent requests without locking.
package table

// Table is an ordered set of columns and rows parsed from one upload
type Table struct {
	Columns []Column
	Rows    [][]Cell

	index map[string]int
}

// New creates a Table. Every row must have exactly len(columns) cells.
func New(columns []Column, rows [][]Cell) *Table {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if _, dup := index[col.Name]; !dup {
			index[col.Name] = i
		}
	}
	return &Table{Columns: columns, Rows: rows, index: index}
}

// NumRows returns the number of data rows
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the number of columns
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// ColumnNames returns the column names in original order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1
func (t *Table) ColumnIndex(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Column looks up a column by name
func (t *Table) Column(name string) (Column, bool) {
	i := t.ColumnIndex(name)
	if i < 0 {
		return Column{}, false
	}
	return t.Columns[i], true
}

// NumericColumns returns the names of numeric columns in original order
func (t *Table) NumericColumns() []string {
	var names []string
	for _, col := range t.Columns {
		if col.IsNumeric() {
			names = append(names, col.Name)
		}
	}
	return names
}

// FirstNumericColumn returns the leftmost numeric column
func (t *Table) FirstNumericColumn() (string, bool) {
	for _, col := range t.Columns {
		if col.IsNumeric() {
			return col.Name, true
		}
	}
	return "", false
}

// Distinct returns the distinct values of a column in order of first
// occurrence. Unknown columns yield nil.
func (t *Table) Distinct(name string) []Value {
	i := t.ColumnIndex(name)
	if i < 0 {
		return nil
	}
	kind := t.Columns[i].Kind

	pos := make(map[string]int)
	var values []Value
	for _, row := range t.Rows {
		cell := row[i]
		key := cell.Key(kind)
		if p, seen := pos[key]; seen {
			values[p].Count++
			continue
		}
		pos[key] = len(values)
		values = append(values, Value{Key: key, Label: cell.Label(), Count: 1})
	}
	return values
}

// Filter returns the rows whose value in the named column has a key in
// keep. The result always carries the full column set. An unknown column
// yields an empty Table.
func (t *Table) Filter(name string, keep map[string]bool) *Table {
	i := t.ColumnIndex(name)
	rows := make([][]Cell, 0, len(t.Rows))
	if i >= 0 {
		kind := t.Columns[i].Kind
		for _, row := range t.Rows {
			if keep[row[i].Key(kind)] {
				rows = append(rows, row)
			}
		}
	}
	return &Table{Columns: t.Columns, Rows: rows, index: t.index}
}

// Floats returns the non-missing values of a numeric column in row order.
// Text columns and unknown columns yield nil.
func (t *Table) Floats(name string) []float64 {
	i := t.ColumnIndex(name)
	if i < 0 || !t.Columns[i].IsNumeric() {
		return nil
	}
	values := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if !row[i].Missing {
			values = append(values, row[i].Num)
		}
	}
	return values
}

// Cells returns every cell of the named column in row order
func (t *Table) Cells(name string) []Cell {
	i := t.ColumnIndex(name)
	if i < 0 {
		return nil
	}
	cells := make([]Cell, len(t.Rows))
	for r, row := range t.Rows {
		cells[r] = row[i]
	}
	return cells
}
