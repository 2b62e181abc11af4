package table

import (
	"strconv"
)

// ColumnKind represents the inferred type of a column
type ColumnKind string

const (
	KindNumeric ColumnKind = "numeric"
	KindText    ColumnKind = "text"
)

// MissingKey is the distinct-value key shared by every missing cell
const MissingKey = "na"

// MissingLabel is how a missing cell is shown in value pickers
const MissingLabel = "(missing)"

// Column describes one column of a Table
type Column struct {
	Name string     `json:"name"`
	Kind ColumnKind `json:"kind"`
}

// IsNumeric reports whether the column was inferred as numeric
func (c Column) IsNumeric() bool {
	return c.Kind == KindNumeric
}

// Cell holds a single value. Num is only meaningful for cells of numeric
// columns that are not missing.
type Cell struct {
	Raw     string  `json:"raw"`
	Num     float64 `json:"num,omitempty"`
	Missing bool    `json:"missing,omitempty"`
}

// TextCell builds a cell for a text column
func TextCell(raw string) Cell {
	return Cell{Raw: raw}
}

// NumericCell builds a cell for a numeric column
func NumericCell(raw string, v float64) Cell {
	return Cell{Raw: raw, Num: v}
}

// MissingCell builds a missing cell, keeping the original text for display
func MissingCell(raw string) Cell {
	return Cell{Raw: raw, Missing: true}
}

// Key returns the identity used to group equal values of a column.
// Numeric cells are canonicalized so "10" and "10.0" share a key.
func (c Cell) Key(kind ColumnKind) string {
	if c.Missing {
		return MissingKey
	}
	if kind == KindNumeric {
		return "n:" + strconv.FormatFloat(c.Num, 'g', -1, 64)
	}
	return "s:" + c.Raw
}

// Label returns the text shown for the cell in value pickers
func (c Cell) Label() string {
	if c.Missing {
		return MissingLabel
	}
	return c.Raw
}

// Value is one distinct value of a column
type Value struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}
