package domain

import (
	"fmt"
	"strings"
)

// Sheet is the cell text of one worksheet, row-major. An empty or
// whitespace-only cell is missing. Steps never modify their receiver; each
// returns a new Sheet that may share unmodified rows with the old one.
type Sheet [][]string

// Width returns the length of the longest row.
func (s Sheet) Width() int {
	w := 0
	for _, row := range s {
		w = max(w, len(row))
	}
	return w
}

// Normalize pads every row to Width so column positions line up.
func (s Sheet) Normalize() Sheet {
	w := s.Width()
	out := make(Sheet, len(s))
	for i, row := range s {
		if len(row) == w {
			out[i] = row
			continue
		}
		padded := make([]string, w)
		copy(padded, row)
		out[i] = padded
	}
	return out
}

// SkipRows drops the first n rows.
func (s Sheet) SkipRows(n int) Sheet {
	if n >= len(s) {
		return Sheet{}
	}
	return s[n:]
}

// DropEmptyRows drops rows in which every cell is missing.
func (s Sheet) DropEmptyRows() Sheet {
	return s.DropSparseRows(1)
}

// DropSparseRows keeps rows with at least minValues non-missing cells.
// Footnote lines in Census tables have a single populated cell.
func (s Sheet) DropSparseRows(minValues int) Sheet {
	out := make(Sheet, 0, len(s))
	for _, row := range s {
		if countValues(row) >= minValues {
			out = append(out, row)
		}
	}
	return out
}

// DropDuplicateRows keeps the first occurrence of every distinct row.
// Rows must be normalized to the same width.
func (s Sheet) DropDuplicateRows() Sheet {
	seen := make(map[string]struct{}, len(s))
	out := make(Sheet, 0, len(s))
	for _, row := range s {
		key := strings.Join(row, "\x1f")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return out
}

// DropRepeatedIndexColumns finds the columns whose first-row cell contains
// marker and drops all of them except the first.
//
// Precondition: row 0 is the marker row. A sheet without any marker in row 0
// does not have the expected layout and yields ErrSchemaMismatch.
func (s Sheet) DropRepeatedIndexColumns(marker string) (Sheet, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: no rows before index marker %q", ErrSchemaMismatch, marker)
	}
	var repeated []int
	first := -1
	for c, cell := range s[0] {
		if !strings.Contains(cell, marker) {
			continue
		}
		if first < 0 {
			first = c
			continue
		}
		repeated = append(repeated, c)
	}
	if first < 0 {
		return nil, fmt.Errorf("%w: index marker %q not found in header row", ErrSchemaMismatch, marker)
	}
	drop := make(map[int]bool, len(repeated))
	for _, c := range repeated {
		drop[c] = true
	}
	return s.keepColumns(func(c int) bool { return !drop[c] }), nil
}

// DropColumns removes count columns starting at position start.
func (s Sheet) DropColumns(start, count int) Sheet {
	return s.keepColumns(func(c int) bool { return c < start || c >= start+count })
}

// ForwardFillRow copies the nearest non-missing cell to the left into every
// missing cell of row r, starting at column 1. Merged header cells arrive as
// one label followed by blanks.
func (s Sheet) ForwardFillRow(r int) Sheet {
	if r < 0 || r >= len(s) {
		return s
	}
	filled := make([]string, len(s[r]))
	copy(filled, s[r])
	for c := 1; c < len(filled); c++ {
		if isMissing(filled[c]) {
			filled[c] = filled[c-1]
		}
	}
	out := make(Sheet, len(s))
	copy(out, s)
	out[r] = filled
	return out
}

func (s Sheet) keepColumns(keep func(c int) bool) Sheet {
	out := make(Sheet, len(s))
	for i, row := range s {
		kept := make([]string, 0, len(row))
		for c, cell := range row {
			if keep(c) {
				kept = append(kept, cell)
			}
		}
		out[i] = kept
	}
	return out
}

func isMissing(cell string) bool {
	return strings.TrimSpace(cell) == ""
}

func countValues(row []string) int {
	n := 0
	for _, cell := range row {
		if !isMissing(cell) {
			n++
		}
	}
	return n
}

// cellAt returns the trimmed cell at column c, or "" past the end of the row.
func cellAt(row []string, c int) string {
	if c < 0 || c >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[c])
}
