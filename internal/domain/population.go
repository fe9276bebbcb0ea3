package domain

import (
	"fmt"
	"strings"
)

// Population table offsets and year bounds.
const (
	// PopulationHeaderRow is the physical row holding the year headers.
	// Blank rows above it count; they are not dropped first as in
	// ParseMigrationSheet.
	PopulationHeaderRow = 3

	MinPopulationYear = 2000
	// MaxPopulationYear is exclusive.
	MaxPopulationYear = 2020
)

// ParsePopulationSheet reshapes a wide population table (one column per
// year) into one Population per state and year. Rows are restricted to the
// state reference set and columns to plain year headers in
// [MinPopulationYear, MaxPopulationYear). Output is year-major.
func ParsePopulationSheet(sheet Sheet) ([]Population, error) {
	if len(sheet) <= PopulationHeaderRow {
		return nil, fmt.Errorf("%w: population header row %d missing, sheet has %d rows",
			ErrSchemaMismatch, PopulationHeaderRow, len(sheet))
	}

	header := sheet[PopulationHeaderRow]
	type yearColumn struct {
		col  int
		year int
	}
	var years []yearColumn
	for c := 1; c < len(header); c++ {
		y, ok := parseYearHeader(header[c])
		if ok {
			years = append(years, yearColumn{col: c, year: y})
		}
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: no year columns in population header", ErrSchemaMismatch)
	}

	type stateRow struct {
		name string
		row  []string
	}
	var states []stateRow
	for _, row := range sheet[PopulationHeaderRow+1:].DropEmptyRows() {
		name := normalizeStateName(cellAt(row, 0))
		if IsState(name) {
			states = append(states, stateRow{name: name, row: row})
		}
	}

	out := make([]Population, 0, len(years)*len(states))
	for _, y := range years {
		for _, s := range states {
			p := Population{State: s.name, Year: y.year}
			if cell := cellAt(s.row, y.col); cell != "" {
				n, err := ParseCount(cell)
				if err != nil {
					return nil, fmt.Errorf("population of %q in %d: %w", s.name, y.year, err)
				}
				p.Pop = &n
			}
			out = append(out, p)
		}
	}
	return out, nil
}

// normalizeStateName strips the "." indentation Census uses for states and
// lowercases the rest.
func normalizeStateName(cell string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimLeft(cell, ".")))
}

func parseYearHeader(cell string) (int, bool) {
	if cell = strings.TrimSpace(cell); cell == "" {
		return 0, false
	}
	n, err := ParseCount(cell)
	if err != nil || strings.Contains(cell, ",") {
		return 0, false
	}
	if n < MinPopulationYear || n >= MaxPopulationYear {
		return 0, false
	}
	return int(n), true
}
