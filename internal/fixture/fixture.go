// Package fixture builds synthetic workbooks laid out like the Census
// state-to-state migration and state population tables. The grids follow the
// published layouts closely enough to exercise every parsing step:
// disclaimer rows, repeated "Current residence in" columns, merged origin
// headers, re-injected header rows, footnotes and post-2010 summary columns.
package fixture

import (
	"fmt"
	"hash/fnv"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/census-migration-etl/internal/adapter/workbook"
	"github.com/couchcryptid/census-migration-etl/internal/domain"
)

// MigrationTable describes one synthetic migration workbook.
type MigrationTable struct {
	Year         int
	Destinations []string
	Origins      []string

	// BlockSize is the number of origins between repeated index columns.
	// Zero puts every origin in one block.
	BlockSize int
	// RepeatHeaderAfter re-inserts the three header rows after that many
	// destination rows. Zero disables it.
	RepeatHeaderAfter int
	Footnotes         bool

	// Estimate returns the estimate cell for a destination and origin.
	// Nil uses DefaultEstimate(Year).
	Estimate func(to, from string) string
}

// Sheet renders the table.
func (t MigrationTable) Sheet() domain.Sheet {
	estimate := t.Estimate
	if estimate == nil {
		estimate = DefaultEstimate(t.Year)
	}
	post2010 := domain.LayoutForYear(t.Year).ExtraColumnCount > 0
	blocks := splitBlocks(t.Origins, t.BlockSize)

	markers := []string{"Current residence in"}
	origins := []string{""}
	types := []string{""}
	if post2010 {
		markers = append(markers, "Population 1 year and over", "", "Same house 1 year ago", "", "Same state of residence 1 year ago", "")
		origins = append(origins, "", "", "", "", "", "")
		types = append(types, "Estimate", "MOE", "Estimate", "MOE", "Estimate", "MOE")
	}
	for b, block := range blocks {
		if b > 0 {
			markers = append(markers, "Current residence in")
			origins = append(origins, "")
			types = append(types, "")
		}
		for i, from := range block {
			if i == 0 {
				markers = append(markers, "State of residence 1 year ago", "")
			} else {
				markers = append(markers, "", "")
			}
			origins = append(origins, from, "")
			types = append(types, "Estimate", "MOE")
		}
	}

	sheet := domain.Sheet{
		{fmt.Sprintf("Table. State-to-State Migration Flows: %d", t.Year)},
		{},
		{"Note: Estimates are based on a sample and are subject to sampling variability."},
		{fmt.Sprintf("Source: U.S. Census Bureau, %d American Community Survey 1-Year Estimates", t.Year)},
		{"Table with row headers in column A and column headers in rows 6 through 8."},
		{},
		markers,
		origins,
		types,
	}

	for d, to := range t.Destinations {
		if t.RepeatHeaderAfter > 0 && d > 0 && d%t.RepeatHeaderAfter == 0 {
			sheet = append(sheet, markers, origins, types)
		}
		row := []string{to}
		if post2010 {
			row = append(row, "250000", "1200", "210000", "1100", "30000", "900")
		}
		for b, block := range blocks {
			if b > 0 {
				row = append(row, to)
			}
			for _, from := range block {
				est := estimate(to, from)
				row = append(row, est, MarginOfError(est))
			}
		}
		sheet = append(sheet, row)
	}

	if t.Footnotes {
		sheet = append(sheet,
			[]string{},
			[]string{"Footnotes:"},
			[]string{"1 Includes the 50 states, the District of Columbia, and Puerto Rico."},
		)
	}
	return sheet
}

// DefaultEstimate returns a deterministic estimate generator for a table
// year. Post-2010 tables get NASentinel on the diagonal, as Census prints.
func DefaultEstimate(year int) func(to, from string) string {
	dropNA := domain.LayoutForYear(year).DropNA
	return func(to, from string) string {
		if dropNA && strings.EqualFold(to, from) {
			return domain.NASentinel
		}
		n := hash(strings.ToLower(to+"|"+from))%40000 + uint32(year-2000)*10
		return strconv.FormatUint(uint64(n), 10)
	}
}

// MarginOfError derives a margin-of-error cell from an estimate cell.
func MarginOfError(estimate string) string {
	n, err := strconv.Atoi(estimate)
	if err != nil {
		return estimate
	}
	return strconv.Itoa(n/10 + 1)
}

func splitBlocks(origins []string, size int) [][]string {
	if size <= 0 || size >= len(origins) {
		return [][]string{origins}
	}
	var blocks [][]string
	for start := 0; start < len(origins); start += size {
		blocks = append(blocks, origins[start:min(start+size, len(origins))])
	}
	return blocks
}

// PopulationTable describes one synthetic population workbook.
type PopulationTable struct {
	Years  []int
	States []string

	// Pop returns the population cell. Nil uses DefaultPopulation.
	Pop func(state string, year int) string
}

// Sheet renders the table. Regional aggregate rows and the non-year base
// columns of the real tables are included.
func (t PopulationTable) Sheet() domain.Sheet {
	pop := t.Pop
	if pop == nil {
		pop = DefaultPopulation
	}
	first, last := t.Years[0], t.Years[len(t.Years)-1]

	header := []string{"Geographic Area", fmt.Sprintf("April 1, %d Estimates Base", first)}
	for _, y := range t.Years {
		header = append(header, strconv.Itoa(y))
	}
	header = append(header, fmt.Sprintf("April 1, %d Census", last+1))

	sheet := domain.Sheet{
		{fmt.Sprintf("Table 1. Annual Estimates of the Resident Population for the United States, Regions, and States: %d to %d", first, last)},
		{},
		{"", "Population Estimate (as of July 1)"},
		header,
	}

	aggregate := func(name string, scale int) []string {
		row := []string{name, strconv.Itoa(scale)}
		for range t.Years {
			row = append(row, strconv.Itoa(scale))
		}
		return append(row, "")
	}
	sheet = append(sheet,
		aggregate("United States", 300000000),
		aggregate("Northeast", 55000000),
		aggregate("South", 110000000),
	)

	for _, s := range t.States {
		row := []string{"." + s, pop(s, first)}
		for _, y := range t.Years {
			row = append(row, pop(s, y))
		}
		row = append(row, "")
		sheet = append(sheet, row)
	}

	return append(sheet,
		[]string{},
		[]string{"Note: The estimates are based on the 2010 Census and reflect changes to the April 1, 2010 population."},
	)
}

// DefaultPopulation returns a deterministic population for a state and year.
func DefaultPopulation(state string, year int) string {
	base := hash(strings.ToLower(state))%9000000 + 500000
	return strconv.FormatUint(uint64(base)+uint64(year-2000)*1000, 10)
}

// DisplayName title-cases a lowercase reference-set name the way Census
// prints it ("district of columbia" -> "District of Columbia").
func DisplayName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		if w == "of" && i > 0 {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// States returns display names for the first n reference-set states in
// alphabetical order, or all of them when n <= 0.
func States(n int) []string {
	names := domain.StateNames()
	if n > 0 && n < len(names) {
		names = names[:n]
	}
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = DisplayName(name)
	}
	return out
}

// WriteDataDir writes a complete data directory: one migration workbook per
// year in [first, last] and both population workbooks. Migration tables
// carry a "United States" total row ahead of the states.
func WriteDataDir(dir string, first, last int, states []string) error {
	for year := first; year <= last; year++ {
		table := MigrationTable{
			Year:              year,
			Destinations:      append([]string{"United States"}, states...),
			Origins:           states,
			BlockSize:         10,
			RepeatHeaderAfter: 20,
			Footnotes:         true,
		}
		path := filepath.Join(dir, domain.MigrationFileName(year))
		if err := workbook.WriteXLSX(path, table.Sheet()); err != nil {
			return fmt.Errorf("write migration table %d: %w", year, err)
		}
	}

	decades := map[string][]int{
		domain.PopulationFile2000s: yearRange(2000, 2009),
		domain.PopulationFile2010s: yearRange(2010, 2019),
	}
	for name, years := range decades {
		table := PopulationTable{Years: years, States: states}
		if err := workbook.WriteXLSX(filepath.Join(dir, name), table.Sheet()); err != nil {
			return fmt.Errorf("write population table %s: %w", name, err)
		}
	}
	return nil
}

func yearRange(first, last int) []int {
	years := make([]int, 0, last-first+1)
	for y := first; y <= last; y++ {
		years = append(years, y)
	}
	return years
}

func hash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
