package domain

import "fmt"

// Upstream file names, relative to the data directory.
const (
	PopulationFile2000s = "state_pop_tot_00-09.xls"
	PopulationFile2010s = "state_pop_tot_10-19.xlsx"
)

// PopulationFiles lists the population workbooks in concatenation order.
func PopulationFiles() []string {
	return []string{PopulationFile2000s, PopulationFile2010s}
}

// MigrationFileName returns the workbook name for a migration table year.
func MigrationFileName(year int) string {
	return fmt.Sprintf("state_to_state_migrations_table_%d.xls", year)
}
