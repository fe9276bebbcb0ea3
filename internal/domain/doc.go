// Package domain models U.S. Census Bureau state-to-state migration flows and
// state population totals.
//
// # Data Sources
//
// Migration flows come from the American Community Survey "State-to-State
// Migration Flows" tables, one workbook per year, published at
// https://www.census.gov/data/tables/time-series/demo/geographic-mobility/state-to-state-migration.html.
// Population totals come from the intercensal (2000-2009) and vintage
// (2010-2019) state population estimate tables.
//
// # Migration Table Conventions
//
// Sheet layout (one worksheet, read top to bottom):
//
//	rows 0-3   title, notes and disclaimers
//	row  4     spreadsheet column labels, discarded
//	body row 0 "Current residence in" markers, repeated every block of states
//	body row 1 origin state names, written once per merged cell pair
//	body row 2 "Estimate" / "MOE" labels
//	body rows  one row per destination ("current residence") state
//
// The "Current residence in" column is repeated inside the body so readers of
// the printed table see the row label on every page. Only the first copy is
// the real index column; the rest are dropped by [Sheet.DropRepeatedIndexColumns].
//
// Tables from 2010 onward carry six leading summary columns (population one
// year and over, same house, same state) that older tables lack. They are
// dropped so every year shares one schema. See [LayoutFor].
//
// Unknown values:
//
//	Post-2010 tables write "N/A" in the diagonal cells (a state's flow to
//	itself). Those cells are treated as missing and their rows dropped.
//	Pre-2010 tables encode the diagonal as an ordinary count; it is removed
//	later by [ExtraCleaning].
//
// # Population Table Conventions
//
// The header sits on physical row 3. Column 0 holds geographic area names,
// indented with leading "." characters for states (".Alaska"). Year columns
// carry the bare year as the header; census base and April 1 columns are
// skipped because their headers are not plain years.
//
// # State Reference Set
//
// Flows and populations are restricted to the 50 states, the District of
// Columbia and the five inhabited territories. Names are compared in
// lowercase. See [IsState].
package domain
