package domain

// Year bounds of the published migration tables.
const (
	FirstMigrationYear = 2005
	LastMigrationYear  = 2019

	// Post2010FirstYear is the first year published in the wider layout.
	Post2010FirstYear = 2010
)

// NASentinel marks unavailable cells in post-2010 tables.
const NASentinel = "N/A"

// MigrationLayout holds the fixed row and column offsets of one generation of
// the state-to-state migration table. Offsets below the disclaimer block are
// relative to the body, after empty rows and the label row are gone.
type MigrationLayout struct {
	Name string

	// DisclaimerRows are physical rows of title and notes above the table.
	DisclaimerRows int
	// LabelRows are the spreadsheet column-label rows following the
	// disclaimers, counted after empty rows are dropped.
	LabelRows int

	// IndexMarker is the substring identifying "Current residence in" columns
	// in body row 0.
	IndexMarker string
	// MinValuesPerRow is the fewest populated cells a non-footnote row has.
	MinValuesPerRow int

	// HeaderRows is the number of body rows that form the column header.
	HeaderRows int
	// OriginRow carries origin state names; TypeRow carries Estimate/MOE.
	OriginRow int
	TypeRow   int

	// ExtraColumnStart and ExtraColumnCount locate summary columns absent in
	// older layouts. Zero count means none.
	ExtraColumnStart int
	ExtraColumnCount int

	// DropNA treats cells containing NASentinel as missing and drops rows
	// with a missing destination or estimate.
	DropNA bool
}

var (
	pre2010Layout = MigrationLayout{
		Name:            "pre-2010",
		DisclaimerRows:  4,
		LabelRows:       1,
		IndexMarker:     "Current",
		MinValuesPerRow: 2,
		HeaderRows:      3,
		OriginRow:       1,
		TypeRow:         2,
	}

	post2010Layout = MigrationLayout{
		Name:             "post-2010",
		DisclaimerRows:   4,
		LabelRows:        1,
		IndexMarker:      "Current",
		MinValuesPerRow:  2,
		HeaderRows:       3,
		OriginRow:        1,
		TypeRow:          2,
		ExtraColumnStart: 1,
		ExtraColumnCount: 6,
		DropNA:           true,
	}
)

// LayoutFor returns the post-2010 layout when post2010 is set and the
// pre-2010 layout otherwise.
func LayoutFor(post2010 bool) MigrationLayout {
	if post2010 {
		return post2010Layout
	}
	return pre2010Layout
}

// LayoutForYear returns the layout Census used for the given table year.
func LayoutForYear(year int) MigrationLayout {
	return LayoutFor(year >= Post2010FirstYear)
}
