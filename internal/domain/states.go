package domain

import (
	"slices"
	"strings"
)

var stateNames = []string{
	"Alabama", "Alaska", "American Samoa", "Arizona", "Arkansas", "California",
	"Colorado", "Connecticut", "Delaware", "District of Columbia", "Florida",
	"Georgia", "Guam", "Hawaii", "Idaho", "Illinois", "Indiana", "Iowa", "Kansas",
	"Kentucky", "Louisiana", "Maine", "Maryland", "Massachusetts", "Michigan",
	"Minnesota", "Mississippi", "Missouri", "Montana", "Nebraska", "Nevada",
	"New Hampshire", "New Jersey", "New Mexico", "New York", "North Carolina",
	"North Dakota", "Northern Mariana Islands", "Ohio", "Oklahoma", "Oregon",
	"Pennsylvania", "Puerto Rico", "Rhode Island", "South Carolina",
	"South Dakota", "Tennessee", "Texas", "Utah", "Vermont", "Virgin Islands",
	"Virginia", "Washington", "West Virginia", "Wisconsin", "Wyoming",
}

// stateSet is built once at init and never written afterwards.
var stateSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(stateNames))
	for _, name := range stateNames {
		set[strings.ToLower(name)] = struct{}{}
	}
	return set
}()

// IsState reports whether name, already lowercased, belongs to the state
// reference set.
func IsState(name string) bool {
	_, ok := stateSet[name]
	return ok
}

// StateNames returns the lowercase reference set in alphabetical order.
// The returned slice is a copy.
func StateNames() []string {
	out := make([]string, 0, len(stateSet))
	for name := range stateSet {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
