package domain

// ValueTypeEstimate is the type label of count columns in a migration table.
// The other label Census uses is "moe" (margin of error).
const ValueTypeEstimate = "estimate"

// FlowKey identifies one origin/destination pair in one year.
// Names are lowercase.
type FlowKey struct {
	To   string `json:"to"`
	From string `json:"from"`
	Year int    `json:"year"`
}

// Key returns the key itself so records embedding FlowKey satisfy [Keyed].
func (k FlowKey) Key() FlowKey { return k }

// Keyed is implemented by every flow-shaped record.
type Keyed interface {
	Key() FlowKey
}

// Flow is the number of people who lived in From one year ago and in To
// during Year.
type Flow struct {
	FlowKey
	Estimate int64 `json:"estimate"`

	// Population enrichment, nil when no population row matched.
	PopFromLag1 *int64 `json:"pop_from_lag1"`
	PopTo       *int64 `json:"pop_to"`
}

// Measure is one cell of a migration table kept in margin-of-error mode: the
// raw cell text plus the column's value type ("estimate" or "moe").
type Measure struct {
	FlowKey
	Type  string `json:"type"`
	Value string `json:"value"`

	PopFromLag1 *int64 `json:"pop_from_lag1"`
	PopTo       *int64 `json:"pop_to"`
}

// Population is a state's total population in one year. Pop is nil when the
// source cell was empty.
type Population struct {
	State string `json:"state"`
	Year  int    `json:"year"`
	Pop   *int64 `json:"pop"`
}
