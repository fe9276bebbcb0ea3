package domain

// ExtraCleaning keeps rows whose origin and destination are both in the state
// reference set and differ. It removes national, regional and foreign
// aggregates, and the same-state flows older tables report. The input slice
// is not modified.
func ExtraCleaning[T Keyed](rows []T) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		k := r.Key()
		if !IsState(k.From) || !IsState(k.To) || k.From == k.To {
			continue
		}
		out = append(out, r)
	}
	return out
}
