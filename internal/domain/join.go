package domain

type popKey struct {
	state string
	year  int
}

// PopulationIndex looks up population by state and year.
type PopulationIndex struct {
	pops map[popKey]*int64
}

// NewPopulationIndex indexes rows by (state, year). When the same key
// appears twice, the first row wins.
func NewPopulationIndex(rows []Population) PopulationIndex {
	idx := PopulationIndex{pops: make(map[popKey]*int64, len(rows))}
	for _, r := range rows {
		k := popKey{state: r.State, year: r.Year}
		if _, ok := idx.pops[k]; ok {
			continue
		}
		idx.pops[k] = r.Pop
	}
	return idx
}

// Lookup returns a copy of the population of state in year, or nil when the
// index has no row for it or the row's value is missing.
func (idx PopulationIndex) Lookup(state string, year int) *int64 {
	p := idx.pops[popKey{state: state, year: year}]
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Enrich returns the origin population one year before k.Year and the
// destination population in k.Year.
func (idx PopulationIndex) Enrich(k FlowKey) (fromLag1, to *int64) {
	return idx.Lookup(k.From, k.Year-1), idx.Lookup(k.To, k.Year)
}

// JoinFlows left-joins population onto flows. Flows without a matching
// population keep nil fields. The input slice is not modified.
func JoinFlows(flows []Flow, idx PopulationIndex) []Flow {
	out := make([]Flow, len(flows))
	for i, f := range flows {
		f.PopFromLag1, f.PopTo = idx.Enrich(f.FlowKey)
		out[i] = f
	}
	return out
}

// JoinMeasures is JoinFlows for margin-of-error tables.
func JoinMeasures(measures []Measure, idx PopulationIndex) []Measure {
	out := make([]Measure, len(measures))
	for i, m := range measures {
		m.PopFromLag1, m.PopTo = idx.Enrich(m.FlowKey)
		out[i] = m
	}
	return out
}
