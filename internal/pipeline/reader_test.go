package pipeline_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/census-migration-etl/internal/domain"
	"github.com/couchcryptid/census-migration-etl/internal/fixture"
	"github.com/couchcryptid/census-migration-etl/internal/observability"
	"github.com/couchcryptid/census-migration-etl/internal/pipeline"
)

const dataDir = "census"

// --- mocks ---

type mockLoader struct {
	sheets map[string]domain.Sheet
	clock  interface{ Advance(time.Duration) }
	calls  []string
}

func (m *mockLoader) Load(_ context.Context, path string) (domain.Sheet, error) {
	m.calls = append(m.calls, path)
	if m.clock != nil {
		m.clock.Advance(250 * time.Millisecond)
	}
	s, ok := m.sheets[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingFile, path)
	}
	return s, nil
}

func newCensusLoader(states []string, first, last int) *mockLoader {
	m := &mockLoader{sheets: make(map[string]domain.Sheet)}
	for year := first; year <= last; year++ {
		table := fixture.MigrationTable{
			Year:         year,
			Destinations: append([]string{"United States"}, states...),
			Origins:      states,
			BlockSize:    2,
			Footnotes:    true,
		}
		m.sheets[filepath.Join(dataDir, domain.MigrationFileName(year))] = table.Sheet()
	}
	m.sheets[filepath.Join(dataDir, domain.PopulationFile2000s)] = fixture.PopulationTable{
		Years:  []int{2000, 2001, 2002, 2003, 2004, 2005, 2006, 2007, 2008, 2009},
		States: states,
	}.Sheet()
	m.sheets[filepath.Join(dataDir, domain.PopulationFile2010s)] = fixture.PopulationTable{
		Years:  []int{2010, 2011, 2012, 2013, 2014, 2015, 2016, 2017, 2018, 2019},
		States: states,
	}.Sheet()
	return m
}

func newReader(loader pipeline.SheetLoader, metrics *observability.Metrics, clock clockwork.Clock) *pipeline.Reader {
	return pipeline.NewReader(loader, dataDir, slog.Default(), metrics, clock)
}

// popOf is the population the fixture writes for a state in any letter case.
func popOf(t *testing.T, name string, year int) int64 {
	t.Helper()
	n, err := strconv.ParseInt(fixture.DefaultPopulation(name, year), 10, 64)
	require.NoError(t, err)
	return n
}

func histogram(t *testing.T, h *prometheus.HistogramVec, label string) *dto.Histogram {
	t.Helper()
	var m dto.Metric
	require.NoError(t, h.WithLabelValues(label).(prometheus.Metric).Write(&m))
	return m.GetHistogram()
}

// --- tests ---

func TestReader_ReadMigration(t *testing.T) {
	states := fixture.States(3)
	loader := newCensusLoader(states, 2012, 2012)
	metrics := observability.NewMetricsForTesting()
	r := newReader(loader, metrics, nil)

	flows, err := r.ReadMigration(context.Background(), r.MigrationPath(2012), true)
	require.NoError(t, err)

	// (1 total row + 3 states) x 3 origins, minus the 3 N/A diagonal cells.
	assert.Len(t, flows, 9)
	for _, f := range flows {
		assert.Zero(t, f.Year, "single-file reads are not year tagged")
	}
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.NACellsDropped), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.WorkbooksRead.WithLabelValues(observability.KindMigration)), 0)
	assert.InDelta(t, 9, testutil.ToFloat64(metrics.RowsParsed.WithLabelValues(observability.KindMigration)), 0)
}

func TestReader_ReadMigration_WrongLayoutFailsCast(t *testing.T) {
	states := fixture.States(3)
	loader := newCensusLoader(states, 2012, 2012)
	var logs bytes.Buffer
	r := pipeline.NewReader(loader, dataDir, slog.New(slog.NewTextHandler(&logs, nil)), observability.NewMetricsForTesting(), nil)

	// A post-2010 table read with the pre-2010 layout keeps its summary
	// columns and N/A cells.
	_, err := r.ReadMigration(context.Background(), r.MigrationPath(2012), false)
	require.ErrorIs(t, err, domain.ErrValueCast)
	assert.Contains(t, logs.String(), "N/A cells in table without N/A handling")

	var fileErr *domain.FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, r.MigrationPath(2012), fileErr.Path)
}

func TestReader_ReadMigrationMeasures(t *testing.T) {
	states := fixture.States(2)
	loader := newCensusLoader(states, 2007, 2007)
	r := newReader(loader, observability.NewMetricsForTesting(), nil)

	measures, err := r.ReadMigrationMeasures(context.Background(), r.MigrationPath(2007), false)
	require.NoError(t, err)
	assert.Len(t, measures, 3*2*2)

	types := map[string]int{}
	for _, m := range measures {
		types[m.Type]++
	}
	assert.Equal(t, map[string]int{"estimate": 6, "moe": 6}, types)
}

func TestReader_ReadYearRange_TagsAndOrdersYears(t *testing.T) {
	states := fixture.States(3)
	loader := newCensusLoader(states, 2008, 2011)
	r := newReader(loader, observability.NewMetricsForTesting(), nil)

	flows, err := r.ReadYearRange(context.Background(), 2008, 2011, false)
	require.NoError(t, err)

	perYear := map[int]int{}
	last := 0
	for _, f := range flows {
		require.GreaterOrEqual(t, f.Year, last, "years ascend")
		last = f.Year
		perYear[f.Year]++
		assert.Nil(t, f.PopFromLag1)
		assert.Nil(t, f.PopTo)
	}
	assert.Equal(t, map[int]int{2008: 12, 2009: 12, 2010: 9, 2011: 9}, perYear)
	assert.Len(t, loader.calls, 4, "population not read")
}

func TestReader_ReadYearRange_JoinsPopulation(t *testing.T) {
	states := fixture.States(3)
	loader := newCensusLoader(states, 2009, 2010)
	metrics := observability.NewMetricsForTesting()
	r := newReader(loader, metrics, nil)

	flows, err := r.ReadYearRange(context.Background(), 2009, 2010, true)
	require.NoError(t, err)
	require.NotEmpty(t, flows)

	toMisses := 0
	for _, f := range flows {
		require.NotNil(t, f.PopFromLag1, "origins are states with population in %d", f.Year-1)
		assert.Equal(t, popOf(t, f.From, f.Year-1), *f.PopFromLag1)

		if f.To == "united states" {
			assert.Nil(t, f.PopTo)
			toMisses++
			continue
		}
		require.NotNil(t, f.PopTo)
		assert.Equal(t, popOf(t, f.To, f.Year), *f.PopTo)
	}

	assert.InDelta(t, float64(toMisses), testutil.ToFloat64(metrics.PopulationMisses.WithLabelValues(observability.SideTo)), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.PopulationMisses.WithLabelValues(observability.SideFromLag1)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.WorkbooksRead.WithLabelValues(observability.KindPopulation)), 0)
}

func TestReader_ReadYearRange_FirstYearLagHasNoPopulationBefore2000(t *testing.T) {
	states := fixture.States(2)
	loader := newCensusLoader(states, 2005, 2005)
	// Drop 2004 from the 2000s population table.
	loader.sheets[filepath.Join(dataDir, domain.PopulationFile2000s)] = fixture.PopulationTable{
		Years:  []int{2005, 2006},
		States: states,
	}.Sheet()
	r := newReader(loader, observability.NewMetricsForTesting(), nil)

	flows, err := r.ReadYearRange(context.Background(), 2005, 2005, true)
	require.NoError(t, err)
	for _, f := range flows {
		assert.Nil(t, f.PopFromLag1, "no 2004 row, no value from another year")
	}
}

func TestReader_ReadYearRangeMeasures(t *testing.T) {
	states := fixture.States(2)
	loader := newCensusLoader(states, 2015, 2016)
	r := newReader(loader, observability.NewMetricsForTesting(), nil)

	measures, err := r.ReadYearRangeMeasures(context.Background(), 2015, 2016, true)
	require.NoError(t, err)
	assert.Len(t, measures, 2*3*2*2)

	cleaned := r.CleanMeasures(measures)
	assert.Len(t, cleaned, 2*2*2)
	for _, m := range cleaned {
		assert.NotNil(t, m.PopTo)
		assert.NotEqual(t, domain.NASentinel, m.Value)
	}
}

func TestReader_ReadYearRange_MissingFile(t *testing.T) {
	states := fixture.States(2)
	loader := newCensusLoader(states, 2005, 2006)
	r := newReader(loader, observability.NewMetricsForTesting(), nil)

	_, err := r.ReadYearRange(context.Background(), 2005, 2007, false)
	require.ErrorIs(t, err, domain.ErrMissingFile)

	var fileErr *domain.FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, 2007, fileErr.Year)
	assert.Equal(t, r.MigrationPath(2007), fileErr.Path)
	assert.Contains(t, err.Error(), "year 2007")
}

func TestReader_ReadYearRange_MissingPopulation(t *testing.T) {
	states := fixture.States(2)
	loader := newCensusLoader(states, 2012, 2012)
	delete(loader.sheets, filepath.Join(dataDir, domain.PopulationFile2010s))
	r := newReader(loader, observability.NewMetricsForTesting(), nil)

	_, err := r.ReadYearRange(context.Background(), 2012, 2012, true)
	require.ErrorIs(t, err, domain.ErrMissingFile)
	assert.Contains(t, err.Error(), domain.PopulationFile2010s)
}

func TestReader_ReadYearRange_InvalidRange(t *testing.T) {
	tests := []struct {
		name        string
		first, last int
	}{
		{"inverted", 2012, 2010},
		{"before tables", 2004, 2006},
		{"after tables", 2018, 2020},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &mockLoader{}
			r := newReader(loader, observability.NewMetricsForTesting(), nil)

			_, err := r.ReadYearRange(context.Background(), tt.first, tt.last, true)
			require.ErrorIs(t, err, pipeline.ErrInvalidRange)
			assert.Empty(t, loader.calls)
		})
	}
}

func TestReader_ReadYearRange_ContextCancelled(t *testing.T) {
	loader := newCensusLoader(fixture.States(2), 2005, 2006)
	r := newReader(loader, observability.NewMetricsForTesting(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ReadYearRange(ctx, 2005, 2006, false)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, loader.calls)
}

func TestReader_ParseDurationUsesClock(t *testing.T) {
	clock := clockwork.NewFakeClock()
	loader := newCensusLoader(fixture.States(2), 2006, 2007)
	loader.clock = clock
	metrics := observability.NewMetricsForTesting()
	r := newReader(loader, metrics, clock)

	_, err := r.ReadYearRange(context.Background(), 2006, 2007, true)
	require.NoError(t, err)

	h := histogram(t, metrics.ParseDuration, observability.KindMigration)
	assert.Equal(t, uint64(2), h.GetSampleCount())
	assert.InDelta(t, 0.5, h.GetSampleSum(), 1e-9)

	h = histogram(t, metrics.ParseDuration, observability.KindPopulation)
	assert.Equal(t, uint64(2), h.GetSampleCount())
}

func TestReader_CleanFlows(t *testing.T) {
	states := fixture.States(3)
	loader := newCensusLoader(states, 2006, 2006)
	metrics := observability.NewMetricsForTesting()
	r := newReader(loader, metrics, nil)

	flows, err := r.ReadYearRange(context.Background(), 2006, 2006, true)
	require.NoError(t, err)
	require.Len(t, flows, 12)

	cleaned := r.CleanFlows(flows)
	assert.Len(t, cleaned, 6)
	assert.InDelta(t, 6, testutil.ToFloat64(metrics.RowsFiltered), 0)
	for _, f := range cleaned {
		assert.NotEqual(t, f.From, f.To)
	}
}

func TestReader_Idempotent(t *testing.T) {
	loader := newCensusLoader(fixture.States(3), 2013, 2013)
	r := newReader(loader, observability.NewMetricsForTesting(), nil)

	first, err := r.ReadYearRange(context.Background(), 2013, 2013, true)
	require.NoError(t, err)
	second, err := r.ReadYearRange(context.Background(), 2013, 2013, true)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
