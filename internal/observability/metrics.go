package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Workbook kinds used as the "kind" label.
const (
	KindMigration  = "migration"
	KindPopulation = "population"
)

// Population join sides used as the "side" label.
const (
	SideFromLag1 = "from_lag1"
	SideTo       = "to"
)

// Metrics holds the Prometheus counters and histograms for a reader run.
type Metrics struct {
	WorkbooksRead  *prometheus.CounterVec   // labels: kind={migration,population}
	RowsParsed     *prometheus.CounterVec   // labels: kind={migration,population}
	ParseDuration  *prometheus.HistogramVec // labels: kind={migration,population}
	NACellsDropped prometheus.Counter

	// Join and cleaning metrics.
	PopulationMisses *prometheus.CounterVec // labels: side={from_lag1,to}
	RowsFiltered     prometheus.Counter
}

// NewMetrics creates and registers all reader metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.WorkbooksRead,
		m.RowsParsed,
		m.ParseDuration,
		m.NACellsDropped,
		m.PopulationMisses,
		m.RowsFiltered,
	)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		WorkbooksRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "census_etl",
			Name:      "workbooks_read_total",
			Help:      "Workbooks read and parsed successfully, by kind.",
		}, []string{"kind"}),
		RowsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "census_etl",
			Name:      "rows_parsed_total",
			Help:      "Long-format rows produced by the single-file parsers, by kind.",
		}, []string{"kind"}),
		ParseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "census_etl",
			Name:      "parse_duration_seconds",
			Help:      "Time to load and reshape one workbook.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"kind"}),
		NACellsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "census_etl",
			Name:      "na_cells_dropped_total",
			Help:      "Post-2010 estimate cells dropped as N/A or empty.",
		}),
		PopulationMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "census_etl",
			Name:      "population_misses_total",
			Help:      "Flow rows left without a population value, by join side.",
		}, []string{"side"}),
		RowsFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "census_etl",
			Name:      "rows_filtered_total",
			Help:      "Rows removed by the state-pair post-filter.",
		}),
	}
}
