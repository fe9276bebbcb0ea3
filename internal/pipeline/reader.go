package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/census-migration-etl/internal/domain"
	"github.com/couchcryptid/census-migration-etl/internal/observability"
)

// SheetLoader reads the first worksheet of the workbook at path.
type SheetLoader interface {
	Load(ctx context.Context, path string) (domain.Sheet, error)
}

// Reader reads, reshapes and combines the Census migration and population
// workbooks found in one data directory. Calls share no state beyond the
// metrics they update.
type Reader struct {
	loader  SheetLoader
	dataDir string
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// NewReader creates a Reader over dataDir. A nil clock uses the real clock.
func NewReader(loader SheetLoader, dataDir string, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Reader {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Reader{
		loader:  loader,
		dataDir: dataDir,
		logger:  logger,
		metrics: metrics,
		clock:   clock,
	}
}

// MigrationPath returns the expected path of a year's migration workbook.
func (r *Reader) MigrationPath(year int) string {
	return filepath.Join(r.dataDir, domain.MigrationFileName(year))
}

// ReadMigration parses one migration workbook into estimate flows. Year is
// left zero. post2010 selects the layout with the extra summary columns and
// N/A cells.
func (r *Reader) ReadMigration(ctx context.Context, path string, post2010 bool) ([]domain.Flow, error) {
	return r.readFlows(ctx, path, 0, domain.LayoutFor(post2010))
}

// ReadMigrationMeasures parses one migration workbook keeping estimate and
// margin-of-error cells as raw text. Year is left zero.
func (r *Reader) ReadMigrationMeasures(ctx context.Context, path string, post2010 bool) ([]domain.Measure, error) {
	return r.readMeasures(ctx, path, 0, domain.LayoutFor(post2010))
}

func (r *Reader) readMeasures(ctx context.Context, path string, year int, layout domain.MigrationLayout) ([]domain.Measure, error) {
	start := r.clock.Now()

	sheet, err := r.loader.Load(ctx, path)
	if err != nil {
		return nil, &domain.FileError{Path: path, Year: year, Err: err}
	}
	measures, err := domain.ParseMigrationSheet(sheet, layout)
	if err != nil {
		return nil, &domain.FileError{Path: path, Year: year, Err: err}
	}
	for i := range measures {
		measures[i].Year = year
	}

	r.observe(observability.KindMigration, len(measures), start)
	r.logger.Info("migration table parsed",
		"path", path,
		"year", year,
		"layout", layout.Name,
		"rows", len(measures),
	)
	return measures, nil
}

func (r *Reader) readFlows(ctx context.Context, path string, year int, layout domain.MigrationLayout) ([]domain.Flow, error) {
	start := r.clock.Now()

	sheet, err := r.loader.Load(ctx, path)
	if err != nil {
		return nil, &domain.FileError{Path: path, Year: year, Err: err}
	}
	measures, err := domain.ParseMigrationSheet(sheet, layout)
	if err != nil {
		return nil, &domain.FileError{Path: path, Year: year, Err: err}
	}

	if !layout.DropNA {
		if n := countSentinels(measures); n > 0 {
			// Only post-2010 tables are known to carry N/A; seeing it here
			// means the cast below fails and the layout needs revisiting.
			r.logger.Warn("N/A cells in table without N/A handling",
				"path", path, "year", year, "layout", layout.Name, "cells", n)
		}
	}

	res, err := domain.ResolveEstimates(measures, layout)
	if err != nil {
		return nil, &domain.FileError{Path: path, Year: year, Err: err}
	}
	for i := range res.Flows {
		res.Flows[i].Year = year
	}

	r.metrics.NACellsDropped.Add(float64(res.NADropped))
	r.observe(observability.KindMigration, len(res.Flows), start)
	r.logger.Info("migration table parsed",
		"path", path,
		"year", year,
		"layout", layout.Name,
		"rows", len(res.Flows),
		"na_dropped", res.NADropped,
	)
	return res.Flows, nil
}

// ReadPopulationFile parses one population workbook.
func (r *Reader) ReadPopulationFile(ctx context.Context, path string) ([]domain.Population, error) {
	start := r.clock.Now()

	sheet, err := r.loader.Load(ctx, path)
	if err != nil {
		return nil, &domain.FileError{Path: path, Err: err}
	}
	pops, err := domain.ParsePopulationSheet(sheet)
	if err != nil {
		return nil, &domain.FileError{Path: path, Err: err}
	}

	r.observe(observability.KindPopulation, len(pops), start)
	r.logger.Info("population table parsed", "path", path, "rows", len(pops))
	return pops, nil
}

// ReadPopulation parses both population workbooks and concatenates them,
// 2000s first.
func (r *Reader) ReadPopulation(ctx context.Context) ([]domain.Population, error) {
	var all []domain.Population
	for _, name := range domain.PopulationFiles() {
		pops, err := r.ReadPopulationFile(ctx, filepath.Join(r.dataDir, name))
		if err != nil {
			return nil, err
		}
		all = append(all, pops...)
	}
	return all, nil
}

// ReadYearRange reads the migration tables for every year in [first, last]
// and concatenates them in ascending year order. With withPopulation set,
// each flow gets the origin's population in the previous year and the
// destination's population in the flow year.
func (r *Reader) ReadYearRange(ctx context.Context, first, last int, withPopulation bool) ([]domain.Flow, error) {
	flows, err := readRange(ctx, first, last, func(ctx context.Context, year int) ([]domain.Flow, error) {
		return r.readFlows(ctx, r.MigrationPath(year), year, domain.LayoutForYear(year))
	})
	if err != nil || !withPopulation {
		return flows, err
	}

	idx, err := r.populationIndex(ctx)
	if err != nil {
		return nil, err
	}
	joined := domain.JoinFlows(flows, idx)
	for _, f := range joined {
		r.recordMisses(f.PopFromLag1, f.PopTo)
	}
	return joined, nil
}

// ReadYearRangeMeasures is ReadYearRange in margin-of-error mode.
func (r *Reader) ReadYearRangeMeasures(ctx context.Context, first, last int, withPopulation bool) ([]domain.Measure, error) {
	measures, err := readRange(ctx, first, last, func(ctx context.Context, year int) ([]domain.Measure, error) {
		return r.readMeasures(ctx, r.MigrationPath(year), year, domain.LayoutForYear(year))
	})
	if err != nil || !withPopulation {
		return measures, err
	}

	idx, err := r.populationIndex(ctx)
	if err != nil {
		return nil, err
	}
	joined := domain.JoinMeasures(measures, idx)
	for _, m := range joined {
		r.recordMisses(m.PopFromLag1, m.PopTo)
	}
	return joined, nil
}

// CleanFlows applies domain.ExtraCleaning and counts the removed rows.
func (r *Reader) CleanFlows(flows []domain.Flow) []domain.Flow {
	out := domain.ExtraCleaning(flows)
	r.metrics.RowsFiltered.Add(float64(len(flows) - len(out)))
	return out
}

// CleanMeasures applies domain.ExtraCleaning and counts the removed rows.
func (r *Reader) CleanMeasures(measures []domain.Measure) []domain.Measure {
	out := domain.ExtraCleaning(measures)
	r.metrics.RowsFiltered.Add(float64(len(measures) - len(out)))
	return out
}

// ErrInvalidRange is returned before any file is read when the requested
// years are inverted or outside the published tables.
var ErrInvalidRange = errors.New("invalid year range")

func readRange[T any](ctx context.Context, first, last int, read func(ctx context.Context, year int) ([]T, error)) ([]T, error) {
	if first > last || first < domain.FirstMigrationYear || last > domain.LastMigrationYear {
		return nil, fmt.Errorf("%w: %d-%d, tables cover %d-%d",
			ErrInvalidRange, first, last, domain.FirstMigrationYear, domain.LastMigrationYear)
	}

	var all []T
	for year := first; year <= last; year++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := read(ctx, year)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}
	return all, nil
}

func (r *Reader) populationIndex(ctx context.Context) (domain.PopulationIndex, error) {
	pops, err := r.ReadPopulation(ctx)
	if err != nil {
		return domain.PopulationIndex{}, err
	}
	return domain.NewPopulationIndex(pops), nil
}

func (r *Reader) recordMisses(fromLag1, to *int64) {
	if fromLag1 == nil {
		r.metrics.PopulationMisses.WithLabelValues(observability.SideFromLag1).Inc()
	}
	if to == nil {
		r.metrics.PopulationMisses.WithLabelValues(observability.SideTo).Inc()
	}
}

func (r *Reader) observe(kind string, rows int, start time.Time) {
	r.metrics.WorkbooksRead.WithLabelValues(kind).Inc()
	r.metrics.RowsParsed.WithLabelValues(kind).Add(float64(rows))
	r.metrics.ParseDuration.WithLabelValues(kind).Observe(r.clock.Since(start).Seconds())
}

func countSentinels(measures []domain.Measure) int {
	n := 0
	for _, m := range measures {
		if m.Type == domain.ValueTypeEstimate && strings.Contains(m.Value, domain.NASentinel) {
			n++
		}
	}
	return n
}
