// Command validate checks a Census data directory against the properties the
// reader guarantees: reference-set membership, non-negative estimates,
// long-table cardinality, idempotent re-parse, no same-state pairs after
// cleaning and the lagged population join.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -data-dir data \
//	  -first 2005 -last 2019
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/go-cmp/cmp"

	"github.com/couchcryptid/census-migration-etl/internal/adapter/workbook"
	"github.com/couchcryptid/census-migration-etl/internal/domain"
	"github.com/couchcryptid/census-migration-etl/internal/observability"
	"github.com/couchcryptid/census-migration-etl/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", "data", "directory containing the Census workbooks")
	first := flag.Int("first", domain.FirstMigrationYear, "first migration table year")
	last := flag.Int("last", domain.LastMigrationYear, "last migration table year")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, *dataDir, *first, *last)
	stop()
	os.Exit(code)
}

// yearTable is one migration workbook parsed twice.
type yearTable struct {
	year     int
	measures []domain.Measure
	reparsed []domain.Measure
	result   domain.EstimateResult
}

func run(ctx context.Context, dataDir string, first, last int) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	loader := workbook.NewLoader(logger)
	reader := pipeline.NewReader(loader, dataDir, logger, observability.NewMetrics(), nil)

	// ── Load all data sources ──
	fmt.Println("=== Census Migration Data Validation ===")
	fmt.Println()

	tables, err := loadTables(ctx, loader, reader, first, last)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load migration tables: %v\n", err)
		return 1
	}

	flows, err := reader.ReadYearRange(ctx, first, last, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read year range: %v\n", err)
		return 1
	}

	pops, err := reader.ReadPopulation(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read population: %v\n", err)
		return 1
	}
	idx := domain.NewPopulationIndex(pops)
	cleaned := reader.CleanFlows(flows)

	// ── Run validation phases ──
	phases := []*phase{
		validateCardinality(tables),
		validateIdempotence(tables),
		validateCleaned(cleaned),
		validatePopulationJoin(flows, idx),
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d tables, %d flows, %d after cleaning, %d population rows\n",
		len(tables), len(flows), len(cleaned), len(pops))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadTables(ctx context.Context, loader *workbook.Loader, reader *pipeline.Reader, first, last int) ([]yearTable, error) {
	var tables []yearTable
	for year := first; year <= last; year++ {
		path := reader.MigrationPath(year)
		layout := domain.LayoutForYear(year)

		sheet, err := loader.Load(ctx, path)
		if err != nil {
			return nil, &domain.FileError{Path: path, Year: year, Err: err}
		}
		measures, err := domain.ParseMigrationSheet(sheet, layout)
		if err != nil {
			return nil, &domain.FileError{Path: path, Year: year, Err: err}
		}
		reparsed, err := domain.ParseMigrationSheet(sheet, layout)
		if err != nil {
			return nil, &domain.FileError{Path: path, Year: year, Err: err}
		}
		result, err := domain.ResolveEstimates(measures, layout)
		if err != nil {
			return nil, &domain.FileError{Path: path, Year: year, Err: err}
		}
		tables = append(tables, yearTable{year: year, measures: measures, reparsed: reparsed, result: result})
	}
	return tables, nil
}

// ── Phase 1: Cardinality ──
// Every destination row meets every origin column; flows plus dropped N/A
// cells account for every estimate cell.

func validateCardinality(tables []yearTable) *phase {
	p := &phase{name: "Phase 1: Long-table cardinality"}

	for _, t := range tables {
		destinations := map[string]bool{}
		origins := map[string]bool{}
		estimates := 0
		for _, m := range t.measures {
			if m.Type != domain.ValueTypeEstimate {
				continue
			}
			destinations[m.To] = true
			origins[m.From] = true
			estimates++
		}

		if want := len(destinations) * len(origins); estimates != want {
			p.errorf("%d: %d estimate cells, expected %d destinations x %d origins = %d",
				t.year, estimates, len(destinations), len(origins), want)
		}
		if got := len(t.result.Flows) + t.result.NADropped; got != estimates {
			p.errorf("%d: %d flows + %d dropped N/A != %d estimate cells",
				t.year, len(t.result.Flows), t.result.NADropped, estimates)
		}
		if !domain.LayoutForYear(t.year).DropNA && t.result.NADropped != 0 {
			p.errorf("%d: pre-2010 table dropped %d cells", t.year, t.result.NADropped)
		}
		for _, f := range t.result.Flows {
			if f.Estimate < 0 {
				p.errorf("%d: negative estimate %d for %s <- %s", t.year, f.Estimate, f.To, f.From)
			}
		}
	}
	return p
}

// ── Phase 2: Idempotence ──

func validateIdempotence(tables []yearTable) *phase {
	p := &phase{name: "Phase 2: Idempotent re-parse"}
	for _, t := range tables {
		if diff := cmp.Diff(t.measures, t.reparsed); diff != "" {
			p.errorf("%d: re-parse differs (-first +second):\n%s", t.year, diff)
		}
	}
	return p
}

// ── Phase 3: Cleaned table ──

func validateCleaned(flows []domain.Flow) *phase {
	p := &phase{name: "Phase 3: State pairs after cleaning"}
	for _, f := range flows {
		if !domain.IsState(f.To) {
			p.errorf("%d: destination %q not in reference set", f.Year, f.To)
		}
		if !domain.IsState(f.From) {
			p.errorf("%d: origin %q not in reference set", f.Year, f.From)
		}
		if f.From == f.To {
			p.errorf("%d: same-state flow for %q", f.Year, f.To)
		}
	}
	return p
}

// ── Phase 4: Population join ──
// PopFromLag1 is the origin's population in the previous year, PopTo the
// destination's in the flow year, nil when absent.

func validatePopulationJoin(flows []domain.Flow, idx domain.PopulationIndex) *phase {
	p := &phase{name: "Phase 4: Lagged population join"}
	for _, f := range flows {
		if want := idx.Lookup(f.From, f.Year-1); !ptrIntEq(want, f.PopFromLag1) {
			p.errorf("%d %s <- %s: pop_from_lag1 expected %s, got %s",
				f.Year, f.To, f.From, ptrInt(want), ptrInt(f.PopFromLag1))
		}
		if want := idx.Lookup(f.To, f.Year); !ptrIntEq(want, f.PopTo) {
			p.errorf("%d %s <- %s: pop_to expected %s, got %s",
				f.Year, f.To, f.From, ptrInt(want), ptrInt(f.PopTo))
		}
	}
	return p
}

// ── Helpers ──

func ptrIntEq(a, b *int64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func ptrInt(n *int64) string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprint(*n)
}
