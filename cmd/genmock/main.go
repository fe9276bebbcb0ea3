// Command genmock writes a synthetic Census data directory: one state-to-state
// migration workbook per year and both state population workbooks. The grids
// come from internal/fixture, the same builders the test suites use, so a
// local run of cmd/migration exercises every parsing step.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out-dir data \
//	  -first 2005 -last 2019 \
//	  -states 0
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/couchcryptid/census-migration-etl/internal/domain"
	"github.com/couchcryptid/census-migration-etl/internal/fixture"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "", "directory to write workbooks into")
	first := flag.Int("first", domain.FirstMigrationYear, "first migration table year")
	last := flag.Int("last", domain.LastMigrationYear, "last migration table year")
	states := flag.Int("states", 0, "number of reference-set states to include (0 = all)")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out-dir")
	}
	if *first > *last || *first < domain.FirstMigrationYear || *last > domain.LastMigrationYear {
		return fmt.Errorf("year range %d-%d outside %d-%d", *first, *last, domain.FirstMigrationYear, domain.LastMigrationYear)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	names := fixture.States(*states)
	if err := fixture.WriteDataDir(*outDir, *first, *last, names); err != nil {
		return err
	}
	log.Printf("wrote %d migration tables and %d population tables for %d states to %s",
		*last-*first+1, len(domain.PopulationFiles()), len(names), *outDir)

	return printStats(*outDir)
}

func printStats(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	type fileSize struct {
		name string
		size int64
	}
	var files []fileSize
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return err
		}
		files = append(files, fileSize{e.Name(), info.Size()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })

	fmt.Println("\n=== Workbooks ===")
	for _, f := range files {
		fmt.Printf("  %-36s %8d bytes\n", f.name, f.size)
	}
	fmt.Printf("Directory: %s\n", filepath.Clean(dir))
	return nil
}
