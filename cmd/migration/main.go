// Command migration reads the Census state-to-state migration tables for the
// configured year range, joins state population, keeps state-to-state pairs
// and prints a preview of the result.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/census-migration-etl/internal/adapter/workbook"
	"github.com/couchcryptid/census-migration-etl/internal/config"
	"github.com/couchcryptid/census-migration-etl/internal/observability"
	"github.com/couchcryptid/census-migration-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := run(ctx, cfg, logger, metrics)

	if cfg.MetricsTextfile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsTextfile, prometheus.DefaultGatherer); err != nil {
			logger.Error("metrics textfile write error", "path", cfg.MetricsTextfile, "error", err)
		}
	}

	if runErr != nil {
		logger.Error("migration read failed", "error", runErr)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	loader := workbook.NewLoader(logger)
	reader := pipeline.NewReader(loader, cfg.DataDir, logger, metrics, nil)

	logger.Info("reading migration tables",
		"data_dir", cfg.DataDir,
		"first_year", cfg.FirstYear,
		"last_year", cfg.LastYear,
		"population", cfg.IncludePopulation,
		"moe", cfg.IncludeMoE,
	)

	if cfg.IncludeMoE {
		measures, err := reader.ReadYearRangeMeasures(ctx, cfg.FirstYear, cfg.LastYear, cfg.IncludePopulation)
		if err != nil {
			return err
		}
		measures = reader.CleanMeasures(measures)
		logger.Info("migration tables read", "rows", len(measures))
		if cfg.PreviewRows == 0 {
			return nil
		}
		if err := writePreview(os.Stdout, cfg.PreviewFormat, head(measures, cfg.PreviewRows), measureColumns, measureCells); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
		return nil
	}

	flows, err := reader.ReadYearRange(ctx, cfg.FirstYear, cfg.LastYear, cfg.IncludePopulation)
	if err != nil {
		return err
	}
	flows = reader.CleanFlows(flows)
	logger.Info("migration tables read", "rows", len(flows))
	// PREVIEW_ROWS=0 leaves stdout to the logger.
	if cfg.PreviewRows == 0 {
		return nil
	}
	if err := writePreview(os.Stdout, cfg.PreviewFormat, head(flows, cfg.PreviewRows), flowColumns, flowCells); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	return nil
}

func head[T any](rows []T, n int) []T {
	if n < len(rows) {
		return rows[:n]
	}
	return rows
}
