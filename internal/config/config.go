package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/census-migration-etl/internal/domain"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	DataDir string

	FirstYear         int
	LastYear          int
	IncludePopulation bool
	IncludeMoE        bool

	PreviewRows   int
	PreviewFormat string

	LogLevel  string
	LogFormat string

	// MetricsTextfile, when set, receives the run's metrics in Prometheus
	// text exposition format.
	MetricsTextfile string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	firstYear, err := parseYear("FIRST_YEAR", domain.FirstMigrationYear)
	if err != nil {
		return nil, err
	}
	lastYear, err := parseYear("LAST_YEAR", domain.LastMigrationYear)
	if err != nil {
		return nil, err
	}
	includePopulation, err := parseBool("INCLUDE_POPULATION", true)
	if err != nil {
		return nil, err
	}
	includeMoE, err := parseBool("INCLUDE_MOE", false)
	if err != nil {
		return nil, err
	}
	previewRows, err := strconv.Atoi(sharedcfg.EnvOrDefault("PREVIEW_ROWS", "5"))
	if err != nil || previewRows < 0 {
		return nil, errors.New("invalid PREVIEW_ROWS")
	}

	cfg := &Config{
		DataDir:           sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		FirstYear:         firstYear,
		LastYear:          lastYear,
		IncludePopulation: includePopulation,
		IncludeMoE:        includeMoE,
		PreviewRows:       previewRows,
		PreviewFormat:     strings.ToLower(sharedcfg.EnvOrDefault("PREVIEW_FORMAT", "table")),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		MetricsTextfile:   sharedcfg.EnvOrDefault("METRICS_TEXTFILE", ""),
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if cfg.FirstYear > cfg.LastYear {
		return nil, fmt.Errorf("FIRST_YEAR %d is after LAST_YEAR %d", cfg.FirstYear, cfg.LastYear)
	}
	if cfg.PreviewFormat != "table" && cfg.PreviewFormat != "json" {
		return nil, fmt.Errorf("invalid PREVIEW_FORMAT %q: want table or json", cfg.PreviewFormat)
	}

	return cfg, nil
}

func parseYear(key string, def int) (int, error) {
	s := sharedcfg.EnvOrDefault(key, strconv.Itoa(def))
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	if year < domain.FirstMigrationYear || year > domain.LastMigrationYear {
		return 0, fmt.Errorf("%s %d outside %d-%d", key, year, domain.FirstMigrationYear, domain.LastMigrationYear)
	}
	return year, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := sharedcfg.EnvOrDefault(key, strconv.FormatBool(def))
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, s)
	}
	return v, nil
}
