// Package main provides the retriever command that runs the enabled dataset
// pipelines and prepares their outputs for graph import.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kosmylo/geospatial-retrieval/internal/config"
	"github.com/kosmylo/geospatial-retrieval/internal/cordis"
	"github.com/kosmylo/geospatial-retrieval/internal/fetch"
	"github.com/kosmylo/geospatial-retrieval/internal/geocode"
	"github.com/kosmylo/geospatial-retrieval/internal/gridkit"
	"github.com/kosmylo/geospatial-retrieval/internal/logger"
	"github.com/kosmylo/geospatial-retrieval/internal/osm"
	"github.com/kosmylo/geospatial-retrieval/internal/pipeline"
	"github.com/kosmylo/geospatial-retrieval/internal/powerplants"
	"github.com/kosmylo/geospatial-retrieval/internal/report"
	"github.com/kosmylo/geospatial-retrieval/internal/tso"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file (optional)")
	outputDir := flag.String("output", "", "Base output directory (overrides config)")

	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if *outputDir != "" {
		cfg.Output.BaseDir = *outputDir
	}

	log := logger.NewLogger(cfg.Logging.Level)

	log.Info("🚀 Starting geospatial data retrieval")
	log.Info(cfg.String())

	pipelines, err := buildPipelines(cfg, log)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Setup failed: %v", err))
		os.Exit(1)
	}

	runner := pipeline.NewRunner(log)
	results := runner.Run(context.Background(), cfg.Output.BaseDir, pipelines)

	log.Info("✨ Retrieval complete")

	fmt.Println()
	fmt.Print(report.RenderSummary(results))

	for _, r := range results {
		if r.Err != nil {
			os.Exit(1)
		}
	}
}

// loadConfig reads the config file when given, otherwise starts from the
// defaults; environment overrides apply either way.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}

	cfg := config.DefaultConfig()
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// buildPipelines assembles the enabled dataset pipelines.
func buildPipelines(cfg *config.Config, log *logger.Logger) ([]pipeline.Pipeline, error) {
	client := fetch.NewClientWithConfig(&cfg.Retry, log)

	var pipelines []pipeline.Pipeline

	if cfg.Datasets.OSM {
		pipelines = append(pipelines, osm.New(client, log.With("dataset", "osm")))
	}

	if cfg.Datasets.GridKit {
		// Boundary data decodes once here, not per vertex.
		geo, err := geocode.NewResolver()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize reverse geocoder: %w", err)
		}

		pipelines = append(pipelines, gridkit.New(client, geo, log.With("dataset", "gridkit")))
	}

	if cfg.Datasets.PowerPlants {
		pipelines = append(pipelines, powerplants.New(client, log.With("dataset", "powerplants")))
	}

	if cfg.Datasets.TSO {
		pipelines = append(pipelines, tso.New(client, cfg.Entsoe.APIToken, log.With("dataset", "tso")))
	}

	if cfg.Datasets.CORDIS {
		pipelines = append(pipelines, cordis.New(client, log.With("dataset", "cordis")))
	}

	return pipelines, nil
}
