package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kosmylo/geospatial-retrieval/internal/logger"
)

// Result records the outcome of one pipeline run.
type Result struct {
	Name     string
	Duration time.Duration
	Files    []string
	Err      error
}

// Runner executes pipelines sequentially. A pipeline failure is logged and
// recorded but never prevents the remaining pipelines from running.
type Runner struct {
	log *logger.Logger
}

// NewRunner creates a new runner.
func NewRunner(log *logger.Logger) *Runner {
	return &Runner{log: log}
}

// Run executes each pipeline against baseDir/<name> and returns one result
// per pipeline, in order.
func (r *Runner) Run(ctx context.Context, baseDir string, pipelines []Pipeline) []Result {
	results := make([]Result, 0, len(pipelines))

	for _, p := range pipelines {
		outputDir := filepath.Join(baseDir, p.Name())

		r.log.Info("pipeline starting", "dataset", p.Name(), "output", outputDir)

		start := time.Now()
		err := r.runOne(ctx, p, outputDir)
		duration := time.Since(start)

		if err != nil {
			r.log.Error("pipeline failed", "dataset", p.Name(), "duration", duration, "error", err)
		} else {
			r.log.Info("pipeline completed", "dataset", p.Name(), "duration", duration)
		}

		results = append(results, Result{
			Name:     p.Name(),
			Duration: duration,
			Files:    listFiles(outputDir),
			Err:      err,
		})
	}

	return results
}

func (r *Runner) runOne(ctx context.Context, p Pipeline, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	return p.RetrieveAndPrepare(ctx, outputDir)
}

// listFiles returns the names of regular files directly under dir.
func listFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []string

	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}

	return files
}
