// Package main runs replicate batches of culture simulations from the
// command line, writing per-replicate series CSVs, growth charts and a
// shared summary table.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/petri/culture"
	"github.com/pthm-cable/petri/profile"
	"github.com/pthm-cable/petri/telemetry"
)

func main() {
	// CLI flags
	line := flag.String("line", "HeLa", "Cell line name from the catalog")
	catalogPath := flag.String("catalog", "", "Extra cell line YAML (empty = built-ins only)")
	cells := flag.Int("cells", 100, "Initial cell count per replicate")
	duration := flag.Float64("duration", 48, "Simulated duration in hours")
	dt := flag.Float64("dt", 0.1, "Tick length in hours")
	replicates := flag.Int("replicates", 1, "Number of replicate runs")
	seed := flag.Int64("seed", 42, "Base seed; replicate k runs with seed+k")
	out := flag.String("out", "", "Output directory (empty = no files)")
	workers := flag.Int("workers", runtime.NumCPU(), "Replicates run in parallel")
	logFormat := flag.String("log-format", "text", "Log format: text or json")
	flag.Parse()

	// Structured logs go to stderr; progress output stays on stdout.
	var handler slog.Handler
	if *logFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	} else {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}
	slog.SetDefault(slog.New(handler))

	catalog, err := profile.Load(*catalogPath)
	if err != nil {
		slog.Error("failed to load cell line catalog", "error", err)
		os.Exit(1)
	}
	cellLine, err := catalog.Get(*line)
	if err != nil {
		slog.Error("unknown cell line", "error", err, "known", catalog.Names())
		os.Exit(1)
	}

	runCfg := culture.RunConfig{
		InitialCells: *cells,
		Duration:     *duration,
		DT:           *dt,
	}
	if err := runCfg.Validate(); err != nil {
		slog.Error("invalid run configuration", "error", err)
		os.Exit(1)
	}
	if *replicates < 1 {
		slog.Error("replicates must be at least 1", "replicates", *replicates)
		os.Exit(1)
	}

	outMgr, err := telemetry.NewOutputManager(*out)
	if err != nil {
		slog.Error("failed to prepare output directory", "error", err)
		os.Exit(1)
	}
	defer outMgr.Close()
	if err := outMgr.WriteManifest(cellLine.Name, runCfg); err != nil {
		slog.Error("failed to write run manifest", "error", err)
		os.Exit(1)
	}

	slog.Info("starting batch",
		"cell_line", cellLine.Name,
		"replicates", *replicates,
		"cells", runCfg.InitialCells,
		"duration_h", runCfg.Duration,
		"dt_h", runCfg.DT,
		"steps", runCfg.Steps(),
		"workers", *workers,
	)

	summaries := make([]telemetry.ReplicateSummary, *replicates)
	start := time.Now()

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(*workers)
	for k := 0; k < *replicates; k++ {
		g.Go(func() error {
			repCfg := runCfg
			repCfg.Seed = *seed + int64(k)

			sim, err := culture.New(cellLine, repCfg)
			if err != nil {
				return fmt.Errorf("replicate %d: %w", k, err)
			}
			series := sim.Run()

			sum, err := telemetry.Summarize(series)
			if err != nil {
				return fmt.Errorf("replicate %d: %w", k, err)
			}
			summaries[k] = telemetry.ReplicateSummary{
				Replicate:  k,
				Seed:       repCfg.Seed,
				CellLine:   cellLine.Name,
				RunSummary: sum,
			}

			name := fmt.Sprintf("replicate_%03d", k)
			if err := outMgr.WriteSeries(name, series); err != nil {
				return fmt.Errorf("replicate %d: %w", k, err)
			}
			if err := outMgr.WriteChart(name, series); err != nil {
				// A flat or single-point series cannot be charted; the
				// CSV still has the data.
				if errors.Is(err, telemetry.ErrSeriesTooShort) {
					slog.Warn("chart skipped", "replicate", k, "error", err)
				} else {
					slog.Warn("chart failed", "replicate", k, "error", err)
				}
			}

			slog.Info("replicate complete",
				"replicate", k,
				"seed", repCfg.Seed,
				"final_total", sum.FinalTotal,
				"final_viability", sum.FinalViability,
				"growth_fold", sum.GrowthFold,
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("batch failed", "error", err)
		os.Exit(1)
	}

	// Summary rows are appended after the fact so the table stays in
	// replicate order no matter how the workers finished.
	folds := make([]float64, *replicates)
	viabilities := make([]float64, *replicates)
	for k, sum := range summaries {
		folds[k] = sum.GrowthFold
		viabilities[k] = sum.FinalViability
		if err := outMgr.AppendSummary(sum); err != nil {
			slog.Error("failed to append summary row", "error", err)
			os.Exit(1)
		}
	}
	if *replicates == 1 {
		if err := outMgr.WriteSummaryJSON("summary", summaries[0].RunSummary); err != nil {
			slog.Error("failed to write summary json", "error", err)
			os.Exit(1)
		}
	}

	fmt.Printf("%d replicate(s) of %s complete in %s\n",
		*replicates, cellLine.Name, time.Since(start).Round(time.Millisecond))
	fmt.Printf("Mean final viability: %.2f%%\n", stat.Mean(viabilities, nil))
	fmt.Printf("Mean growth fold: %.2fx\n", stat.Mean(folds, nil))
	if dir := outMgr.Dir(); dir != "" {
		fmt.Printf("Results written to: %s\n", dir)
	}
}
