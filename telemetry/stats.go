// Package telemetry turns sampled culture runs into artifacts: summary
// statistics, CSV exports, and growth-curve charts.
package telemetry

import (
	"errors"
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/petri/culture"
)

// RunSummary condenses one run's sampled series into headline numbers.
type RunSummary struct {
	Snapshots      int     `csv:"snapshots" json:"snapshots"`
	FinalTime      float64 `csv:"final_time" json:"final_time"`
	FinalTotal     int     `csv:"final_total" json:"final_total"`
	FinalViable    int     `csv:"final_viable" json:"final_viable"`
	FinalViability float64 `csv:"final_viability" json:"final_viability"`

	// Peak population and when it was observed.
	PeakTotal int     `csv:"peak_total" json:"peak_total"`
	PeakTime  float64 `csv:"peak_time" json:"peak_time"`

	// Final total over starting total. Zero when the dish started empty.
	GrowthFold float64 `csv:"growth_fold" json:"growth_fold"`

	// Viability distribution across all samples.
	ViabilityMean float64 `csv:"viability_mean" json:"viability_mean"`
	ViabilityP10  float64 `csv:"viability_p10" json:"viability_p10"`
	ViabilityP50  float64 `csv:"viability_p50" json:"viability_p50"`
	ViabilityP90  float64 `csv:"viability_p90" json:"viability_p90"`
}

// ReplicateSummary is one batch replicate's row in summary.csv.
type ReplicateSummary struct {
	Replicate int    `csv:"replicate" json:"replicate"`
	Seed      int64  `csv:"seed" json:"seed"`
	CellLine  string `csv:"cell_line" json:"cell_line"`
	RunSummary
}

// Summarize computes a RunSummary from a sampled series. The series must
// hold at least one snapshot.
func Summarize(series culture.Series) (RunSummary, error) {
	if len(series) == 0 {
		return RunSummary{}, errors.New("summarize: empty series")
	}

	final := series.Final()
	sum := RunSummary{
		Snapshots:      len(series),
		FinalTime:      final.Time,
		FinalTotal:     final.Total,
		FinalViable:    final.Viable,
		FinalViability: final.Viability,
	}

	viabilities := make([]float64, len(series))
	peak := series[0]
	for i, s := range series {
		viabilities[i] = s.Viability
		if s.Total > peak.Total {
			peak = s
		}
	}
	sum.PeakTotal = peak.Total
	sum.PeakTime = peak.Time

	if first := series[0].Total; first > 0 {
		sum.GrowthFold = float64(final.Total) / float64(first)
	}

	sort.Float64s(viabilities)
	sum.ViabilityMean = stat.Mean(viabilities, nil)
	sum.ViabilityP10 = stat.Quantile(0.10, stat.Empirical, viabilities, nil)
	sum.ViabilityP50 = stat.Quantile(0.50, stat.Empirical, viabilities, nil)
	sum.ViabilityP90 = stat.Quantile(0.90, stat.Empirical, viabilities, nil)

	return sum, nil
}

// LogValue implements slog.LogValuer for structured logging.
func (s RunSummary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("snapshots", s.Snapshots),
		slog.Float64("final_time", s.FinalTime),
		slog.Int("final_total", s.FinalTotal),
		slog.Int("final_viable", s.FinalViable),
		slog.Float64("final_viability", s.FinalViability),
		slog.Int("peak_total", s.PeakTotal),
		slog.Float64("peak_time", s.PeakTime),
		slog.Float64("growth_fold", s.GrowthFold),
		slog.Float64("viability_mean", s.ViabilityMean),
		slog.Float64("viability_p10", s.ViabilityP10),
		slog.Float64("viability_p50", s.ViabilityP50),
		slog.Float64("viability_p90", s.ViabilityP90),
	)
}
