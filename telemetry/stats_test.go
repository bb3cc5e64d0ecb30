package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/petri/culture"
)

func testSeries() culture.Series {
	return culture.Series{
		{Time: 1, Total: 10, Viable: 10, Viability: 100, AvgHealth: 0.95, AvgATP: 0.9},
		{Time: 2, Total: 30, Viable: 27, Viability: 90, AvgHealth: 0.9, AvgATP: 0.85},
		{Time: 3, Total: 25, Viable: 20, Viability: 80, AvgHealth: 0.8, AvgATP: 0.8},
		{Time: 4, Total: 20, Viable: 14, Viability: 70, AvgHealth: 0.7, AvgATP: 0.75},
	}
}

func TestSummarize(t *testing.T) {
	sum, err := Summarize(testSeries())
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}

	if sum.Snapshots != 4 {
		t.Errorf("Snapshots = %d, want 4", sum.Snapshots)
	}
	if sum.FinalTime != 4 {
		t.Errorf("FinalTime = %v, want 4", sum.FinalTime)
	}
	if sum.FinalTotal != 20 || sum.FinalViable != 14 {
		t.Errorf("final counts = %d/%d, want 20/14", sum.FinalTotal, sum.FinalViable)
	}
	if sum.FinalViability != 70 {
		t.Errorf("FinalViability = %v, want 70", sum.FinalViability)
	}
	if sum.PeakTotal != 30 {
		t.Errorf("PeakTotal = %d, want 30", sum.PeakTotal)
	}
	if sum.PeakTime != 2 {
		t.Errorf("PeakTime = %v, want 2", sum.PeakTime)
	}
	if math.Abs(sum.GrowthFold-2) > 1e-12 {
		t.Errorf("GrowthFold = %v, want 2", sum.GrowthFold)
	}
	if math.Abs(sum.ViabilityMean-85) > 1e-12 {
		t.Errorf("ViabilityMean = %v, want 85", sum.ViabilityMean)
	}
	if sum.ViabilityP10 != 70 {
		t.Errorf("ViabilityP10 = %v, want 70", sum.ViabilityP10)
	}
	if sum.ViabilityP50 != 80 {
		t.Errorf("ViabilityP50 = %v, want 80", sum.ViabilityP50)
	}
	if sum.ViabilityP90 != 100 {
		t.Errorf("ViabilityP90 = %v, want 100", sum.ViabilityP90)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if _, err := Summarize(nil); err == nil {
		t.Error("Summarize(nil) expected error, got nil")
	}
}

func TestSummarizeEmptyDishStart(t *testing.T) {
	series := culture.Series{
		{Time: 1},
		{Time: 2},
	}
	sum, err := Summarize(series)
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if sum.GrowthFold != 0 {
		t.Errorf("GrowthFold = %v, want 0 for an empty start", sum.GrowthFold)
	}
	if sum.PeakTotal != 0 {
		t.Errorf("PeakTotal = %d, want 0", sum.PeakTotal)
	}
}
