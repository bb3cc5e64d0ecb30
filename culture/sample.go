package culture

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Snapshot is one sampled point of a culture's trajectory. Viability
// rounds to 2 decimals and the means to 3. Time is kept exact so the
// series stays strictly increasing at any dt.
type Snapshot struct {
	Time      float64 `json:"time" csv:"time"`
	Total     int     `json:"total" csv:"total"`
	Viable    int     `json:"viable" csv:"viable"`
	Viability float64 `json:"viability" csv:"viability"`
	AvgHealth float64 `json:"avg_health" csv:"avg_health"`
	AvgATP    float64 `json:"avg_atp" csv:"avg_atp"`
}

// Series is an ordered sequence of snapshots from one run.
type Series []Snapshot

// LogValue implements slog.LogValuer so progress logging stays cheap.
func (s Snapshot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("time", s.Time),
		slog.Int("total", s.Total),
		slog.Int("viable", s.Viable),
		slog.Float64("viability", s.Viability),
	)
}

// Final returns the last snapshot, or a zero snapshot for an empty series.
func (s Series) Final() Snapshot {
	if len(s) == 0 {
		return Snapshot{}
	}
	return s[len(s)-1]
}

// Sample aggregates the current dish state without advancing it. Means
// cover viable cells only; an empty dish samples as all zeros.
func (s *Simulation) Sample() Snapshot {
	var healths, atps []float64
	total := 0

	query := s.filter.Query()
	for query.Next() {
		_, _, _, vit, met, _, _ := query.Get()
		total++
		if vit.Alive {
			healths = append(healths, vit.Health)
			atps = append(atps, met.ATP)
		}
	}

	snap := Snapshot{Time: s.time, Total: total, Viable: len(healths)}
	if total > 0 {
		snap.Viability = round2(float64(snap.Viable) / float64(total) * 100)
	}
	if len(healths) > 0 {
		snap.AvgHealth = round3(stat.Mean(healths, nil))
		snap.AvgATP = round3(stat.Mean(atps, nil))
	}
	return snap
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
