// Package culture implements the cell population engine: a dish of cells
// advanced tick by tick through stochastic metabolism, division, death
// and clearance, sampled into a time series.
package culture

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/petri/components"
	"github.com/pthm-cable/petri/profile"
)

// Dish dimensions. Positions are decorative: assigned at seeding and at
// division, never moved, never collided.
const (
	DishMinX = 50.0
	DishMaxX = 750.0
	DishMinY = 50.0
	DishMaxY = 550.0
)

// Population dynamics constants.
const (
	// PopulationCap bounds the tracked population. The division gate
	// counts queued births, so the cap holds at every observable point.
	PopulationCap = 5000

	// DivisionChance is the per-tick division probability for a cell
	// whose cycle progress has reached 1.
	DivisionChance = 0.3

	// ClearanceChance is the per-tick probability that a dead cell is
	// cleared from the dish.
	ClearanceChance = 0.2

	// DeathThreshold is the health floor below which a cell dies.
	DeathThreshold = 0.1

	// DaughterSpacing scales the parent radius into the daughter's
	// placement distance.
	DaughterSpacing = 2.5
)

// Per-tick drift amplitudes.
const (
	ATPDrift    = 0.02
	HealthDrift = 0.01
)

// Cell seeding parameters.
const (
	BaseRadius   = 10.0
	RadiusJitter = 2.0
)

// apoptosisATPFloor splits the death pathways: dying with at least this
// much ATP reads as apoptosis, below it as necrosis. Both pathways clear
// at the same odds.
const apoptosisATPFloor = 0.3

// MaxSeriesPoints caps how many snapshots a run samples.
const MaxSeriesPoints = 200

// RunStats counts the discrete events of a run.
type RunStats struct {
	Divisions int
	Deaths    int
	Cleared   int
}

// Simulation is one cell culture. It is single-threaded and owns its
// random stream; one Simulation must not be stepped concurrently, but
// independent Simulations can run in parallel.
type Simulation struct {
	world *ecs.World
	rng   *rand.Rand
	line  *profile.CellLine
	cfg   RunConfig

	cells *ecs.Map7[
		components.Position,
		components.Body,
		components.Cycle,
		components.Vitals,
		components.Metabolism,
		components.Lineage,
		components.Fate,
	]
	filter *ecs.Filter7[
		components.Position,
		components.Body,
		components.Cycle,
		components.Vitals,
		components.Metabolism,
		components.Lineage,
		components.Fate,
	]

	tick    int
	time    float64
	nextID  uint32
	tracked int

	stats RunStats
}

// New creates a simulation seeded with cfg.InitialCells cells of line.
// Configuration problems are reported here, never mid-run.
func New(line *profile.CellLine, cfg RunConfig) (*Simulation, error) {
	if line == nil {
		return nil, fmt.Errorf("%w: nil cell line", ErrInvalidConfig)
	}
	if line.CycleLength() <= 0 {
		return nil, fmt.Errorf("%w: cell line %q has a non-positive cycle length", ErrInvalidConfig, line.Name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	world := ecs.NewWorld()
	s := &Simulation{
		world: world,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		line:  line,
		cfg:   cfg,
		cells: ecs.NewMap7[
			components.Position,
			components.Body,
			components.Cycle,
			components.Vitals,
			components.Metabolism,
			components.Lineage,
			components.Fate,
		](world),
		filter: ecs.NewFilter7[
			components.Position,
			components.Body,
			components.Cycle,
			components.Vitals,
			components.Metabolism,
			components.Lineage,
			components.Fate,
		](world),
	}

	for i := 0; i < cfg.InitialCells; i++ {
		s.seedCell()
	}
	return s, nil
}

// Step advances the culture by one tick. Births and clearances observed
// during iteration are queued and applied in a batch afterwards; the
// store is never mutated mid-query.
func (s *Simulation) Step() {
	s.tick++
	s.time += s.cfg.DT

	type birth struct {
		x, y      float64
		divisions int32
	}
	var births []birth
	var cleared []ecs.Entity

	cycleLength := s.line.CycleLength()

	query := s.filter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, body, cyc, vit, met, lin, fate := query.Get()

		if !vit.Alive {
			// Clearance trial. A failed corpse stays on the dish and
			// retries next tick, so total and viable counts diverge.
			if s.rng.Float64() < ClearanceChance {
				cleared = append(cleared, entity)
			}
			continue
		}

		// Metabolic and health drift.
		met.ATP = math.Max(0, met.ATP+s.uniform(-ATPDrift, ATPDrift))
		vit.Health = clampUnit(vit.Health + s.uniform(-HealthDrift, HealthDrift))

		// Cycle progression.
		cyc.Progress += s.cfg.DT / cycleLength
		cyc.Phase = s.phaseFor(cyc.Progress)

		// Division. A blocked cell keeps its progress and retries on
		// later ticks.
		if cyc.Progress >= 1 && lin.CanDivide && s.tracked+len(births) < PopulationCap {
			if s.rng.Float64() < DivisionChance {
				angle := s.uniform(0, 2*math.Pi)
				offset := body.Radius * DaughterSpacing
				births = append(births, birth{
					x:         pos.X + offset*math.Cos(angle),
					y:         pos.Y + offset*math.Sin(angle),
					divisions: lin.Divisions + 1,
				})
				cyc.Progress = 0
				cyc.Phase = components.PhaseG1
			}
		}

		// Death. The cell dies in place and takes an immediate
		// clearance trial this same tick.
		if vit.Health < DeathThreshold {
			vit.Alive = false
			if met.ATP >= apoptosisATPFloor {
				fate.Apoptotic = true
			} else {
				fate.Necrotic = true
			}
			s.stats.Deaths++
			if s.rng.Float64() < ClearanceChance {
				cleared = append(cleared, entity)
			}
		}
	}

	// Batch apply, births first.
	for _, b := range births {
		s.spawnCell(b.x, b.y, b.divisions)
		s.stats.Divisions++
	}
	for _, entity := range cleared {
		s.cells.Remove(entity)
		s.tracked--
		s.stats.Cleared++
	}
}

// Run advances the culture through the configured duration, sampling on
// a fixed cadence. The first sample lands after the first tick, at
// time = dt. Calling Run again extends the same culture.
func (s *Simulation) Run() Series {
	steps := s.cfg.Steps()
	interval := s.cfg.SampleInterval()

	series := make(Series, 0, steps/interval+1)
	for i := 0; i < steps; i++ {
		s.Step()
		if i%interval == 0 {
			series = append(series, s.Sample())
		}
	}
	return series
}

// phaseFor maps cycle progress to a phase using the line's durations.
// Progress at or past a full cycle reads as M: the cell is division
// ready and waits there until its division trial succeeds.
func (s *Simulation) phaseFor(progress float64) components.Phase {
	hours := progress * s.line.CycleLength()
	switch {
	case hours < s.line.G1Duration:
		return components.PhaseG1
	case hours < s.line.G1Duration+s.line.SDuration:
		return components.PhaseS
	case hours < s.line.G1Duration+s.line.SDuration+s.line.G2Duration:
		return components.PhaseG2
	default:
		return components.PhaseM
	}
}

// Tick returns the number of ticks advanced so far.
func (s *Simulation) Tick() int {
	return s.tick
}

// Time returns the culture clock in hours.
func (s *Simulation) Time() float64 {
	return s.time
}

// Count returns the number of tracked cells, dead ones included.
func (s *Simulation) Count() int {
	return s.tracked
}

// Line returns the cell line this culture grows.
func (s *Simulation) Line() *profile.CellLine {
	return s.line
}

// Config returns the run configuration with the effective seed.
func (s *Simulation) Config() RunConfig {
	return s.cfg
}

// Stats returns the event counters accumulated so far.
func (s *Simulation) Stats() RunStats {
	return s.stats
}

// uniform draws from [lo, hi).
func (s *Simulation) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
