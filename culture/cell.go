package culture

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/petri/components"
)

// seedCell places a fresh cell at a uniform position in the dish.
func (s *Simulation) seedCell() {
	x := s.uniform(DishMinX, DishMaxX)
	y := s.uniform(DishMinY, DishMaxY)
	s.spawnCell(x, y, 0)
}

// spawnCell creates a cell with fresh random vitals at (x, y). Daughters
// inherit nothing but their placement and division count.
func (s *Simulation) spawnCell(x, y float64, divisions int32) ecs.Entity {
	id := s.nextID
	s.nextID++

	pos := components.Position{X: x, Y: y}
	body := components.Body{Radius: BaseRadius + s.uniform(-RadiusJitter, RadiusJitter)}
	cyc := components.Cycle{Phase: components.PhaseG1}
	vit := components.Vitals{Alive: true, Health: s.uniform(0.9, 1.0)}
	met := components.Metabolism{
		ATP:     s.uniform(0.8, 1.0),
		Glucose: s.uniform(0.7, 1.0),
		Oxygen:  s.uniform(0.7, 1.0),
	}
	lin := components.Lineage{ID: id, Divisions: divisions, CanDivide: true}
	fate := components.Fate{}

	entity := s.cells.NewEntity(&pos, &body, &cyc, &vit, &met, &lin, &fate)
	s.tracked++
	return entity
}

// CellInfo is a detached copy of one cell's state. Mutating it does not
// touch the culture.
type CellInfo struct {
	ID        uint32
	X, Y      float64
	Radius    float64
	Phase     components.Phase
	Progress  float64
	Alive     bool
	Health    float64
	ATP       float64
	Glucose   float64
	Oxygen    float64
	Divisions int32
	Apoptotic bool
	Necrotic  bool
}

// Cells returns a snapshot of every tracked cell in iteration order.
func (s *Simulation) Cells() []CellInfo {
	out := make([]CellInfo, 0, s.tracked)
	query := s.filter.Query()
	for query.Next() {
		pos, body, cyc, vit, met, lin, fate := query.Get()
		out = append(out, CellInfo{
			ID:        lin.ID,
			X:         pos.X,
			Y:         pos.Y,
			Radius:    body.Radius,
			Phase:     cyc.Phase,
			Progress:  cyc.Progress,
			Alive:     vit.Alive,
			Health:    vit.Health,
			ATP:       met.ATP,
			Glucose:   met.Glucose,
			Oxygen:    met.Oxygen,
			Divisions: lin.Divisions,
			Apoptotic: fate.Apoptotic,
			Necrotic:  fate.Necrotic,
		})
	}
	return out
}
