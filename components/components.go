// Package components defines the ECS components that make up a cultured cell.
package components

// Position is a cell's location in the dish plane.
// Assigned at seeding and at division; cells do not move afterwards.
type Position struct {
	X, Y float64
}

// Body holds the physical size of a cell.
type Body struct {
	Radius float64
}

// Cycle tracks progress through the cell cycle.
// Progress is the fraction of the full cycle completed; Phase is derived
// from Progress against the line's phase durations.
type Cycle struct {
	Phase    Phase
	Progress float64
}

// Vitals holds a cell's viability state.
// Health stays in [0,1]; a cell whose health falls below the death
// threshold is marked not alive but remains tracked until cleared.
type Vitals struct {
	Alive  bool
	Health float64
}

// Metabolism holds a cell's energetic state.
// ATP drifts every tick and never goes negative. Glucose and Oxygen are
// seeded at creation for inspection and are not simulated.
type Metabolism struct {
	ATP     float64
	Glucose float64
	Oxygen  float64
}

// Lineage identifies a cell and its division history.
type Lineage struct {
	ID        uint32
	Divisions int32
	CanDivide bool
}

// Fate records the death pathway once a cell has died.
// Both pathways are cleared at the same odds; the split is diagnostic.
type Fate struct {
	Apoptotic bool
	Necrotic  bool
}
