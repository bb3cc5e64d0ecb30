package components

// Phase enumerates the cell-cycle phases.
type Phase uint8

const (
	PhaseG1 Phase = iota
	PhaseS
	PhaseG2
	PhaseM
)

// String returns the display name for a Phase.
func (p Phase) String() string {
	names := PhaseNames()
	if int(p) < len(names) {
		return names[p]
	}
	return "Unknown"
}

// PhaseNames returns the display names for all phases.
// The order matches the Phase constants.
func PhaseNames() []string {
	return []string{"G1", "S", "G2", "M"}
}

// PhaseCount returns the number of cell-cycle phases.
func PhaseCount() int {
	return len(PhaseNames())
}
