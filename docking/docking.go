package docking

import (
	"math"
	"math/rand"
	"sort"
)

// Scoring terms. The score starts at baseAffinity (kcal/mol) and gains a
// bonus for pocket fit, lipophilicity, and hydrogen bonding capacity, with
// a penalty per rotatable bond. Each pose adds Gaussian noise and later
// poses drift modeSpread worse per rank.
const (
	baseAffinity  = -6.0
	sizeWeight    = 2.5
	lipoWeight    = 1.5
	hbWeight      = 2.0
	rotPenalty    = 0.15
	modeSpread    = 0.3
	affinityNoise = 0.8
)

// Interaction sampling ranges.
const (
	minInteractions = 3
	maxInteractions = 7
	minDistance     = 2.5
	maxDistance     = 4.5
	minEnergy       = -4.0
	maxEnergy       = -0.5
	minRMSDLower    = 0.0
	maxRMSDLower    = 2.0
	minRMSDUpper    = 1.0
	maxRMSDUpper    = 4.0
)

// DefaultNumModes is the pose count used when the caller asks for none.
const DefaultNumModes = 9

var interactionTypes = []string{
	"Hydrogen Bond",
	"Hydrophobic Contact",
	"π-π Stacking",
	"π-Cation",
	"Salt Bridge",
	"van der Waals",
}

// Interaction is one contact between a docked pose and a pocket residue.
type Interaction struct {
	Type     string  `json:"type"`
	Residue  string  `json:"residue"`
	Distance float64 `json:"distance"`
	Energy   float64 `json:"energy"`
}

// Mode is one predicted pose. Mode numbers reflect generation order, so
// after sorting they record where each pose ranked before rescoring.
type Mode struct {
	Mode         int           `json:"mode"`
	Affinity     float64       `json:"affinity"`
	RMSDLower    float64       `json:"rmsd_lb"`
	RMSDUpper    float64       `json:"rmsd_ub"`
	Interactions []Interaction `json:"interactions"`
}

// BindingSite summarizes the target pocket.
type BindingSite struct {
	Volume       float64 `json:"volume"`
	Druggability float64 `json:"druggability"`
	Flexibility  float64 `json:"flexibility"`
}

// Result is a full docking report. Modes are sorted by affinity, best
// (most negative) first.
type Result struct {
	Protein      Protein     `json:"protein"`
	Ligand       Ligand      `json:"ligand"`
	Modes        []Mode      `json:"modes"`
	BestAffinity float64     `json:"best_affinity"`
	BindingSite  BindingSite `json:"binding_site"`
}

// Run docks the ligand into the protein's binding site and reports
// numModes poses. numModes values of zero or less fall back to
// DefaultNumModes. All draws come from rng, so a fixed seed reproduces
// the report exactly.
func Run(proteinID, ligandID string, numModes int, rng *rand.Rand) (*Result, error) {
	protein, err := ProteinByID(proteinID)
	if err != nil {
		return nil, err
	}
	ligand, err := LigandByID(ligandID)
	if err != nil {
		return nil, err
	}
	if numModes <= 0 {
		numModes = DefaultNumModes
	}

	modes := make([]Mode, numModes)
	for i := range modes {
		modes[i] = Mode{
			Mode:         i + 1,
			Affinity:     round2(poseScore(protein, ligand, i, rng)),
			RMSDLower:    round2(uniform(rng, minRMSDLower, maxRMSDLower)),
			RMSDUpper:    round2(uniform(rng, minRMSDUpper, maxRMSDUpper)),
			Interactions: sampleInteractions(protein, rng),
		}
	}
	sort.SliceStable(modes, func(a, b int) bool {
		return modes[a].Affinity < modes[b].Affinity
	})

	return &Result{
		Protein:      protein,
		Ligand:       ligand,
		Modes:        modes,
		BestAffinity: modes[0].Affinity,
		BindingSite: BindingSite{
			Volume:       protein.BindingSiteVolume,
			Druggability: protein.Druggability,
			Flexibility:  protein.FlexibilityScore,
		},
	}, nil
}

// baseScore is the deterministic part of the scoring function.
func baseScore(p Protein, l Ligand) float64 {
	score := baseAffinity
	score -= math.Min(l.MolecularWeight/p.BindingSiteVolume, 1) * sizeWeight
	score -= math.Min(math.Max(l.LogP/5, 0), 1) * lipoWeight
	score -= float64(l.HBD+l.HBA) / 10 * hbWeight
	score += float64(l.RotatableBonds) * rotPenalty
	return score
}

// poseScore perturbs the base score for the mode-th pose.
func poseScore(p Protein, l Ligand, mode int, rng *rand.Rand) float64 {
	return baseScore(p, l) + rng.NormFloat64()*affinityNoise + float64(mode)*modeSpread
}

// sampleInteractions draws 3 to 7 contacts against the pocket residues.
func sampleInteractions(p Protein, rng *rand.Rand) []Interaction {
	n := minInteractions + rng.Intn(maxInteractions-minInteractions+1)
	out := make([]Interaction, n)
	for i := range out {
		out[i] = Interaction{
			Type:     interactionTypes[rng.Intn(len(interactionTypes))],
			Residue:  p.Residues[rng.Intn(len(p.Residues))],
			Distance: round2(uniform(rng, minDistance, maxDistance)),
			Energy:   round2(uniform(rng, minEnergy, maxEnergy)),
		}
	}
	return out
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
