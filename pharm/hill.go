// Package pharm predicts dose response for catalog cell lines with a
// fixed-slope Hill model keyed to each line's per-class IC50 values.
package pharm

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/petri/profile"
)

const (
	// HillSlope is the Hill coefficient shared by all drug classes.
	HillSlope = 1.5
	// DefaultIC50 is assumed when a line carries no entry for a drug
	// class (μM).
	DefaultIC50 = 10.0
)

var ErrInvalidConcentration = errors.New("concentration must be non-negative")

// Response is a dose-response prediction at a single concentration.
// Efficacy and viability are percentages.
type Response struct {
	IC50          float64 `json:"ic50"`
	Concentration float64 `json:"concentration"`
	Efficacy      float64 `json:"predicted_efficacy"`
	Viability     float64 `json:"predicted_viability"`
}

// Predict evaluates the Hill curve for drugClass against line at the
// given concentration in μM. A concentration equal to the IC50 yields
// exactly 50% efficacy.
func Predict(line *profile.CellLine, drugClass string, concentration float64) (Response, error) {
	if line == nil {
		return Response{}, errors.New("nil cell line")
	}
	if concentration < 0 {
		return Response{}, fmt.Errorf("%w: got %v", ErrInvalidConcentration, concentration)
	}

	ic50 := DefaultIC50
	if v, ok := line.DrugSensitivity[drugClass]; ok {
		ic50 = v
	}

	cPow := math.Pow(concentration, HillSlope)
	efficacy := cPow / (math.Pow(ic50, HillSlope) + cPow) * 100

	return Response{
		IC50:          ic50,
		Concentration: concentration,
		Efficacy:      round2(efficacy),
		Viability:     round2(100 - efficacy),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
