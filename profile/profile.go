// Package profile defines cell line profiles and the catalog they are
// served from. A profile is static biology: the engine reads it, never
// writes it, and one run consumes exactly one profile.
package profile

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Category classifies a cell line's provenance.
type Category string

const (
	CategoryTumor  Category = "tumor"
	CategoryNormal Category = "normal"
	CategoryStem   Category = "stem"
)

// CellLine describes a cultured cell line.
// Phase durations and doubling time are in hours; metabolic rates in
// pmol/cell/hr; drug sensitivity maps drug class to an IC50-like
// concentration in uM.
type CellLine struct {
	Name     string   `yaml:"name" json:"name" validate:"required"`
	Category Category `yaml:"category" json:"category" validate:"required,oneof=tumor normal stem"`
	Origin   string   `yaml:"origin" json:"origin" validate:"required"`

	DoublingTime float64 `yaml:"doubling_time" json:"doubling_time" validate:"gt=0"`
	Adherent     bool    `yaml:"adherent" json:"adherent"`

	G1Duration float64 `yaml:"g1_duration" json:"g1_duration" validate:"gt=0"`
	SDuration  float64 `yaml:"s_duration" json:"s_duration" validate:"gt=0"`
	G2Duration float64 `yaml:"g2_duration" json:"g2_duration" validate:"gt=0"`
	MDuration  float64 `yaml:"m_duration" json:"m_duration" validate:"gt=0"`

	GlucoseConsumption float64 `yaml:"glucose_consumption" json:"glucose_consumption" validate:"gt=0"`
	OxygenConsumption  float64 `yaml:"oxygen_consumption" json:"oxygen_consumption" validate:"gt=0"`
	LactateProduction  float64 `yaml:"lactate_production" json:"lactate_production" validate:"gte=0"`

	DrugSensitivity map[string]float64 `yaml:"drug_sensitivity" json:"drug_sensitivity" validate:"dive,gt=0"`

	// Signaling coefficients, clamped to [0,1] at load time.
	GrowthFactorDependence float64 `yaml:"growth_factor_dependence" json:"growth_factor_dependence"`
	ContactInhibition      float64 `yaml:"contact_inhibition" json:"contact_inhibition"`
}

// CycleLength returns the full cell-cycle duration in hours.
func (c *CellLine) CycleLength() float64 {
	return c.G1Duration + c.SDuration + c.G2Duration + c.MDuration
}

var validate = validator.New()

// normalize clamps the signaling coefficients and fills the name from the
// catalog key when the entry omits it.
func (c *CellLine) normalize(key string) {
	if c.Name == "" {
		c.Name = key
	}
	c.GrowthFactorDependence = clampUnit(c.GrowthFactorDependence)
	c.ContactInhibition = clampUnit(c.ContactInhibition)
}

// Validate checks the profile's fields after normalization.
func (c *CellLine) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("cell line %q: %w", c.Name, err)
	}
	return nil
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
