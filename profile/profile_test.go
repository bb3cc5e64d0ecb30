package profile

import (
	"math"
	"testing"
)

func TestCycleLength(t *testing.T) {
	tests := []struct {
		name string
		line CellLine
		want float64
	}{
		{"HeLa-like", CellLine{G1Duration: 10, SDuration: 8, G2Duration: 4, MDuration: 2}, 24},
		{"HEK293-like", CellLine{G1Duration: 8, SDuration: 7, G2Duration: 3, MDuration: 2}, 20},
		{"fractional", CellLine{G1Duration: 0.5, SDuration: 0.25, G2Duration: 0.15, MDuration: 0.1}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.line.CycleLength()
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CycleLength() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeClampsCoefficients(t *testing.T) {
	line := CellLine{
		GrowthFactorDependence: 1.5,
		ContactInhibition:      -0.2,
	}
	line.normalize("X1")

	if line.Name != "X1" {
		t.Errorf("Name = %q, want catalog key fill-in", line.Name)
	}
	if line.GrowthFactorDependence != 1.0 {
		t.Errorf("GrowthFactorDependence = %v, want 1.0", line.GrowthFactorDependence)
	}
	if line.ContactInhibition != 0.0 {
		t.Errorf("ContactInhibition = %v, want 0.0", line.ContactInhibition)
	}
}

func TestValidateRejectsBadProfiles(t *testing.T) {
	good := CellLine{
		Name: "T1", Category: CategoryTumor, Origin: "test",
		DoublingTime: 20, G1Duration: 8, SDuration: 7, G2Duration: 3, MDuration: 2,
		GlucoseConsumption: 1, OxygenConsumption: 1, LactateProduction: 1,
		DrugSensitivity: map[string]float64{"taxol": 5},
	}

	tests := []struct {
		name   string
		mutate func(*CellLine)
	}{
		{"missing name", func(c *CellLine) { c.Name = "" }},
		{"bad category", func(c *CellLine) { c.Category = "plasmid" }},
		{"zero doubling time", func(c *CellLine) { c.DoublingTime = 0 }},
		{"negative phase duration", func(c *CellLine) { c.G1Duration = -1 }},
		{"zero drug sensitivity", func(c *CellLine) { c.DrugSensitivity["taxol"] = 0 }},
	}

	if err := good.Validate(); err != nil {
		t.Fatalf("baseline profile should validate, got: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := good
			line.DrugSensitivity = map[string]float64{"taxol": 5}
			tt.mutate(&line)
			if err := line.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
