package culture

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when a run configuration fails validation.
var ErrInvalidConfig = errors.New("invalid run configuration")

// RunConfig describes one culture run. Duration and DT are in hours.
// Seed selects the random stream; zero means derive one from the wall
// clock at construction.
type RunConfig struct {
	InitialCells int     `yaml:"initial_cells" json:"initial_cells"`
	Duration     float64 `yaml:"duration" json:"duration"`
	DT           float64 `yaml:"dt" json:"dt"`
	Seed         int64   `yaml:"seed" json:"seed"`
}

// Validate checks the configuration. Every failure wraps ErrInvalidConfig
// so callers can match with errors.Is.
func (c RunConfig) Validate() error {
	if c.InitialCells < 0 {
		return fmt.Errorf("%w: initial cell count %d is negative", ErrInvalidConfig, c.InitialCells)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration %v must be positive", ErrInvalidConfig, c.Duration)
	}
	if c.DT <= 0 {
		return fmt.Errorf("%w: dt %v must be positive", ErrInvalidConfig, c.DT)
	}
	if c.DT > c.Duration {
		return fmt.Errorf("%w: dt %v exceeds duration %v", ErrInvalidConfig, c.DT, c.Duration)
	}
	return nil
}

// Steps returns the number of ticks a run of this configuration takes.
func (c RunConfig) Steps() int {
	return int(c.Duration / c.DT)
}

// SampleInterval returns the tick spacing between snapshots, targeting
// about MaxSeriesPoints per run. Short runs sample every tick.
func (c RunConfig) SampleInterval() int {
	interval := c.Steps() / MaxSeriesPoints
	if interval < 1 {
		interval = 1
	}
	return interval
}
