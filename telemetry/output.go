package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/petri/culture"
)

// OutputManager writes run artifacts (series CSVs, summary rows, charts,
// manifests) under a single output directory.
type OutputManager struct {
	dir         string
	summaryFile *os.File

	summaryHeaderWritten bool
}

// NewOutputManager creates the output directory and the shared summary
// file. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "summary.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating summary.csv: %w", err)
	}

	return &OutputManager{dir: dir, summaryFile: f}, nil
}

// WriteSeries writes one run's sampled series to <name>.csv.
func (om *OutputManager) WriteSeries(name string, series culture.Series) error {
	if om == nil {
		return nil
	}

	f, err := os.Create(filepath.Join(om.dir, name+".csv"))
	if err != nil {
		return fmt.Errorf("creating %s.csv: %w", name, err)
	}
	defer f.Close()

	if err := gocsv.Marshal(series, f); err != nil {
		return fmt.Errorf("writing %s.csv: %w", name, err)
	}
	return nil
}

// AppendSummary appends one replicate row to summary.csv. The first write
// includes headers, subsequent writes skip them.
func (om *OutputManager) AppendSummary(row ReplicateSummary) error {
	if om == nil {
		return nil
	}

	records := []ReplicateSummary{row}

	if !om.summaryHeaderWritten {
		if err := gocsv.Marshal(records, om.summaryFile); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
		om.summaryHeaderWritten = true
		return nil
	}

	if err := gocsv.MarshalWithoutHeaders(records, om.summaryFile); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// WriteSummaryJSON saves one run's summary as <name>.json.
func (om *OutputManager) WriteSummaryJSON(name string, sum RunSummary) error {
	if om == nil {
		return nil
	}

	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}

	if err := os.WriteFile(filepath.Join(om.dir, name+".json"), data, 0644); err != nil {
		return fmt.Errorf("writing %s.json: %w", name, err)
	}
	return nil
}

// WriteManifest saves the run parameters as run.yaml next to the data.
func (om *OutputManager) WriteManifest(line string, cfg culture.RunConfig) error {
	if om == nil {
		return nil
	}

	manifest := struct {
		CellLine string            `yaml:"cell_line"`
		Run      culture.RunConfig `yaml:"run"`
	}{CellLine: line, Run: cfg}

	data, err := yaml.Marshal(&manifest)
	if err != nil {
		return fmt.Errorf("marshaling run manifest: %w", err)
	}

	if err := os.WriteFile(filepath.Join(om.dir, "run.yaml"), data, 0644); err != nil {
		return fmt.Errorf("writing run.yaml: %w", err)
	}
	return nil
}

// WriteChart renders the growth curve for one run to <name>.png.
func (om *OutputManager) WriteChart(name string, series culture.Series) error {
	if om == nil {
		return nil
	}

	f, err := os.Create(filepath.Join(om.dir, name+".png"))
	if err != nil {
		return fmt.Errorf("creating %s.png: %w", name, err)
	}
	defer f.Close()

	if err := RenderGrowthChart(series, f); err != nil {
		return fmt.Errorf("rendering %s.png: %w", name, err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes the shared summary file.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	if om.summaryFile != nil {
		return om.summaryFile.Close()
	}
	return nil
}
