package profile

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// ErrNotFound is returned when a cell line name is not in the catalog.
var ErrNotFound = errors.New("cell line not found")

// Catalog holds validated cell line profiles keyed by name.
type Catalog struct {
	lines map[string]*CellLine
	names []string
}

// catalogFile is the on-disk shape of a catalog document.
type catalogFile struct {
	CellLines map[string]*CellLine `yaml:"cell_lines"`
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Load("")
}

// MustDefault is like Default but panics on error. The embedded catalog is
// validated by tests, so a failure here means a broken build.
func MustDefault() *Catalog {
	cat, err := Default()
	if err != nil {
		panic(fmt.Sprintf("profile: embedded catalog: %v", err))
	}
	return cat
}

// Load returns the built-in catalog merged with the file at path.
// A user entry with a built-in name replaces that line wholesale.
// If path is empty, only the built-in lines are used.
func Load(path string) (*Catalog, error) {
	var base catalogFile
	if err := yaml.Unmarshal(catalogYAML, &base); err != nil {
		return nil, fmt.Errorf("parsing embedded catalog: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading catalog file: %w", err)
		}
		var user catalogFile
		if err := yaml.Unmarshal(data, &user); err != nil {
			return nil, fmt.Errorf("parsing catalog file: %w", err)
		}
		for name, line := range user.CellLines {
			base.CellLines[name] = line
		}
	}

	cat := &Catalog{
		lines: make(map[string]*CellLine, len(base.CellLines)),
		names: make([]string, 0, len(base.CellLines)),
	}
	for name, line := range base.CellLines {
		line.normalize(name)
		if err := line.Validate(); err != nil {
			return nil, err
		}
		cat.lines[line.Name] = line
		cat.names = append(cat.names, line.Name)
	}
	sort.Strings(cat.names)
	return cat, nil
}

// Get returns the profile for name. The returned profile is shared and
// must be treated as read-only.
func (c *Catalog) Get(name string) (*CellLine, error) {
	line, ok := c.lines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return line, nil
}

// Names returns the catalog's line names in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// All returns the catalog as a name-keyed map. The map is a copy; the
// profiles are shared.
func (c *Catalog) All() map[string]*CellLine {
	out := make(map[string]*CellLine, len(c.lines))
	for name, line := range c.lines {
		out[name] = line
	}
	return out
}

// Len returns the number of lines in the catalog.
func (c *Catalog) Len() int {
	return len(c.lines)
}
