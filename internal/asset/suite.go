package asset

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Suite is a YAML-defined collection of test assets run as one unit.
type Suite struct {
	Version int          `yaml:"version"`
	Name    string       `yaml:"name,omitempty"`
	Assets  []*TestAsset `yaml:"assets"`
}

// LoadSuite reads a YAML suite file from disk. Assets without an explicit id
// are assigned sequential ids in file order; assets with an unknown
// expected_output fail the load rather than silently passing later.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse suite YAML: %w", err)
	}
	if len(s.Assets) == 0 {
		return nil, fmt.Errorf("suite %s declares no test assets", path)
	}
	if s.Name == "" {
		s.Name = filepath.Base(path)
	}
	for i, a := range s.Assets {
		if a == nil {
			return nil, fmt.Errorf("suite %s: asset %d is empty", path, i)
		}
		if a.ID == "" {
			a.ID = NextAssetID()
		}
		if a.InputID == "" || a.OutputID == "" {
			return nil, fmt.Errorf("suite %s: asset %s is missing input_id or output_id", path, a.ID)
		}
		if a.PredicateID == "" && a.PredicateName == "" {
			return nil, fmt.Errorf("suite %s: asset %s has neither predicate_id nor predicate_name", path, a.ID)
		}
		if a.ExpectedOutput != "" && !a.ExpectedOutput.Valid() {
			return nil, fmt.Errorf("suite %s: asset %s has unknown expected_output %q", path, a.ID, a.ExpectedOutput)
		}
	}
	return &s, nil
}
