package asset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSuite(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write suite file: %v", err)
	}
	return path
}

func TestLoadSuite(t *testing.T) {
	resetAssetIDs()
	path := writeSuite(t, `
version: 1
name: chemical-disease
assets:
  - input_id: DRUGBANK:DB01592
    input_category: biolink:SmallMolecule
    predicate_id: biolink:treats
    output_id: MONDO:0011426
    output_category: biolink:Disease
    expected_output: TopAnswer
    kp_source: infores:molepro
  - input_id: NCBIGene:3778
    predicate_name: genetically associated with
    output_id: MONDO:0011565
    expected_output: Acceptable
`)
	s, err := LoadSuite(path)
	if err != nil {
		t.Fatalf("LoadSuite failed: %v", err)
	}
	if s.Name != "chemical-disease" {
		t.Errorf("expected suite name kept, got %s", s.Name)
	}
	if len(s.Assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(s.Assets))
	}
	if s.Assets[0].ID != "TestAsset:00001" || s.Assets[1].ID != "TestAsset:00002" {
		t.Errorf("expected sequential ids, got %s, %s", s.Assets[0].ID, s.Assets[1].ID)
	}
	if s.Assets[1].Predicate() != "biolink:genetically_associated_with" {
		t.Errorf("expected predicate name resolved, got %s", s.Assets[1].Predicate())
	}
}

func TestLoadSuite_NameDefaultsToFile(t *testing.T) {
	path := writeSuite(t, `
assets:
  - input_id: a:1
    predicate_id: biolink:treats
    output_id: b:2
`)
	s, err := LoadSuite(path)
	if err != nil {
		t.Fatalf("LoadSuite failed: %v", err)
	}
	if s.Name != "assets.yaml" {
		t.Errorf("expected file-name default, got %s", s.Name)
	}
}

func TestLoadSuite_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "assets: []", "declares no test assets"},
		{"missing ids", `
assets:
  - predicate_id: biolink:treats
    output_id: b:2
`, "missing input_id or output_id"},
		{"missing predicate", `
assets:
  - input_id: a:1
    output_id: b:2
`, "neither predicate_id nor predicate_name"},
		{"bad expected output", `
assets:
  - input_id: a:1
    predicate_id: biolink:treats
    output_id: b:2
    expected_output: Sometimes
`, "unknown expected_output"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := LoadSuite(writeSuite(t, c.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Errorf("expected error containing %q, got %v", c.want, err)
			}
		})
	}
}

func TestLoadSuite_MissingFile(t *testing.T) {
	if _, err := LoadSuite(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
