// Package asset defines the test asset data model for one-hop testing.
// A test asset names a single known knowledge-graph edge (subject, predicate,
// object) together with the outcome a Translator component is expected to
// produce for it. Assets arrive from YAML suite files or ad-hoc CLI flags.
package asset

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// ExpectedOutput classifies how a test asset's edge should rank in results.
type ExpectedOutput string

const (
	TopAnswer        ExpectedOutput = "TopAnswer"
	Acceptable       ExpectedOutput = "Acceptable"
	BadButForgivable ExpectedOutput = "BadButForgivable"
	NeverShow        ExpectedOutput = "NeverShow"
	OverlyGeneric    ExpectedOutput = "OverlyGeneric"
)

// expectedOutputs is the membership set for Valid.
var expectedOutputs = map[ExpectedOutput]struct{}{
	TopAnswer:        {},
	Acceptable:       {},
	BadButForgivable: {},
	NeverShow:        {},
	OverlyGeneric:    {},
}

// Valid reports whether e is a recognized expected output value.
func (e ExpectedOutput) Valid() bool {
	_, ok := expectedOutputs[e]
	return ok
}

// Qualifier is a biolink statement qualifier attached to a test edge.
type Qualifier struct {
	TypeID string `yaml:"qualifier_type_id" json:"qualifier_type_id"`
	Value  string `yaml:"qualifier_value" json:"qualifier_value"`
}

// TestAsset is a single one-hop test case: a known edge plus the expected
// outcome when a Translator component is queried about it.
type TestAsset struct {
	ID             string         `yaml:"id,omitempty" json:"id"`
	Name           string         `yaml:"name,omitempty" json:"name,omitempty"`
	InputID        string         `yaml:"input_id" json:"input_id"`
	InputCategory  string         `yaml:"input_category,omitempty" json:"input_category,omitempty"`
	PredicateID    string         `yaml:"predicate_id,omitempty" json:"predicate_id,omitempty"`
	PredicateName  string         `yaml:"predicate_name,omitempty" json:"predicate_name,omitempty"`
	OutputID       string         `yaml:"output_id" json:"output_id"`
	OutputCategory string         `yaml:"output_category,omitempty" json:"output_category,omitempty"`
	ExpectedOutput ExpectedOutput `yaml:"expected_output" json:"expected_output"`
	Qualifiers     []Qualifier    `yaml:"qualifiers,omitempty" json:"qualifiers,omitempty"`
	KPSource       string         `yaml:"kp_source,omitempty" json:"kp_source,omitempty"`
	ARASource      string         `yaml:"ara_source,omitempty" json:"ara_source,omitempty"`
}

// assetCounter backs the process-global sequential asset id generator.
var assetCounter atomic.Uint64

// NextAssetID returns the next sequential asset identifier, e.g. "TestAsset:00001".
func NextAssetID() string {
	return fmt.Sprintf("TestAsset:%05d", assetCounter.Add(1))
}

// resetAssetIDs rewinds the id generator. Test hook only.
func resetAssetIDs() {
	assetCounter.Store(0)
}

// BuildTestAsset assembles an asset from the minimal test harness inputs and
// assigns it the next sequential id. The relationship may be either a biolink
// predicate CURIE or a plain-English predicate name.
func BuildTestAsset(inputID, relationship, outputID string, expected ExpectedOutput) *TestAsset {
	a := &TestAsset{
		ID:             NextAssetID(),
		InputID:        inputID,
		OutputID:       outputID,
		ExpectedOutput: expected,
	}
	if strings.Contains(relationship, ":") {
		a.PredicateID = relationship
	} else {
		a.PredicateName = relationship
	}
	return a
}

// PredicateCURIE converts a plain-English predicate name into a biolink CURIE.
// Subject-matter experts write "genetically associated with"; TRAPI wants
// "biolink:genetically_associated_with".
func PredicateCURIE(name string) string {
	p := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	return "biolink:" + p
}

// Predicate returns the asset's predicate as a biolink CURIE. An explicit
// predicate_id wins over a predicate_name.
func (a *TestAsset) Predicate() string {
	if a.PredicateID != "" {
		return a.PredicateID
	}
	return PredicateCURIE(a.PredicateName)
}

// DefaultCategory is assumed for nodes whose asset does not declare one.
const DefaultCategory = "biolink:NamedThing"

// TestEdge is the flattened, validator-facing view of a test asset: the edge
// fields relabelled the way response validation expects them, with category
// defaults applied.
type TestEdge struct {
	Idx             string
	SubjectID       string
	SubjectCategory string
	Predicate       string
	ObjectID        string
	ObjectCategory  string
	Qualifiers      []Qualifier
	BiolinkVersion  string
	KPSource        string
	ARASource       string
}

// Edge derives the test edge for an asset under the given biolink model version.
func (a *TestAsset) Edge(biolinkVersion string) TestEdge {
	e := TestEdge{
		Idx:             a.ID,
		SubjectID:       a.InputID,
		SubjectCategory: a.InputCategory,
		Predicate:       a.Predicate(),
		ObjectID:        a.OutputID,
		ObjectCategory:  a.OutputCategory,
		Qualifiers:      a.Qualifiers,
		BiolinkVersion:  biolinkVersion,
		KPSource:        a.KPSource,
		ARASource:       a.ARASource,
	}
	if e.SubjectCategory == "" {
		e.SubjectCategory = DefaultCategory
	}
	if e.ObjectCategory == "" {
		e.ObjectCategory = DefaultCategory
	}
	return e
}

// EdgeID renders the canonical S-P-O identifier used in validation messages:
// idx|(subject#category)-[predicate]->(object#category).
func (e TestEdge) EdgeID() string {
	return fmt.Sprintf("%s|(%s#%s)-[%s]->(%s#%s)",
		e.Idx, e.SubjectID, e.SubjectCategory, e.Predicate, e.ObjectID, e.ObjectCategory)
}

// ResourceID names the component under test for message prefixes. ARA tests
// carry both sources, KP tests only the KP.
func (e TestEdge) ResourceID() string {
	var parts []string
	if e.ARASource != "" {
		parts = append(parts, strings.TrimPrefix(e.ARASource, "infores:"))
	}
	if e.KPSource != "" {
		parts = append(parts, strings.TrimPrefix(e.KPSource, "infores:"))
	}
	return strings.Join(parts, "|")
}
