package template

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"onehop/internal/asset"
	"onehop/internal/trapi"
)

func sampleEdge() asset.TestEdge {
	return asset.TestEdge{
		Idx:             "TestAsset:00001",
		SubjectID:       "DRUGBANK:DB01592",
		SubjectCategory: "biolink:SmallMolecule",
		Predicate:       "biolink:treats",
		ObjectID:        "MONDO:0011426",
		ObjectCategory:  "biolink:Disease",
	}
}

// fakeResolver answers parent term lookups from a fixed table.
type fakeResolver struct {
	parents map[string]string
	err     error
}

func (f *fakeResolver) ParentTerm(_ context.Context, curie, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.parents[curie], nil
}

func TestCreateOneHopMessage_LookupObject(t *testing.T) {
	q, err := CreateOneHopMessage(sampleEdge(), false)
	if err != nil {
		t.Fatalf("CreateOneHopMessage failed: %v", err)
	}

	want := &trapi.QueryGraph{
		Nodes: map[string]*trapi.QNode{
			"a": {IDs: []string{"DRUGBANK:DB01592"}, Categories: []string{"biolink:SmallMolecule"}},
			"b": {Categories: []string{"biolink:Disease"}},
		},
		Edges: map[string]*trapi.QEdge{
			"ab": {Subject: "a", Object: "b", Predicates: []string{"biolink:treats"}},
		},
	}
	if diff := cmp.Diff(want, q.Message.QueryGraph); diff != "" {
		t.Errorf("query graph mismatch (-want +got):\n%s", diff)
	}
	if q.Message.KnowledgeGraph == nil || q.Message.KnowledgeGraph.Nodes == nil || q.Message.KnowledgeGraph.Edges == nil {
		t.Error("expected empty knowledge graph maps in the message")
	}
	if q.Message.Results == nil || len(q.Message.Results) != 0 {
		t.Error("expected empty results slice in the message")
	}
}

func TestCreateOneHopMessage_LookupSubject(t *testing.T) {
	q, err := CreateOneHopMessage(sampleEdge(), true)
	if err != nil {
		t.Fatalf("CreateOneHopMessage failed: %v", err)
	}

	a := q.Message.QueryGraph.Nodes["a"]
	b := q.Message.QueryGraph.Nodes["b"]
	if len(a.IDs) != 0 {
		t.Errorf("expected unpinned subject node, got ids %v", a.IDs)
	}
	if diff := cmp.Diff([]string{"MONDO:0011426"}, b.IDs); diff != "" {
		t.Errorf("object node ids mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateOneHopMessage_MissingParameters(t *testing.T) {
	edge := sampleEdge()
	edge.Predicate = ""
	_, err := CreateOneHopMessage(edge, false)
	if err == nil {
		t.Fatal("expected error for missing predicate")
	}
	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected template error, got %T", err)
	}
	if terr.Code != "critical.trapi.request.invalid" {
		t.Errorf("expected critical request code, got %s", terr.Code)
	}
	if terr.Reason != "Missing edge parameters!" {
		t.Errorf("expected missing-parameters reason, got %q", terr.Reason)
	}
}

func TestCreateOneHopMessage_Qualifiers(t *testing.T) {
	edge := sampleEdge()
	edge.Qualifiers = []asset.Qualifier{
		{TypeID: "biolink:object_aspect_qualifier", Value: "activity"},
	}
	q, err := CreateOneHopMessage(edge, false)
	if err != nil {
		t.Fatalf("CreateOneHopMessage failed: %v", err)
	}
	qc := q.Message.QueryGraph.Edges["ab"].QualifierConstraints
	if len(qc) != 1 || len(qc[0].QualifierSet) != 1 {
		t.Fatalf("expected one constraint with one qualifier, got %+v", qc)
	}
	got := qc[0].QualifierSet[0]
	if got.TypeID != "biolink:object_aspect_qualifier" || got.Value != "activity" {
		t.Errorf("qualifier not carried: %+v", got)
	}
}

func TestBySubject(t *testing.T) {
	unit, err := BySubject(context.Background(), sampleEdge(), nil)
	if err != nil {
		t.Fatalf("BySubject failed: %v", err)
	}
	if unit.OutputElement != "object" || unit.OutputBinding != "b" {
		t.Errorf("expected object/b output, got %s/%s", unit.OutputElement, unit.OutputBinding)
	}
	if ids := unit.Query.Message.QueryGraph.Nodes["a"].IDs; len(ids) != 1 || ids[0] != "DRUGBANK:DB01592" {
		t.Errorf("expected subject pinned, got %v", ids)
	}
}

func TestByObject(t *testing.T) {
	unit, err := ByObject(context.Background(), sampleEdge(), nil)
	if err != nil {
		t.Fatalf("ByObject failed: %v", err)
	}
	if unit.OutputElement != "subject" || unit.OutputBinding != "a" {
		t.Errorf("expected subject/a output, got %s/%s", unit.OutputElement, unit.OutputBinding)
	}
	if ids := unit.Query.Message.QueryGraph.Nodes["b"].IDs; len(ids) != 1 || ids[0] != "MONDO:0011426" {
		t.Errorf("expected object pinned, got %v", ids)
	}
}

func TestInverseByNewSubject(t *testing.T) {
	unit, err := InverseByNewSubject(context.Background(), sampleEdge(), nil)
	if err != nil {
		t.Fatalf("InverseByNewSubject failed: %v", err)
	}
	qg := unit.Query.Message.QueryGraph
	if ids := qg.Nodes["a"].IDs; len(ids) != 1 || ids[0] != "MONDO:0011426" {
		t.Errorf("expected original object pinned as new subject, got %v", ids)
	}
	if preds := qg.Edges["ab"].Predicates; len(preds) != 1 || preds[0] != "biolink:treated_by" {
		t.Errorf("expected inverse predicate, got %v", preds)
	}
}

func TestInverseByNewSubject_NoInverse(t *testing.T) {
	edge := sampleEdge()
	edge.Predicate = "biolink:occurs_in"
	_, err := InverseByNewSubject(context.Background(), edge, nil)
	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected template error, got %v", err)
	}
	if terr.Code != "skipped.template.predicate.no_inverse" {
		t.Errorf("expected no-inverse skip, got %s", terr.Code)
	}
}

func TestInverseByNewObject_SymmetricPredicate(t *testing.T) {
	edge := sampleEdge()
	edge.Predicate = "biolink:correlated_with"
	unit, err := InverseByNewObject(context.Background(), edge, nil)
	if err != nil {
		t.Fatalf("InverseByNewObject failed: %v", err)
	}
	qg := unit.Query.Message.QueryGraph
	if preds := qg.Edges["ab"].Predicates; preds[0] != "biolink:correlated_with" {
		t.Errorf("symmetric predicate should invert to itself, got %v", preds)
	}
	if ids := qg.Nodes["b"].IDs; len(ids) != 1 || ids[0] != "DRUGBANK:DB01592" {
		t.Errorf("expected original subject pinned as new object, got %v", ids)
	}
}

func TestInverseByNewSubject_QualifiersSwapped(t *testing.T) {
	edge := sampleEdge()
	edge.Qualifiers = []asset.Qualifier{
		{TypeID: "biolink:subject_aspect_qualifier", Value: "activity"},
	}
	unit, err := InverseByNewSubject(context.Background(), edge, nil)
	if err != nil {
		t.Fatalf("InverseByNewSubject failed: %v", err)
	}
	qc := unit.Query.Message.QueryGraph.Edges["ab"].QualifierConstraints
	if got := qc[0].QualifierSet[0].TypeID; got != "biolink:object_aspect_qualifier" {
		t.Errorf("expected swapped qualifier type, got %s", got)
	}
}

func TestRaiseSubjectEntity(t *testing.T) {
	res := &fakeResolver{parents: map[string]string{"DRUGBANK:DB01592": "CHEBI:24431"}}
	unit, err := RaiseSubjectEntity(context.Background(), sampleEdge(), res)
	if err != nil {
		t.Fatalf("RaiseSubjectEntity failed: %v", err)
	}
	if ids := unit.Query.Message.QueryGraph.Nodes["a"].IDs; len(ids) != 1 || ids[0] != "CHEBI:24431" {
		t.Errorf("expected raised subject pinned, got %v", ids)
	}
}

func TestRaiseObjectEntity(t *testing.T) {
	res := &fakeResolver{parents: map[string]string{"MONDO:0011426": "MONDO:0019052"}}
	unit, err := RaiseObjectEntity(context.Background(), sampleEdge(), res)
	if err != nil {
		t.Fatalf("RaiseObjectEntity failed: %v", err)
	}
	if ids := unit.Query.Message.QueryGraph.Nodes["b"].IDs; len(ids) != 1 || ids[0] != "MONDO:0019052" {
		t.Errorf("expected raised object pinned, got %v", ids)
	}
}

func TestRaiseEntity_NoParent(t *testing.T) {
	res := &fakeResolver{parents: map[string]string{}}
	_, err := RaiseSubjectEntity(context.Background(), sampleEdge(), res)
	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected template error, got %v", err)
	}
	if terr.Code != "skipped.template.entity.no_ontology_parent" {
		t.Errorf("expected no-parent skip, got %s", terr.Code)
	}
}

func TestRaiseEntity_ResolverError(t *testing.T) {
	res := &fakeResolver{err: fmt.Errorf("connection refused")}
	_, err := RaiseObjectEntity(context.Background(), sampleEdge(), res)
	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected template error, got %v", err)
	}
	if terr.Code != "skipped.template.entity.ontology_unavailable" {
		t.Errorf("expected unavailable skip, got %s", terr.Code)
	}
	if !strings.Contains(terr.Reason, "connection refused") {
		t.Errorf("expected cause carried in reason, got %q", terr.Reason)
	}
}

func TestRaiseEntity_NilResolver(t *testing.T) {
	_, err := RaiseSubjectEntity(context.Background(), sampleEdge(), nil)
	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected template error, got %v", err)
	}
	if terr.Code != "skipped.template.entity.ontology_unavailable" {
		t.Errorf("expected unavailable skip, got %s", terr.Code)
	}
}

func TestRaiseObjectBySubject(t *testing.T) {
	unit, err := RaiseObjectBySubject(context.Background(), sampleEdge(), nil)
	if err != nil {
		t.Fatalf("RaiseObjectBySubject failed: %v", err)
	}
	if cats := unit.Query.Message.QueryGraph.Nodes["b"].Categories; cats[0] != "biolink:DiseaseOrPhenotypicFeature" {
		t.Errorf("expected raised object category, got %v", cats)
	}
}

func TestRaiseObjectBySubject_RootCategory(t *testing.T) {
	edge := sampleEdge()
	edge.ObjectCategory = "biolink:NamedThing"
	_, err := RaiseObjectBySubject(context.Background(), edge, nil)
	var terr *Error
	if !errors.As(err, &terr) || terr.Code != "skipped.template.category.root" {
		t.Errorf("expected category root skip, got %v", err)
	}
}

func TestRaisePredicateBySubject(t *testing.T) {
	unit, err := RaisePredicateBySubject(context.Background(), sampleEdge(), nil)
	if err != nil {
		t.Fatalf("RaisePredicateBySubject failed: %v", err)
	}
	if preds := unit.Query.Message.QueryGraph.Edges["ab"].Predicates; preds[0] != "biolink:treats_or_applied_or_studied_to_treat" {
		t.Errorf("expected parent predicate, got %v", preds)
	}
}

func TestRaisePredicateBySubject_Root(t *testing.T) {
	edge := sampleEdge()
	edge.Predicate = PredicateRoot
	_, err := RaisePredicateBySubject(context.Background(), edge, nil)
	var terr *Error
	if !errors.As(err, &terr) || terr.Code != "skipped.template.predicate.root" {
		t.Errorf("expected predicate root skip, got %v", err)
	}
}

func TestLookup(t *testing.T) {
	all, err := Lookup(nil)
	if err != nil {
		t.Fatalf("Lookup(nil) failed: %v", err)
	}
	if len(all) != len(Registry) {
		t.Errorf("expected full registry, got %d of %d", len(all), len(Registry))
	}

	// Selection preserves registry order regardless of request order.
	picked, err := Lookup([]string{"by_object", "by_subject"})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if len(picked) != 2 || picked[0].Name != "by_subject" || picked[1].Name != "by_object" {
		t.Errorf("expected registry order, got %v", []string{picked[0].Name, picked[1].Name})
	}

	if _, err := Lookup([]string{"by_magic"}); err == nil {
		t.Error("expected error for unknown template name")
	}
}

func TestSwapQualifierType(t *testing.T) {
	cases := []struct{ in, want string }{
		{"biolink:subject_aspect_qualifier", "biolink:object_aspect_qualifier"},
		{"biolink:object_direction_qualifier", "biolink:subject_direction_qualifier"},
		{"subject_form_or_variant_qualifier", "object_form_or_variant_qualifier"},
		{"biolink:qualified_predicate", "biolink:qualified_predicate"},
	}
	for _, c := range cases {
		if got := swapQualifierType(c.in); got != c.want {
			t.Errorf("swapQualifierType(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestInversePredicate(t *testing.T) {
	if inv, ok := InversePredicate("biolink:treated_by"); !ok || inv != "biolink:treats" {
		t.Errorf("expected reverse direction registered, got %s %v", inv, ok)
	}
	if _, ok := InversePredicate("biolink:occurs_in"); ok {
		t.Error("expected no inverse for biolink:occurs_in")
	}
}

func TestInvertAssociation(t *testing.T) {
	if got := InvertAssociation("biolink:treats"); got != "biolink:treated_by" {
		t.Errorf("expected biolink:treated_by, got %s", got)
	}
	if got := InvertAssociation("biolink:occurs_in"); got != "" {
		t.Errorf("expected no inverse, got %s", got)
	}
	if got := InvertAssociation(""); got != "" {
		t.Errorf("empty association should pass through, got %s", got)
	}
}

func TestParentPredicate(t *testing.T) {
	if got := ParentPredicate("biolink:unheard_of"); got != PredicateRoot {
		t.Errorf("unknown predicate should raise to root, got %s", got)
	}
	if got := ParentPredicate(PredicateRoot); got != "" {
		t.Errorf("root should have no parent, got %s", got)
	}
}
