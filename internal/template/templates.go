// Package template generates the one-hop TRAPI query variants for a test
// edge. Each creator turns a known (subject, predicate, object) triple into a
// query that should recover one end of the triple from the other, directly,
// through the inverse predicate, or with the entity, category or predicate
// raised one level in its hierarchy.
package template

import (
	"context"
	"fmt"

	"onehop/internal/asset"
	"onehop/internal/trapi"
)

// Unit is one generated unit test query: the TRAPI request plus which element
// of the test triple the response is expected to recover, and the query node
// it should be bound to.
type Unit struct {
	Query         *trapi.Query
	OutputElement string // "subject" or "object"
	OutputBinding string // query node key, "a" or "b"
}

// Error describes why a creator could not produce a query for an edge. Code
// is a report validation code: skipped.* when the edge simply cannot support
// the variant, critical.* when the edge data is broken.
type Error struct {
	Code       string
	Context    string // creator name
	Identifier string
	Reason     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Context, e.Reason)
}

// ParentResolver looks up the ontology parent of a term. Implemented by the
// ontology KP client; faked in tests.
type ParentResolver interface {
	ParentTerm(ctx context.Context, curie, category string) (string, error)
}

// BuildFunc generates a unit test query for a test edge.
type BuildFunc func(ctx context.Context, edge asset.TestEdge, res ParentResolver) (*Unit, error)

// Creator is a named query template.
type Creator struct {
	Name  string
	Build BuildFunc
}

// Registry lists all creators in execution order.
var Registry = []Creator{
	{"by_subject", BySubject},
	{"inverse_by_new_subject", InverseByNewSubject},
	{"by_object", ByObject},
	{"inverse_by_new_object", InverseByNewObject},
	{"raise_subject_entity", RaiseSubjectEntity},
	{"raise_object_entity", RaiseObjectEntity},
	{"raise_object_by_subject", RaiseObjectBySubject},
	{"raise_predicate_by_subject", RaisePredicateBySubject},
}

// Lookup resolves creator names against the registry, preserving registry
// order. An empty name list selects everything.
func Lookup(names []string) ([]Creator, error) {
	if len(names) == 0 {
		return Registry, nil
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = false
	}
	var out []Creator
	for _, c := range Registry {
		if _, ok := wanted[c.Name]; ok {
			wanted[c.Name] = true
			out = append(out, c)
		}
	}
	for n, found := range wanted {
		if !found {
			return nil, fmt.Errorf("unknown test template %q", n)
		}
	}
	return out, nil
}

// CreateOneHopMessage builds the canonical one-hop query for a test edge:
// nodes "a" (subject) and "b" (object) joined by edge "ab". When
// lookUpSubject is true the object node is pinned and the subject is what the
// service must find; otherwise the subject node is pinned.
func CreateOneHopMessage(edge asset.TestEdge, lookUpSubject bool) (*trapi.Query, error) {
	if edge.SubjectID == "" || edge.ObjectID == "" || edge.Predicate == "" {
		return nil, &Error{
			Code:       "critical.trapi.request.invalid",
			Identifier: edge.EdgeID(),
			Reason:     "Missing edge parameters!",
		}
	}

	a := &trapi.QNode{Categories: []string{edge.SubjectCategory}}
	b := &trapi.QNode{Categories: []string{edge.ObjectCategory}}
	if lookUpSubject {
		b.IDs = []string{edge.ObjectID}
	} else {
		a.IDs = []string{edge.SubjectID}
	}

	ab := &trapi.QEdge{
		Subject:    "a",
		Object:     "b",
		Predicates: []string{edge.Predicate},
	}
	if len(edge.Qualifiers) > 0 {
		set := make([]trapi.Qualifier, 0, len(edge.Qualifiers))
		for _, q := range edge.Qualifiers {
			set = append(set, trapi.Qualifier{TypeID: q.TypeID, Value: q.Value})
		}
		ab.QualifierConstraints = []trapi.QualifierConstraint{{QualifierSet: set}}
	}

	return &trapi.Query{
		Message: trapi.Message{
			QueryGraph: &trapi.QueryGraph{
				Nodes: map[string]*trapi.QNode{"a": a, "b": b},
				Edges: map[string]*trapi.QEdge{"ab": ab},
			},
			KnowledgeGraph: &trapi.KnowledgeGraph{
				Nodes: map[string]*trapi.Node{},
				Edges: map[string]*trapi.Edge{},
			},
			Results: []trapi.Result{},
		},
	}, nil
}

// SwapQualifiers exchanges subject- and object-scoped qualifiers, for
// querying an edge through its inverse predicate.
func SwapQualifiers(qualifiers []asset.Qualifier) []asset.Qualifier {
	if len(qualifiers) == 0 {
		return qualifiers
	}
	out := make([]asset.Qualifier, len(qualifiers))
	for i, q := range qualifiers {
		out[i] = asset.Qualifier{TypeID: swapQualifierType(q.TypeID), Value: q.Value}
	}
	return out
}

// invertEdge returns the edge seen through its inverse predicate: subject and
// object exchanged, qualifiers swapped. Second return is false when the
// predicate has no known inverse.
func invertEdge(edge asset.TestEdge) (asset.TestEdge, bool) {
	inverse, ok := InversePredicate(edge.Predicate)
	if !ok {
		return edge, false
	}
	inverted := edge
	inverted.SubjectID, inverted.ObjectID = edge.ObjectID, edge.SubjectID
	inverted.SubjectCategory, inverted.ObjectCategory = edge.ObjectCategory, edge.SubjectCategory
	inverted.Predicate = inverse
	inverted.Qualifiers = SwapQualifiers(edge.Qualifiers)
	return inverted, true
}

// BySubject looks up the object, pinning the subject.
func BySubject(_ context.Context, edge asset.TestEdge, _ ParentResolver) (*Unit, error) {
	q, err := CreateOneHopMessage(edge, false)
	if err != nil {
		return nil, tagError(err, "by_subject")
	}
	return &Unit{Query: q, OutputElement: "object", OutputBinding: "b"}, nil
}

// ByObject looks up the subject, pinning the object.
func ByObject(_ context.Context, edge asset.TestEdge, _ ParentResolver) (*Unit, error) {
	q, err := CreateOneHopMessage(edge, true)
	if err != nil {
		return nil, tagError(err, "by_object")
	}
	return &Unit{Query: q, OutputElement: "subject", OutputBinding: "a"}, nil
}

// InverseByNewSubject inverts the association and looks up from the new
// subject (the original object). The original subject is what the service
// must find, now sitting at the object position.
func InverseByNewSubject(_ context.Context, edge asset.TestEdge, _ ParentResolver) (*Unit, error) {
	inverted, ok := invertEdge(edge)
	if !ok {
		return nil, &Error{
			Code:       "skipped.template.predicate.no_inverse",
			Context:    "inverse_by_new_subject",
			Identifier: edge.Predicate,
		}
	}
	q, err := CreateOneHopMessage(inverted, false)
	if err != nil {
		return nil, tagError(err, "inverse_by_new_subject")
	}
	return &Unit{Query: q, OutputElement: "object", OutputBinding: "b"}, nil
}

// InverseByNewObject inverts the association and looks up from the new
// object (the original subject).
func InverseByNewObject(_ context.Context, edge asset.TestEdge, _ ParentResolver) (*Unit, error) {
	inverted, ok := invertEdge(edge)
	if !ok {
		return nil, &Error{
			Code:       "skipped.template.predicate.no_inverse",
			Context:    "inverse_by_new_object",
			Identifier: edge.Predicate,
		}
	}
	q, err := CreateOneHopMessage(inverted, true)
	if err != nil {
		return nil, tagError(err, "inverse_by_new_object")
	}
	return &Unit{Query: q, OutputElement: "subject", OutputBinding: "a"}, nil
}

// RaiseSubjectEntity replaces the subject with its ontology parent term and
// looks up the object. Terms outside any ontology hierarchy (chemicals,
// typically) skip.
func RaiseSubjectEntity(ctx context.Context, edge asset.TestEdge, res ParentResolver) (*Unit, error) {
	raised, err := raiseEntity(ctx, edge, res, "raise_subject_entity", edge.SubjectID, edge.SubjectCategory)
	if err != nil {
		return nil, err
	}
	raised.SubjectID = raised.parent
	q, buildErr := CreateOneHopMessage(raised.edge(), false)
	if buildErr != nil {
		return nil, tagError(buildErr, "raise_subject_entity")
	}
	return &Unit{Query: q, OutputElement: "object", OutputBinding: "b"}, nil
}

// RaiseObjectEntity replaces the object with its ontology parent term and
// looks up the subject.
func RaiseObjectEntity(ctx context.Context, edge asset.TestEdge, res ParentResolver) (*Unit, error) {
	raised, err := raiseEntity(ctx, edge, res, "raise_object_entity", edge.ObjectID, edge.ObjectCategory)
	if err != nil {
		return nil, err
	}
	raised.ObjectID = raised.parent
	q, buildErr := CreateOneHopMessage(raised.edge(), true)
	if buildErr != nil {
		return nil, tagError(buildErr, "raise_object_entity")
	}
	return &Unit{Query: q, OutputElement: "subject", OutputBinding: "a"}, nil
}

// RaiseObjectBySubject widens the object category to its parent class and
// looks up from the subject.
func RaiseObjectBySubject(_ context.Context, edge asset.TestEdge, _ ParentResolver) (*Unit, error) {
	parent := ParentCategory(edge.ObjectCategory)
	if parent == "" {
		return nil, &Error{
			Code:       "skipped.template.category.root",
			Context:    "raise_object_by_subject",
			Identifier: edge.ObjectCategory,
		}
	}
	raised := edge
	raised.ObjectCategory = parent
	q, err := CreateOneHopMessage(raised, false)
	if err != nil {
		return nil, tagError(err, "raise_object_by_subject")
	}
	return &Unit{Query: q, OutputElement: "object", OutputBinding: "b"}, nil
}

// RaisePredicateBySubject widens the predicate to its biolink parent and
// looks up from the subject.
func RaisePredicateBySubject(_ context.Context, edge asset.TestEdge, _ ParentResolver) (*Unit, error) {
	parent := ParentPredicate(edge.Predicate)
	if parent == "" {
		return nil, &Error{
			Code:       "skipped.template.predicate.root",
			Context:    "raise_predicate_by_subject",
			Identifier: edge.Predicate,
		}
	}
	raised := edge
	raised.Predicate = parent
	q, err := CreateOneHopMessage(raised, false)
	if err != nil {
		return nil, tagError(err, "raise_predicate_by_subject")
	}
	return &Unit{Query: q, OutputElement: "object", OutputBinding: "b"}, nil
}

// raisedEdge carries an edge plus the resolved parent term through the
// entity-raising helpers.
type raisedEdge struct {
	asset.TestEdge
	parent string
}

func (r raisedEdge) edge() asset.TestEdge { return r.TestEdge }

func raiseEntity(ctx context.Context, edge asset.TestEdge, res ParentResolver, creator, curie, category string) (*raisedEdge, error) {
	if res == nil {
		return nil, &Error{
			Code:       "skipped.template.entity.ontology_unavailable",
			Context:    creator,
			Identifier: curie,
			Reason:     "no ontology resolver configured",
		}
	}
	parent, err := res.ParentTerm(ctx, curie, category)
	if err != nil {
		return nil, &Error{
			Code:       "skipped.template.entity.ontology_unavailable",
			Context:    creator,
			Identifier: curie,
			Reason:     err.Error(),
		}
	}
	if parent == "" || parent == curie {
		return nil, &Error{
			Code:       "skipped.template.entity.no_ontology_parent",
			Context:    creator,
			Identifier: curie,
		}
	}
	return &raisedEdge{TestEdge: edge, parent: parent}, nil
}

// tagError stamps the creator name onto a CreateOneHopMessage error.
func tagError(err error, creator string) error {
	if terr, ok := err.(*Error); ok {
		terr.Context = creator
		return terr
	}
	return err
}
