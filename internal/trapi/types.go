// Package trapi implements the Translator Reasoner API wire model, an HTTP
// client for posting queries to TRAPI-speaking services, and structural
// validation of generated queries and returned responses.
package trapi

// Query is the TRAPI request envelope.
type Query struct {
	Message        Message `json:"message"`
	SchemaVersion  string  `json:"schema_version,omitempty"`
	BiolinkVersion string  `json:"biolink_version,omitempty"`
	LogLevel       string  `json:"log_level,omitempty"`
}

// Response is the TRAPI response envelope. Schema and biolink version tags
// are optional in the wild; validation warns when they are absent.
type Response struct {
	Message        *Message `json:"message"`
	SchemaVersion  string   `json:"schema_version,omitempty"`
	BiolinkVersion string   `json:"biolink_version,omitempty"`
	Status         string   `json:"status,omitempty"`
	Description    string   `json:"description,omitempty"`
}

// Message carries the query graph in, and the knowledge graph plus results out.
type Message struct {
	QueryGraph     *QueryGraph     `json:"query_graph,omitempty"`
	KnowledgeGraph *KnowledgeGraph `json:"knowledge_graph,omitempty"`
	Results        []Result        `json:"results"`
}

// QueryGraph is the template subgraph being asked about.
type QueryGraph struct {
	Nodes map[string]*QNode `json:"nodes"`
	Edges map[string]*QEdge `json:"edges"`
}

// QNode is a query graph node. A node with bound IDs is "pinned"; the one-hop
// templates pin exactly one of the two nodes.
type QNode struct {
	IDs        []string `json:"ids,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// QEdge is a query graph edge.
type QEdge struct {
	Subject              string                `json:"subject"`
	Object               string                `json:"object"`
	Predicates           []string              `json:"predicates,omitempty"`
	QualifierConstraints []QualifierConstraint `json:"qualifier_constraints,omitempty"`
	AttributeConstraints []AttributeConstraint `json:"attribute_constraints,omitempty"`
}

// Qualifier refines the meaning of an edge's predicate.
type Qualifier struct {
	TypeID string `json:"qualifier_type_id"`
	Value  string `json:"qualifier_value"`
}

// QualifierConstraint restricts matched edges to those carrying a qualifier set.
type QualifierConstraint struct {
	QualifierSet []Qualifier `json:"qualifier_set"`
}

// AttributeConstraint restricts matched edges by attribute value, e.g.
// pinning an ARA query to one upstream knowledge source.
type AttributeConstraint struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Value    any    `json:"value"`
	Operator string `json:"operator"`
	Not      bool   `json:"not,omitempty"`
}

// KnowledgeGraph is the returned subgraph of nodes and edges.
type KnowledgeGraph struct {
	Nodes map[string]*Node `json:"nodes"`
	Edges map[string]*Edge `json:"edges"`
}

// Node is a knowledge graph node.
type Node struct {
	Name       string      `json:"name,omitempty"`
	Categories []string    `json:"categories,omitempty"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

// Edge is a knowledge graph edge.
type Edge struct {
	Subject    string            `json:"subject"`
	Predicate  string            `json:"predicate"`
	Object     string            `json:"object"`
	Sources    []RetrievalSource `json:"sources,omitempty"`
	Qualifiers []Qualifier       `json:"qualifiers,omitempty"`
	Attributes []Attribute       `json:"attributes,omitempty"`
}

// Attribute is an arbitrary typed annotation on a node or edge.
type Attribute struct {
	AttributeTypeID string `json:"attribute_type_id"`
	Value           any    `json:"value"`
	ValueTypeID     string `json:"value_type_id,omitempty"`
	AttributeSource string `json:"attribute_source,omitempty"`
}

// RetrievalSource records edge provenance.
type RetrievalSource struct {
	ResourceID   string `json:"resource_id"`
	ResourceRole string `json:"resource_role"`
}

// Result maps query graph nodes and edges onto the knowledge graph.
type Result struct {
	NodeBindings map[string][]NodeBinding `json:"node_bindings"`
	Analyses     []Analysis               `json:"analyses,omitempty"`
}

// NodeBinding binds a query node to a knowledge graph node id.
type NodeBinding struct {
	ID      string `json:"id"`
	QueryID string `json:"query_id,omitempty"`
}

// Analysis is one reasoner's scoring of a result, with its edge bindings.
type Analysis struct {
	ResourceID   string                   `json:"resource_id,omitempty"`
	EdgeBindings map[string][]EdgeBinding `json:"edge_bindings"`
	Score        float64                  `json:"score,omitempty"`
}

// EdgeBinding binds a query edge to a knowledge graph edge id.
type EdgeBinding struct {
	ID string `json:"id"`
}

// ConstrainToKP annotates the query's one-hop edge with a knowledge-source
// attribute constraint, so an ARA call only counts answers routed through the
// named KP. The one-hop templates always name their single edge "ab".
func ConstrainToKP(q *Query, kpSource string) {
	if q == nil || q.Message.QueryGraph == nil {
		return
	}
	edge, ok := q.Message.QueryGraph.Edges["ab"]
	if !ok {
		return
	}
	edge.AttributeConstraints = append(edge.AttributeConstraints, AttributeConstraint{
		ID:       "biolink:knowledge_source",
		Name:     "knowledge source",
		Value:    []string{kpSource},
		Operator: "==",
	})
}
