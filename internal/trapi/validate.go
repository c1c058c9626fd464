package trapi

import (
	"strings"

	"onehop/internal/asset"
	"onehop/internal/report"
)

// ValidateQuery performs structural validation of a locally generated TRAPI
// query, reporting findings into rep. A query that produces any finding is
// not worth posting: the templates are supposed to emit well-formed TRAPI,
// so every code here is critical except the CURIE shape warnings.
func ValidateQuery(q *Query, rep *report.Reporter) {
	if q == nil || q.Message.QueryGraph == nil {
		rep.Report("critical.trapi.request.query_graph.missing", nil)
		return
	}
	qg := q.Message.QueryGraph

	if len(qg.Nodes) == 0 {
		rep.Report("critical.trapi.request.query_graph.nodes.empty", nil)
	}
	if len(qg.Edges) == 0 {
		rep.Report("critical.trapi.request.query_graph.edges.empty", nil)
	}

	pinned := false
	for key, node := range qg.Nodes {
		if node == nil {
			continue
		}
		if len(node.IDs) > 0 {
			pinned = true
		}
		for _, id := range node.IDs {
			checkCURIE(rep, id, "node '"+key+"' ids")
		}
		for _, cat := range node.Categories {
			checkCURIE(rep, cat, "node '"+key+"' categories")
		}
	}
	if len(qg.Nodes) > 0 && !pinned {
		rep.Report("critical.trapi.request.query_graph.unpinned", nil)
	}

	for key, edge := range qg.Edges {
		if edge == nil {
			continue
		}
		if _, ok := qg.Nodes[edge.Subject]; !ok {
			rep.Report("critical.trapi.request.query_graph.edge.orphan_node",
				map[string]string{"identifier": key, "reason": edge.Subject})
		}
		if _, ok := qg.Nodes[edge.Object]; !ok {
			rep.Report("critical.trapi.request.query_graph.edge.orphan_node",
				map[string]string{"identifier": key, "reason": edge.Object})
		}
		if len(edge.Predicates) == 0 {
			rep.Report("critical.trapi.request.query_graph.edge.predicates.empty",
				map[string]string{"identifier": key})
		}
		for _, p := range edge.Predicates {
			checkCURIE(rep, p, "edge '"+key+"' predicates")
		}
	}
}

func checkCURIE(rep *report.Reporter, id, context string) {
	if !strings.Contains(id, ":") || strings.HasPrefix(id, ":") || strings.HasSuffix(id, ":") {
		rep.Report("warning.trapi.request.curie.malformed",
			map[string]string{"identifier": id, "context": context})
	}
}

// EdgeInResponse reports whether the input test edge was returned in the
// response: some knowledge graph edge must connect the expected subject and
// object with the expected predicate, and at least one result must bind that
// edge. This is the semantic heart of one-hop testing; a KP that answers the
// query but never returns the documented edge fails the asset.
func EdgeInResponse(edge asset.TestEdge, resp *Response) bool {
	if resp == nil || resp.Message == nil || resp.Message.KnowledgeGraph == nil {
		return false
	}
	kg := resp.Message.KnowledgeGraph

	matching := make(map[string]struct{})
	for id, e := range kg.Edges {
		if e == nil {
			continue
		}
		if e.Subject == edge.SubjectID && e.Object == edge.ObjectID && e.Predicate == edge.Predicate {
			matching[id] = struct{}{}
		}
	}
	if len(matching) == 0 {
		return false
	}

	for _, result := range resp.Message.Results {
		for _, analysis := range result.Analyses {
			for _, bindings := range analysis.EdgeBindings {
				for _, b := range bindings {
					if _, ok := matching[b.ID]; ok {
						return true
					}
				}
			}
		}
	}
	return false
}
