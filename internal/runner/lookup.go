package runner

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"onehop/internal/asset"
	"onehop/internal/logging"
	"onehop/internal/report"
	"onehop/internal/template"
	"onehop/internal/trapi"
)

// ExecuteLookup runs a single unit test: one query template applied to one
// test edge against one TRAPI endpoint. The returned report carries the
// validation findings at every tier plus the raw request and response.
func ExecuteLookup(ctx context.Context, client *trapi.Client, url string, edge asset.TestEdge, creator template.Creator, res template.ParentResolver, trapiVersion, biolinkVersion string) *report.UnitTestReport {
	rep := report.NewUnitTestReport(edge.ResourceID(), edge.Idx, creator.Name)

	unit, err := creator.Build(ctx, edge, res)
	if err != nil {
		reportBuildError(rep, edge, creator.Name, err)
		return rep
	}

	unit.Query.SchemaVersion = trapiVersion
	unit.Query.BiolinkVersion = biolinkVersion

	trapi.ValidateQuery(unit.Query, rep.Reporter)
	if rep.HasMessages() {
		return rep
	}

	if edge.ARASource != "" && edge.KPSource != "" {
		trapi.ConstrainToKP(unit.Query, edge.KPSource)
	}

	rep.Request = unit.Query
	result, err := client.PostQuery(ctx, url, unit.Query)
	if err != nil {
		code := "critical.trapi.response.unavailable"
		if errors.Is(err, trapi.ErrUndecodable) {
			code = "critical.trapi.response.undecodable"
		}
		rep.Report(code, map[string]string{
			"reason": err.Error(),
		})
		return rep
	}
	if result.StatusCode != 200 {
		rep.Report("critical.trapi.response.unexpected_http_code", map[string]string{
			"identifier": strconv.Itoa(result.StatusCode),
		})
		return rep
	}
	rep.Response = result.Raw

	resp := result.Response
	if resp == nil || resp.Message == nil || emptyMessage(resp.Message) {
		rep.Report("error.trapi.response.empty", nil)
		return rep
	}

	checkVersionTags(rep, resp)

	if !trapi.EdgeInResponse(edge, resp) {
		rep.Report("error.trapi.response.knowledge_graph.missing_expected_edge", map[string]string{
			"identifier": edge.EdgeID(),
		})
		return rep
	}

	logging.Validation("%s %s recovered expected edge", rep.Prefix(), creator.Name)
	return rep
}

// reportBuildError folds a template construction failure into the report.
// Template errors carry their own code and severity; anything else is an
// invalid request.
func reportBuildError(rep *report.UnitTestReport, edge asset.TestEdge, creatorName string, err error) {
	var terr *template.Error
	if errors.As(err, &terr) {
		params := map[string]string{
			"context":    terr.Context,
			"identifier": terr.Identifier,
			"reason":     terr.Reason,
		}
		if strings.HasPrefix(terr.Code, "skipped.") {
			rep.Skip(terr.Code, edge.EdgeID(), params)
		} else {
			rep.Report(terr.Code, params)
		}
		return
	}
	rep.Report("critical.trapi.request.invalid", map[string]string{
		"context":    creatorName,
		"identifier": edge.EdgeID(),
		"reason":     err.Error(),
	})
}

// emptyMessage reports whether a response message is absent outright: no
// query graph, no knowledge graph, no results field at all. A message that
// decodes with empty maps still goes through the expected-edge check, which
// reports the more specific missing_expected_edge.
func emptyMessage(m *trapi.Message) bool {
	return m.QueryGraph == nil && m.KnowledgeGraph == nil && m.Results == nil
}

// checkVersionTags records the schema and biolink versions the endpoint
// claims, warning when either tag is absent.
func checkVersionTags(rep *report.UnitTestReport, resp *trapi.Response) {
	if resp.SchemaVersion == "" {
		rep.Report("warning.trapi.response.schema_version.missing", nil)
	} else {
		rep.Report("info.trapi.response.version", map[string]string{
			"context":    "TRAPI schema",
			"identifier": resp.SchemaVersion,
		})
	}
	if resp.BiolinkVersion == "" {
		rep.Report("warning.trapi.response.biolink_version.missing", nil)
	} else {
		rep.Report("info.trapi.response.version", map[string]string{
			"context":    "biolink model",
			"identifier": resp.BiolinkVersion,
		})
	}
}
