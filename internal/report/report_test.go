package report

import (
	"strings"
	"testing"
)

func TestCodeLevel(t *testing.T) {
	cases := []struct {
		code string
		want Level
	}{
		{"critical.trapi.request.invalid", LevelCritical},
		{"error.trapi.response.empty", LevelError},
		{"warning.trapi.request.curie.malformed", LevelWarning},
		{"info.trapi.response.version", LevelInfo},
		{"skipped.template.predicate.no_inverse", LevelSkipped},
		{"bogus.code", LevelError},
	}
	for _, c := range cases {
		if got := CodeLevel(c.code); got != c.want {
			t.Errorf("CodeLevel(%s) = %s, want %s", c.code, got, c.want)
		}
	}
}

func TestReporter_Dedupe(t *testing.T) {
	rep := NewReporter("[t]")
	rep.Report("error.trapi.response.empty", nil)
	rep.Report("error.trapi.response.empty", nil)
	if got := rep.Dump(LevelError); len(got) != 1 {
		t.Errorf("expected deduplicated message, got %v", got)
	}
}

func TestReporter_PrefixInMessages(t *testing.T) {
	rep := NewReporter("[molepro#TestAsset:00001-by_subject]")
	rep.Report("error.trapi.response.empty", nil)
	msgs := rep.Dump(LevelError)
	if len(msgs) != 1 || !strings.HasPrefix(msgs[0], "[molepro#TestAsset:00001-by_subject]") {
		t.Errorf("expected prefixed message, got %v", msgs)
	}
}

func TestReporter_Outcome(t *testing.T) {
	cases := []struct {
		name  string
		codes []string
		want  Outcome
	}{
		{"clean", nil, OutcomePassed},
		{"info only", []string{"info.trapi.response.version"}, OutcomeInfo},
		{"warning beats info", []string{"info.trapi.response.version", "warning.trapi.response.schema_version.missing"}, OutcomeWarned},
		{"error beats warning", []string{"warning.trapi.response.schema_version.missing", "error.trapi.response.empty"}, OutcomeFailed},
		{"critical fails", []string{"critical.trapi.response.unavailable"}, OutcomeFailed},
		{"skip beats everything", []string{"critical.trapi.response.unavailable", "skipped.template.predicate.root"}, OutcomeSkipped},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rep := NewReporter("[t]")
			for _, code := range c.codes {
				rep.Report(code, nil)
			}
			if got := rep.Outcome(); got != c.want {
				t.Errorf("expected outcome %s, got %s", c.want, got)
			}
		})
	}
}

func TestReporter_Merge(t *testing.T) {
	a := NewReporter("[a]")
	a.Report("warning.trapi.response.schema_version.missing", nil)
	b := NewReporter("[b]")
	b.Report("error.trapi.response.empty", nil)

	a.Merge(b)
	if !a.HasWarnings() || !a.HasErrors() {
		t.Errorf("expected merged tiers, got %v", a.DumpAll())
	}
}

func TestReporter_DumpAll_Order(t *testing.T) {
	rep := NewReporter("[t]")
	rep.Report("info.trapi.response.version", map[string]string{"context": "TRAPI schema", "identifier": "1.5.0"})
	rep.Report("critical.trapi.response.unavailable", map[string]string{"reason": "refused"})

	all := rep.DumpAll()
	if len(all) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(all))
	}
	if !strings.Contains(all[0], "could not be reached") {
		t.Errorf("expected critical first, got %v", all)
	}
}

func TestGenerateEdgeID(t *testing.T) {
	if got := GenerateEdgeID("molepro", "TestAsset:00007"); got != "molepro#TestAsset:00007" {
		t.Errorf("unexpected edge id %s", got)
	}
}

func TestUnitTestReport_Skip(t *testing.T) {
	rep := NewUnitTestReport("molepro", "TestAsset:00001", "inverse_by_new_subject")
	rep.Skip("skipped.template.predicate.no_inverse", "edge-id", map[string]string{"context": "inverse_by_new_subject"})
	if !rep.HasSkipped() {
		t.Fatal("expected skipped finding")
	}
	msgs := rep.Dump(LevelSkipped)
	if len(msgs) != 1 || !strings.Contains(msgs[0], "no known inverse") {
		t.Errorf("unexpected skip rendering: %v", msgs)
	}
}

func TestRenderCode(t *testing.T) {
	got := renderCode("error.trapi.response.knowledge_graph.missing_expected_edge",
		map[string]string{"identifier": "TestAsset:00001|(a:1#cat)-[p]->(b:2#cat)"})
	if !strings.Contains(got, "TestAsset:00001") {
		t.Errorf("expected identifier substituted, got %q", got)
	}
}

func TestRenderCode_UnknownCode(t *testing.T) {
	got := renderCode("error.something.new", map[string]string{"identifier": "x"})
	if !strings.Contains(got, "error.something.new") || !strings.Contains(got, "identifier=x") {
		t.Errorf("unknown code should surface code and params, got %q", got)
	}
}

func TestRenderCode_UnfilledPlaceholders(t *testing.T) {
	got := renderCode("critical.trapi.request.invalid", nil)
	if strings.Contains(got, "{") {
		t.Errorf("expected placeholders blanked, got %q", got)
	}
}

func TestKnownCodes_AllLevelsValid(t *testing.T) {
	codes := KnownCodes()
	if len(codes) == 0 {
		t.Fatal("expected embedded code catalog")
	}
	for _, code := range codes {
		prefix, _, _ := strings.Cut(code, ".")
		switch Level(prefix) {
		case LevelSkipped, LevelCritical, LevelError, LevelWarning, LevelInfo:
		default:
			t.Errorf("code %s has unknown severity prefix", code)
		}
	}
}
