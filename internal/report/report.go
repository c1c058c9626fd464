// Package report aggregates validation findings from one-hop test execution.
// Findings are identified by dotted validation codes whose leading segment is
// the severity tier; a UnitTestReport collects the findings for one test
// asset under one query template and resolves them to a single outcome.
package report

import (
	"sort"
	"strings"
	"sync"
)

// Level is a message severity tier.
type Level string

const (
	LevelSkipped  Level = "skipped"
	LevelCritical Level = "critical"
	LevelError    Level = "error"
	LevelWarning  Level = "warning"
	LevelInfo     Level = "info"
)

// Levels lists all tiers in dump order, most severe first.
var Levels = []Level{LevelSkipped, LevelCritical, LevelError, LevelWarning, LevelInfo}

// CodeLevel derives the severity tier from a validation code's first segment.
// Unrecognized prefixes are treated as errors so they cannot pass silently.
func CodeLevel(code string) Level {
	prefix, _, _ := strings.Cut(code, ".")
	switch Level(prefix) {
	case LevelSkipped, LevelCritical, LevelError, LevelWarning, LevelInfo:
		return Level(prefix)
	}
	return LevelError
}

// Reporter accumulates deduplicated validation messages per severity tier.
// It is safe for concurrent use; a single test execution may report from the
// request validator and the response validator at once.
type Reporter struct {
	prefix   string
	mu       sync.Mutex
	messages map[Level]map[string]struct{}
}

// NewReporter creates a reporter. Messages are rendered with the prefix so a
// flat dump still identifies which test produced each finding.
func NewReporter(prefix string) *Reporter {
	return &Reporter{
		prefix:   prefix,
		messages: make(map[Level]map[string]struct{}),
	}
}

// Prefix returns the reporter's message prefix.
func (r *Reporter) Prefix() string { return r.prefix }

// Report records a finding under the tier implied by its code. Params fill
// the code's message template ({identifier}, {context}, {reason}).
func (r *Reporter) Report(code string, params map[string]string) {
	r.add(CodeLevel(code), code+": "+renderCode(code, params))
}

func (r *Reporter) add(level Level, msg string) {
	if r.prefix != "" {
		msg = r.prefix + " " + msg
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.messages[level]
	if !ok {
		set = make(map[string]struct{})
		r.messages[level] = set
	}
	set[msg] = struct{}{}
}

// Merge folds another reporter's findings into this one. Used to absorb the
// request schema validator's messages into the unit test report.
func (r *Reporter) Merge(other *Reporter) {
	if other == nil {
		return
	}
	other.mu.Lock()
	defer other.mu.Unlock()
	for level, set := range other.messages {
		for msg := range set {
			r.add(level, msg)
		}
	}
}

// Dump returns the messages at one tier in stable sorted order.
func (r *Reporter) Dump(level Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.messages[level]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for msg := range set {
		out = append(out, msg)
	}
	sort.Strings(out)
	return out
}

// DumpAll returns every message across all tiers, most severe first.
func (r *Reporter) DumpAll() []string {
	var out []string
	for _, level := range Levels {
		out = append(out, r.Dump(level)...)
	}
	return out
}

// Messages returns a tier-indexed copy of all findings.
func (r *Reporter) Messages() map[Level][]string {
	out := make(map[Level][]string, len(Levels))
	for _, level := range Levels {
		out[level] = r.Dump(level)
	}
	return out
}

func (r *Reporter) has(level Level) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages[level]) > 0
}

// HasCritical reports whether any critical finding was recorded.
func (r *Reporter) HasCritical() bool { return r.has(LevelCritical) }

// HasErrors reports whether any error-tier finding was recorded.
func (r *Reporter) HasErrors() bool { return r.has(LevelError) }

// HasWarnings reports whether any warning was recorded.
func (r *Reporter) HasWarnings() bool { return r.has(LevelWarning) }

// HasInformation reports whether any informational message was recorded.
func (r *Reporter) HasInformation() bool { return r.has(LevelInfo) }

// HasSkipped reports whether the test was skipped.
func (r *Reporter) HasSkipped() bool { return r.has(LevelSkipped) }

// HasMessages reports whether anything at all blocks a clean pass, which for
// request validation means any tier (a warned request is still not posted).
func (r *Reporter) HasMessages() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, set := range r.messages {
		if len(set) > 0 {
			return true
		}
	}
	return false
}

// Outcome is the resolved result of a single unit test.
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeWarned  Outcome = "warned"
	OutcomeInfo    Outcome = "info"
	OutcomeSkipped Outcome = "skipped"
)

// Outcome resolves the single dominant tier: skipped over everything, then
// critical and error (both failures, differentiated only in the messages),
// then warning, then info, then a clean pass.
func (r *Reporter) Outcome() Outcome {
	switch {
	case r.HasSkipped():
		return OutcomeSkipped
	case r.HasCritical(), r.HasErrors():
		return OutcomeFailed
	case r.HasWarnings():
		return OutcomeWarned
	case r.HasInformation():
		return OutcomeInfo
	}
	return OutcomePassed
}

// GenerateEdgeID renders the resource-scoped edge identifier used in test
// names and message prefixes, e.g. "molepro#TestAsset:00007".
func GenerateEdgeID(resourceID string, idx string) string {
	return resourceID + "#" + idx
}

// UnitTestReport is the findings of one test asset under one query template,
// together with the raw TRAPI traffic for later harness inspection.
type UnitTestReport struct {
	*Reporter

	AssetID  string
	TestName string

	// Raw request and response captured for the harness; nil until the
	// network call happens.
	Request  any
	Response any
}

// NewUnitTestReport creates a report for one (asset, template) pair.
func NewUnitTestReport(resourceID, assetID, testName string) *UnitTestReport {
	prefix := "[" + GenerateEdgeID(resourceID, assetID) + "-" + testName + "]"
	return &UnitTestReport{
		Reporter: NewReporter(prefix),
		AssetID:  assetID,
		TestName: testName,
	}
}

// Skip records that the test could not be run, with the edge it was skipped
// for and optional extra context already rendered by the caller.
func (u *UnitTestReport) Skip(code string, edgeID string, params map[string]string) {
	if params == nil {
		params = map[string]string{}
	}
	if _, ok := params["identifier"]; !ok {
		params["identifier"] = edgeID
	}
	u.Report(code, params)
}
