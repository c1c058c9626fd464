package report

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed codes.yaml
var codesYAML []byte

var (
	codesOnce sync.Once
	codeIndex map[string]string
)

// loadCodes parses the embedded code catalog exactly once. A malformed
// catalog is a programming error, so it panics rather than degrading.
func loadCodes() {
	codesOnce.Do(func() {
		codeIndex = make(map[string]string)
		if err := yaml.Unmarshal(codesYAML, &codeIndex); err != nil {
			panic(fmt.Sprintf("report: embedded codes.yaml is invalid: %v", err))
		}
	})
}

// DescribeCode returns the message template registered for a validation code.
func DescribeCode(code string) (string, bool) {
	loadCodes()
	tmpl, ok := codeIndex[code]
	return tmpl, ok
}

// KnownCodes returns every registered code, sorted.
func KnownCodes() []string {
	loadCodes()
	codes := make([]string, 0, len(codeIndex))
	for c := range codeIndex {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// renderCode expands a code's message template with the given parameters.
// Unknown codes still render: the code itself plus any parameters, so an
// unregistered code never hides a validation finding.
func renderCode(code string, params map[string]string) string {
	tmpl, ok := DescribeCode(code)
	if !ok {
		if len(params) == 0 {
			return code
		}
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+params[k])
		}
		return code + " (" + strings.Join(parts, ", ") + ")"
	}
	out := tmpl
	for k, v := range params {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	// Unfilled placeholders read badly in reports; blank them.
	for _, k := range []string{"identifier", "context", "reason"} {
		out = strings.ReplaceAll(out, "{"+k+"}", "")
	}
	return strings.Join(strings.Fields(out), " ")
}
