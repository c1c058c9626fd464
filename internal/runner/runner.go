// Package runner orchestrates one-hop test execution: it expands a suite of
// test assets across the query template registry, runs the resulting unit
// tests against a TRAPI endpoint with bounded concurrency, and aggregates
// the outcomes into a run report.
package runner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"onehop/internal/asset"
	"onehop/internal/logging"
	"onehop/internal/report"
	"onehop/internal/template"
	"onehop/internal/trapi"
)

// Options selects what to run and how hard to push the endpoint.
type Options struct {
	URL            string
	TRAPIVersion   string
	BiolinkVersion string

	// Tests names the query templates to run; empty runs the full registry.
	Tests []string

	MaxConcurrent int
	FailFast      bool
}

// UnitResult pairs a unit test report with its wall-clock duration.
type UnitResult struct {
	Report   *report.UnitTestReport
	Duration time.Duration
}

// RunReport aggregates everything one suite run produced.
type RunReport struct {
	ID         string
	Suite      string
	TargetURL  string
	StartedAt  time.Time
	FinishedAt time.Time
	Units      []UnitResult
	Totals     map[report.Outcome]int
}

// Runner executes test suites against a TRAPI endpoint.
type Runner struct {
	client   *trapi.Client
	resolver template.ParentResolver
	archive  *report.Archive
	opts     Options
}

// New creates a runner. The archive may be nil, in which case runs are not
// persisted. The resolver may be nil when no raise-entity templates are
// selected.
func New(client *trapi.Client, resolver template.ParentResolver, archive *report.Archive, opts Options) (*Runner, error) {
	if client == nil {
		return nil, fmt.Errorf("runner requires a TRAPI client")
	}
	if opts.URL == "" {
		return nil, fmt.Errorf("runner requires a target URL")
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 4
	}
	return &Runner{
		client:   client,
		resolver: resolver,
		archive:  archive,
		opts:     opts,
	}, nil
}

// Run executes every selected query template against every asset in the
// suite. The returned report is complete even when ctx is cancelled
// mid-run; cancellation is returned as the error.
func (r *Runner) Run(ctx context.Context, suite *asset.Suite) (*RunReport, error) {
	creators, err := template.Lookup(r.opts.Tests)
	if err != nil {
		return nil, err
	}

	run := &RunReport{
		ID:        uuid.NewString(),
		Suite:     suite.Name,
		TargetURL: r.opts.URL,
		StartedAt: time.Now(),
		Totals:    make(map[report.Outcome]int),
	}
	logging.Runner("run %s: %d assets x %d templates against %s",
		run.ID, len(suite.Assets), len(creators), r.opts.URL)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.MaxConcurrent)

	for _, a := range suite.Assets {
		edge := a.Edge(r.opts.BiolinkVersion)
		for _, creator := range creators {
			creator := creator
			g.Go(func() error {
				start := time.Now()
				rep := ExecuteLookup(gctx, r.client, r.opts.URL, edge, creator, r.resolver,
					r.opts.TRAPIVersion, r.opts.BiolinkVersion)
				result := UnitResult{Report: rep, Duration: time.Since(start)}

				mu.Lock()
				run.Units = append(run.Units, result)
				mu.Unlock()

				if r.opts.FailFast && rep.Outcome() == report.OutcomeFailed {
					return fmt.Errorf("unit test %s/%s failed", rep.AssetID, rep.TestName)
				}
				return nil
			})
		}
	}

	runErr := g.Wait()
	run.FinishedAt = time.Now()

	sort.Slice(run.Units, func(i, j int) bool {
		a, b := run.Units[i].Report, run.Units[j].Report
		if a.AssetID != b.AssetID {
			return a.AssetID < b.AssetID
		}
		return a.TestName < b.TestName
	})
	for _, u := range run.Units {
		run.Totals[u.Report.Outcome()]++
	}
	logging.Runner("run %s finished in %s: %d passed, %d failed, %d warned, %d skipped",
		run.ID, run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond),
		run.Totals[report.OutcomePassed]+run.Totals[report.OutcomeInfo],
		run.Totals[report.OutcomeFailed],
		run.Totals[report.OutcomeWarned],
		run.Totals[report.OutcomeSkipped])

	if r.archive != nil {
		if err := r.persist(run); err != nil {
			logging.Runner("run %s: archive save failed: %v", run.ID, err)
			if runErr == nil {
				runErr = err
			}
		}
	}

	if runErr == nil && ctx.Err() != nil {
		runErr = ctx.Err()
	}
	return run, runErr
}

func (r *Runner) persist(run *RunReport) error {
	record := report.RunRecord{
		ID:         run.ID,
		Suite:      run.Suite,
		TargetURL:  run.TargetURL,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Passed:     run.Totals[report.OutcomePassed] + run.Totals[report.OutcomeInfo],
		Failed:     run.Totals[report.OutcomeFailed],
		Warned:     run.Totals[report.OutcomeWarned],
		Skipped:    run.Totals[report.OutcomeSkipped],
	}
	outcomes := make([]report.OutcomeRecord, 0, len(run.Units))
	for _, u := range run.Units {
		outcomes = append(outcomes, report.OutcomeRecord{
			AssetID:  u.Report.AssetID,
			TestName: u.Report.TestName,
			Outcome:  u.Report.Outcome(),
			Messages: u.Report.Messages(),
			Duration: u.Duration,
		})
	}
	return r.archive.SaveRun(record, outcomes)
}
