package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"onehop/internal/asset"
	"onehop/internal/ontology"
	"onehop/internal/report"
	"onehop/internal/runner"
	"onehop/internal/trapi"
)

var (
	runURL            string
	runTests          []string
	runTRAPIVersion   string
	runBiolinkVersion string
	runFailFast       bool
	runNoArchive      bool
)

// runCmd executes a full suite against a TRAPI endpoint
var runCmd = &cobra.Command{
	Use:   "run <suite.yaml>",
	Short: "Run a test asset suite against a TRAPI endpoint",
	Long: `Loads a YAML suite of test assets and runs every selected query template
against every asset.

Example:
  onehop run assets.yaml --url https://automat.transltr.io/hgnc/query
  onehop run assets.yaml --tests by_subject,by_object --fail-fast`,
	Args: cobra.ExactArgs(1),
	RunE: runSuite,
}

func init() {
	runCmd.Flags().StringVar(&runURL, "url", "", "Target TRAPI query endpoint (default: from config)")
	runCmd.Flags().StringSliceVar(&runTests, "tests", nil, "Query templates to run (default: all)")
	runCmd.Flags().StringVar(&runTRAPIVersion, "trapi-version", "", "TRAPI schema version tag (default: from config)")
	runCmd.Flags().StringVar(&runBiolinkVersion, "biolink-version", "", "Biolink model version tag (default: from config)")
	runCmd.Flags().BoolVar(&runFailFast, "fail-fast", false, "Stop the run at the first failed unit test")
	runCmd.Flags().BoolVar(&runNoArchive, "no-archive", false, "Skip persisting the run to the report archive")
}

func runSuite(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	suite, err := asset.LoadSuite(args[0])
	if err != nil {
		return err
	}
	logger.Info("Suite loaded",
		zap.String("suite", suite.Name),
		zap.Int("assets", len(suite.Assets)))

	r, archive, err := buildRunner()
	if err != nil {
		return err
	}
	if archive != nil {
		defer archive.Close()
	}

	run, runErr := r.Run(ctx, suite)
	if run != nil {
		printRunSummary(run)
	}
	if runErr != nil {
		return runErr
	}
	if run.Totals[report.OutcomeFailed] > 0 {
		return fmt.Errorf("%d unit tests failed", run.Totals[report.OutcomeFailed])
	}
	return nil
}

// buildRunner assembles the runner stack from config and flags: TRAPI client,
// ontology resolver, and (unless disabled) the SQLite run archive.
func buildRunner() (*runner.Runner, *report.Archive, error) {
	url := runURL
	if url == "" {
		url = cfg.Target.URL
	}
	if url == "" {
		return nil, nil, fmt.Errorf("no target URL: pass --url or set target.url in config")
	}

	client := trapi.NewClientWithConfig(trapi.ClientConfig{
		Timeout:        cfg.GetTargetTimeout(),
		MaxConcurrent:  cfg.Target.MaxConcurrent,
		RequestSpacing: cfg.GetRequestSpacing(),
		UserAgent:      "onehop/" + cfg.Version,
	})

	resolver := ontology.NewClient(ontology.Config{
		KPURL:         cfg.Ontology.KPURL,
		NormalizerURL: cfg.Ontology.NormalizerURL,
		Timeout:       cfg.GetOntologyTimeout(),
	})

	var archive *report.Archive
	if !runNoArchive {
		path := cfg.Report.DatabasePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(workspace, path)
		}
		var err error
		archive, err = report.OpenArchive(path)
		if err != nil {
			return nil, nil, err
		}
	}

	trapiVersion := runTRAPIVersion
	if trapiVersion == "" {
		trapiVersion = cfg.Target.TRAPIVersion
	}
	biolinkVersion := runBiolinkVersion
	if biolinkVersion == "" {
		biolinkVersion = cfg.Target.BiolinkVersion
	}

	r, err := runner.New(client, resolver, archive, runner.Options{
		URL:            url,
		TRAPIVersion:   trapiVersion,
		BiolinkVersion: biolinkVersion,
		Tests:          runTests,
		MaxConcurrent:  cfg.Target.MaxConcurrent,
		FailFast:       runFailFast,
	})
	if err != nil {
		if archive != nil {
			archive.Close()
		}
		return nil, nil, err
	}
	return r, archive, nil
}
