package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"onehop/internal/asset"
	"onehop/internal/ontology"
	"onehop/internal/report"
	"onehop/internal/runner"
	"onehop/internal/template"
	"onehop/internal/trapi"
)

var (
	lookupURL       string
	lookupSubject   string
	lookupPredicate string
	lookupObject    string
	lookupExpected  string
	lookupTests     []string
	lookupDumpJSON  bool
)

// lookupCmd runs an ad-hoc single-edge test without a suite file
var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Test a single edge ad hoc, without a suite file",
	Long: `Builds a test asset from flags and runs the query templates against it.

Example:
  onehop lookup --url https://automat.transltr.io/hgnc/query \
    --subject NCBIGene:3778 --predicate biolink:affects --object MONDO:0011565`,
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().StringVar(&lookupURL, "url", "", "Target TRAPI query endpoint (default: from config)")
	lookupCmd.Flags().StringVar(&lookupSubject, "subject", "", "Subject CURIE (required)")
	lookupCmd.Flags().StringVar(&lookupPredicate, "predicate", "", "Predicate CURIE or plain-English name (required)")
	lookupCmd.Flags().StringVar(&lookupObject, "object", "", "Object CURIE (required)")
	lookupCmd.Flags().StringVar(&lookupExpected, "expected", string(asset.TopAnswer), "Expected output class")
	lookupCmd.Flags().StringSliceVar(&lookupTests, "tests", nil, "Query templates to run (default: all)")
	lookupCmd.Flags().BoolVar(&lookupDumpJSON, "json", false, "Dump raw TRAPI requests and responses as JSON")
	lookupCmd.MarkFlagRequired("subject")
	lookupCmd.MarkFlagRequired("predicate")
	lookupCmd.MarkFlagRequired("object")
}

func runLookup(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout())
	defer cancel()

	url := lookupURL
	if url == "" {
		url = cfg.Target.URL
	}
	if url == "" {
		return fmt.Errorf("no target URL: pass --url or set target.url in config")
	}

	expected := asset.ExpectedOutput(lookupExpected)
	if !expected.Valid() {
		return fmt.Errorf("unknown expected output %q", lookupExpected)
	}

	a := asset.BuildTestAsset(lookupSubject, lookupPredicate, lookupObject, expected)
	edge := a.Edge(cfg.Target.BiolinkVersion)

	creators, err := template.Lookup(lookupTests)
	if err != nil {
		return err
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

	var failed int
	for _, creator := range creators {
		rep := runner.ExecuteLookup(ctx, client, url, edge, creator, resolver,
			cfg.Target.TRAPIVersion, cfg.Target.BiolinkVersion)
		printUnitReport(creator.Name, rep)
		if rep.Outcome() == report.OutcomeFailed {
			failed++
		}
		if lookupDumpJSON {
			dumpTraffic(rep)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d unit tests failed", failed)
	}
	return nil
}

func dumpTraffic(rep *report.UnitTestReport) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if rep.Request != nil {
		fmt.Printf("--- request %s ---\n", rep.TestName)
		enc.Encode(rep.Request)
	}
	if rep.Response != nil {
		fmt.Printf("--- response %s ---\n", rep.TestName)
		enc.Encode(rep.Response)
	}
}
