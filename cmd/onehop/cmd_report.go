package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"onehop/internal/config"
	"onehop/internal/report"
)

var (
	reportLimit int
	reportRunID string
)

// reportCmd inspects the run archive
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show archived runs and their outcomes",
	Long: `Lists recent runs from the report archive, or the per-test outcomes of one
run when --run is given.

Example:
  onehop report
  onehop report --run 2bbd2f45-33fd-4b4a-b569-04d2db4b6a10`,
	RunE: runReport,
}

// initCmd writes a default config into the workspace
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file into the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultConfigPath(workspace)
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportLimit, "limit", 10, "Number of recent runs to list")
	reportCmd.Flags().StringVar(&reportRunID, "run", "", "Show the per-test outcomes of one run")
}

func runReport(cmd *cobra.Command, args []string) error {
	path := cfg.Report.DatabasePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(workspace, path)
	}
	archive, err := report.OpenArchive(path)
	if err != nil {
		return err
	}
	defer archive.Close()

	if reportRunID != "" {
		return printRunOutcomes(archive, reportRunID)
	}

	runs, err := archive.RecentRuns(reportLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no archived runs")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  %s  passed=%d failed=%d warned=%d skipped=%d\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.ID, r.Suite,
			r.Passed, r.Failed, r.Warned, r.Skipped)
	}
	return nil
}

func printRunOutcomes(archive *report.Archive, runID string) error {
	outcomes, err := archive.RunOutcomes(runID)
	if err != nil {
		return err
	}
	if len(outcomes) == 0 {
		fmt.Printf("no outcomes for run %s\n", runID)
		return nil
	}
	for _, o := range outcomes {
		fmt.Printf("%-8s %s/%s (%s)\n", o.Outcome, o.AssetID, o.TestName,
			o.Duration.Round(timeRounding))
		for _, level := range report.Levels {
			for _, msg := range o.Messages[level] {
				fmt.Printf("         %s: %s\n", level, msg)
			}
		}
	}
	return nil
}
