package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"onehop/internal/asset"
	"onehop/internal/runner"
)

// watchCmd reruns the suite whenever its file changes
var watchCmd = &cobra.Command{
	Use:   "watch <suite.yaml>",
	Short: "Watch a suite file and rerun it on every change",
	Long: `Runs the suite once, then watches the YAML file and reruns the full suite
each time it is saved. Stop with Ctrl-C.

Example:
  onehop watch assets.yaml --url https://automat.transltr.io/hgnc/query`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&runURL, "url", "", "Target TRAPI query endpoint (default: from config)")
	watchCmd.Flags().StringSliceVar(&runTests, "tests", nil, "Query templates to run (default: all)")
	watchCmd.Flags().BoolVar(&runNoArchive, "no-archive", false, "Skip persisting runs to the report archive")
}

func runWatch(cmd *cobra.Command, args []string) error {
	suitePath := args[0]
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	r, archive, err := buildRunner()
	if err != nil {
		return err
	}
	if archive != nil {
		defer archive.Close()
	}

	execute := func(suite *asset.Suite) {
		runCtx, runCancel := context.WithTimeout(ctx, operationTimeout())
		defer runCancel()
		run, err := r.Run(runCtx, suite)
		if run != nil {
			printRunSummary(run)
		}
		if err != nil && ctx.Err() == nil {
			logger.Warn("Suite run failed", zap.Error(err))
		}
	}

	suite, err := asset.LoadSuite(suitePath)
	if err != nil {
		return err
	}
	execute(suite)

	// Serialize reruns; a save during a run queues exactly one more.
	suiteCh := make(chan *asset.Suite, 1)
	watcher, err := runner.NewSuiteWatcher(suitePath, func(s *asset.Suite) {
		select {
		case suiteCh <- s:
		default:
		}
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Printf("watching %s for changes (Ctrl-C to stop)\n", suitePath)
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-suiteCh:
			execute(s)
		}
	}
}
