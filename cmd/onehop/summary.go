package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"onehop/internal/report"
	"onehop/internal/runner"
)

const timeRounding = time.Millisecond

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	skipStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headStyle = lipgloss.NewStyle().Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func outcomeLabel(o report.Outcome) string {
	switch o {
	case report.OutcomeFailed:
		return failStyle.Render("FAIL")
	case report.OutcomeWarned:
		return warnStyle.Render("WARN")
	case report.OutcomeSkipped:
		return skipStyle.Render("SKIP")
	default:
		return passStyle.Render("PASS")
	}
}

func printUnitReport(testName string, rep *report.UnitTestReport) {
	fmt.Printf("%s %s\n", outcomeLabel(rep.Outcome()), testName)
	for _, msg := range rep.DumpAll() {
		fmt.Printf("     %s\n", dimStyle.Render(msg))
	}
}

func printRunSummary(run *runner.RunReport) {
	fmt.Println(headStyle.Render(fmt.Sprintf("run %s against %s", run.ID, run.TargetURL)))
	for _, u := range run.Units {
		rep := u.Report
		fmt.Printf("%s %s/%s %s\n",
			outcomeLabel(rep.Outcome()), rep.AssetID, rep.TestName,
			dimStyle.Render(u.Duration.Round(timeRounding).String()))
		for _, msg := range rep.DumpAll() {
			fmt.Printf("     %s\n", dimStyle.Render(msg))
		}
	}

	passed := run.Totals[report.OutcomePassed] + run.Totals[report.OutcomeInfo]
	parts := []string{
		passStyle.Render(fmt.Sprintf("%d passed", passed)),
		failStyle.Render(fmt.Sprintf("%d failed", run.Totals[report.OutcomeFailed])),
		warnStyle.Render(fmt.Sprintf("%d warned", run.Totals[report.OutcomeWarned])),
		skipStyle.Render(fmt.Sprintf("%d skipped", run.Totals[report.OutcomeSkipped])),
	}
	elapsed := run.FinishedAt.Sub(run.StartedAt).Round(timeRounding)
	fmt.Printf("%s %s %s %s in %s\n", parts[0], parts[1], parts[2], parts[3], elapsed)
}
