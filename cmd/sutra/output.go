package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"sutra/internal/task"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printReport writes the report as indented JSON. Terminals also get a
// one-line colored summary.
func printReport(w io.Writer, report *task.Report) error {
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(encoded)); err != nil {
		return err
	}
	if isTerminal(w) {
		_, err = fmt.Fprintln(w, summaryLine(report))
	}
	return err
}

func summaryLine(report *task.Report) string {
	failed := 0
	for _, result := range report.Results {
		if result.Status == task.ActionFailure {
			failed++
		}
	}

	failures := gray("0 failed")
	if failed > 0 {
		failures = red(fmt.Sprintf("%d failed", failed))
	}
	return fmt.Sprintf("%s %s  %d actions, %s",
		tierBadge(report.RiskLevel), bold(report.TaskName), report.ActionsExecuted, failures)
}

func tierBadge(tier task.RiskTier) string {
	label := "[" + strings.ToUpper(string(tier)) + "]"
	switch tier {
	case task.RiskRed:
		return red(label)
	case task.RiskYellow:
		return yellow(label)
	default:
		return green(label)
	}
}
