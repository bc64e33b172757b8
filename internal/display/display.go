// Package display renders shuffleplan plans as styled terminal tables.
// Grounded on the teacher pack's CLI formatters (tablewriter) and REPL
// (lipgloss) rather than anything in the teacher repo itself, which has no
// terminal-output concerns of its own.
package display

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/rohanmmit/shuffleplan"
)

var (
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D9FF")).Bold(true)
	broadcastStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB700")).Bold(true)
	plainStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0caf5"))
)

// RenderPlan writes a human-readable table describing plan to w, labeling
// it with exchangeID and noting whether it is a broadcast-mode plan.
func RenderPlan(w io.Writer, exchangeID shuffleplan.ExchangeID, plan shuffleplan.PostShufflePlan) error {
	mode := plainStyle.Render("coalesced")
	if plan.IsBroadcast() {
		mode = broadcastStyle.Render("broadcast")
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("exchange %s (%s, %d partitions)", exchangeID, mode, plan.Len())))

	table := tablewriter.NewWriter(w)
	table.Header("Post #", "Pre Start", "Pre End", "Map Task Restriction")
	for _, part := range plan.Partitions {
		restriction := "-"
		if part.MapTaskRestriction != nil {
			restriction = strconv.FormatUint(uint64(*part.MapTaskRestriction), 10)
		}
		if err := table.Append([]string{
			strconv.FormatUint(uint64(part.PostIndex), 10),
			strconv.FormatUint(uint64(part.PreStart), 10),
			strconv.FormatUint(uint64(part.PreEnd), 10),
			restriction,
		}); err != nil {
			return fmt.Errorf("display: appending row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("display: rendering table: %w", err)
	}
	return nil
}

// RenderEstimationReport writes a one-line summary of an
// shuffleplan.EstimationReport to w.
func RenderEstimationReport(w io.Writer, rep shuffleplan.EstimationReport) {
	if rep.Err != nil {
		fmt.Fprintln(w, broadcastStyle.Render(fmt.Sprintf("estimation failed after %dns: %v", rep.Duration, rep.Err)))
		return
	}
	fmt.Fprintln(w, plainStyle.Render(fmt.Sprintf(
		"estimation completed in %dns, total bytes %d, broadcast=%t",
		rep.Duration, rep.TotalBytes, rep.Broadcast,
	)))
}
