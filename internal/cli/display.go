// Package cli renders the streaming run and backtest commands to a terminal,
// adapted from the teacher's internal/cli/ui.go lipgloss panels onto
// cortexfund's own event and result types.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/cortexfund/internal/backtest"
	"github.com/dyike/cortexfund/internal/models"
	"github.com/dyike/cortexfund/internal/streaming"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1F2937")).
			Padding(0, 1).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	completedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	reasoningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// DisplayStartBanner prints the header for a run command before streaming
// begins.
func DisplayStartBanner(tickers []string) {
	header := fmt.Sprintf("cortexfund run | tickers: %s", strings.Join(tickers, ", "))
	fmt.Println(headerStyle.Render(header))
}

// DisplayEvent renders one streaming.Event to stdout as a human-readable
// line, mirroring the teacher's per-message log line
// (formatAgentStatus/DisplayMessagesPanel) but against our flatter Event
// shape instead of a session-wide progress struct.
func DisplayEvent(evt streaming.Event) {
	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	stamp := ts.Format("15:04:05")

	switch evt.Type {
	case streaming.EventStart:
		fmt.Println(progressStyle.Render(fmt.Sprintf("[%s] starting run", stamp)))
	case streaming.EventProgressUpdate:
		line := fmt.Sprintf("[%s] %s/%s: %s", stamp, evt.Agent, evt.Ticker, evt.Status)
		if evt.Analysis != "" {
			line += " - " + truncate(evt.Analysis, 80)
		}
		fmt.Println(reasoningStyle.Render(line))
	case streaming.EventComplete:
		fmt.Println(completedStyle.Render(fmt.Sprintf("[%s] run complete", stamp)))
		if evt.Data != nil {
			DisplayDecisions(evt.Data.Decisions)
		}
	case streaming.EventError:
		fmt.Println(errorStyle.Render(fmt.Sprintf("[%s] error: %s", stamp, evt.Message)))
	}
}

// DisplayDecisions prints the final per-ticker trade decisions table.
func DisplayDecisions(decisions models.RunDecisions) {
	fmt.Println(titleStyle.Render("decisions"))
	for ticker, d := range decisions {
		fmt.Printf("  %-8s %-6s qty=%-6d confidence=%.2f\n", ticker, d.Action, d.Quantity, d.Confidence)
	}
}

// DisplayBacktestSummary prints the teacher-style boxed summary for a
// completed backtest (adapting DisplayCompleteReport's bordered block to
// portfolio/metrics fields instead of agent/report counts).
func DisplayBacktestSummary(result *backtest.Result) {
	fmt.Println()
	fmt.Println(titleStyle.Render("BACKTEST COMPLETE"))

	nDays := len(result.Series)
	fmt.Printf("  Trading days:   %d\n", nDays)
	if nDays > 0 {
		last := result.Series[nDays-1]
		fmt.Printf("  Final NLV:      %s\n", last.NLV.StringFixed(2))
		fmt.Printf("  Long exposure:  %s\n", last.LongExposure.StringFixed(2))
		fmt.Printf("  Short exposure: %s\n", last.ShortExposure.StringFixed(2))
	}
	fmt.Printf("  Ending cash:    %s\n", result.Portfolio.Cash.StringFixed(2))

	m := result.Metrics
	if m.SharpeRatio == nil {
		fmt.Println(reasoningStyle.Render("  metrics: not enough data points yet (need >= 4 trading days)"))
		return
	}
	fmt.Printf("  Sharpe ratio:   %.3f\n", *m.SharpeRatio)
	fmt.Printf("  Sortino ratio:  %.3f\n", *m.SortinoRatio)
	fmt.Printf("  Max drawdown:   %.2f%%\n", *m.MaxDrawdownPct)
	if m.MaxDrawdownDate != nil {
		fmt.Printf("  Drawdown date:  %s\n", m.MaxDrawdownDate.Format("2006-01-02"))
	}
}

// DisplayDailyTable prints one row per day in the series, for verbose runs.
func DisplayDailyTable(result *backtest.Result) {
	fmt.Println(headerStyle.Render("daily performance"))
	fmt.Printf("  %-10s %12s %12s %12s\n", "date", "nlv", "long_exp", "short_exp")
	for _, d := range result.Series {
		fmt.Printf("  %-10s %12s %12s %12s\n",
			d.Date.Format("2006-01-02"),
			d.NLV.StringFixed(2),
			d.LongExposure.StringFixed(2),
			d.ShortExposure.StringFixed(2),
		)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// DisplayError mirrors the teacher's DisplayError helper.
func DisplayError(err error) {
	fmt.Println(errorStyle.Render(fmt.Sprintf("error: %s", err.Error())))
}

// DisplayInfo mirrors the teacher's DisplayInfo helper.
func DisplayInfo(message string) {
	fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")).Render(message))
}
