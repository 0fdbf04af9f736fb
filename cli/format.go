package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	lgerrors "github.com/byteness/leasegate/errors"
	"github.com/byteness/leasegate/grant"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	idStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	closedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	deniedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	riskHigh     = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	riskMedium   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// statusStyle picks the display style for a request status.
func statusStyle(status grant.Status) lipgloss.Style {
	switch status {
	case grant.StatusPending:
		return pendingStyle
	case grant.StatusApproved:
		return activeStyle
	case grant.StatusDenied:
		return deniedStyle
	default:
		return closedStyle
	}
}

// riskStyle picks the display style for a risk score.
func riskStyle(score int) lipgloss.Style {
	switch {
	case score > 7:
		return riskHigh
	case score > 4:
		return riskMedium
	default:
		return dimStyle
	}
}

// renderRequestTable formats requests as an aligned, styled listing.
// Styling is skipped when stdout is not a terminal.
func renderRequestTable(requests []*grant.AccessRequest, styled bool) string {
	var b strings.Builder

	header := fmt.Sprintf("%-18s %-24s %-14s %-9s %5s  %s",
		"ID", "REQUESTER", "ACCOUNT", "STATUS", "RISK", "EXPIRES")
	if styled {
		header = headerStyle.Render(header)
	}
	b.WriteString(header + "\n")

	for _, req := range requests {
		expires := "-"
		if !req.ExpiresAt.IsZero() {
			expires = req.ExpiresAt.UTC().Format("2006-01-02 15:04")
		}

		if styled {
			b.WriteString(fmt.Sprintf("%s %-24s %-14s %s %s  %s\n",
				idStyle.Render(fmt.Sprintf("%-18s", req.ID)),
				truncate(req.RequesterEmail, 24),
				req.AccountID,
				statusStyle(req.Status).Render(fmt.Sprintf("%-9s", req.Status)),
				riskStyle(req.RiskScore).Render(fmt.Sprintf("%5d", req.RiskScore)),
				dimStyle.Render(expires)))
		} else {
			b.WriteString(fmt.Sprintf("%-18s %-24s %-14s %-9s %5d  %s\n",
				req.ID, truncate(req.RequesterEmail, 24), req.AccountID,
				req.Status, req.RiskScore, expires))
		}
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printError writes an error to stderr, including the actionable
// suggestion when the error carries one.
func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var lgerr lgerrors.LeasegateError
	if errors.As(err, &lgerr) && lgerr.Suggestion() != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", lgerr.Suggestion())
	}
}
