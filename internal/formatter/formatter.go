// package formatter renders sync run results for terminal display
package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/srmq/playvault/internal/tasks"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// RenderRunReport builds the end-of-run summary for a sync run.
func RenderRunReport(result *tasks.RunResult) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Sync complete: %s (%s)", result.Date, result.Zone)))
	b.WriteString("\n\n")

	for _, outcome := range result.Outcomes {
		if outcome.Err != nil {
			b.WriteString(errStyle.Render("✗"))
			b.WriteString(fmt.Sprintf(" %s <%s>: %s\n", outcome.FullName, outcome.Email, outcome.ErrText))
			continue
		}

		b.WriteString(okStyle.Render("✓"))
		b.WriteString(fmt.Sprintf(" %s <%s>: %d events", outcome.FullName, outcome.Email, outcome.Events))
		if outcome.NewUser {
			b.WriteString(dimStyle.Render(" (new user)"))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Users synced: %d, failed: %d\n", result.Synced, result.Failed))
	b.WriteString(fmt.Sprintf("Events ingested: %d\n", result.Events))

	return b.String()
}

// RenderUserList builds the output for the connectivity check command.
func RenderUserList(emails, names []string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Registered users: %d", len(emails))))
	b.WriteString("\n")

	for i, email := range emails {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		b.WriteString(fmt.Sprintf("  %d. %s <%s>\n", i+1, name, email))
	}

	return b.String()
}
