package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pankaj-dahiya-devops/manifest-lint/internal/models"
)

// Severity styles used when Colored=true.
var (
	breakableStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")) // Bright red
	highStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))            // Red
	moderateStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))            // Cyan
	minorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))            // Blue
)

// TableOptions controls how RenderTable and RenderIssues lay out issues.
type TableOptions struct {
	// Colored styles severity labels. Default false (CI-safe).
	Colored bool

	// Verbose prints long descriptions, locations and references.
	Verbose bool
}

// ColorSeverity styles a severity string when colored is true.
// When colored is false the string is returned unchanged (CI-safe default).
// Unknown severities are styled as BREAKABLE.
func ColorSeverity(sev models.Severity, colored bool) string {
	s := string(sev)
	if !colored {
		return s
	}
	return severityStyle(sev).Render(s)
}

func severityStyle(sev models.Severity) lipgloss.Style {
	switch sev {
	case models.SeverityHigh:
		return highStyle
	case models.SeverityModerate:
		return moderateStyle
	case models.SeverityMinor:
		return minorStyle
	default:
		return breakableStyle
	}
}

// ShortenMessage truncates msg to at most max runes, appending "..." when truncated.
// max is treated as at least 4 to guarantee space for the ellipsis.
func ShortenMessage(msg string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max-3]) + "..."
}

// severityCell returns the severity padded to width characters.
// When colored, styling wraps only the text; trailing padding spaces are plain
// so subsequent columns stay visually aligned regardless of terminal support.
func severityCell(sev models.Severity, width int, colored bool) string {
	text := string(sev)
	if !colored {
		return fmt.Sprintf("%-*s", width, text)
	}
	spaces := width - len(text)
	if spaces < 0 {
		spaces = 0
	}
	return severityStyle(sev).Render(text) + strings.Repeat(" ", spaces)
}

// truncateField shortens s to at most max runes for fixed-width columns.
// A single-char ellipsis replaces the last rune when truncation occurs.
func truncateField(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// RenderIssues writes issues as a list in the classic validator layout:
//
//	Found 2 issue(s):
//
//		Issue #k8s007 (HIGH): Containers should not use latest tag.
//
// Verbose mode prints the long description, the location and the references
// of each issue. An empty list prints "Everything is fine!".
func RenderIssues(w io.Writer, issues []models.Issue, opts TableOptions) {
	if len(issues) == 0 {
		fmt.Fprintln(w, "Everything is fine!")
		return
	}

	fmt.Fprintf(w, "Found %d issue(s):\n\n", len(issues))
	for _, i := range issues {
		sev := ColorSeverity(i.Severity, opts.Colored)
		if !opts.Verbose {
			fmt.Fprintf(w, "\tIssue #%s (%s): %s\n", i.Code, sev, i.ShortDescription)
			continue
		}
		fmt.Fprintf(w, "\tIssue #%s (%s): %s\n", i.Code, sev, i.LongDescription)
		fmt.Fprintf(w, "\t\tFound at %s\n", i.FoundAt)
		if len(i.References) > 0 {
			fmt.Fprintf(w, "\t\tReferences:\t%s\n", strings.Join(i.References, ";\n\t\t\t\t"))
		}
		fmt.Fprintln(w)
	}
}

// RenderTable writes a formatted issues table to w.
// The separator line width is derived from the header row so all rows align.
//
// Column order:
//
//	CODE  SEVERITY  FOUND AT  MESSAGE
func RenderTable(w io.Writer, issues []models.Issue, opts TableOptions) {
	if len(issues) == 0 {
		fmt.Fprintln(w, "No issues.")
		return
	}

	// Fixed column display widths.
	const (
		wCode     = 10
		wSeverity = 10
		wFoundAt  = 45
		wMessage  = 70
	)

	header := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s",
		wCode, "CODE", wSeverity, "SEVERITY", wFoundAt, "FOUND AT", wMessage, "MESSAGE")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))

	for _, i := range issues {
		msg := i.ShortDescription
		if opts.Verbose {
			msg = i.LongDescription
		}
		var rb strings.Builder
		rb.WriteString(fmt.Sprintf("%-*s", wCode, truncateField(i.Code, wCode)))
		rb.WriteString("  " + severityCell(i.Severity, wSeverity, opts.Colored))
		rb.WriteString(fmt.Sprintf("  %-*s", wFoundAt, truncateField(i.FoundAt, wFoundAt)))
		rb.WriteString(fmt.Sprintf("  %-*s", wMessage, ShortenMessage(msg, wMessage)))
		fmt.Fprintln(w, strings.TrimRight(rb.String(), " "))
	}
}
