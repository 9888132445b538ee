package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/camelcase"

	"github.com/ernestoongaro/omnicles/internal/domain"
)

// ── Claude-inspired warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(fg)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle     = lipgloss.NewStyle().Foreground(dim)
	faintStyle   = lipgloss.NewStyle().Foreground(faint)
	passStyle    = lipgloss.NewStyle().Foreground(success)
	failStyle    = lipgloss.NewStyle().Foreground(danger)
	warnStyle    = lipgloss.NewStyle().Foreground(warning)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
)

// fields the summary line already carries, or that only duplicate the raw
// issue body; skipped when listing identifying fields.
var skippedFields = map[string]bool{
	"message":   true,
	"raw_issue": true,
}

// maxIdentifyingFields keeps a single issue's field listing to one glance.
const maxIdentifyingFields = 6

// RenderReport renders the gate summary as a styled TUI string.
func RenderReport(report *domain.Report, c domain.Classification) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Omni content validator"))
	b.WriteString("  " + dimStyle.Render(report.ModelID))
	b.WriteString("\n\n")

	b.WriteString("  " + countsLine(report) + "\n")

	if len(c.New) > 0 {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  %s %s\n",
			sectionStyle.Render("New Issues"),
			dimStyle.Render(fmt.Sprintf("(%d)", len(c.New))),
		))
		for _, issue := range c.New {
			renderIssue(&b, issue)
		}
	}

	if report.ResolvedIssues > 0 {
		b.WriteString("\n")
		b.WriteString("  " + passStyle.Render(fmt.Sprintf("✓ %d issue(s) resolved since the last run", report.ResolvedIssues)) + "\n")
	}

	if report.TotalIssues == 0 {
		b.WriteString("\n")
		b.WriteString("  " + passStyle.Render("✓ no issues found") + "\n")
	}

	return b.String()
}

// RenderWarning styles a non-fatal warning for stderr.
func RenderWarning(msg string) string {
	return warnStyle.Render("warning: ") + msg
}

func countsLine(report *domain.Report) string {
	total := fmt.Sprintf("total %d", report.TotalIssues)
	if report.TotalIssues > 0 {
		total = failStyle.Render(total)
	} else {
		total = passStyle.Render(total)
	}

	newCount := fmt.Sprintf("new %d", report.NewIssues)
	if report.NewIssues > 0 {
		newCount = warnStyle.Render(newCount)
	} else {
		newCount = dimStyle.Render(newCount)
	}

	return strings.Join([]string{
		total,
		newCount,
		dimStyle.Render(fmt.Sprintf("existing %d", report.ExistingIssues)),
		dimStyle.Render(fmt.Sprintf("resolved %d", report.ResolvedIssues)),
	}, dimStyle.Render("  ·  "))
}

func renderIssue(b *strings.Builder, issue domain.NormalizedIssue) {
	b.WriteString(fmt.Sprintf("    %s %s\n", failStyle.Render("●"), titleStyle.Render(issue.Summary)))
	if fields := identifyingFields(issue.Raw); fields != "" {
		b.WriteString("      " + faintStyle.Render(fields) + "\n")
	}
}

// identifyingFields lists an issue's scalar fields so a reader can locate
// the finding without opening the report artifact. Keys are sorted for
// deterministic output.
func identifyingFields(raw any) string {
	issue, ok := raw.(map[string]any)
	if !ok {
		return ""
	}

	keys := make([]string, 0, len(issue))
	for k := range issue {
		if skippedFields[k] || issue[k] == nil {
			continue
		}
		if _, scalar := scalarString(issue[k]); !scalar {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > maxIdentifyingFields {
		keys = keys[:maxIdentifyingFields]
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, _ := scalarString(issue[k])
		parts = append(parts, fieldLabel(k)+": "+v)
	}
	return strings.Join(parts, " · ")
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, val != ""
	case float64, bool, int:
		return fmt.Sprint(val), true
	default:
		return "", false
	}
}

// fieldLabel humanizes a field name: snake_case and camelCase both become
// space-separated title words ("baseModelId" -> "Base Model Id").
func fieldLabel(name string) string {
	var words []string
	for _, part := range strings.Split(name, "_") {
		for _, word := range camelcase.Split(part) {
			if word == "" {
				continue
			}
			words = append(words, strings.ToUpper(word[:1])+word[1:])
		}
	}
	return strings.Join(words, " ")
}
