package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	mintGreen  = lipgloss.Color("#A8E6CF")
	salmonPink = lipgloss.Color("#FFB3BA")
	amber      = lipgloss.Color("#FFD59E")
	mutedGray  = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Bold(true)

	resolvedStyle = lipgloss.NewStyle().Foreground(mintGreen)
	healedStyle   = lipgloss.NewStyle().Foreground(amber)
	failedStyle   = lipgloss.NewStyle().Foreground(salmonPink)

	errorStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedGray).
			Padding(0, 1)
)

var outcomeHeader = []string{"element", "outcome", "locator", "worker", "duration"}

// outcomeRows renders outcomes as table rows, header first.
func outcomeRows(outcomes []outcome) [][]string {
	rows := [][]string{outcomeHeader}
	for _, o := range outcomes {
		status := o.Kind
		if o.Healed {
			status = "healed"
		}
		rows = append(rows, []string{
			o.Element,
			status,
			o.Locator,
			o.Worker,
			o.Duration.Round(time.Millisecond).String(),
		})
	}
	return rows
}

// renderOutcomes lays the outcomes out as aligned, colored columns followed by
// the failure messages and a summary box.
func renderOutcomes(project string, outcomes []outcome) string {
	rows := outcomeRows(outcomes)

	widths := make([]int, len(outcomeHeader))
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("smartfind: " + project))
	b.WriteString("\n\n")

	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			style := lipgloss.NewStyle().Width(widths[i] + 2)
			switch {
			case r == 0:
				style = style.Inherit(headerStyle)
			case i == 1:
				style = style.Inherit(statusStyle(outcomes[r-1]))
			}
			cells[i] = style.Render(cell)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}

	resolved, healed, failed := 0, 0, 0
	for _, o := range outcomes {
		switch {
		case o.Error != "":
			failed++
			b.WriteString(errorStyle.Render(fmt.Sprintf("  %s: %s", o.Element, o.Error)))
			b.WriteString("\n")
		case o.Healed:
			healed++
		default:
			resolved++
		}
	}

	b.WriteString("\n")
	b.WriteString(summaryStyle.Render(fmt.Sprintf("%d resolved  %d healed  %d failed", resolved, healed, failed)))
	return b.String()
}

func statusStyle(o outcome) lipgloss.Style {
	switch {
	case o.Error != "":
		return failedStyle
	case o.Healed:
		return healedStyle
	default:
		return resolvedStyle
	}
}
