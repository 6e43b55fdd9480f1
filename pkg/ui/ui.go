// Package ui renders styled terminal output for the CLI commands.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"xscraper/pkg/scraper"
)

var (
	accent = lipgloss.Color("#1D9BF0")
	green  = lipgloss.Color("#00BA7C")
	yellow = lipgloss.Color("#FFD400")
	red    = lipgloss.Color("#F4212E")
	dim    = lipgloss.Color("#71767B")

	titleStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(yellow).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(dim)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E7E9EA"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)
)

// Title prints a bold section heading.
func Title(msg string) {
	fmt.Println(titleStyle.Render(msg))
}

// Success prints a success message.
func Success(msg string) {
	fmt.Println(successStyle.Render("✓ " + msg))
}

// Warning prints a warning message.
func Warning(msg string) {
	fmt.Println(warningStyle.Render("! " + msg))
}

// Error prints an error message.
func Error(msg string) {
	fmt.Println(errorStyle.Render("✗ " + msg))
}

// Info prints a labeled value.
func Info(label, value string) {
	fmt.Printf("%s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

// Summary renders the end-of-run panel.
func Summary(s *scraper.Summary, outputFile string) {
	rows := [][2]string{
		{"Collected", strconv.Itoa(len(s.Records))},
		{"Outcome", outcomeLabel(s.Reason)},
		{"Scroll passes", strconv.Itoa(s.ScrollPasses)},
		{"Duplicates skipped", strconv.Itoa(s.Duplicates)},
	}
	if s.Malformed > 0 {
		rows = append(rows, [2]string{"Malformed entries", strconv.Itoa(s.Malformed)})
	}
	if s.PastWindow > 0 {
		rows = append(rows, [2]string{"Outside date window", strconv.Itoa(s.PastWindow)})
	}
	if outputFile != "" {
		rows = append(rows, [2]string{"Output", outputFile})
	}

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-20s", row[0])))
		b.WriteString(valueStyle.Render(row[1]))
	}
	fmt.Println(panelStyle.Render(b.String()))
}

func outcomeLabel(reason scraper.StopReason) string {
	switch reason {
	case scraper.StopLimit:
		return "reached requested limit"
	case scraper.StopComplete:
		return "exhausted matching posts"
	case scraper.StopStall:
		return "feed stalled (partial results)"
	case scraper.StopAuthRequired:
		return "authentication required"
	case scraper.StopCancelled:
		return "cancelled"
	case scraper.StopError:
		return "failed"
	default:
		return string(reason)
	}
}
