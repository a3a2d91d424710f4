package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

type helpEntry struct {
	vim      string
	function string
	desc     string
}

var helpEntries = []helpEntry{
	{"j / k", "↓ / ↑", "move between rows"},
	{"h / l", "← / →", "select column"},
	{"g / G", "home / end", "jump to first / last row"},
	{"n / p", "pgdn / pgup", "next / previous page (paged mode)"},
	{"/", "F3", "search all columns (live, case-insensitive)"},
	{"w", "F4", "filter rows with a CEL expression"},
	{"s", "F6", "cycle sort on the selected column (asc → desc → off)"},
	{"e / enter", "F7", "edit the selected cell"},
	{"d", "F8", "delete the selected row"},
	{"R", "F5", "reload the file, discarding all changes"},
	{"esc", "esc", "clear search, filter, and sort"},
	{"?", "F1", "toggle this help"},
	{"q", "F10", "quit"},
}

// renderHelp builds the help overlay body for the active key mode.
func renderHelp(mode KeyMode, noColor bool, width int) string {
	keyStyle := lipgloss.NewStyle()
	descStyle := lipgloss.NewStyle()
	if !noColor {
		th := CurrentTheme()
		keyStyle = keyStyle.Foreground(th.HelpKey).Bold(true)
		descStyle = descStyle.Foreground(th.HelpValue)
	}

	var sb strings.Builder
	sb.WriteString(keyStyle.Render("Keys"))
	sb.WriteString("\n\n")
	for _, e := range helpEntries {
		key := e.vim
		if mode == KeyModeFunction {
			key = e.function
		}
		line := fmt.Sprintf("  %-12s %s", key, descStyle.Render(e.desc))
		sb.WriteString(truncateLine(line, width))
		sb.WriteByte('\n')
	}
	sb.WriteString("\n")
	sb.WriteString(descStyle.Render("Where expressions see the row as '_', e.g. int(_.age) > 30"))
	return sb.String()
}
