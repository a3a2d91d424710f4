package ui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// FooterModel renders key hints for the current mode at the bottom of the
// screen.
type FooterModel struct {
	KeyMode KeyMode
	Mode    uiMode
	NoColor bool
	Width   int
}

type footerHint struct {
	key   string
	label string
}

// View renders the footer line.
func (m FooterModel) View() string {
	keyStyle := lipgloss.NewStyle()
	if !m.NoColor {
		th := CurrentTheme()
		keyStyle = keyStyle.Foreground(th.FooterFG).Background(th.FooterBG).Bold(true)
	} else {
		keyStyle = keyStyle.Reverse(true)
	}

	parts := make([]string, 0, 16)
	for _, h := range m.hints() {
		parts = append(parts, keyStyle.Render(h.key), h.label)
	}
	return truncateLine(strings.Join(parts, " "), m.Width)
}

func (m FooterModel) hints() []footerHint {
	switch m.Mode {
	case modeSearch:
		return []footerHint{{"enter", "apply"}, {"esc", "clear"}}
	case modeWhere:
		return []footerHint{{"enter", "apply"}, {"esc", "clear"}}
	case modeEdit:
		return []footerHint{{"enter", "save"}, {"esc", "cancel"}}
	case modeConfirmDelete:
		return []footerHint{{"y", "delete"}, {"n", "keep"}}
	case modeHelp:
		return []footerHint{{"esc", "close"}}
	}

	if m.KeyMode == KeyModeFunction {
		return []footerHint{
			{"F1", "help"}, {"F3", "search"}, {"F4", "where"}, {"F6", "sort"},
			{"F7", "edit"}, {"F8", "delete"}, {"F10", "quit"},
		}
	}
	return []footerHint{
		{"/", "search"}, {"w", "where"}, {"s", "sort"}, {"e", "edit"},
		{"d", "delete"}, {"?", "help"}, {"q", "quit"},
	}
}
