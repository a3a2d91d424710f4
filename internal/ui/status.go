package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/csvx/internal/engine"
)

// StatusModel is the passive status bar under the table. It renders counts,
// window position, and the active search/where state.
type StatusModel struct {
	FileName   string
	Total      int
	Filtered   int
	Cursor     int // 1-based position within the filtered view
	Search     string
	WhereExpr  string
	SortColumn string
	SortDir    string
	Window     engine.WindowState
	ErrMsg     string
	NoColor    bool
	Width      int
}

// View renders the status bar as a single line.
func (m StatusModel) View() string {
	style := lipgloss.NewStyle()
	if !m.NoColor {
		th := CurrentTheme()
		if m.ErrMsg != "" {
			style = style.Foreground(th.StatusError)
		} else {
			style = style.Foreground(th.StatusColor)
		}
	}

	if m.ErrMsg != "" {
		return style.Render(truncateLine(m.ErrMsg, m.Width))
	}

	parts := []string{m.FileName}
	if m.Filtered == m.Total {
		parts = append(parts, fmt.Sprintf("%d rows", m.Total))
	} else {
		parts = append(parts, fmt.Sprintf("%d of %d rows", m.Filtered, m.Total))
	}
	if m.Cursor > 0 {
		parts = append(parts, fmt.Sprintf("row %d", m.Cursor))
	}

	switch m.Window.Mode {
	case engine.Paged:
		if m.Window.TotalPages > 0 {
			parts = append(parts, fmt.Sprintf("page %d/%d", m.Window.Page, m.Window.TotalPages))
		}
	case engine.Reveal:
		if m.Window.Revealed < m.Filtered {
			parts = append(parts, fmt.Sprintf("showing %d", m.Window.Revealed))
		}
		if m.Window.Loading {
			parts = append(parts, "loading…")
		}
	}

	if m.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %s", m.Search))
	}
	if m.WhereExpr != "" {
		parts = append(parts, fmt.Sprintf("where: %s", m.WhereExpr))
	}
	if m.SortColumn != "" {
		parts = append(parts, fmt.Sprintf("sort: %s %s", m.SortColumn, m.SortDir))
	}

	return style.Render(truncateLine(strings.Join(parts, "  |  "), m.Width))
}

func truncateLine(s string, width int) string {
	if width <= 0 || len(s) <= width {
		return s
	}
	if width <= 1 {
		return s[:width]
	}
	return s[:width-1] + "…"
}
