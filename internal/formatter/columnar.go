package formatter

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/csvx/internal/dataset"
)

var (
	defaultHeaderFG  = lipgloss.Color("12")
	defaultHeaderBG  = lipgloss.Color("236")
	defaultSeparator = lipgloss.Color("240")
)

const (
	columnGap   = 2
	minColWidth = 4
	ellipsis    = "…"
)

// renderTable writes an aligned, optionally colored text table. Column
// widths follow the widest cell; when the natural width exceeds
// opts.MaxWidth the widest columns are shrunk first until the table fits.
func renderTable(w io.Writer, headers []string, rows []dataset.Row, opts Options) error {
	if len(headers) == 0 {
		return nil
	}

	widths := naturalWidths(headers, rows)
	if opts.MaxWidth > 0 {
		shrinkToFit(widths, opts.MaxWidth)
	}

	headerStyle := lipgloss.NewStyle()
	sepStyle := lipgloss.NewStyle()
	if !opts.NoColor {
		headerStyle = headerStyle.Bold(true).Foreground(defaultHeaderFG).Background(defaultHeaderBG)
		sepStyle = sepStyle.Foreground(defaultSeparator)
	}

	var sb strings.Builder
	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = headerStyle.Render(pad(h, widths[i]))
	}
	sb.WriteString(strings.TrimRight(strings.Join(cells, strings.Repeat(" ", columnGap)), " "))
	sb.WriteByte('\n')

	total := 0
	for _, cw := range widths {
		total += cw
	}
	total += columnGap * (len(widths) - 1)
	sb.WriteString(sepStyle.Render(strings.Repeat("-", total)))
	sb.WriteByte('\n')

	for _, row := range rows {
		for i, h := range headers {
			cells[i] = pad(row[h], widths[i])
		}
		sb.WriteString(strings.TrimRight(strings.Join(cells, strings.Repeat(" ", columnGap)), " "))
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// naturalWidths returns per-column widths sized to the widest header or cell.
func naturalWidths(headers []string, rows []dataset.Row) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, h := range headers {
			if w := runewidth.StringWidth(row[h]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// shrinkToFit narrows the widest column one cell at a time until the table
// fits maxWidth or every column is at the minimum.
func shrinkToFit(widths []int, maxWidth int) {
	for {
		total := columnGap * (len(widths) - 1)
		for _, w := range widths {
			total += w
		}
		if total <= maxWidth {
			return
		}
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColWidth {
			return
		}
		widths[widest]--
	}
}

// pad truncates or right-pads a value to exactly width display cells.
func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, ellipsis)
	}
	return fmt.Sprintf("%s%s", s, strings.Repeat(" ", width-runewidth.StringWidth(s)))
}
