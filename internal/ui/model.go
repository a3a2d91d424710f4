// Package ui implements the interactive table explorer on top of the table
// engine: a bubbletea model with live search, CEL row filtering, per-column
// sorting, scroll-triggered incremental reveal (or explicit paging), and
// cell editing / row deletion resolved through stable row ids.
package ui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/table"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/go-logr/logr"
	runewidth "github.com/mattn/go-runewidth"

	celhelper "github.com/oakwood-commons/csvx/internal/cel"
	"github.com/oakwood-commons/csvx/internal/dataset"
	"github.com/oakwood-commons/csvx/internal/engine"
)

type uiMode int

const (
	modeBrowse uiMode = iota
	modeSearch
	modeWhere
	modeEdit
	modeConfirmDelete
	modeHelp
)

const (
	// growDelay is the cosmetic pause before a reveal growth commits, so the
	// "loading…" hint is actually visible.
	growDelay = 150 * time.Millisecond
	// growProximity is how close (in rows) the cursor must be to the end of
	// the revealed prefix before more rows are requested.
	growProximity = 5

	maxColumnWidth = 40
	minColumnWidth = 4

	// chromeHeight is the lines reserved below the table: input line,
	// status bar, footer.
	chromeHeight = 3
)

// growCommitMsg commits a pending reveal growth after growDelay.
type growCommitMsg struct{}

// ModelConfig bundles the knobs InitialModel needs beyond the engine itself.
type ModelConfig struct {
	KeyMode KeyMode
	NoColor bool
	Log     logr.Logger
	// Reload re-reads the underlying file for the reload action. Nil
	// disables reloading.
	Reload func() (dataset.Dataset, error)
}

// Model is the root bubbletea model.
type Model struct {
	Eng      *engine.Engine
	FileName string
	KeyMode  KeyMode
	NoColor  bool

	Tbl         table.Model
	SearchInput textinput.Model
	WhereInput  textinput.Model
	EditInput   textinput.Model
	Status      StatusModel
	Footer      FooterModel

	mode        uiMode
	selectedCol int
	editID      int64
	deleteID    int64
	whereExpr   string
	errMsg      string

	evaluator *celhelper.Evaluator
	reload    func() (dataset.Dataset, error)
	log       logr.Logger

	lastView  engine.View
	WinWidth  int
	WinHeight int
}

// InitialModel builds the root model around an already-loaded engine.
func InitialModel(eng *engine.Engine, fileName string, cfg ModelConfig) *Model {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(10),
	)
	th := CurrentTheme()
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	if !cfg.NoColor {
		s.Header = s.Header.Foreground(th.HeaderFG).Background(th.HeaderBG)
		s.Selected = s.Selected.Foreground(th.SelectedFG).Background(th.SelectedBG)
	} else {
		s.Selected = s.Selected.Reverse(true)
	}
	s.Cell = lipgloss.NewStyle().Align(lipgloss.Left).PaddingLeft(0).PaddingRight(1)
	t.SetStyles(s)

	newInput := func(placeholder string) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 500
		ti.SetWidth(80)
		ti.Prompt = ""
		return ti
	}

	keyMode := cfg.KeyMode
	if keyMode == "" {
		keyMode = DefaultKeyMode
	}
	log := cfg.Log
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	m := &Model{
		Eng:         eng,
		FileName:    fileName,
		KeyMode:     keyMode,
		NoColor:     cfg.NoColor,
		Tbl:         t,
		SearchInput: newInput("type to search all columns"),
		WhereInput:  newInput(`CEL filter, e.g. _.city == "berlin"`),
		EditInput:   newInput(""),
		reload:      cfg.Reload,
		log:         log,
		WinWidth:    92,
		WinHeight:   24,
	}
	if ev, err := celhelper.NewEvaluator(); err == nil {
		m.evaluator = ev
	} else {
		log.Error(err, "CEL evaluator unavailable, where mode disabled")
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case growCommitMsg:
		m.Eng.CommitGrow()
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		m.WinWidth = msg.Width
		m.WinHeight = msg.Height
		m.applyLayout()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.Tbl, cmd = m.Tbl.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// ctrl+c always quits, regardless of mode.
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg, key)
	case modeWhere:
		return m.handleWhereKey(msg, key)
	case modeEdit:
		return m.handleEditKey(msg, key)
	case modeConfirmDelete:
		return m.handleConfirmDeleteKey(key)
	case modeHelp:
		switch key {
		case "esc", "q", "?", "f1":
			m.mode = modeBrowse
		}
		return m, nil
	}

	return m.handleBrowseKey(msg, key)
}

func (m *Model) handleBrowseKey(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	m.errMsg = ""

	switch lookupAction(m.KeyMode, key) {
	case ActionQuit:
		return m, tea.Quit

	case ActionHelp:
		m.mode = modeHelp
		return m, nil

	case ActionSearch:
		m.mode = modeSearch
		m.SearchInput.SetValue(m.Eng.SearchTerm())
		m.SearchInput.Focus()
		return m, nil

	case ActionWhere:
		if m.evaluator == nil {
			m.errMsg = "where filtering is unavailable"
			return m, nil
		}
		m.mode = modeWhere
		m.WhereInput.SetValue(m.whereExpr)
		m.WhereInput.Focus()
		return m, nil

	case ActionEdit:
		return m.beginEdit()

	case ActionDelete:
		v := m.lastView
		cursor := m.Tbl.Cursor()
		if cursor < 0 || cursor >= len(v.VisibleIDs) {
			return m, nil
		}
		m.deleteID = v.VisibleIDs[cursor]
		m.mode = modeConfirmDelete
		return m, nil

	case ActionSort:
		m.cycleSort()
		m.refresh()
		return m, nil

	case ActionColLeft:
		if m.selectedCol > 0 {
			m.selectedCol--
			m.refresh()
		}
		return m, nil

	case ActionColRight:
		if m.selectedCol < len(m.Eng.Headers())-1 {
			m.selectedCol++
			m.refresh()
		}
		return m, nil

	case ActionNextPage:
		m.Eng.RequestPage(m.Eng.Page() + 1)
		m.refresh()
		m.Tbl.SetCursor(0)
		return m, nil

	case ActionPrevPage:
		m.Eng.RequestPage(m.Eng.Page() - 1)
		m.refresh()
		m.Tbl.SetCursor(0)
		return m, nil

	case ActionTop:
		m.Tbl.SetCursor(0)
		return m, nil

	case ActionBottom:
		if n := len(m.lastView.VisibleRows); n > 0 {
			m.Tbl.SetCursor(n - 1)
		}
		return m, m.maybeGrow()

	case ActionReload:
		m.reloadFile()
		return m, nil

	case ActionClearView:
		m.Eng.SetSearchTerm("")
		m.Eng.SetPredicate(nil)
		m.Eng.SetSort(nil)
		m.whereExpr = ""
		m.SearchInput.SetValue("")
		m.WhereInput.SetValue("")
		m.refresh()
		return m, nil
	}

	// Everything else (j/k, arrows) drives the table cursor.
	var cmd tea.Cmd
	m.Tbl, cmd = m.Tbl.Update(msg)
	if grow := m.maybeGrow(); grow != nil {
		return m, tea.Batch(cmd, grow)
	}
	return m, cmd
}

func (m *Model) handleSearchKey(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	switch key {
	case "enter":
		m.mode = modeBrowse
		m.SearchInput.Blur()
		return m, nil
	case "esc":
		m.mode = modeBrowse
		m.SearchInput.SetValue("")
		m.SearchInput.Blur()
		m.Eng.SetSearchTerm("")
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.SearchInput, cmd = m.SearchInput.Update(msg)
	// Live filtering: every keystroke narrows the view immediately.
	m.Eng.SetSearchTerm(m.SearchInput.Value())
	m.refresh()
	m.Tbl.SetCursor(0)
	return m, cmd
}

func (m *Model) handleWhereKey(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	switch key {
	case "enter":
		expr := strings.TrimSpace(m.WhereInput.Value())
		if expr == "" {
			m.whereExpr = ""
			m.Eng.SetPredicate(nil)
		} else {
			pred, err := m.evaluator.CompilePredicate(expr)
			if err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			m.whereExpr = expr
			m.Eng.SetPredicate(func(r dataset.Row) bool { return pred.Match(r) })
		}
		m.mode = modeBrowse
		m.WhereInput.Blur()
		m.refresh()
		m.Tbl.SetCursor(0)
		return m, nil
	case "esc":
		m.mode = modeBrowse
		m.WhereInput.SetValue("")
		m.WhereInput.Blur()
		m.whereExpr = ""
		m.Eng.SetPredicate(nil)
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.WhereInput, cmd = m.WhereInput.Update(msg)
	return m, cmd
}

func (m *Model) beginEdit() (tea.Model, tea.Cmd) {
	v := m.lastView
	cursor := m.Tbl.Cursor()
	if cursor < 0 || cursor >= len(v.VisibleRows) {
		return m, nil
	}
	headers := m.Eng.Headers()
	if m.selectedCol >= len(headers) {
		return m, nil
	}
	m.editID = v.VisibleIDs[cursor]
	m.EditInput.SetValue(v.VisibleRows[cursor][headers[m.selectedCol]])
	m.EditInput.Focus()
	m.mode = modeEdit
	return m, nil
}

func (m *Model) handleEditKey(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	switch key {
	case "enter":
		m.commitEdit()
		m.mode = modeBrowse
		m.EditInput.Blur()
		return m, nil
	case "esc":
		m.mode = modeBrowse
		m.EditInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.EditInput, cmd = m.EditInput.Update(msg)
	return m, cmd
}

// commitEdit replaces the whole row with a copy that carries the edited
// cell. The engine resolves the target by id, so a view change between
// beginEdit and commit cannot hit the wrong row.
func (m *Model) commitEdit() {
	headers := m.Eng.Headers()
	v := m.lastView
	cursor := m.Tbl.Cursor()
	if cursor < 0 || cursor >= len(v.VisibleRows) || m.selectedCol >= len(headers) {
		return
	}
	row := v.VisibleRows[cursor].Clone()
	row[headers[m.selectedCol]] = m.EditInput.Value()
	if !m.Eng.EditRowID(m.editID, row) {
		m.errMsg = "row no longer exists"
	}
	m.refresh()
}

func (m *Model) handleConfirmDeleteKey(key string) (tea.Model, tea.Cmd) {
	m.mode = modeBrowse
	switch key {
	case "y", "enter":
		if !m.Eng.DeleteRowID(m.deleteID) {
			m.errMsg = "row no longer exists"
		}
		m.refresh()
	}
	m.deleteID = 0
	return m, nil
}

// cycleSort advances the sort state of the selected column:
// none -> ascending -> descending -> none.
func (m *Model) cycleSort() {
	headers := m.Eng.Headers()
	if m.selectedCol >= len(headers) {
		return
	}
	col := headers[m.selectedCol]

	current := m.Eng.Sort()
	switch {
	case current == nil || current.Column != col:
		m.Eng.SetSort(&engine.SortSpec{Column: col, Direction: engine.Ascending})
	case current.Direction == engine.Ascending:
		m.Eng.SetSort(&engine.SortSpec{Column: col, Direction: engine.Descending})
	default:
		m.Eng.SetSort(nil)
	}
	m.Tbl.SetCursor(0)
}

// maybeGrow requests one reveal-growth step when the cursor is close to the
// end of the revealed rows. The engine's loading flag makes this
// single-flight; the returned command delivers the commit after growDelay.
func (m *Model) maybeGrow() tea.Cmd {
	v := m.lastView
	if v.Window.Mode != engine.Reveal {
		return nil
	}
	if m.Tbl.Cursor() < len(v.VisibleRows)-growProximity {
		return nil
	}
	if !m.Eng.BeginGrow() {
		return nil
	}
	m.refresh() // surface the loading state immediately
	return tea.Tick(growDelay, func(time.Time) tea.Msg { return growCommitMsg{} })
}

func (m *Model) reloadFile() {
	if m.reload == nil {
		m.errMsg = "reload is not available"
		return
	}
	d, err := m.reload()
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	if d.Empty() {
		m.errMsg = fmt.Sprintf("no data found in %s", m.FileName)
		return
	}
	m.Eng.Load(d.Headers, d.Rows)
	m.whereExpr = ""
	m.selectedCol = 0
	m.SearchInput.SetValue("")
	m.WhereInput.SetValue("")
	m.refresh()
	m.Tbl.SetCursor(0)
}

func (m *Model) applyLayout() {
	h := m.WinHeight - chromeHeight - 2 // table header + border
	if h < 3 {
		h = 3
	}
	m.Tbl.SetHeight(h)
	inputWidth := m.WinWidth - 2
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.SearchInput.SetWidth(inputWidth)
	m.WhereInput.SetWidth(inputWidth)
	m.EditInput.SetWidth(inputWidth)
}

// refresh re-derives the view from the engine and pushes it into the table
// widget and status bar.
func (m *Model) refresh() {
	v := m.Eng.CurrentView()
	m.lastView = v
	headers := m.Eng.Headers()
	if m.selectedCol >= len(headers) && len(headers) > 0 {
		m.selectedCol = len(headers) - 1
	}

	m.Tbl.SetColumns(m.buildColumns(headers, v))
	rows := make([]table.Row, len(v.VisibleRows))
	for i, r := range v.VisibleRows {
		cells := make([]string, len(headers))
		for j, h := range headers {
			cells[j] = r[h]
		}
		rows[i] = cells
	}
	m.Tbl.SetRows(rows)

	if c := m.Tbl.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.Tbl.SetCursor(len(rows) - 1)
	}

	m.syncStatus(v)
}

// buildColumns sizes columns to the widest visible cell and annotates the
// selected column and the active sort direction in the header titles.
func (m *Model) buildColumns(headers []string, v engine.View) []table.Column {
	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		title := h
		if v.Sort != nil && v.Sort.Column == h {
			if v.Sort.Direction == engine.Descending {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		if i == m.selectedCol {
			title = "» " + title
		}

		width := runewidth.StringWidth(title)
		for _, row := range v.VisibleRows {
			if w := runewidth.StringWidth(row[h]); w > width {
				width = w
			}
		}
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		if width < minColumnWidth {
			width = minColumnWidth
		}
		cols[i] = table.Column{Title: title, Width: width}
	}
	return cols
}

func (m *Model) syncStatus(v engine.View) {
	m.Status = StatusModel{
		FileName: m.FileName,
		Total:    v.TotalCount,
		Filtered: v.FilteredCount,
		Search:   m.Eng.SearchTerm(),
		WhereExpr: m.whereExpr,
		Window:   v.Window,
		ErrMsg:   m.errMsg,
		NoColor:  m.NoColor,
		Width:    m.WinWidth,
	}
	if v.Sort != nil {
		m.Status.SortColumn = v.Sort.Column
		m.Status.SortDir = v.Sort.Direction.String()
	}
	if len(v.VisibleRows) > 0 {
		cursor := m.Tbl.Cursor()
		if cursor >= 0 && cursor < len(v.VisibleRows) {
			base := 0
			if v.Window.Mode == engine.Paged {
				base = (v.Window.Page - 1) * v.Window.PageSize
			}
			m.Status.Cursor = base + cursor + 1
		}
	}
	m.Footer = FooterModel{
		KeyMode: m.KeyMode,
		Mode:    m.mode,
		NoColor: m.NoColor,
		Width:   m.WinWidth,
	}
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	m.syncStatus(m.lastView)

	var body string
	if m.mode == modeHelp {
		body = renderHelp(m.KeyMode, m.NoColor, m.WinWidth)
	} else {
		body = m.Tbl.View()
	}

	var input string
	switch m.mode {
	case modeSearch:
		input = "search> " + m.SearchInput.View()
	case modeWhere:
		input = "where> " + m.WhereInput.View()
	case modeEdit:
		input = "edit> " + m.EditInput.View()
	case modeConfirmDelete:
		input = "delete selected row? (y/n)"
	}

	sections := []string{body}
	if input != "" {
		sections = append(sections, input)
	}
	sections = append(sections, m.Status.View(), m.Footer.View())

	v := tea.NewView(strings.Join(sections, "\n"))
	v.AltScreen = true
	return v
}
