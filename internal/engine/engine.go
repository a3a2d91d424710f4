// Package engine owns the canonical in-memory table state and derives
// filtered, sorted, windowed views over it. Rows carry stable monotonic ids
// assigned at load time; every mutation resolves its target through an id so
// that edits and deletes land on the correct underlying row no matter how
// the current view is filtered, sorted, or windowed.
package engine

import (
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/csvx/internal/dataset"
)

// Default window sizes, overridable per Engine via options or config.
const (
	DefaultPageSize  = 20
	DefaultBatchSize = 50
)

// Direction is a sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// SortSpec names the column to sort by and the direction.
type SortSpec struct {
	Column    string
	Direction Direction
}

// WindowMode selects how the view is windowed for display.
type WindowMode int

const (
	// Paged exposes fixed-size pages with explicit navigation.
	Paged WindowMode = iota
	// Reveal exposes a monotonically growing prefix of the view, grown one
	// batch at a time as the consumer nears the end of the revealed rows.
	Reveal
)

// Predicate is an additional row filter composed with the search term, e.g.
// a compiled CEL expression. A nil predicate passes every row.
type Predicate func(dataset.Row) bool

// tableRow pairs a stable identity with the row's value mapping.
type tableRow struct {
	id     int64
	values dataset.Row
}

// Engine holds canonical dataset state plus the ephemeral view state layered
// on top of it. It is not safe for concurrent use; all operations are
// expected to run within one event-driven turn.
type Engine struct {
	log logr.Logger

	headers []string
	rows    []*tableRow
	pos     map[int64]int // id -> canonical position
	nextID  int64

	search    string
	sortSpec  *SortSpec
	predicate Predicate

	mode     WindowMode
	pageSize int
	batch    int
	page     int
	revealed int
	loading  bool

	derived []*tableRow // filter+sort cache
	dirty   bool
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger installs a logger for debug output.
func WithLogger(log logr.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithWindowMode selects paged or incremental-reveal windowing.
func WithWindowMode(m WindowMode) Option {
	return func(e *Engine) { e.mode = m }
}

// WithPageSize overrides the page size for paged mode.
func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithBatchSize overrides the reveal batch size.
func WithBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batch = n
		}
	}
}

// New creates an empty engine. Call Load to give it a dataset.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:      logr.Discard(),
		pos:      make(map[int64]int),
		mode:     Paged,
		pageSize: DefaultPageSize,
		batch:    DefaultBatchSize,
		page:     1,
		dirty:    true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.revealed = e.batch
	return e
}

// Headers returns the current header sequence in column order.
func (e *Engine) Headers() []string {
	return e.headers
}

// Load wholesale replaces the canonical dataset. All view state is reset
// unconditionally: search term cleared, sort cleared, predicate cleared,
// window back to the start. Prior rows and their ids are discarded.
func (e *Engine) Load(headers []string, rows []dataset.Row) {
	e.headers = append([]string(nil), headers...)
	e.rows = make([]*tableRow, len(rows))
	e.pos = make(map[int64]int, len(rows))
	for i, r := range rows {
		e.nextID++
		tr := &tableRow{id: e.nextID, values: normalizeRow(e.headers, r)}
		e.rows[i] = tr
		e.pos[tr.id] = i
	}

	e.search = ""
	e.sortSpec = nil
	e.predicate = nil
	e.resetWindow()
	e.log.V(1).Info("dataset loaded", "headers", len(headers), "rows", len(rows))
}

// SetSearchTerm installs a case-insensitive substring filter and resets the
// window to the start.
func (e *Engine) SetSearchTerm(term string) {
	if term == e.search {
		return
	}
	e.search = term
	e.resetWindow()
}

// SearchTerm returns the active search term.
func (e *Engine) SearchTerm() string {
	return e.search
}

// SetSort installs a sort spec (nil clears it) and resets the window.
func (e *Engine) SetSort(spec *SortSpec) {
	if spec == nil {
		if e.sortSpec == nil {
			return
		}
		e.sortSpec = nil
	} else {
		if e.sortSpec != nil && *e.sortSpec == *spec {
			return
		}
		s := *spec
		e.sortSpec = &s
	}
	e.resetWindow()
}

// Sort returns a copy of the active sort spec, or nil when unsorted.
func (e *Engine) Sort() *SortSpec {
	if e.sortSpec == nil {
		return nil
	}
	s := *e.sortSpec
	return &s
}

// SetPredicate installs an additional row filter (nil clears it) and resets
// the window.
func (e *Engine) SetPredicate(p Predicate) {
	e.predicate = p
	e.resetWindow()
}

// resetWindow is the single reset path for window state. Every
// state-replacing event funnels through here, which also cancels any pending
// reveal growth.
func (e *Engine) resetWindow() {
	e.page = 1
	e.revealed = e.batch
	e.loading = false
	e.dirty = true
}

// EditRow replaces the entire value mapping of the row at the given position
// in the current visible window. The mapping is normalized to the header set
// (missing headers become ""). An out-of-range position is a no-op returning
// false.
func (e *Engine) EditRow(viewPos int, values dataset.Row) bool {
	tr := e.rowAtViewPos(viewPos)
	if tr == nil {
		return false
	}
	return e.EditRowID(tr.id, values)
}

// EditRowID is EditRow addressed by stable row id.
func (e *Engine) EditRowID(id int64, values dataset.Row) bool {
	i, ok := e.pos[id]
	if !ok {
		e.log.V(1).Info("edit target not found", "id", id)
		return false
	}
	e.rows[i].values = normalizeRow(e.headers, values)
	e.dirty = true
	return true
}

// DeleteRow removes the row at the given position in the current visible
// window from the canonical sequence, shifting later rows down by one. An
// out-of-range position is a no-op returning false.
func (e *Engine) DeleteRow(viewPos int) bool {
	tr := e.rowAtViewPos(viewPos)
	if tr == nil {
		return false
	}
	return e.DeleteRowID(tr.id)
}

// DeleteRowID is DeleteRow addressed by stable row id. Deleting an id that
// is already gone is a no-op returning false.
func (e *Engine) DeleteRowID(id int64) bool {
	i, ok := e.pos[id]
	if !ok {
		e.log.V(1).Info("delete target not found", "id", id)
		return false
	}
	e.rows = append(e.rows[:i], e.rows[i+1:]...)
	delete(e.pos, id)
	for j := i; j < len(e.rows); j++ {
		e.pos[e.rows[j].id] = j
	}
	e.dirty = true
	return true
}

// rowAtViewPos resolves a position in the visible window to the underlying
// row, or nil when out of range.
func (e *Engine) rowAtViewPos(pos int) *tableRow {
	derived := e.deriveView()
	start, end := e.windowBounds(len(derived))
	if pos < 0 || start+pos >= end {
		return nil
	}
	return derived[start+pos]
}

// normalizeRow copies values onto the exact header set: extra keys are
// dropped, missing headers become "".
func normalizeRow(headers []string, values dataset.Row) dataset.Row {
	row := make(dataset.Row, len(headers))
	for _, h := range headers {
		row[h] = values[h]
	}
	return row
}
