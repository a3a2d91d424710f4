package engine

import (
	"sort"
	"strconv"
	"strings"

	"github.com/oakwood-commons/csvx/internal/dataset"
)

// WindowState describes the current window position for the presentation
// layer. Paged fields are meaningful in Paged mode, Revealed/Batch in Reveal
// mode.
type WindowState struct {
	Mode       WindowMode
	Page       int
	PageSize   int
	TotalPages int
	Revealed   int
	Batch      int
	Loading    bool
}

// View is the derived, read-only projection the presentation layer renders.
// VisibleRows aliases the engine's internal maps; callers must not mutate
// them (mutations go through EditRow/DeleteRow).
type View struct {
	VisibleRows   []dataset.Row
	VisibleIDs    []int64
	TotalCount    int
	FilteredCount int
	Sort          *SortSpec
	Window        WindowState
}

// CurrentView recomputes the filter -> sort -> window pipeline as needed and
// returns the windowed projection.
func (e *Engine) CurrentView() View {
	derived := e.deriveView()
	start, end := e.windowBounds(len(derived))

	visible := derived[start:end]
	rows := make([]dataset.Row, len(visible))
	ids := make([]int64, len(visible))
	for i, tr := range visible {
		rows[i] = tr.values
		ids[i] = tr.id
	}

	return View{
		VisibleRows:   rows,
		VisibleIDs:    ids,
		TotalCount:    len(e.rows),
		FilteredCount: len(derived),
		Sort:          e.Sort(),
		Window:        e.windowState(len(derived)),
	}
}

// FilteredRows returns the full filtered and sorted view before windowing,
// in view order. Used by the non-interactive output path.
func (e *Engine) FilteredRows() []dataset.Row {
	derived := e.deriveView()
	rows := make([]dataset.Row, len(derived))
	for i, tr := range derived {
		rows[i] = tr.values
	}
	return rows
}

// RequestPage navigates to page n in Paged mode, clamped to the valid range.
func (e *Engine) RequestPage(n int) {
	derived := e.deriveView()
	total := e.totalPages(len(derived))
	if total < 1 {
		e.page = 1
		return
	}
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}
	e.page = n
}

// Page returns the current page number.
func (e *Engine) Page() int {
	return e.page
}

// BeginGrow starts one reveal-growth step. It returns false when a growth is
// already pending or no rows remain beyond the revealed prefix, so callers
// get single-flight behavior for free.
func (e *Engine) BeginGrow() bool {
	derived := e.deriveView()
	if e.loading || e.revealed >= len(derived) {
		return false
	}
	e.loading = true
	return true
}

// CommitGrow completes a growth step started by BeginGrow, extending the
// revealed prefix by one batch. If the pending growth was superseded by a
// search, sort, or load in the meantime, this is a no-op.
func (e *Engine) CommitGrow() {
	if !e.loading {
		return
	}
	e.loading = false
	derived := e.deriveView()
	e.revealed = clampRevealed(e.revealed+e.batch, e.batch, len(derived))
	e.log.V(1).Info("window grown", "revealed", e.revealed, "filtered", len(derived))
}

// RequestMore grows the revealed window immediately, without the cosmetic
// delay the TUI inserts between BeginGrow and CommitGrow.
func (e *Engine) RequestMore() bool {
	if !e.BeginGrow() {
		return false
	}
	e.CommitGrow()
	return true
}

// deriveView recomputes the filtered and sorted row sequence when any input
// changed since the last computation, then reconciles the window with the
// possibly smaller filtered count.
func (e *Engine) deriveView() []*tableRow {
	if !e.dirty {
		return e.derived
	}

	filtered := make([]*tableRow, 0, len(e.rows))
	term := strings.ToLower(e.search)
	for _, tr := range e.rows {
		if e.predicate != nil && !e.predicate(tr.values) {
			continue
		}
		if term != "" && !rowMatches(tr.values, e.headers, term) {
			continue
		}
		filtered = append(filtered, tr)
	}

	if e.sortSpec != nil {
		spec := *e.sortSpec
		sort.SliceStable(filtered, func(i, j int) bool {
			c := compareValues(filtered[i].values[spec.Column], filtered[j].values[spec.Column])
			if spec.Direction == Descending {
				return c > 0
			}
			return c < 0
		})
	}

	e.derived = filtered
	e.dirty = false
	e.clampWindow(len(filtered))
	return filtered
}

// clampWindow reconciles the window position after the filtered count
// changed underneath it (deletes, narrower search).
func (e *Engine) clampWindow(filteredCount int) {
	switch e.mode {
	case Paged:
		total := e.totalPages(filteredCount)
		if total < 1 {
			e.page = 1
		} else if e.page > total {
			e.page = total
		}
	case Reveal:
		e.revealed = clampRevealed(e.revealed, e.batch, filteredCount)
	}
}

// clampRevealed applies the shrink rule: the revealed prefix never exceeds
// max(batch, filteredCount) and never drops below one batch.
func clampRevealed(revealed, batch, filteredCount int) int {
	ceiling := filteredCount
	if ceiling < batch {
		ceiling = batch
	}
	if revealed > ceiling {
		return ceiling
	}
	if revealed < batch {
		return batch
	}
	return revealed
}

func (e *Engine) totalPages(filteredCount int) int {
	if filteredCount == 0 {
		return 0
	}
	return (filteredCount + e.pageSize - 1) / e.pageSize
}

// windowBounds returns the half-open range of derived rows that the current
// window exposes.
func (e *Engine) windowBounds(filteredCount int) (start, end int) {
	switch e.mode {
	case Reveal:
		end = e.revealed
		if end > filteredCount {
			end = filteredCount
		}
		return 0, end
	default:
		start = (e.page - 1) * e.pageSize
		if start > filteredCount {
			start = filteredCount
		}
		end = start + e.pageSize
		if end > filteredCount {
			end = filteredCount
		}
		return start, end
	}
}

func (e *Engine) windowState(filteredCount int) WindowState {
	return WindowState{
		Mode:       e.mode,
		Page:       e.page,
		PageSize:   e.pageSize,
		TotalPages: e.totalPages(filteredCount),
		Revealed:   e.revealed,
		Batch:      e.batch,
		Loading:    e.loading,
	}
}

// rowMatches reports whether any field value contains the lowercased term.
func rowMatches(values dataset.Row, headers []string, term string) bool {
	for _, h := range headers {
		if strings.Contains(strings.ToLower(values[h]), term) {
			return true
		}
	}
	return false
}

// compareValues orders two field values: numerically when both parse fully
// as numbers, lexicographically on the raw strings otherwise.
func compareValues(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
