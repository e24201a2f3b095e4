package board

// DefaultMinColumnWidth is the minimum column width used when none is configured.
const DefaultMinColumnWidth = 300

// ColumnsFor returns how many columns of at least minColumnWidth fit in width.
// The result is never below 1.
func ColumnsFor(width, minColumnWidth int) int {
	if minColumnWidth <= 0 {
		minColumnWidth = DefaultMinColumnWidth
	}
	if width <= 0 {
		return 1
	}
	return max(1, width/minColumnWidth)
}

// Window tracks the columns-per-page value derived from observed widths.
type Window struct {
	minColumnWidth int
	columnsPerPage int
}

// NewWindow returns a window that starts at one column per page.
func NewWindow(minColumnWidth int) *Window {
	if minColumnWidth <= 0 {
		minColumnWidth = DefaultMinColumnWidth
	}
	return &Window{minColumnWidth: minColumnWidth, columnsPerPage: 1}
}

// Observe records a new container width. It reports whether columnsPerPage changed.
func (w *Window) Observe(width int) (int, bool) {
	next := ColumnsFor(width, w.minColumnWidth)
	if next == w.columnsPerPage {
		return next, false
	}
	w.columnsPerPage = next
	return next, true
}

// SetMinColumnWidth swaps the column threshold. The next Observe applies it.
func (w *Window) SetMinColumnWidth(minColumnWidth int) {
	if minColumnWidth <= 0 {
		minColumnWidth = DefaultMinColumnWidth
	}
	w.minColumnWidth = minColumnWidth
}

// MinColumnWidth returns the configured threshold.
func (w *Window) MinColumnWidth() int { return w.minColumnWidth }

// ColumnsPerPage returns the last derived value.
func (w *Window) ColumnsPerPage() int { return w.columnsPerPage }
