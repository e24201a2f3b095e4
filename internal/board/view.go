package board

import "github.com/hylla/phaseboard/internal/domain"

// Options configures a View.
type Options struct {
	// MinColumnWidth is the width one column needs, in the host's units.
	MinColumnWidth int
	// Completed places Completed tasks; nil selects StableCompletedPlacement.
	Completed CompletedPlacement
	// ExternalPage, when set, mounts the view on a host-controlled page.
	ExternalPage *int

	OnReorder  func(stage domain.StageKey, ids []string)
	OnOpenTask func(id string)
	OnPageInfo func(PageInfo)
	// OnAnnounce mirrors every column announcement.
	OnAnnounce func(stage domain.StageKey, msg string)
}

// View composes grouping, paging and per-column reordering for one board.
type View struct {
	opts     Options
	grouper  Grouper
	window   *Window
	pager    *Pager
	columns  []*Column
	unplaced []domain.Task
}

// NewView mounts a board over tasks.
func NewView(tasks []domain.Task, opts Options) *View {
	v := &View{
		opts:    opts,
		grouper: NewGrouper(opts.Completed),
		window:  NewWindow(opts.MinColumnWidth),
	}
	buckets := v.grouper.Group(tasks)
	v.unplaced = Unplaced(tasks)
	v.columns = make([]*Column, len(buckets))
	for i, bucket := range buckets {
		v.columns[i] = NewColumn(bucket.Stage, bucket.Tasks, v.commit, v.announce)
	}

	pagerOpts := []PagerOption{WithPageInfo(v.pageInfo)}
	if opts.ExternalPage != nil {
		pagerOpts = append(pagerOpts, WithExternalPage(*opts.ExternalPage))
	}
	v.pager = NewPager(len(v.columns), v.window.ColumnsPerPage(), pagerOpts...)
	return v
}

// SetTasks replaces the board contents. Local orders are reset to the new
// grouping and in-flight drags are discarded.
func (v *View) SetTasks(tasks []domain.Task) {
	buckets := v.grouper.Group(tasks)
	v.unplaced = Unplaced(tasks)
	for i, bucket := range buckets {
		v.columns[i].reset(bucket.Tasks)
	}
	v.pager.SetColumnCount(len(v.columns))
}

// SetCompletedPlacement swaps the Completed placement used by the next SetTasks.
func (v *View) SetCompletedPlacement(completed CompletedPlacement) {
	v.grouper = NewGrouper(completed)
}

// SetMinColumnWidth swaps the column threshold and re-derives the page size
// for width.
func (v *View) SetMinColumnWidth(minColumnWidth, width int) {
	v.window.SetMinColumnWidth(minColumnWidth)
	v.Resize(width)
}

// Resize observes a new container width.
func (v *View) Resize(width int) bool {
	perPage, changed := v.window.Observe(width)
	if !changed {
		return false
	}
	v.pager.SetColumnsPerPage(perPage)
	return true
}

// GoNext pages forward.
func (v *View) GoNext() bool { return v.pager.GoNext() }

// GoPrev pages back.
func (v *View) GoPrev() bool { return v.pager.GoPrev() }

// RequestPage applies a host-controlled page value.
func (v *View) RequestPage(page int) bool { return v.pager.RequestPage(page) }

// Page returns the current page info.
func (v *View) Page() PageInfo { return v.pager.Info() }

// Pager exposes the page controller.
func (v *View) Pager() *Pager { return v.pager }

// ColumnsPerPage returns the current page size.
func (v *View) ColumnsPerPage() int { return v.pager.ColumnsPerPage() }

// Columns returns every column in board order.
func (v *View) Columns() []*Column {
	out := make([]*Column, len(v.columns))
	copy(out, v.columns)
	return out
}

// VisibleColumns returns the columns on the current page.
func (v *View) VisibleColumns() []*Column {
	start, end := v.pager.Bounds()
	out := make([]*Column, end-start)
	copy(out, v.columns[start:end])
	return out
}

// Column returns the column for stage.
func (v *View) Column(stage domain.StageKey) (*Column, bool) {
	for _, col := range v.columns {
		if col.stage == stage {
			return col, true
		}
	}
	return nil, false
}

// Unplaced returns tasks whose stage matched no column on the last grouping.
func (v *View) Unplaced() []domain.Task {
	out := make([]domain.Task, len(v.unplaced))
	copy(out, v.unplaced)
	return out
}

// OpenTask forwards an activation of a task to the host.
func (v *View) OpenTask(id string) {
	if id == "" || v.opts.OnOpenTask == nil {
		return
	}
	v.opts.OnOpenTask(id)
}

func (v *View) commit(stage domain.StageKey, ids []string) {
	if v.opts.OnReorder != nil {
		v.opts.OnReorder(stage, ids)
	}
}

func (v *View) announce(stage domain.StageKey, msg string) {
	if v.opts.OnAnnounce != nil {
		v.opts.OnAnnounce(stage, msg)
	}
}

func (v *View) pageInfo(info PageInfo) {
	if v.opts.OnPageInfo != nil {
		v.opts.OnPageInfo(info)
	}
}
