package board

// PageInfo is the page position reported to the host.
type PageInfo struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Pager keeps the current page within [0, total-1] while the column count,
// the columns per page, and external page requests change.
type Pager struct {
	current        int
	columnsPerPage int
	columnCount    int

	lastRequest  int
	hasRequest   bool
	lastReported PageInfo
	hasReported  bool
	onPageInfo   func(PageInfo)
}

// PagerOption configures a Pager at construction time.
type PagerOption func(*Pager)

// WithExternalPage mounts the pager on an externally controlled page. The value
// is clamped into range.
func WithExternalPage(page int) PagerOption {
	return func(p *Pager) {
		p.lastRequest = page
		p.hasRequest = true
		p.current = page
	}
}

// WithPageInfo registers the page change observer.
func WithPageInfo(fn func(PageInfo)) PagerOption {
	return func(p *Pager) {
		p.onPageInfo = fn
	}
}

// NewPager constructs a pager and reports the initial page info.
func NewPager(columnCount, columnsPerPage int, opts ...PagerOption) *Pager {
	p := &Pager{
		columnCount:    max(0, columnCount),
		columnsPerPage: max(1, columnsPerPage),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.clamp()
	p.notify()
	return p
}

// Current returns the zero-based current page.
func (p *Pager) Current() int { return p.current }

// Total returns the page count, never below 1.
func (p *Pager) Total() int {
	if p.columnCount == 0 {
		return 1
	}
	return (p.columnCount + p.columnsPerPage - 1) / p.columnsPerPage
}

// ColumnsPerPage returns the current page size.
func (p *Pager) ColumnsPerPage() int { return p.columnsPerPage }

// Info returns the current page position.
func (p *Pager) Info() PageInfo {
	return PageInfo{Current: p.current, Total: p.Total()}
}

// HasPrev reports whether GoPrev would move.
func (p *Pager) HasPrev() bool { return p.current > 0 }

// HasNext reports whether GoNext would move.
func (p *Pager) HasNext() bool { return p.current < p.Total()-1 }

// GoNext advances one page. It does nothing on the last page.
func (p *Pager) GoNext() bool {
	if !p.HasNext() {
		return false
	}
	p.current++
	p.notify()
	return true
}

// GoPrev goes back one page. It does nothing on the first page.
func (p *Pager) GoPrev() bool {
	if !p.HasPrev() {
		return false
	}
	p.current--
	p.notify()
	return true
}

// RequestPage applies an external page request. A request equal to the last
// applied one is ignored, so a host that keeps passing a stale value does not
// undo internal navigation.
func (p *Pager) RequestPage(page int) bool {
	if p.hasRequest && page == p.lastRequest {
		return false
	}
	p.lastRequest = page
	p.hasRequest = true
	before := p.current
	p.current = page
	p.clamp()
	if p.current == before {
		return false
	}
	p.notify()
	return true
}

// SetColumnsPerPage changes the page size and clamps the current page down.
func (p *Pager) SetColumnsPerPage(n int) {
	p.columnsPerPage = max(1, n)
	p.clamp()
	p.notify()
}

// SetColumnCount changes the number of paged columns and clamps the current page down.
func (p *Pager) SetColumnCount(n int) {
	p.columnCount = max(0, n)
	p.clamp()
	p.notify()
}

// Bounds returns the half-open column range shown on the current page.
func (p *Pager) Bounds() (int, int) {
	start := p.current * p.columnsPerPage
	if start > p.columnCount {
		start = p.columnCount
	}
	end := min(p.columnCount, start+p.columnsPerPage)
	return start, end
}

func (p *Pager) clamp() {
	total := p.Total()
	if p.current > total-1 {
		p.current = total - 1
	}
	if p.current < 0 {
		p.current = 0
	}
}

func (p *Pager) notify() {
	info := p.Info()
	if p.hasReported && info == p.lastReported {
		return
	}
	p.lastReported = info
	p.hasReported = true
	if p.onPageInfo != nil {
		p.onPageInfo(info)
	}
}
