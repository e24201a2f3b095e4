package board

import (
	"strings"
	"unicode"

	"github.com/hylla/phaseboard/internal/domain"
)

// EmptyColumnText is shown in a column without tasks.
const EmptyColumnText = "No tasks yet"

// Icon is a column header glyph.
type Icon struct {
	Name  string
	Glyph string
}

var iconPalette = [...]Icon{
	{Name: "layers", Glyph: "◫"},
	{Name: "clipboard-list", Glyph: "▤"},
	{Name: "beaker", Glyph: "⚗"},
	{Name: "cog", Glyph: "⚙"},
	{Name: "wrench", Glyph: "⚒"},
	{Name: "workflow", Glyph: "⇄"},
	{Name: "file-signature", Glyph: "✎"},
	{Name: "rocket", Glyph: "➶"},
	{Name: "gauge", Glyph: "◔"},
}

// IconFor picks a palette icon from the sum of the stage's code points.
func IconFor(stage domain.StageKey) Icon {
	sum := 0
	for _, r := range string(stage) {
		sum += int(r)
	}
	return iconPalette[sum%len(iconPalette)]
}

// HeaderID returns the accessible label id for a stage, e.g. "urs-label".
func HeaderID(stage domain.StageKey) string {
	lower := strings.ToLower(string(stage))
	var b strings.Builder
	inSpace := false
	for _, r := range lower {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String() + "-label"
}

// Header describes a column header.
type Header struct {
	Stage   domain.StageKey
	Count   int
	Icon    Icon
	LabelID string
}

// Column is one stage column: header data, its reorder engine and its live region.
type Column struct {
	stage  domain.StageKey
	engine *Reorderer
	live   *LiveRegion
}

// NewColumn constructs a column for stage over tasks.
func NewColumn(stage domain.StageKey, tasks []domain.Task, commit CommitFunc, observer func(domain.StageKey, string)) *Column {
	c := &Column{stage: stage}
	c.live = NewLiveRegion(func(msg string) {
		if observer != nil {
			observer(stage, msg)
		}
	})
	c.engine = NewReorderer(stage, tasks, commit, c.live.Announce)
	return c
}

// Stage returns the column stage key.
func (c *Column) Stage() domain.StageKey { return c.stage }

// Header returns the rendered header description.
func (c *Column) Header() Header {
	return Header{
		Stage:   c.stage,
		Count:   c.engine.Len(),
		Icon:    IconFor(c.stage),
		LabelID: HeaderID(c.stage),
	}
}

// Tasks returns the tasks in local order.
func (c *Column) Tasks() []domain.Task { return c.engine.Items() }

// Len returns the task count.
func (c *Column) Len() int { return c.engine.Len() }

// Empty reports whether the column has no tasks.
func (c *Column) Empty() bool { return c.engine.Len() == 0 }

// Announcement returns the current live-region text.
func (c *Column) Announcement() string { return c.live.Text() }

// LiveRegion exposes the column's announcer.
func (c *Column) LiveRegion() *LiveRegion { return c.live }

// Engine exposes the column's reorder engine.
func (c *Column) Engine() *Reorderer { return c.engine }

// Grabbed reports whether the item at index is being dragged.
func (c *Column) Grabbed(index int) bool { return c.engine.Dragging(index) }

// IndexOf returns the local index of a task id, or -1.
func (c *Column) IndexOf(id string) int {
	for i, task := range c.engine.items {
		if task.ID == id {
			return i
		}
	}
	return -1
}

func (c *Column) reset(tasks []domain.Task) {
	c.engine.Reset(tasks)
}
