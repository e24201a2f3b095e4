package tui

import (
	tea "charm.land/bubbletea/v2"
)

// toolbarRow is the screen row of the page toolbar.
const toolbarRow = 1

// hitColumn returns the visible column index under x,y.
func (m Model) hitColumn(x, y int) (int, bool) {
	if m.view == nil || y < boardTop || y >= boardTop+m.columnRows() {
		return 0, false
	}
	idx := x / m.slotWidth()
	if x < 0 || idx >= len(m.view.VisibleColumns()) {
		return 0, false
	}
	return idx, true
}

// hitCard returns the visible column index and task index under x,y.
func (m Model) hitCard(x, y int) (int, int, bool) {
	idx, ok := m.hitColumn(x, y)
	if !ok {
		return 0, 0, false
	}
	rel := y - boardTop - cardListStart
	if rel < 0 {
		return idx, 0, false
	}
	slot := rel / cardRows
	if slot >= m.visibleCards() {
		return idx, 0, false
	}
	task := m.cardOffset(idx) + slot
	if task >= m.view.VisibleColumns()[idx].Len() {
		return idx, 0, false
	}
	return idx, task, true
}

// handleMouseClick focuses and grabs the clicked card, or pages from the toolbar.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.view == nil || m.help.ShowAll || m.detailTaskID != "" || msg.Button != tea.MouseLeft {
		return m, nil
	}
	if msg.Y == toolbarRow {
		prevEnd := len([]rune(toolbarPrevLabel))
		nextStart := len([]rune(m.toolbarText())) - len([]rune(toolbarNextLabel))
		switch {
		case msg.X >= 0 && msg.X < prevEnd:
			m.cancelDrag()
			m.view.GoPrev()
		case msg.X >= nextStart && msg.X < nextStart+len([]rune(toolbarNextLabel)):
			m.cancelDrag()
			m.view.GoNext()
		default:
			return m, nil
		}
		return m.afterViewChange()
	}

	idx, task, ok := m.hitCard(msg.X, msg.Y)
	if !ok {
		if col, inColumn := m.hitColumn(msg.X, msg.Y); inColumn && col != m.focusColumn {
			m.cancelDrag()
			m.focusColumn = col
			m.focusTask = 0
		}
		return m.afterViewChange()
	}
	m.cancelDrag()
	m.focusColumn = idx
	m.focusTask = task
	col := m.view.VisibleColumns()[idx]
	if col.Engine().Start(task) {
		m.drag = mouseDrag{active: true, column: idx, stage: col.Stage()}
	}
	return m.afterViewChange()
}

// handleMouseMotion moves the dragged card onto the hovered slot of its own column.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.drag.active || m.view == nil {
		return m, nil
	}
	idx, task, ok := m.hitCard(msg.X, msg.Y)
	if !ok || idx != m.drag.column {
		return m, nil
	}
	col, found := m.view.Column(m.drag.stage)
	if !found {
		return m, nil
	}
	if col.Engine().Over(task) {
		m.focusTask = task
	}
	return m.afterViewChange()
}

// handleMouseRelease drops inside the source column and cancels anywhere else.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.drag.active || m.view == nil {
		return m, nil
	}
	drag := m.drag
	m.drag = mouseDrag{}
	col, found := m.view.Column(drag.stage)
	if !found {
		return m, nil
	}
	if idx, ok := m.hitColumn(msg.X, msg.Y); ok && idx == drag.column {
		col.Engine().Drop()
	} else if col.Engine().Cancel() {
		m.status = "drag cancelled"
	}
	return m.afterViewChange()
}

// handleMouseWheel moves task focus within the focused column.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.view == nil || m.help.ShowAll || m.detailTaskID != "" {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		m.stepFocus(-1)
	case tea.MouseWheelDown:
		m.stepFocus(1)
	default:
		return m, nil
	}
	return m.afterViewChange()
}
