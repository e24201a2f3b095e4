package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/phaseboard/internal/board"
	"github.com/hylla/phaseboard/internal/domain"
)

// Board layout, in terminal rows. Hit-testing relies on these staying in sync
// with renderColumn.
const (
	boardTop      = 3 // header, toolbar, spacer
	footerRows    = 3 // status line, help border, help line
	columnChrome  = 4 // top border, header, spacer, bottom border
	cardRows      = 3 // title, meta, spacer
	cardListStart = 3 // rows from boardTop to the first card: border, header, spacer
	minColumnRows = 8
)

var (
	accentColor = lipgloss.Color("62")
	mutedColor  = lipgloss.Color("241")
	dimColor    = lipgloss.Color("239")
	grabColor   = lipgloss.Color("212")
	titleColor  = lipgloss.Color("252")
)

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		return newAltView("error: " + m.err.Error() + "\n\npress r to retry • q quit\n")
	}
	if !m.ready {
		return newAltView("loading...")
	}
	project, ok := m.currentProject()
	if !ok || m.view == nil {
		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(titleColor)
		return newAltView(strings.Join([]string{
			titleStyle.Render("phaseboard"),
			"",
			"No projects yet.",
			"Import a snapshot with `phaseboard import` or enable seed_demo.",
			"Press q to quit.",
		}, "\n"))
	}

	statusStyle := lipgloss.NewStyle().Foreground(dimColor)
	sections := []string{
		m.renderHeader(project),
		m.renderToolbar(),
		"",
		m.renderBoard(),
	}
	status := m.status
	if m.live != "" {
		status = m.live
	}
	if unplaced := len(m.view.Unplaced()); unplaced > 0 {
		status += fmt.Sprintf("  •  %d task(s) with an unknown stage hidden", unplaced)
	}
	sections = append(sections, statusStyle.Render(status))
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(mutedColor).
		BorderTop(true).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	fullContent := content + "\n" + helpLine

	overlay := ""
	switch {
	case m.help.ShowAll:
		overlay = m.renderHelpOverlay(m.width - 8)
	case m.detailTaskID != "":
		overlay = m.renderTaskDetail(m.width - 8)
	}
	if overlay != "" {
		height := lipgloss.Height(fullContent)
		if m.height > 0 {
			height = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, height))
	}
	return newAltView(fullContent)
}

// newAltView wraps content in an alt-screen view with cell-motion mouse reporting.
func newAltView(content string) tea.View {
	v := tea.NewView(content)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// renderHeader renders the project header row.
func (m Model) renderHeader(project domain.Project) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(titleColor)
	metaStyle := lipgloss.NewStyle().Foreground(mutedColor)

	parts := []string{titleStyle.Render("phaseboard"), project.Title}
	if project.DueAt != nil {
		parts = append(parts, metaStyle.Render("due "+project.DueAt.Format(domain.DueDateLayout)))
	}
	parts = append(parts, metaStyle.Render(progressBar(project.ProgressPct, 10)))
	if len(project.Members) > 0 {
		initials := make([]string, 0, len(project.Members))
		for _, member := range project.Members {
			initials = append(initials, member.Initials())
		}
		parts = append(parts, metaStyle.Render(strings.Join(initials, " ")))
	}
	if len(m.projects) > 1 {
		parts = append(parts, metaStyle.Render(fmt.Sprintf("(%d/%d)", m.selectedProject+1, len(m.projects))))
	}
	return strings.Join(parts, "  ")
}

// toolbarPrevLabel and toolbarNextLabel are the clickable page controls.
const (
	toolbarPrevLabel = "[‹]"
	toolbarNextLabel = "[›]"
)

// toolbarText renders the toolbar text without styling.
func (m Model) toolbarText() string {
	info := m.view.Page()
	return fmt.Sprintf("%s page %d of %d %s", toolbarPrevLabel, info.Current+1, info.Total, toolbarNextLabel)
}

// renderToolbar renders the page toolbar row.
func (m Model) renderToolbar() string {
	pager := m.view.Pager()
	enabled := lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	disabled := lipgloss.NewStyle().Foreground(dimColor)
	prev, next := disabled.Render(toolbarPrevLabel), disabled.Render(toolbarNextLabel)
	if pager.HasPrev() {
		prev = enabled.Render(toolbarPrevLabel)
	}
	if pager.HasNext() {
		next = enabled.Render(toolbarNextLabel)
	}
	info := m.view.Page()
	return fmt.Sprintf("%s page %d of %d %s", prev, info.Current+1, info.Total, next)
}

// progressBar renders pct as a fixed-width bar.
func progressBar(pct, width int) string {
	pct = clamp(pct, 0, 100)
	filled := pct * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf(" %d%%", pct)
}

// slotWidth returns the cells given to each visible column.
func (m Model) slotWidth() int {
	return max(1, m.width/max(1, m.view.ColumnsPerPage()))
}

// columnRows returns the rendered height of a column box.
func (m Model) columnRows() int {
	return max(minColumnRows, m.height-boardTop-footerRows-1)
}

// visibleCards returns how many cards fit in one column box.
func (m Model) visibleCards() int {
	return max(1, (m.columnRows()-columnChrome)/cardRows)
}

// cardOffset returns the first card index rendered for the visible column idx.
func (m Model) cardOffset(idx int) int {
	if idx != m.focusColumn {
		return 0
	}
	if visible := m.visibleCards(); m.focusTask >= visible {
		return m.focusTask - visible + 1
	}
	return 0
}

// renderBoard renders the visible columns side by side.
func (m Model) renderBoard() string {
	slot := m.slotWidth()
	visible := m.view.VisibleColumns()
	views := make([]string, 0, len(visible))
	for idx, col := range visible {
		views = append(views, lipgloss.PlaceHorizontal(slot, lipgloss.Left, m.renderColumn(idx, col, slot)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// renderColumn renders one column box.
func (m Model) renderColumn(idx int, col *board.Column, slot int) string {
	focused := idx == m.focusColumn
	border := dimColor
	if focused {
		border = accentColor
	}
	header := col.Header()
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	lines := []string{
		headerStyle.Render(fmt.Sprintf("%s %s (%d)", header.Icon.Glyph, header.Stage, header.Count)),
		"",
	}

	inner := max(8, slot-4)
	if col.Empty() {
		lines = append(lines, lipgloss.NewStyle().Foreground(mutedColor).Italic(true).Render(board.EmptyColumnText))
	} else {
		tasks := col.Tasks()
		offset := m.cardOffset(idx)
		end := min(len(tasks), offset+m.visibleCards())
		for i := offset; i < end; i++ {
			lines = append(lines, m.renderCard(tasks[i], focused && i == m.focusTask, col.Grabbed(i), inner-4)...)
		}
		if hidden := len(tasks) - end; hidden > 0 {
			lines = append(lines, lipgloss.NewStyle().Foreground(dimColor).Render(fmt.Sprintf("+%d more", hidden)))
		}
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(inner)
	return style.Render(fitLines(strings.Join(lines, "\n"), m.columnRows()-2))
}

// renderCard renders one card as cardRows lines.
func (m Model) renderCard(task domain.Task, focused, grabbed bool, width int) []string {
	prefix := "  "
	titleStyle := lipgloss.NewStyle()
	switch {
	case grabbed:
		prefix = "✥ "
		titleStyle = titleStyle.Foreground(grabColor).Bold(true)
	case focused:
		prefix = "› "
		titleStyle = titleStyle.Foreground(grabColor)
	}
	title := task.Title
	if grabbed {
		title += " [grabbed]"
	}
	meta := lipgloss.NewStyle().Foreground(mutedColor).Render(truncate(cardMeta(task), max(1, width-2)))
	return []string{
		titleStyle.Render(prefix + truncate(title, max(1, width-len([]rune(prefix))))),
		"  " + meta,
		"",
	}
}

// cardMeta summarizes the secondary card fields on one line.
func cardMeta(task domain.Task) string {
	label := string(task.DisplayLabel())
	if task.LabelDaysLeft > 0 {
		label += fmt.Sprintf(" %dd", task.LabelDaysLeft)
	}
	parts := []string{label}
	if due := task.DueDateText(); due != "" {
		parts = append(parts, due)
	}
	counters := []string{}
	if task.Warnings > 0 {
		counters = append(counters, fmt.Sprintf("!%d", task.Warnings))
	}
	if task.Comments > 0 {
		counters = append(counters, fmt.Sprintf("c%d", task.Comments))
	}
	if task.Attachments > 0 {
		counters = append(counters, fmt.Sprintf("a%d", task.Attachments))
	}
	if len(counters) > 0 {
		parts = append(parts, strings.Join(counters, " "))
	}
	if len(task.Assignees) > 0 {
		initials := make([]string, 0, len(task.Assignees))
		for _, a := range task.Assignees {
			initials = append(initials, a.Initials())
		}
		parts = append(parts, strings.Join(initials, ","))
	}
	return strings.Join(parts, " · ")
}

// renderTaskDetail renders the task detail overlay with a markdown body.
func (m Model) renderTaskDetail(maxWidth int) string {
	task, ok := m.taskByID(m.detailTaskID)
	if !ok {
		return ""
	}
	width := clamp(maxWidth, 40, 100)
	title := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render(task.Title)
	meta := lipgloss.NewStyle().Foreground(mutedColor).Render(fmt.Sprintf("%s  •  %s  •  %s", task.Stage, task.ID, cardMeta(task)))
	body := m.markdown.render(task.Body, width-4)
	if body == "" {
		body = lipgloss.NewStyle().Foreground(dimColor).Render("(no description)")
	}
	lines := []string{
		title,
		meta,
		"",
		body,
		"",
		lipgloss.NewStyle().Foreground(mutedColor).Render("y copy id • esc close"),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

// renderHelpOverlay renders the full key reference.
func (m Model) renderHelpOverlay(maxWidth int) string {
	width := clamp(maxWidth, 56, 100)
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(width - 4)

	title := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("phaseboard help")
	workflow := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Reordering"),
		"1. space grabs the focused task, j/k moves it, space drops, esc cancels",
		"2. " + m.keys.reorderUp.Help().Key + " / " + m.keys.reorderDown.Help().Key + " swap with a neighbour and save at once",
		"3. drag a card with the mouse; releasing outside its column cancels",
	}
	lines := []string{
		title,
		"",
		hb.View(m.keys),
		"",
		lipgloss.NewStyle().Foreground(mutedColor).Render(strings.Join(workflow, "\n")),
		lipgloss.NewStyle().Foreground(mutedColor).Render("press ? or esc to close"),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
