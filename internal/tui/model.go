package tui

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/phaseboard/internal/app"
	"github.com/hylla/phaseboard/internal/board"
	"github.com/hylla/phaseboard/internal/domain"
)

// Service represents service data used by this package.
type Service interface {
	ListProjects(context.Context) ([]domain.Project, error)
	ListTasks(context.Context, string) ([]domain.Task, error)
	ReorderStage(context.Context, app.ReorderStageInput) error
}

// commitRequest is one column order the board asked to persist.
type commitRequest struct {
	stage domain.StageKey
	ids   []string
}

// viewBridge collects board.View callbacks fired during one Update so they can
// be turned into commands once the view call returns.
type viewBridge struct {
	commits  []commitRequest
	opened   string
	page     board.PageInfo
	pageSeen bool
	live     string
}

// mouseDrag tracks a pointer drag that started on a card.
type mouseDrag struct {
	active bool
	column int
	stage  domain.StageKey
}

// Model is the bubbletea model hosting one board view.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	err    error

	status string
	live   string

	help help.Model
	keys keyMap
	cfg  RuntimeConfig

	projects         []domain.Project
	selectedProject  int
	pendingProjectID string
	tasks            []domain.Task

	view     *board.View
	bridge   *viewBridge
	viewFor  string
	hostPage int

	focusColumn int
	focusTask   int
	drag        mouseDrag

	detailTaskID string
	markdown     *markdownRenderer
	clipboard    ClipboardFunc
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	projects        []domain.Project
	selectedProject int
	tasks           []domain.Task
	err             error
}

// reorderSavedMsg reports the outcome of persisting one column order.
type reorderSavedMsg struct {
	stage domain.StageKey
	err   error
}

// copiedMsg reports the outcome of one clipboard write.
type copiedMsg struct {
	id  string
	err error
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:       svc,
		status:    "loading...",
		help:      h,
		keys:      newKeyMap(),
		cfg:       DefaultRuntimeConfig(),
		bridge:    &viewBridge{},
		markdown:  &markdownRenderer{},
		clipboard: clipboard.WriteAll,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		if m.view != nil {
			m.view.Resize(m.width)
		}
		return m.afterViewChange()

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.projects = msg.projects
		m.selectedProject = msg.selectedProject
		m.pendingProjectID = ""
		m.tasks = msg.tasks
		if len(m.projects) == 0 {
			m.view = nil
			m.viewFor = ""
			m.status = "no projects"
			return m, nil
		}
		m.mountView()
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m.afterViewChange()

	case reorderSavedMsg:
		if msg.err != nil {
			m.status = "save failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("saved %s order", msg.stage)
		}
		return m, m.loadData

	case copiedMsg:
		if msg.err != nil {
			m.status = "copy failed: " + msg.err.Error()
			return m, nil
		}
		m.status = "copied " + msg.id
		return m, nil

	case RuntimeConfigMsg:
		if msg.Err != nil {
			m.status = "reload config failed: " + msg.Err.Error()
			return m, nil
		}
		m.applyRuntimeConfig(msg.Config)
		m.status = "config reloaded"
		return m.afterViewChange()

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	default:
		return m, nil
	}
}

// loadData loads required data for the current operation.
func (m Model) loadData() tea.Msg {
	ctx := context.Background()
	projects, err := m.svc.ListProjects(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}
	if len(projects) == 0 {
		return loadedMsg{projects: projects}
	}

	projectIdx := clamp(m.selectedProject, 0, len(projects)-1)
	if pending := strings.TrimSpace(m.pendingProjectID); pending != "" {
		for idx, project := range projects {
			if project.ID == pending {
				projectIdx = idx
				break
			}
		}
	}
	tasks, err := m.svc.ListTasks(ctx, projects[projectIdx].ID)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{projects: projects, selectedProject: projectIdx, tasks: tasks}
}

// mountView builds a fresh view for a newly selected project or refreshes the
// current one in place so paging survives reloads.
func (m *Model) mountView() {
	project := m.projects[m.selectedProject]
	if m.view != nil && m.viewFor == project.ID {
		m.view.SetTasks(m.tasks)
		m.clampFocus()
		return
	}
	bridge := m.bridge
	m.view = board.NewView(m.tasks, board.Options{
		MinColumnWidth: m.cfg.MinColumnCells,
		Completed:      m.cfg.Completed,
		OnReorder: func(stage domain.StageKey, ids []string) {
			bridge.commits = append(bridge.commits, commitRequest{stage: stage, ids: ids})
		},
		OnOpenTask: func(id string) {
			bridge.opened = id
		},
		OnPageInfo: func(info board.PageInfo) {
			bridge.page = info
			bridge.pageSeen = true
		},
		OnAnnounce: func(_ domain.StageKey, msg string) {
			bridge.live = msg
		},
	})
	m.viewFor = project.ID
	m.hostPage = 0
	m.focusColumn = 0
	m.focusTask = 0
	m.drag = mouseDrag{}
	m.detailTaskID = ""
	if m.width > 0 {
		m.view.Resize(m.width)
	}
}

// afterViewChange drains view callbacks into model state and commands.
func (m Model) afterViewChange() (tea.Model, tea.Cmd) {
	b := m.bridge
	if b.pageSeen {
		// Keep the host-controlled page in step with internal navigation.
		b.pageSeen = false
		m.hostPage = b.page.Current
		if m.view != nil {
			m.view.RequestPage(m.hostPage)
		}
	}
	if b.live != "" {
		m.live = b.live
		b.live = ""
	}
	if b.opened != "" {
		m.detailTaskID = b.opened
		b.opened = ""
	}
	m.clampFocus()

	if len(b.commits) == 0 {
		return m, nil
	}
	cmds := make([]tea.Cmd, 0, len(b.commits))
	for _, c := range b.commits {
		cmds = append(cmds, m.saveOrderCmd(c))
	}
	b.commits = nil
	if len(cmds) == 1 {
		return m, cmds[0]
	}
	return m, tea.Batch(cmds...)
}

// saveOrderCmd persists one committed column order.
func (m Model) saveOrderCmd(c commitRequest) tea.Cmd {
	project, ok := m.currentProject()
	if !ok {
		return nil
	}
	svc := m.svc
	return func() tea.Msg {
		err := svc.ReorderStage(context.Background(), app.ReorderStageInput{
			ProjectID: project.ID,
			Stage:     c.stage,
			TaskIDs:   c.ids,
		})
		return reorderSavedMsg{stage: c.stage, err: err}
	}
}

// copyCmd writes one task id to the clipboard.
func (m Model) copyCmd(id string) tea.Cmd {
	write := m.clipboard
	return func() tea.Msg {
		return copiedMsg{id: id, err: write(id)}
	}
}

// applyRuntimeConfig applies reloaded board settings to the live view.
func (m *Model) applyRuntimeConfig(cfg RuntimeConfig) {
	WithRuntimeConfig(cfg)(m)
	if m.view == nil {
		return
	}
	m.view.SetCompletedPlacement(m.cfg.Completed)
	m.view.SetTasks(m.tasks)
	m.view.SetMinColumnWidth(m.cfg.MinColumnCells, m.width)
}

// handleKey routes one key press.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}
	if m.help.ShowAll {
		if key.Matches(msg, m.keys.toggleHelp, m.keys.cancel) {
			m.help.ShowAll = false
		}
		return m, nil
	}
	if m.detailTaskID != "" {
		switch {
		case key.Matches(msg, m.keys.cancel, m.keys.openTask):
			m.detailTaskID = ""
		case key.Matches(msg, m.keys.copyID):
			return m, m.copyCmd(m.detailTaskID)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = true
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData
	case key.Matches(msg, m.keys.nextProject):
		if len(m.projects) < 2 {
			return m, nil
		}
		next := (m.selectedProject + 1) % len(m.projects)
		m.pendingProjectID = m.projects[next].ID
		m.selectedProject = next
		return m, m.loadData
	}

	if m.view == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.pagePrev):
		m.cancelDrag()
		m.view.GoPrev()
	case key.Matches(msg, m.keys.pageNext):
		m.cancelDrag()
		m.view.GoNext()
	case key.Matches(msg, m.keys.toolbarPrev):
		m.cancelDrag()
		m.hostPage = max(0, m.hostPage-1)
		m.view.RequestPage(m.hostPage)
	case key.Matches(msg, m.keys.toolbarNext):
		m.cancelDrag()
		m.hostPage = min(m.hostPage+1, m.view.Page().Total-1)
		m.view.RequestPage(m.hostPage)
	case key.Matches(msg, m.keys.columnLeft):
		m.cancelDrag()
		m.focusColumn--
		m.focusTask = 0
	case key.Matches(msg, m.keys.columnRight):
		m.cancelDrag()
		m.focusColumn++
		m.focusTask = 0
	case key.Matches(msg, m.keys.reorderUp):
		m.keyboardReorder(board.Up)
	case key.Matches(msg, m.keys.reorderDown):
		m.keyboardReorder(board.Down)
	case key.Matches(msg, m.keys.taskUp):
		m.stepFocus(-1)
	case key.Matches(msg, m.keys.taskDown):
		m.stepFocus(1)
	case key.Matches(msg, m.keys.grab):
		m.toggleGrab()
	case key.Matches(msg, m.keys.cancel):
		if col, ok := m.focusedColumn(); ok && col.Engine().Cancel() {
			m.status = "drag cancelled"
		}
	case key.Matches(msg, m.keys.openTask):
		if task, ok := m.focusedTask(); ok {
			m.view.OpenTask(task.ID)
		}
	case key.Matches(msg, m.keys.copyID):
		if task, ok := m.focusedTask(); ok {
			return m, m.copyCmd(task.ID)
		}
	default:
		return m, nil
	}
	return m.afterViewChange()
}

// keyboardReorder swaps the focused task with its neighbour and keeps focus on it.
func (m *Model) keyboardReorder(dir board.Direction) {
	col, ok := m.focusedColumn()
	if !ok || col.Engine().State().Phase == board.DragDragging {
		return
	}
	if to, moved := col.Engine().KeyMove(m.focusTask, dir); moved {
		m.focusTask = to
	}
}

// stepFocus moves task focus, carrying the grabbed task along while dragging.
func (m *Model) stepFocus(delta int) {
	col, ok := m.focusedColumn()
	if !ok {
		return
	}
	to := clamp(m.focusTask+delta, 0, col.Len()-1)
	if col.Engine().State().Phase == board.DragDragging {
		if col.Engine().Over(to) {
			m.focusTask = to
		}
		return
	}
	m.focusTask = to
}

// toggleGrab starts a keyboard drag on the focused task or drops the current one.
func (m *Model) toggleGrab() {
	col, ok := m.focusedColumn()
	if !ok {
		return
	}
	engine := col.Engine()
	if engine.State().Phase == board.DragDragging {
		engine.Drop()
		return
	}
	if engine.Start(m.focusTask) {
		m.status = "grabbed • j/k to move • space to drop • esc to cancel"
	}
}

// cancelDrag abandons any keyboard or pointer drag before focus leaves the column.
func (m *Model) cancelDrag() {
	if col, ok := m.focusedColumn(); ok {
		col.Engine().Cancel()
	}
	if m.drag.active {
		if col, ok := m.view.Column(m.drag.stage); ok {
			col.Engine().Cancel()
		}
		m.drag = mouseDrag{}
	}
}

// clampFocus keeps column and task focus inside the visible page.
func (m *Model) clampFocus() {
	if m.view == nil {
		m.focusColumn, m.focusTask = 0, 0
		return
	}
	visible := m.view.VisibleColumns()
	m.focusColumn = clamp(m.focusColumn, 0, len(visible)-1)
	if len(visible) == 0 {
		m.focusTask = 0
		return
	}
	m.focusTask = clamp(m.focusTask, 0, visible[m.focusColumn].Len()-1)
}

// currentProject returns the selected project.
func (m Model) currentProject() (domain.Project, bool) {
	if len(m.projects) == 0 {
		return domain.Project{}, false
	}
	return m.projects[clamp(m.selectedProject, 0, len(m.projects)-1)], true
}

// focusedColumn returns the focused column on the current page.
func (m Model) focusedColumn() (*board.Column, bool) {
	if m.view == nil {
		return nil, false
	}
	visible := m.view.VisibleColumns()
	if m.focusColumn < 0 || m.focusColumn >= len(visible) {
		return nil, false
	}
	return visible[m.focusColumn], true
}

// focusedTask returns the focused task.
func (m Model) focusedTask() (domain.Task, bool) {
	col, ok := m.focusedColumn()
	if !ok {
		return domain.Task{}, false
	}
	tasks := col.Tasks()
	if m.focusTask < 0 || m.focusTask >= len(tasks) {
		return domain.Task{}, false
	}
	return tasks[m.focusTask], true
}

// taskByID finds one loaded task.
func (m Model) taskByID(id string) (domain.Task, bool) {
	for _, task := range m.tasks {
		if task.ID == id {
			return task, true
		}
	}
	return domain.Task{}, false
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
