package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/phaseboard/internal/app"
	"github.com/hylla/phaseboard/internal/board"
	"github.com/hylla/phaseboard/internal/domain"
)

// AdapterConfig captures board defaults applied to transport requests.
type AdapterConfig struct {
	MinColumnWidth int
	Completed      board.CompletedPlacement
}

// AppServiceAdapter maps transport contracts onto app.Service and the board view.
type AppServiceAdapter struct {
	service *app.Service
	cfg     AdapterConfig
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service, cfg AdapterConfig) *AppServiceAdapter {
	if cfg.MinColumnWidth <= 0 {
		cfg.MinColumnWidth = board.DefaultMinColumnWidth
	}
	return &AppServiceAdapter{service: service, cfg: cfg}
}

// ListProjects lists every project.
func (a *AppServiceAdapter) ListProjects(ctx context.Context) ([]Project, error) {
	if a == nil || a.service == nil {
		return nil, fmt.Errorf("app service adapter is not configured: %w", ErrServiceUnavailable)
	}
	projects, err := a.service.ListProjects(ctx)
	if err != nil {
		return nil, mapAppError("list projects", err)
	}
	out := make([]Project, 0, len(projects))
	for _, project := range projects {
		out = append(out, convertProject(project))
	}
	return out, nil
}

// Board computes one page of the project board through a freshly mounted view.
func (a *AppServiceAdapter) Board(ctx context.Context, in BoardRequest) (BoardPage, error) {
	if a == nil || a.service == nil {
		return BoardPage{}, fmt.Errorf("app service adapter is not configured: %w", ErrServiceUnavailable)
	}
	req, err := normalizeBoardRequest(in)
	if err != nil {
		return BoardPage{}, err
	}
	project, err := a.service.GetProject(ctx, req.ProjectID)
	if err != nil {
		return BoardPage{}, mapAppError("get project", err)
	}
	tasks, err := a.service.ListTasks(ctx, req.ProjectID)
	if err != nil {
		return BoardPage{}, mapAppError("list tasks", err)
	}

	minColumnWidth := a.cfg.MinColumnWidth
	if req.MinColumnWidth > 0 {
		minColumnWidth = req.MinColumnWidth
	}
	view := board.NewView(tasks, board.Options{
		MinColumnWidth: minColumnWidth,
		Completed:      a.cfg.Completed,
	})
	view.Resize(req.Width)
	if req.Page != nil {
		view.RequestPage(*req.Page)
	}

	pager := view.Pager()
	out := BoardPage{
		Project:        convertProject(project),
		Page:           view.Page(),
		Nav:            PageNavigation{HasPrev: pager.HasPrev(), HasNext: pager.HasNext()},
		ColumnsPerPage: view.ColumnsPerPage(),
		Unplaced:       len(view.Unplaced()),
	}
	visible := view.VisibleColumns()
	out.Columns = make([]Column, 0, len(visible))
	for _, col := range visible {
		out.Columns = append(out.Columns, convertColumn(col))
	}
	return out, nil
}

// ReorderStage persists one committed stage order.
func (a *AppServiceAdapter) ReorderStage(ctx context.Context, in ReorderRequest) (ReorderResult, error) {
	if a == nil || a.service == nil {
		return ReorderResult{}, fmt.Errorf("app service adapter is not configured: %w", ErrServiceUnavailable)
	}
	req, err := normalizeReorderRequest(in)
	if err != nil {
		return ReorderResult{}, err
	}
	if err := a.service.ReorderStage(ctx, app.ReorderStageInput{
		ProjectID: req.ProjectID,
		Stage:     domain.StageKey(req.Stage),
		TaskIDs:   req.TaskIDs,
	}); err != nil {
		return ReorderResult{}, mapAppError("reorder stage", err)
	}
	return ReorderResult(req), nil
}

// normalizeBoardRequest trims and validates one board request.
func normalizeBoardRequest(in BoardRequest) (BoardRequest, error) {
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	if in.ProjectID == "" {
		return BoardRequest{}, fmt.Errorf("project_id is required: %w", ErrInvalidRequest)
	}
	if in.Width < 0 {
		return BoardRequest{}, fmt.Errorf("width must be >= 0: %w", ErrInvalidRequest)
	}
	if in.MinColumnWidth < 0 {
		return BoardRequest{}, fmt.Errorf("min_column_width must be >= 0: %w", ErrInvalidRequest)
	}
	return in, nil
}

// normalizeReorderRequest trims ids and canonicalizes the stage key.
func normalizeReorderRequest(in ReorderRequest) (ReorderRequest, error) {
	out := ReorderRequest{
		ProjectID: strings.TrimSpace(in.ProjectID),
		Stage:     string(domain.NormalizeStageKey(in.Stage)),
		TaskIDs:   make([]string, 0, len(in.TaskIDs)),
	}
	if out.ProjectID == "" {
		return ReorderRequest{}, fmt.Errorf("project_id is required: %w", ErrInvalidRequest)
	}
	if !domain.IsBoardStage(domain.StageKey(out.Stage)) {
		return ReorderRequest{}, fmt.Errorf("stage %q is not a board column: %w", in.Stage, ErrInvalidRequest)
	}
	for _, id := range in.TaskIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			return ReorderRequest{}, fmt.Errorf("task_ids must not contain blanks: %w", ErrInvalidRequest)
		}
		out.TaskIDs = append(out.TaskIDs, id)
	}
	return out, nil
}

// mapAppError maps app and domain failures onto transport sentinel errors.
func mapAppError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrNotFound, err))
	case errors.Is(err, app.ErrInvalidReorder),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidStage),
		errors.Is(err, domain.ErrInvalidPosition):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func convertProject(p domain.Project) Project {
	out := Project{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		DueAt:       p.DueAt,
		ProgressPct: p.ProgressPct,
		Members:     convertMembers(p.Members),
	}
	if p.DueAt != nil {
		out.DueDate = p.DueAt.Format(domain.DueDateLayout)
	}
	return out
}

func convertMembers(in []domain.Member) []Member {
	out := make([]Member, 0, len(in))
	for _, m := range in {
		out = append(out, Member{
			ID:        m.ID,
			Name:      m.Name,
			Initials:  m.Initials(),
			AvatarURL: m.AvatarURL,
		})
	}
	return out
}

func convertColumn(col *board.Column) Column {
	header := col.Header()
	out := Column{
		Stage:     string(header.Stage),
		Count:     header.Count,
		Icon:      header.Icon.Name,
		IconGlyph: header.Icon.Glyph,
		LabelID:   header.LabelID,
	}
	if col.Empty() {
		out.EmptyText = board.EmptyColumnText
	}
	tasks := col.Tasks()
	out.Cards = make([]Card, 0, len(tasks))
	for _, task := range tasks {
		out.Cards = append(out.Cards, Card{
			ID:            task.ID,
			Title:         task.Title,
			Stage:         string(task.Stage),
			Position:      task.Position,
			DueDate:       task.DueDateText(),
			Label:         string(task.DisplayLabel()),
			LabelDaysLeft: task.LabelDaysLeft,
			Warnings:      task.Warnings,
			Comments:      task.Comments,
			Attachments:   task.Attachments,
			Assignees:     convertMembers(task.Assignees),
		})
	}
	return out
}
