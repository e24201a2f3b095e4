package app

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hylla/phaseboard/internal/domain"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	// SeedDemoTasks fills a newly created default project with the demo task set.
	SeedDemoTasks bool
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service implements the board use cases on top of a Repository.
type Service struct {
	repo     Repository
	idGen    IDGenerator
	clock    Clock
	seedDemo bool
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:     repo,
		idGen:    idGen,
		clock:    clock,
		seedDemo: cfg.SeedDemoTasks,
	}
}

// EnsureDefaultProject returns the first project, creating the demo project on
// an empty store.
func (s *Service) EnsureDefaultProject(ctx context.Context) (domain.Project, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return domain.Project{}, err
	}
	if len(projects) > 0 {
		return projects[0], nil
	}

	project, err := s.CreateProject(ctx, demoProjectInput())
	if err != nil {
		return domain.Project{}, err
	}
	if !s.seedDemo {
		return project, nil
	}
	for _, in := range demoTaskInputs(project) {
		if _, err := s.CreateTask(ctx, in); err != nil {
			return domain.Project{}, fmt.Errorf("seed task %q: %w", in.Title, err)
		}
	}
	return project, nil
}

// CreateProjectInput holds input values for create project operations.
type CreateProjectInput struct {
	Title       string
	DueAt       *time.Time
	ProgressPct int
	Members     []domain.Member
}

// CreateProject creates project.
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (domain.Project, error) {
	project, err := domain.NewProject(domain.ProjectInput{
		ID:          s.idGen(),
		Title:       in.Title,
		DueAt:       in.DueAt,
		ProgressPct: in.ProgressPct,
		Members:     in.Members,
	}, s.clock())
	if err != nil {
		return domain.Project{}, err
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// GetProject returns one project.
func (s *Service) GetProject(ctx context.Context, projectID string) (domain.Project, error) {
	return s.repo.GetProject(ctx, strings.TrimSpace(projectID))
}

// ListProjects lists projects in creation order.
func (s *Service) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.repo.ListProjects(ctx)
}

// CreateTaskInput holds input values for create task operations.
type CreateTaskInput struct {
	ProjectID     string
	Stage         string
	Title         string
	Body          string
	DueAt         *time.Time
	Warnings      int
	Comments      int
	Attachments   int
	Assignees     []domain.Member
	Label         string
	LabelDaysLeft int
}

// CreateTask creates a task positioned after every existing task of the project.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	projectID := strings.TrimSpace(in.ProjectID)
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return domain.Task{}, err
	}
	existing, err := s.repo.ListTasks(ctx, projectID)
	if err != nil {
		return domain.Task{}, err
	}
	position := 0
	for _, t := range existing {
		position = max(position, t.Position+1)
	}

	task, err := domain.NewTask(domain.TaskInput{
		ID:            s.idGen(),
		ProjectID:     projectID,
		Stage:         in.Stage,
		Position:      position,
		Title:         in.Title,
		Body:          in.Body,
		DueAt:         in.DueAt,
		Warnings:      in.Warnings,
		Comments:      in.Comments,
		Attachments:   in.Attachments,
		Assignees:     in.Assignees,
		Label:         in.Label,
		LabelDaysLeft: in.LabelDaysLeft,
	}, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// ListTasks returns project tasks ordered by position, creation time and id.
func (s *Service) ListTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, strings.TrimSpace(projectID))
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(tasks, compareTasks)
	return tasks, nil
}

// ReorderStageInput holds the committed order of one board column.
type ReorderStageInput struct {
	ProjectID string
	Stage     domain.StageKey
	TaskIDs   []string
}

// ReorderStage persists a committed column order.
func (s *Service) ReorderStage(ctx context.Context, in ReorderStageInput) error {
	projectID := strings.TrimSpace(in.ProjectID)
	if projectID == "" {
		return fmt.Errorf("%w: project id is required", ErrInvalidReorder)
	}
	stage := domain.NormalizeStageKey(string(in.Stage))
	if !domain.IsBoardStage(stage) {
		return fmt.Errorf("%w: %q is not a board stage", ErrInvalidReorder, in.Stage)
	}
	if len(in.TaskIDs) == 0 {
		return fmt.Errorf("%w: task ids are required", ErrInvalidReorder)
	}
	ids := make([]string, 0, len(in.TaskIDs))
	seen := make(map[string]struct{}, len(in.TaskIDs))
	for _, raw := range in.TaskIDs {
		id := strings.TrimSpace(raw)
		if id == "" {
			return fmt.Errorf("%w: empty task id", ErrInvalidReorder)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate task id %q", ErrInvalidReorder, id)
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	tasks, err := s.repo.ListTasks(ctx, projectID)
	if err != nil {
		return err
	}
	byID := make(map[string]domain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return fmt.Errorf("task %q: %w", id, ErrNotFound)
		}
		if !stageAccepts(stage, t.Stage) {
			return fmt.Errorf("%w: task %q has stage %q, not placeable in %s", ErrInvalidReorder, id, t.Stage, stage)
		}
	}
	return s.repo.ReorderTasks(ctx, projectID, stage, ids, s.clock())
}

// ListChangeEvents returns the newest activity entries for a project.
func (s *Service) ListChangeEvents(ctx context.Context, projectID string, limit int) ([]domain.ChangeEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListProjectChangeEvents(ctx, strings.TrimSpace(projectID), limit)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// stageAccepts reports whether a task with stored stage may appear in column.
func stageAccepts(column, stored domain.StageKey) bool {
	switch stored {
	case domain.StageExecution, domain.StageSignoff, domain.StageVerification:
		return column == domain.StageOQ
	case domain.StageCompleted:
		return column == domain.StageIQ || column == domain.StageOQ
	default:
		return stored == column
	}
}

func compareTasks(a, b domain.Task) int {
	return cmp.Or(
		cmp.Compare(a.Position, b.Position),
		a.CreatedAt.Compare(b.CreatedAt),
		strings.Compare(a.ID, b.ID),
	)
}
