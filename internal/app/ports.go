package app

import (
	"context"
	"time"

	"github.com/hylla/phaseboard/internal/domain"
)

// Repository is the persistence port used by Service.
type Repository interface {
	CreateProject(context.Context, domain.Project) error
	UpdateProject(context.Context, domain.Project) error
	GetProject(context.Context, string) (domain.Project, error)
	ListProjects(context.Context) ([]domain.Project, error)

	CreateTask(context.Context, domain.Task) error
	UpdateTask(context.Context, domain.Task) error
	GetTask(context.Context, string) (domain.Task, error)
	ListTasks(context.Context, string) ([]domain.Task, error)

	// ReorderTasks assigns positions 0..n-1 to ids in one transaction and
	// records a reorder change event for stage.
	ReorderTasks(ctx context.Context, projectID string, stage domain.StageKey, ids []string, now time.Time) error
	ListProjectChangeEvents(context.Context, string, int) ([]domain.ChangeEvent, error)
}
