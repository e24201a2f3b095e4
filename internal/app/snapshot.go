package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hylla/phaseboard/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "phaseboard.snapshot.v1"

// SnapshotFormat selects the snapshot encoding.
type SnapshotFormat string

// Supported snapshot encodings.
const (
	SnapshotFormatJSON SnapshotFormat = "json"
	SnapshotFormatYAML SnapshotFormat = "yaml"
)

// Snapshot is a portable copy of every project and task.
type Snapshot struct {
	Version    string            `json:"version" yaml:"version"`
	ExportedAt time.Time         `json:"exported_at" yaml:"exported_at"`
	Projects   []SnapshotProject `json:"projects" yaml:"projects"`
	Tasks      []SnapshotTask    `json:"tasks" yaml:"tasks"`
}

// SnapshotProject represents snapshot project data used by this package.
type SnapshotProject struct {
	ID          string          `json:"id" yaml:"id"`
	Slug        string          `json:"slug" yaml:"slug"`
	Title       string          `json:"title" yaml:"title"`
	DueAt       *time.Time      `json:"due_at,omitempty" yaml:"due_at,omitempty"`
	ProgressPct int             `json:"progress_pct" yaml:"progress_pct"`
	Members     []domain.Member `json:"members,omitempty" yaml:"members,omitempty"`
	CreatedAt   time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" yaml:"updated_at"`
}

// SnapshotTask represents snapshot task data used by this package.
type SnapshotTask struct {
	ID            string          `json:"id" yaml:"id"`
	ProjectID     string          `json:"project_id" yaml:"project_id"`
	Stage         string          `json:"stage" yaml:"stage"`
	Position      int             `json:"position" yaml:"position"`
	Title         string          `json:"title" yaml:"title"`
	Body          string          `json:"body,omitempty" yaml:"body,omitempty"`
	DueAt         *time.Time      `json:"due_at,omitempty" yaml:"due_at,omitempty"`
	Warnings      int             `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Comments      int             `json:"comments,omitempty" yaml:"comments,omitempty"`
	Attachments   int             `json:"attachments,omitempty" yaml:"attachments,omitempty"`
	Assignees     []domain.Member `json:"assignees,omitempty" yaml:"assignees,omitempty"`
	Label         string          `json:"label,omitempty" yaml:"label,omitempty"`
	LabelDaysLeft int             `json:"label_days_left,omitempty" yaml:"label_days_left,omitempty"`
	CreatedAt     time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" yaml:"updated_at"`
}

// ExportSnapshot collects every project and its tasks.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Projects:   make([]SnapshotProject, 0, len(projects)),
		Tasks:      []SnapshotTask{},
	}
	for _, p := range projects {
		snap.Projects = append(snap.Projects, snapshotProjectFromDomain(p))
		tasks, err := s.ListTasks(ctx, p.ID)
		if err != nil {
			return Snapshot{}, fmt.Errorf("list tasks for project %q: %w", p.ID, err)
		}
		for _, t := range tasks {
			snap.Tasks = append(snap.Tasks, snapshotTaskFromDomain(t))
		}
	}
	snap.sort()
	return snap, nil
}

// ImportSnapshot upserts every project and task of snap.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	snap.sort()

	for _, p := range snap.Projects {
		if err := s.upsertProject(ctx, p.toDomain()); err != nil {
			return err
		}
	}
	for _, t := range snap.Tasks {
		dt := t.toDomain()
		if _, err := s.repo.GetTask(ctx, dt.ID); err == nil {
			if err := s.repo.UpdateTask(ctx, dt); err != nil {
				return err
			}
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := s.repo.CreateTask(ctx, dt); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks references and required fields.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("%w: %q", ErrUnsupportedSnapshotVersion, s.Version)
	}
	projectIDs := map[string]struct{}{}
	for i, p := range s.Projects {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("projects[%d].id is required", i)
		}
		if strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("projects[%d].title is required", i)
		}
		if p.ProgressPct < 0 || p.ProgressPct > 100 {
			return fmt.Errorf("projects[%d].progress_pct must be within 0..100", i)
		}
		if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
			return fmt.Errorf("projects[%d] timestamps are required", i)
		}
		if _, exists := projectIDs[p.ID]; exists {
			return fmt.Errorf("duplicate project id: %q", p.ID)
		}
		projectIDs[p.ID] = struct{}{}
	}

	taskIDs := map[string]struct{}{}
	for i, t := range s.Tasks {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("tasks[%d].id is required", i)
		}
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("tasks[%d].title is required", i)
		}
		if strings.TrimSpace(t.Stage) == "" {
			return fmt.Errorf("tasks[%d].stage is required", i)
		}
		if t.Position < 0 {
			return fmt.Errorf("tasks[%d].position must be >= 0", i)
		}
		if _, err := domain.NormalizeLabel(t.Label); err != nil {
			return fmt.Errorf("tasks[%d].label: %w", i, err)
		}
		if t.CreatedAt.IsZero() || t.UpdatedAt.IsZero() {
			return fmt.Errorf("tasks[%d] timestamps are required", i)
		}
		if _, ok := projectIDs[t.ProjectID]; !ok {
			return fmt.Errorf("tasks[%d] references unknown project_id %q", i, t.ProjectID)
		}
		if _, exists := taskIDs[t.ID]; exists {
			return fmt.Errorf("duplicate task id: %q", t.ID)
		}
		taskIDs[t.ID] = struct{}{}
	}
	return nil
}

// EncodeSnapshot writes snap to w in the requested format.
func EncodeSnapshot(w io.Writer, snap Snapshot, format SnapshotFormat) error {
	switch format {
	case SnapshotFormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case SnapshotFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedSnapshotFormat, format)
	}
}

// DecodeSnapshot reads a snapshot from r in the requested format.
func DecodeSnapshot(r io.Reader, format SnapshotFormat) (Snapshot, error) {
	var snap Snapshot
	switch format {
	case SnapshotFormatJSON, "":
		if err := json.NewDecoder(r).Decode(&snap); err != nil {
			return Snapshot{}, fmt.Errorf("decode snapshot json: %w", err)
		}
	case SnapshotFormatYAML:
		if err := yaml.NewDecoder(r).Decode(&snap); err != nil {
			return Snapshot{}, fmt.Errorf("decode snapshot yaml: %w", err)
		}
	default:
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnsupportedSnapshotFormat, format)
	}
	return snap, nil
}

// SnapshotFormatFromPath infers the encoding from a file extension.
func SnapshotFormatFromPath(path string) SnapshotFormat {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return SnapshotFormatYAML
	}
	return SnapshotFormatJSON
}

func (s *Service) upsertProject(ctx context.Context, p domain.Project) error {
	if _, err := s.repo.GetProject(ctx, p.ID); err == nil {
		return s.repo.UpdateProject(ctx, p)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.repo.CreateProject(ctx, p)
}

func (s *Snapshot) sort() {
	slices.SortStableFunc(s.Projects, func(a, b SnapshotProject) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	slices.SortStableFunc(s.Tasks, func(a, b SnapshotTask) int {
		if c := strings.Compare(a.ProjectID, b.ProjectID); c != 0 {
			return c
		}
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func snapshotProjectFromDomain(p domain.Project) SnapshotProject {
	return SnapshotProject{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		DueAt:       copyTimePtr(p.DueAt),
		ProgressPct: p.ProgressPct,
		Members:     append([]domain.Member(nil), p.Members...),
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
}

func snapshotTaskFromDomain(t domain.Task) SnapshotTask {
	return SnapshotTask{
		ID:            t.ID,
		ProjectID:     t.ProjectID,
		Stage:         string(t.Stage),
		Position:      t.Position,
		Title:         t.Title,
		Body:          t.Body,
		DueAt:         copyTimePtr(t.DueAt),
		Warnings:      t.Warnings,
		Comments:      t.Comments,
		Attachments:   t.Attachments,
		Assignees:     append([]domain.Member(nil), t.Assignees...),
		Label:         string(t.Label),
		LabelDaysLeft: t.LabelDaysLeft,
		CreatedAt:     t.CreatedAt.UTC(),
		UpdatedAt:     t.UpdatedAt.UTC(),
	}
}

func (p SnapshotProject) toDomain() domain.Project {
	slug := strings.TrimSpace(p.Slug)
	if slug == "" {
		slug = fallbackSlug(p.Title)
	}
	return domain.Project{
		ID:          strings.TrimSpace(p.ID),
		Slug:        slug,
		Title:       strings.TrimSpace(p.Title),
		DueAt:       copyTimePtr(p.DueAt),
		ProgressPct: p.ProgressPct,
		Members:     append([]domain.Member(nil), p.Members...),
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
}

func (t SnapshotTask) toDomain() domain.Task {
	label, _ := domain.NormalizeLabel(t.Label)
	return domain.Task{
		ID:            strings.TrimSpace(t.ID),
		ProjectID:     strings.TrimSpace(t.ProjectID),
		Stage:         domain.NormalizeStageKey(t.Stage),
		Position:      t.Position,
		Title:         strings.TrimSpace(t.Title),
		Body:          t.Body,
		DueAt:         copyTimePtr(t.DueAt),
		Warnings:      t.Warnings,
		Comments:      t.Comments,
		Attachments:   t.Attachments,
		Assignees:     append([]domain.Member(nil), t.Assignees...),
		Label:         label,
		LabelDaysLeft: t.LabelDaysLeft,
		CreatedAt:     t.CreatedAt.UTC(),
		UpdatedAt:     t.UpdatedAt.UTC(),
	}
}

func fallbackSlug(title string) string {
	p, err := domain.NewProject(domain.ProjectInput{ID: "slug", Title: title}, time.Time{})
	if err != nil {
		return ""
	}
	return p.Slug
}

func copyTimePtr(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	ts := in.UTC()
	return &ts
}
