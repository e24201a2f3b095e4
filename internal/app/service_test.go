package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/hylla/phaseboard/internal/domain"
)

type fakeRepo struct {
	projects map[string]domain.Project
	tasks    map[string]domain.Task
	events   []domain.ChangeEvent
	err      error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		projects: map[string]domain.Project{},
		tasks:    map[string]domain.Task{},
	}
}

func (f *fakeRepo) CreateProject(_ context.Context, p domain.Project) error {
	f.projects[p.ID] = p
	return nil
}

func (f *fakeRepo) UpdateProject(_ context.Context, p domain.Project) error {
	f.projects[p.ID] = p
	return nil
}

func (f *fakeRepo) GetProject(_ context.Context, id string) (domain.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return domain.Project{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) ListProjects(_ context.Context) ([]domain.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Project) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (f *fakeRepo) CreateTask(_ context.Context, t domain.Task) error {
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeRepo) UpdateTask(_ context.Context, t domain.Task) error {
	if _, ok := f.tasks[t.ID]; !ok {
		return ErrNotFound
	}
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeRepo) GetTask(_ context.Context, id string) (domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return domain.Task{}, ErrNotFound
	}
	return t, nil
}

func (f *fakeRepo) ListTasks(_ context.Context, projectID string) ([]domain.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRepo) ReorderTasks(_ context.Context, projectID string, stage domain.StageKey, ids []string, now time.Time) error {
	for i, id := range ids {
		t, ok := f.tasks[id]
		if !ok {
			return ErrNotFound
		}
		t.Position = i
		t.UpdatedAt = now
		f.tasks[id] = t
	}
	f.events = append(f.events, domain.ChangeEvent{
		ID:         int64(len(f.events) + 1),
		ProjectID:  projectID,
		Operation:  domain.ChangeOperationReorder,
		Stage:      stage,
		TaskIDs:    append([]string(nil), ids...),
		OccurredAt: now,
	})
	return nil
}

func (f *fakeRepo) ListProjectChangeEvents(_ context.Context, projectID string, limit int) ([]domain.ChangeEvent, error) {
	var out []domain.ChangeEvent
	for i := len(f.events) - 1; i >= 0 && len(out) < limit; i-- {
		if f.events[i].ProjectID == projectID {
			out = append(out, f.events[i])
		}
	}
	return out, nil
}

func newTestService(repo *fakeRepo, seed bool) *Service {
	n := 0
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	return NewService(repo, func() string {
		n++
		return fmt.Sprintf("id-%02d", n)
	}, func() time.Time {
		now = now.Add(time.Second)
		return now
	}, ServiceConfig{SeedDemoTasks: seed})
}

func TestEnsureDefaultProjectSeedsDemoBoard(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, true)

	project, err := svc.EnsureDefaultProject(context.Background())
	if err != nil {
		t.Fatalf("EnsureDefaultProject() error = %v", err)
	}
	if project.Title != "Autoclave" || project.ProgressPct != 75 || len(project.Members) != 5 {
		t.Fatalf("unexpected project %#v", project)
	}
	tasks, err := svc.ListTasks(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 20 {
		t.Fatalf("expected 20 seeded tasks, got %d", len(tasks))
	}
	if tasks[0].Title != "Gather user requirements" || tasks[19].Stage != domain.StageCompleted {
		t.Fatalf("unexpected seeded order: first=%q last stage=%q", tasks[0].Title, tasks[19].Stage)
	}
	for i, task := range tasks {
		if task.Position != i {
			t.Fatalf("expected position %d, got %d for %q", i, task.Position, task.Title)
		}
		if len(task.Assignees) != 3 {
			t.Fatalf("expected 3 assignees for %q, got %d", task.Title, len(task.Assignees))
		}
	}

	again, err := svc.EnsureDefaultProject(context.Background())
	if err != nil {
		t.Fatalf("EnsureDefaultProject() second call error = %v", err)
	}
	if again.ID != project.ID || len(repo.tasks) != 20 {
		t.Fatalf("expected idempotent default project, got %q with %d tasks", again.ID, len(repo.tasks))
	}
}

func TestEnsureDefaultProjectWithoutSeed(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, false)
	if _, err := svc.EnsureDefaultProject(context.Background()); err != nil {
		t.Fatalf("EnsureDefaultProject() error = %v", err)
	}
	if len(repo.tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(repo.tasks))
	}
}

func TestEnsureDefaultProjectErrorPropagation(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("boom")
	svc := newTestService(repo, true)
	if _, err := svc.EnsureDefaultProject(context.Background()); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestCreateTaskAppendsAfterExistingTasks(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, false)
	project, err := svc.CreateProject(context.Background(), CreateProjectInput{Title: "Line 2"})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	first, err := svc.CreateTask(context.Background(), CreateTaskInput{ProjectID: project.ID, Stage: "URS", Title: "one"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	second, err := svc.CreateTask(context.Background(), CreateTaskInput{ProjectID: project.ID, Stage: "oq", Title: "two"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if first.Position != 0 || second.Position != 1 || second.Stage != domain.StageOQ {
		t.Fatalf("unexpected tasks %#v %#v", first, second)
	}
	if _, err := svc.CreateTask(context.Background(), CreateTaskInput{ProjectID: "missing", Stage: "URS", Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.CreateTask(context.Background(), CreateTaskInput{ProjectID: project.ID, Stage: "URS"}); !errors.Is(err, domain.ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
}

func TestCreateTaskLandsLastInStageAfterReorder(t *testing.T) {
	svc, _, project, ids := seedReorderFixture(t)
	ctx := context.Background()
	if err := svc.ReorderStage(ctx, ReorderStageInput{
		ProjectID: project.ID,
		Stage:     domain.StageURS,
		TaskIDs:   []string{ids["C"], ids["A"], ids["B"]},
	}); err != nil {
		t.Fatalf("ReorderStage() error = %v", err)
	}
	added, err := svc.CreateTask(ctx, CreateTaskInput{ProjectID: project.ID, Stage: "URS", Title: "D"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	tasks, err := svc.ListTasks(ctx, project.ID)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	var urs []string
	for _, task := range tasks {
		if task.Stage == domain.StageURS {
			urs = append(urs, task.ID)
		}
	}
	want := []string{ids["C"], ids["A"], ids["B"], added.ID}
	if !slices.Equal(urs, want) {
		t.Fatalf("URS order = %v, want %v", urs, want)
	}
}

func seedReorderFixture(t *testing.T) (*Service, *fakeRepo, domain.Project, map[string]string) {
	t.Helper()
	repo := newFakeRepo()
	svc := newTestService(repo, false)
	project, err := svc.CreateProject(context.Background(), CreateProjectInput{Title: "Autoclave"})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	ids := map[string]string{}
	for _, in := range []struct{ title, stage string }{
		{"A", "URS"}, {"B", "URS"}, {"C", "URS"}, {"X", "Execution"}, {"Y", "OQ"}, {"Z", "Completed"},
	} {
		task, err := svc.CreateTask(context.Background(), CreateTaskInput{ProjectID: project.ID, Stage: in.stage, Title: in.title})
		if err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}
		ids[in.title] = task.ID
	}
	return svc, repo, project, ids
}

func TestReorderStagePersistsPositionsAndEvent(t *testing.T) {
	svc, repo, project, ids := seedReorderFixture(t)
	err := svc.ReorderStage(context.Background(), ReorderStageInput{
		ProjectID: project.ID,
		Stage:     domain.StageURS,
		TaskIDs:   []string{ids["C"], ids["A"], ids["B"]},
	})
	if err != nil {
		t.Fatalf("ReorderStage() error = %v", err)
	}
	if repo.tasks[ids["C"]].Position != 0 || repo.tasks[ids["A"]].Position != 1 || repo.tasks[ids["B"]].Position != 2 {
		t.Fatalf("unexpected positions %#v", repo.tasks)
	}

	events, err := svc.ListChangeEvents(context.Background(), project.ID, 0)
	if err != nil {
		t.Fatalf("ListChangeEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].Stage != domain.StageURS || events[0].Operation != domain.ChangeOperationReorder {
		t.Fatalf("unexpected events %#v", events)
	}

	err = svc.ReorderStage(context.Background(), ReorderStageInput{
		ProjectID: project.ID,
		Stage:     "oq",
		TaskIDs:   []string{ids["Y"], ids["X"], ids["Z"]},
	})
	if err != nil {
		t.Fatalf("ReorderStage() alias stages error = %v", err)
	}
}

func TestReorderStageValidation(t *testing.T) {
	svc, _, project, ids := seedReorderFixture(t)
	cases := []struct {
		name string
		in   ReorderStageInput
		want error
	}{
		{"missing project", ReorderStageInput{Stage: domain.StageURS, TaskIDs: []string{ids["A"]}}, ErrInvalidReorder},
		{"alias stage", ReorderStageInput{ProjectID: project.ID, Stage: domain.StageExecution, TaskIDs: []string{ids["X"]}}, ErrInvalidReorder},
		{"no ids", ReorderStageInput{ProjectID: project.ID, Stage: domain.StageURS}, ErrInvalidReorder},
		{"blank id", ReorderStageInput{ProjectID: project.ID, Stage: domain.StageURS, TaskIDs: []string{" "}}, ErrInvalidReorder},
		{"duplicate", ReorderStageInput{ProjectID: project.ID, Stage: domain.StageURS, TaskIDs: []string{ids["A"], ids["A"]}}, ErrInvalidReorder},
		{"unknown id", ReorderStageInput{ProjectID: project.ID, Stage: domain.StageURS, TaskIDs: []string{"nope"}}, ErrNotFound},
		{"wrong column", ReorderStageInput{ProjectID: project.ID, Stage: domain.StageFRS, TaskIDs: []string{ids["A"]}}, ErrInvalidReorder},
		{"completed outside iq/oq", ReorderStageInput{ProjectID: project.ID, Stage: domain.StageDQ, TaskIDs: []string{ids["Z"]}}, ErrInvalidReorder},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.ReorderStage(context.Background(), tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("ReorderStage() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestListTasksOrdersByPositionThenCreation(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, false)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.tasks["b"] = domain.Task{ID: "b", ProjectID: "p", Position: 1, CreatedAt: base}
	repo.tasks["a"] = domain.Task{ID: "a", ProjectID: "p", Position: 1, CreatedAt: base}
	repo.tasks["c"] = domain.Task{ID: "c", ProjectID: "p", Position: 0, CreatedAt: base.Add(time.Hour)}
	repo.tasks["d"] = domain.Task{ID: "d", ProjectID: "p", Position: 1, CreatedAt: base.Add(-time.Hour)}
	tasks, err := svc.ListTasks(context.Background(), "p")
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	got := make([]string, 0, len(tasks))
	for _, task := range tasks {
		got = append(got, task.ID)
	}
	if strings.Join(got, ",") != "c,d,a,b" {
		t.Fatalf("unexpected order %v", got)
	}
}
