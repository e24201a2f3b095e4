package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewProjectAndSlug(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	p, err := NewProject(ProjectInput{ID: "p1", Title: "  Autoclave Line 2!  ", ProgressPct: 75}, now)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	if p.Slug != "autoclave-line-2" {
		t.Fatalf("unexpected slug %q", p.Slug)
	}
	if p.Title != "Autoclave Line 2!" {
		t.Fatalf("unexpected title %q", p.Title)
	}
	if p.ProgressPct != 75 {
		t.Fatalf("unexpected progress %d", p.ProgressPct)
	}
}

func TestNewProjectValidation(t *testing.T) {
	now := time.Now()
	if _, err := NewProject(ProjectInput{Title: "ok"}, now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewProject(ProjectInput{ID: "id", Title: "   "}, now); err != ErrInvalidTitle {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
	if _, err := NewProject(ProjectInput{ID: "id", Title: "x", ProgressPct: 101}, now); err != ErrInvalidProgress {
		t.Fatalf("expected ErrInvalidProgress, got %v", err)
	}
	if _, err := NewProject(ProjectInput{ID: "id", Title: "x", Members: []Member{{ID: "m1"}}}, now); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestProjectMembersDeduplicated(t *testing.T) {
	p, err := NewProject(ProjectInput{
		ID:    "p1",
		Title: "Autoclave",
		Members: []Member{
			{ID: "u1", Name: "Alex"},
			{ID: " u1 ", Name: "Alex again"},
			{ID: "u2", Name: "Sam"},
		},
	}, time.Now())
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	if len(p.Members) != 2 || p.Members[1].Name != "Sam" {
		t.Fatalf("unexpected members %#v", p.Members)
	}
}

func TestNewTaskDefaultsAndValidation(t *testing.T) {
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.FixedZone("X", 3600))
	due := time.Date(2025, 9, 3, 10, 30, 0, 500, time.UTC)
	task, err := NewTask(TaskInput{
		ID:        " t1 ",
		ProjectID: "p1",
		Stage:     " urs ",
		Title:     " Gather user requirements ",
		Body:      "  Interview stakeholders  ",
		DueAt:     &due,
		Label:     "creation",
		Assignees: []Member{{ID: "u1", Name: "Alex"}},
	}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if task.ID != "t1" || task.Stage != StageURS || task.Label != LabelCreation {
		t.Fatalf("unexpected task %#v", task)
	}
	if task.Body != "Interview stakeholders" {
		t.Fatalf("unexpected body %q", task.Body)
	}
	if task.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamps, got %v", task.CreatedAt.Location())
	}
	if got := task.DueDateText(); got != "3 Sep, 2025" {
		t.Fatalf("unexpected due text %q", got)
	}

	cases := []struct {
		name string
		in   TaskInput
		want error
	}{
		{"missing id", TaskInput{ProjectID: "p1", Stage: "URS", Title: "x"}, ErrInvalidID},
		{"missing project", TaskInput{ID: "t1", Stage: "URS", Title: "x"}, ErrInvalidID},
		{"missing title", TaskInput{ID: "t1", ProjectID: "p1", Stage: "URS"}, ErrInvalidTitle},
		{"missing stage", TaskInput{ID: "t1", ProjectID: "p1", Title: "x"}, ErrInvalidStage},
		{"negative position", TaskInput{ID: "t1", ProjectID: "p1", Stage: "URS", Title: "x", Position: -1}, ErrInvalidPosition},
		{"negative counter", TaskInput{ID: "t1", ProjectID: "p1", Stage: "URS", Title: "x", Warnings: -1}, ErrInvalidCounter},
		{"bad label", TaskInput{ID: "t1", ProjectID: "p1", Stage: "URS", Title: "x", Label: "Archived"}, ErrInvalidLabel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewTask(tc.in, now); !errors.Is(err, tc.want) {
				t.Fatalf("NewTask() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestNewTaskKeepsUnknownStage(t *testing.T) {
	task, err := NewTask(TaskInput{ID: "t1", ProjectID: "p1", Stage: "Archived", Title: "x"}, time.Now())
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	if task.Stage != "Archived" || IsKnownStage(task.Stage) {
		t.Fatalf("expected unknown stage to be preserved, got %q", task.Stage)
	}
}

func TestStagePredicates(t *testing.T) {
	if got := BoardStages(); len(got) != 6 || got[0] != StageURS || got[5] != StageOQ {
		t.Fatalf("unexpected board stages %#v", got)
	}
	stages := BoardStages()
	stages[0] = "mutated"
	if BoardStages()[0] != StageURS {
		t.Fatal("BoardStages() returned shared backing array")
	}
	if !IsBoardStage(StageDQ) || IsBoardStage(StageSignoff) {
		t.Fatal("unexpected IsBoardStage result")
	}
	if !IsKnownStage(StageSignoff) || IsKnownStage("Draft") {
		t.Fatal("unexpected IsKnownStage result")
	}
	if NormalizeStageKey(" verification ") != StageVerification {
		t.Fatal("expected alias stage normalization")
	}
}

func TestTaskDisplayLabelDefaultsToExecution(t *testing.T) {
	if got := (Task{}).DisplayLabel(); got != LabelExecution {
		t.Fatalf("DisplayLabel() = %q, want Execution", got)
	}
	if got := (Task{Label: LabelSignoff}).DisplayLabel(); got != LabelSignoff {
		t.Fatalf("DisplayLabel() = %q, want Signoff", got)
	}
}

func TestMemberInitials(t *testing.T) {
	cases := map[string]string{
		"Alex":         "AL",
		"Taylor Reed":  "TR",
		"":             "?",
		"q":            "Q",
		"Ana de Souza": "AS",
	}
	for name, want := range cases {
		if got := (Member{Name: name}).Initials(); got != want {
			t.Fatalf("Initials(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestTaskSetPosition(t *testing.T) {
	task := Task{Position: 2}
	if err := task.SetPosition(-1, time.Now()); err != ErrInvalidPosition {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
	if err := task.SetPosition(0, time.Now()); err != nil || task.Position != 0 {
		t.Fatalf("SetPosition() error = %v position = %d", err, task.Position)
	}
}
