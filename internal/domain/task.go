package domain

import (
	"strings"
	"time"
)

// Task is a card on the phase board.
type Task struct {
	ID            string
	ProjectID     string
	Stage         StageKey
	Position      int
	Title         string
	Body          string
	DueAt         *time.Time
	Warnings      int
	Comments      int
	Attachments   int
	Assignees     []Member
	Label         Label
	LabelDaysLeft int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TaskInput holds the raw values accepted by NewTask.
type TaskInput struct {
	ID            string
	ProjectID     string
	Stage         string
	Position      int
	Title         string
	Body          string
	DueAt         *time.Time
	Warnings      int
	Comments      int
	Attachments   int
	Assignees     []Member
	Label         string
	LabelDaysLeft int
}

// NewTask validates in and returns a task stamped with now.
// Stage values outside the known set are kept as-is so that they can be
// reported as unplaced by the board instead of being rejected here.
func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)

	if in.ID == "" || in.ProjectID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	stage := NormalizeStageKey(in.Stage)
	if stage == "" {
		return Task{}, ErrInvalidStage
	}
	if in.Position < 0 {
		return Task{}, ErrInvalidPosition
	}
	if in.Warnings < 0 || in.Comments < 0 || in.Attachments < 0 {
		return Task{}, ErrInvalidCounter
	}
	label, err := NormalizeLabel(in.Label)
	if err != nil {
		return Task{}, err
	}
	assignees, err := normalizeMembers(in.Assignees)
	if err != nil {
		return Task{}, err
	}

	return Task{
		ID:            in.ID,
		ProjectID:     in.ProjectID,
		Stage:         stage,
		Position:      in.Position,
		Title:         in.Title,
		Body:          in.Body,
		DueAt:         normalizeDueAt(in.DueAt),
		Warnings:      in.Warnings,
		Comments:      in.Comments,
		Attachments:   in.Attachments,
		Assignees:     assignees,
		Label:         label,
		LabelDaysLeft: in.LabelDaysLeft,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}, nil
}

// SetPosition updates the in-stage ordering position.
func (t *Task) SetPosition(position int, now time.Time) error {
	if position < 0 {
		return ErrInvalidPosition
	}
	t.Position = position
	t.UpdatedAt = now.UTC()
	return nil
}

// DisplayLabel returns the card label, falling back to Execution like the card header does.
func (t Task) DisplayLabel() Label {
	if t.Label == LabelNone {
		return LabelExecution
	}
	return t.Label
}

// DueDateText formats the due date as "3 Sep, 2025", or "" when unset.
func (t Task) DueDateText() string {
	if t.DueAt == nil {
		return ""
	}
	return t.DueAt.Format(DueDateLayout)
}

// DueDateLayout is the display layout for due dates.
const DueDateLayout = "2 Jan, 2006"

func normalizeDueAt(dueAt *time.Time) *time.Time {
	if dueAt == nil {
		return nil
	}
	ts := dueAt.UTC().Truncate(time.Second)
	return &ts
}
