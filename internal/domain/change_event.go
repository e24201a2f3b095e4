package domain

import "time"

// ChangeOperation describes a persisted activity operation on a board.
type ChangeOperation string

// ChangeOperation values used by the local activity ledger.
const (
	ChangeOperationCreate  ChangeOperation = "create_task"
	ChangeOperationReorder ChangeOperation = "reorder"
)

// ChangeEvent represents a single activity-log entry for a project board.
type ChangeEvent struct {
	ID         int64
	ProjectID  string
	Operation  ChangeOperation
	Stage      StageKey
	TaskIDs    []string
	OccurredAt time.Time
}
