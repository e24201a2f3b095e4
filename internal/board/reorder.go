package board

import (
	"fmt"

	"github.com/hylla/phaseboard/internal/domain"
)

// DragPhase is the phase of a pointer drag.
type DragPhase int

// DragPhase values.
const (
	DragIdle DragPhase = iota
	DragDragging
)

// String returns a lowercase name for the phase.
func (p DragPhase) String() string {
	switch p {
	case DragDragging:
		return "dragging"
	default:
		return "idle"
	}
}

// DragState is the reorder engine state. Source is meaningful only while dragging
// and always indexes the dragged item's current position.
type DragState struct {
	Phase  DragPhase
	Source int
}

// Direction is a keyboard move direction.
type Direction int

// Direction values.
const (
	Up   Direction = -1
	Down Direction = 1
)

// CommitFunc receives the stage key and the full ordered id list of a column
// once a reorder is final.
type CommitFunc func(stage domain.StageKey, ids []string)

// Reorderer holds one column's local task order and drives drag and keyboard
// reordering over it. Moves are applied locally first and committed separately.
type Reorderer struct {
	stage    domain.StageKey
	items    []domain.Task
	state    DragState
	commit   CommitFunc
	announce func(string)
}

// NewReorderer constructs an engine over a copy of tasks.
func NewReorderer(stage domain.StageKey, tasks []domain.Task, commit CommitFunc, announce func(string)) *Reorderer {
	r := &Reorderer{stage: stage, commit: commit, announce: announce}
	r.Reset(tasks)
	return r
}

// Stage returns the column stage key.
func (r *Reorderer) Stage() domain.StageKey { return r.stage }

// State returns the drag state.
func (r *Reorderer) State() DragState { return r.state }

// Len returns the number of items.
func (r *Reorderer) Len() int { return len(r.items) }

// Items returns a copy of the local order.
func (r *Reorderer) Items() []domain.Task {
	out := make([]domain.Task, len(r.items))
	copy(out, r.items)
	return out
}

// IDs returns the task ids in local order.
func (r *Reorderer) IDs() []string {
	ids := make([]string, len(r.items))
	for i, item := range r.items {
		ids[i] = item.ID
	}
	return ids
}

// Reset replaces the local order with a fresh task list and drops any drag.
func (r *Reorderer) Reset(tasks []domain.Task) {
	r.items = make([]domain.Task, len(tasks))
	copy(r.items, tasks)
	r.state = DragState{Phase: DragIdle}
}

// Move relocates the item at from to index to. Equal or out-of-range indices
// leave the order untouched and publish nothing.
func (r *Reorderer) Move(from, to int) bool {
	if from == to || !r.inRange(from) || !r.inRange(to) {
		return false
	}
	moved := r.items[from]
	r.items = append(r.items[:from], r.items[from+1:]...)
	r.items = append(r.items[:to], append([]domain.Task{moved}, r.items[to:]...)...)
	if r.announce != nil {
		r.announce(MoveAnnouncement(moved.Title, to))
	}
	return true
}

// Start begins a drag of the item at index.
func (r *Reorderer) Start(index int) bool {
	if !r.inRange(index) {
		return false
	}
	r.state = DragState{Phase: DragDragging, Source: index}
	return true
}

// Over moves the dragged item onto the hovered index.
func (r *Reorderer) Over(to int) bool {
	if r.state.Phase != DragDragging {
		return false
	}
	if !r.Move(r.state.Source, to) {
		return false
	}
	r.state.Source = to
	return true
}

// Drop ends the drag and commits the current order.
func (r *Reorderer) Drop() bool {
	if r.state.Phase != DragDragging {
		return false
	}
	r.state = DragState{Phase: DragIdle}
	r.emit()
	return true
}

// Cancel abandons the drag without committing. Optimistic moves already
// applied stay in the local order until the next Reset.
func (r *Reorderer) Cancel() bool {
	if r.state.Phase != DragDragging {
		return false
	}
	r.state = DragState{Phase: DragIdle}
	return true
}

// KeyMove swaps the item at index with its neighbour and commits at once.
func (r *Reorderer) KeyMove(index int, dir Direction) (int, bool) {
	to := index + int(dir)
	if !r.Move(index, to) {
		return index, false
	}
	r.emit()
	return to, true
}

// Dragging reports whether index is the item being dragged.
func (r *Reorderer) Dragging(index int) bool {
	return r.state.Phase == DragDragging && r.state.Source == index
}

func (r *Reorderer) emit() {
	if r.commit != nil {
		r.commit(r.stage, r.IDs())
	}
}

func (r *Reorderer) inRange(i int) bool {
	return i >= 0 && i < len(r.items)
}

// MoveAnnouncement formats the live-region message for a move to index to.
func MoveAnnouncement(title string, to int) string {
	if title == "" {
		title = "item"
	}
	return fmt.Sprintf("Moved %s to position %d", title, to+1)
}
