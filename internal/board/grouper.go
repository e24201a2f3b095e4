package board

import (
	"math/rand/v2"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/hylla/phaseboard/internal/domain"
)

// Bucket is one board column's worth of tasks.
type Bucket struct {
	Stage domain.StageKey
	Tasks []domain.Task
}

// CompletedPlacement picks IQ or OQ for a task whose stage is Completed.
// Serve mode shares one placement across request goroutines, so
// implementations must be safe for concurrent use.
type CompletedPlacement func(domain.Task) domain.StageKey

// StableCompletedPlacement places Completed tasks by the parity of the id hash,
// so a task stays in the same column across regroupings.
func StableCompletedPlacement(task domain.Task) domain.StageKey {
	if xxhash.Sum64String(task.ID)&1 == 0 {
		return domain.StageIQ
	}
	return domain.StageOQ
}

// RandomCompletedPlacement returns a placement that flips an unweighted coin per
// task per grouping pass. A Completed task may change columns between refreshes.
// A nil rng draws from the runtime-seeded global source; an injected rng is
// serialized behind a mutex.
func RandomCompletedPlacement(rng *rand.Rand) CompletedPlacement {
	coin := rand.Float64
	if rng != nil {
		var mu sync.Mutex
		coin = func() float64 {
			mu.Lock()
			defer mu.Unlock()
			return rng.Float64()
		}
	}
	return func(domain.Task) domain.StageKey {
		if coin() > 0.5 {
			return domain.StageIQ
		}
		return domain.StageOQ
	}
}

// Grouper partitions tasks into the canonical board buckets.
type Grouper struct {
	completed CompletedPlacement
}

// NewGrouper constructs a grouper. A nil placement falls back to StableCompletedPlacement.
func NewGrouper(completed CompletedPlacement) Grouper {
	if completed == nil {
		completed = StableCompletedPlacement
	}
	return Grouper{completed: completed}
}

// Target returns the board stage a task is placed in, or false for unknown stages.
func (g Grouper) Target(task domain.Task) (domain.StageKey, bool) {
	switch task.Stage {
	case domain.StageURS, domain.StageFRS, domain.StageDQ, domain.StageIQ, domain.StagePQ, domain.StageOQ:
		return task.Stage, true
	case domain.StageExecution, domain.StageSignoff, domain.StageVerification:
		return domain.StageOQ, true
	case domain.StageCompleted:
		completed := g.completed
		if completed == nil {
			completed = StableCompletedPlacement
		}
		return completed(task), true
	default:
		return "", false
	}
}

// Group returns all six buckets in board order. Every bucket is present even
// when empty, and tasks keep their relative input order within a bucket.
// Tasks with an unknown stage are left out.
func (g Grouper) Group(tasks []domain.Task) []Bucket {
	stages := domain.BoardStages()
	buckets := make([]Bucket, len(stages))
	index := make(map[domain.StageKey]int, len(stages))
	for i, stage := range stages {
		buckets[i] = Bucket{Stage: stage, Tasks: []domain.Task{}}
		index[stage] = i
	}
	for _, task := range tasks {
		target, ok := g.Target(task)
		if !ok {
			continue
		}
		i := index[target]
		buckets[i].Tasks = append(buckets[i].Tasks, task)
	}
	return buckets
}

// Unplaced returns the tasks Group leaves out, in input order.
func Unplaced(tasks []domain.Task) []domain.Task {
	var out []domain.Task
	for _, task := range tasks {
		if !domain.IsKnownStage(task.Stage) {
			out = append(out, task)
		}
	}
	return out
}
