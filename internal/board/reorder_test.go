package board

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hylla/phaseboard/internal/domain"
)

type commitRecorder struct {
	stages []domain.StageKey
	orders [][]string
}

func (r *commitRecorder) commit(stage domain.StageKey, ids []string) {
	r.stages = append(r.stages, stage)
	r.orders = append(r.orders, ids)
}

func abc() []domain.Task {
	return []domain.Task{
		{ID: "A", Title: "Alpha"},
		{ID: "B", Title: "Bravo"},
		{ID: "C", Title: ""},
	}
}

func TestReorderDragCommitsOnceOnDrop(t *testing.T) {
	rec := &commitRecorder{}
	var announced []string
	r := NewReorderer(domain.StageURS, abc(), rec.commit, func(msg string) { announced = append(announced, msg) })

	require.True(t, r.Start(2))
	assert.Equal(t, DragState{Phase: DragDragging, Source: 2}, r.State())
	require.True(t, r.Over(1))
	require.True(t, r.Over(0))
	assert.Empty(t, rec.orders, "no commit during drag-over")
	assert.Equal(t, 0, r.State().Source)

	require.True(t, r.Drop())
	require.Len(t, rec.orders, 1)
	assert.Equal(t, domain.StageURS, rec.stages[0])
	assert.Equal(t, []string{"C", "A", "B"}, rec.orders[0])
	assert.Equal(t, DragIdle, r.State().Phase)
	assert.Equal(t, []string{"Moved item to position 2", "Moved item to position 1"}, announced)

	assert.False(t, r.Drop(), "second drop must not commit again")
	assert.Len(t, rec.orders, 1)
}

func TestReorderCancelKeepsOptimisticOrderWithoutCommit(t *testing.T) {
	rec := &commitRecorder{}
	r := NewReorderer(domain.StagePQ, abc(), rec.commit, nil)
	require.True(t, r.Start(0))
	require.True(t, r.Over(2))
	require.True(t, r.Cancel())

	assert.Empty(t, rec.orders)
	assert.Equal(t, []string{"B", "C", "A"}, r.IDs())
	assert.Equal(t, DragIdle, r.State().Phase)
	assert.False(t, r.Cancel())
}

func TestReorderOverRequiresDrag(t *testing.T) {
	r := NewReorderer(domain.StageURS, abc(), nil, nil)
	assert.False(t, r.Over(1))
	assert.Equal(t, []string{"A", "B", "C"}, r.IDs())
	assert.False(t, r.Start(3))
	assert.False(t, r.Start(-1))
	assert.Equal(t, DragIdle, r.State().Phase)
}

func TestReorderKeyboardMoveCommitsImmediately(t *testing.T) {
	rec := &commitRecorder{}
	var announced []string
	r := NewReorderer(domain.StageURS, abc(), rec.commit, func(msg string) { announced = append(announced, msg) })

	to, ok := r.KeyMove(1, Up)
	require.True(t, ok)
	assert.Equal(t, 0, to)
	require.Len(t, rec.orders, 1)
	assert.Equal(t, []string{"B", "A", "C"}, rec.orders[0])
	assert.Equal(t, []string{"Moved Bravo to position 1"}, announced)

	_, ok = r.KeyMove(0, Up)
	assert.False(t, ok, "no move past the top")
	_, ok = r.KeyMove(2, Down)
	assert.False(t, ok, "no move past the bottom")
	assert.Len(t, rec.orders, 1)

	to, ok = r.KeyMove(0, Down)
	require.True(t, ok)
	assert.Equal(t, 1, to)
	assert.Equal(t, []string{"A", "B", "C"}, rec.orders[1])
}

func TestReorderMoveGuards(t *testing.T) {
	var announced int
	r := NewReorderer(domain.StageURS, abc(), nil, func(string) { announced++ })
	for _, mv := range [][2]int{{1, 1}, {-1, 0}, {0, 3}, {3, 0}, {0, -1}} {
		assert.False(t, r.Move(mv[0], mv[1]), "Move(%d, %d)", mv[0], mv[1])
	}
	assert.Equal(t, []string{"A", "B", "C"}, r.IDs())
	assert.Zero(t, announced)
}

func TestReorderResetInvalidatesDrag(t *testing.T) {
	rec := &commitRecorder{}
	r := NewReorderer(domain.StageURS, abc(), rec.commit, nil)
	require.True(t, r.Start(1))
	r.Reset([]domain.Task{{ID: "X"}})
	assert.Equal(t, DragIdle, r.State().Phase)
	assert.False(t, r.Over(0))
	assert.False(t, r.Drop())
	assert.Empty(t, rec.orders)
	assert.Equal(t, []string{"X"}, r.IDs())
}

func TestReorderItemsAreCopies(t *testing.T) {
	tasks := abc()
	r := NewReorderer(domain.StageURS, tasks, nil, nil)
	tasks[0].ID = "mutated"
	items := r.Items()
	items[1].ID = "mutated"
	assert.Equal(t, []string{"A", "B", "C"}, r.IDs())
}

func TestReorderIsAPermutation(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 8))
	var tasks []domain.Task
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		tasks = append(tasks, domain.Task{ID: id})
	}
	want := []string{"a", "b", "c", "d", "e", "f", "g"}
	r := NewReorderer(domain.StageDQ, tasks, nil, nil)
	for range 500 {
		switch rng.IntN(5) {
		case 0:
			r.Start(rng.IntN(9) - 1)
		case 1:
			r.Over(rng.IntN(9) - 1)
		case 2:
			r.Drop()
		case 3:
			r.KeyMove(rng.IntN(9)-1, []Direction{Up, Down}[rng.IntN(2)])
		case 4:
			r.Move(rng.IntN(9)-1, rng.IntN(9)-1)
		}
		got := r.IDs()
		slices.Sort(got)
		require.Equal(t, want, got)
	}
}

func TestMoveAnnouncement(t *testing.T) {
	assert.Equal(t, "Moved Draft URS document to position 3", MoveAnnouncement("Draft URS document", 2))
	assert.Equal(t, "Moved item to position 1", MoveAnnouncement("", 0))
}
