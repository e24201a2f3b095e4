package board

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageRecorder struct {
	infos []PageInfo
}

func (r *pageRecorder) record(info PageInfo) { r.infos = append(r.infos, info) }

func TestPagerMountReportsInitialInfo(t *testing.T) {
	rec := &pageRecorder{}
	p := NewPager(6, 3, WithPageInfo(rec.record))
	assert.Equal(t, []PageInfo{{Current: 0, Total: 2}}, rec.infos)
	start, end := p.Bounds()
	assert.Equal(t, 0, start)
	assert.Equal(t, 3, end)
}

func TestPagerMountClampsExternalPage(t *testing.T) {
	p := NewPager(6, 3, WithExternalPage(9))
	assert.Equal(t, 1, p.Current())
	p = NewPager(6, 3, WithExternalPage(-4))
	assert.Equal(t, 0, p.Current())
}

func TestPagerNavigationDoesNotWrap(t *testing.T) {
	rec := &pageRecorder{}
	p := NewPager(6, 2, WithPageInfo(rec.record))

	assert.False(t, p.GoPrev())
	assert.True(t, p.GoNext())
	assert.True(t, p.GoNext())
	assert.False(t, p.GoNext())
	assert.Equal(t, 2, p.Current())
	start, end := p.Bounds()
	assert.Equal(t, 4, start)
	assert.Equal(t, 6, end)

	assert.Equal(t, []PageInfo{{0, 3}, {1, 3}, {2, 3}}, rec.infos)
}

func TestPagerClampOnShrink(t *testing.T) {
	rec := &pageRecorder{}
	p := NewPager(6, 3, WithPageInfo(rec.record))
	require.True(t, p.GoNext())
	require.Equal(t, PageInfo{Current: 1, Total: 2}, p.Info())

	p.SetColumnsPerPage(2)
	assert.Equal(t, PageInfo{Current: 1, Total: 3}, p.Info())

	require.True(t, p.GoNext())
	p.SetColumnsPerPage(3)
	assert.Equal(t, PageInfo{Current: 1, Total: 2}, p.Info())

	p.SetColumnsPerPage(1)
	for p.GoNext() {
	}
	require.Equal(t, PageInfo{Current: 5, Total: 6}, p.Info())
	p.SetColumnCount(2)
	assert.Equal(t, PageInfo{Current: 1, Total: 2}, p.Info())

	for i := 1; i < len(rec.infos); i++ {
		assert.NotEqual(t, rec.infos[i-1], rec.infos[i], "duplicate notification at %d", i)
	}
}

func TestPagerZeroColumnsReportsSinglePage(t *testing.T) {
	rec := &pageRecorder{}
	p := NewPager(0, 3, WithPageInfo(rec.record))
	assert.Equal(t, []PageInfo{{Current: 0, Total: 1}}, rec.infos)
	assert.False(t, p.GoNext())
	start, end := p.Bounds()
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}

func TestPagerNotificationIsIdempotent(t *testing.T) {
	rec := &pageRecorder{}
	p := NewPager(6, 3, WithPageInfo(rec.record))
	p.SetColumnsPerPage(3)
	p.SetColumnCount(6)
	p.SetColumnsPerPage(3)
	assert.Len(t, rec.infos, 1)
}

func TestPagerRequestPage(t *testing.T) {
	rec := &pageRecorder{}
	p := NewPager(6, 2, WithPageInfo(rec.record))

	assert.True(t, p.RequestPage(2))
	assert.Equal(t, 2, p.Current())

	// Internal navigation away from the requested page.
	require.True(t, p.GoPrev())
	// The host re-sends the stale value it last passed; it must not snap back.
	assert.False(t, p.RequestPage(2))
	assert.Equal(t, 1, p.Current())

	// A new request value is adopted, clamped.
	assert.True(t, p.RequestPage(10))
	assert.Equal(t, 2, p.Current())
	assert.True(t, p.RequestPage(-3))
	assert.Equal(t, 0, p.Current())

	// Echoing the current page back is a no-op.
	assert.False(t, p.RequestPage(0))
	assert.Equal(t, []PageInfo{{0, 3}, {2, 3}, {1, 3}, {2, 3}, {0, 3}}, rec.infos)
}

func TestPagerInvariantUnderRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 99))
	p := NewPager(6, 1)
	for range 2000 {
		switch rng.IntN(5) {
		case 0:
			p.GoNext()
		case 1:
			p.GoPrev()
		case 2:
			p.SetColumnsPerPage(ColumnsFor(rng.IntN(2400), 300))
		case 3:
			p.RequestPage(rng.IntN(12) - 3)
		case 4:
			p.SetColumnCount(rng.IntN(8))
		}
		info := p.Info()
		require.GreaterOrEqual(t, info.Total, 1)
		require.GreaterOrEqual(t, info.Current, 0)
		require.LessOrEqual(t, info.Current, info.Total-1)
		start, end := p.Bounds()
		require.LessOrEqual(t, start, end)
		require.LessOrEqual(t, end-start, p.ColumnsPerPage())
	}
}
