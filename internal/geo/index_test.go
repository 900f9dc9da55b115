package geo

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zulandar/swapyard/internal/models"
)

func ids(ps []*models.Participant) []int {
	out := make([]int, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestQuery_EmptyIndex(t *testing.T) {
	x := NewIndex()
	assert.Empty(t, x.Query(0, 0, 15))
}

func TestQuery_WithinRadius(t *testing.T) {
	x := NewIndex()
	x.AddParticipant(models.NewParticipant(1, "a", 0, 0))
	x.AddParticipant(models.NewParticipant(2, "b", 0, 0.05))
	x.AddParticipant(models.NewParticipant(3, "c", 1, 1))

	assert.Equal(t, []int{1, 2}, ids(x.Query(0, 0, 15)))
	assert.Equal(t, []int{3}, ids(x.Query(1, 1, 15)))
	assert.Equal(t, []int{1, 2, 3}, ids(x.Query(0, 0, 150)))
}

func TestQuery_InvalidatedByAddAndRemove(t *testing.T) {
	x := NewIndex()
	x.AddParticipant(models.NewParticipant(1, "a", 10, 10))
	require.Equal(t, []int{1}, ids(x.Query(10, 10, 5)))

	x.AddParticipant(models.NewParticipant(2, "b", 10.01, 10))
	assert.Equal(t, []int{1, 2}, ids(x.Query(10, 10, 5)))

	assert.True(t, x.RemoveParticipant(1))
	assert.False(t, x.RemoveParticipant(1))
	assert.Equal(t, []int{2}, ids(x.Query(10, 10, 5)))
	assert.Equal(t, 1, x.Len())

	assert.True(t, x.RemoveParticipant(2))
	assert.Empty(t, x.Query(10, 10, 5))
}

func TestDegreeRadius(t *testing.T) {
	assert.InDelta(t, 15/69.0, DegreeRadius(0, 15), 1e-9)

	// At 60 degrees a longitude degree is half as long.
	assert.InDelta(t, 2*15/69.0, DegreeRadius(60, 15), 1e-9)

	// Longitude correction widens the query at high latitude.
	x := NewIndex()
	x.AddParticipant(models.NewParticipant(1, "north", 60, 0.3))
	assert.Equal(t, []int{1}, ids(x.Query(60, 0, 15)))
	x.AddParticipant(models.NewParticipant(2, "equator", 0, 0.3))
	assert.Empty(t, x.Query(0, 0, 15))

	assert.InDelta(t, 15/69.0, DegreeRadius(90, 15), 1e-9)
	assert.False(t, math.IsInf(DegreeRadius(-90, 15), 0))
}

func TestIndex_ConcurrentUse(t *testing.T) {
	x := NewIndex()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			x.AddParticipant(models.NewParticipant(i, "p", 0, float64(i)*0.001))
		}(i)
		go func() {
			defer wg.Done()
			x.Query(0, 0, 15)
		}()
	}
	wg.Wait()
	assert.Len(t, x.Query(0, 0, 15), 20)
}
