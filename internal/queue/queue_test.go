package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type move struct {
	Unit int
	Cost int
}

func TestQueue_New(t *testing.T) {
	q := New[move]()
	require.NotNil(t, q)
	assert.True(t, q.Empty())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_Push(t *testing.T) {
	q := New[move]()
	q.Push(move{Unit: 1}, move{Unit: 2})
	q.Push(move{Unit: 3})
	assert.Equal(t, 3, q.Len())
	assert.False(t, q.Empty())
	assert.Equal(t, []move{{Unit: 1}, {Unit: 2}, {Unit: 3}}, q.Drain(0))
}

func TestQueue_Drain(t *testing.T) {
	q := New[move]()
	for i := 1; i <= 5; i++ {
		q.Push(move{Unit: i})
	}

	batch := q.Drain(2)
	assert.Equal(t, []move{{Unit: 1}, {Unit: 2}}, batch)
	assert.Equal(t, 3, q.Len())

	rest := q.Drain(0)
	assert.Len(t, rest, 3)
	assert.True(t, q.Empty())

	assert.Empty(t, q.Drain(10))
}

func TestQueue_DrainedSliceIsIndependent(t *testing.T) {
	q := New[move]()
	q.Push(move{Unit: 1}, move{Unit: 2})
	batch := q.Drain(1)
	q.Push(move{Unit: 9})
	batch[0].Cost = 42

	assert.Equal(t, []move{{Unit: 2}, {Unit: 9}}, q.Drain(0))
}

func TestQueue_RequeueGoesFirst(t *testing.T) {
	q := New[move]()
	q.Push(move{Unit: 1}, move{Unit: 2}, move{Unit: 3})
	failed := q.Drain(2)
	q.Push(move{Unit: 4})

	q.Requeue(failed...)
	q.Requeue()

	all := q.Drain(0)
	units := make([]int, len(all))
	for i, m := range all {
		units[i] = m.Unit
	}
	assert.Equal(t, []int{1, 2, 3, 4}, units)
}

func TestQueue_ConcurrentPush(t *testing.T) {
	q := New[move]()
	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Push(move{Unit: g*100 + i})
			}
		}(g)
	}
	wg.Wait()
	assert.Equal(t, 1000, q.Len())
	assert.Len(t, q.Drain(0), 1000)
}
