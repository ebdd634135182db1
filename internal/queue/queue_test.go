package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Tick int
	ID   string
}

func ticks(q *Queue[row]) []int {
	var out []int
	for _, r := range q.Drain() {
		out = append(out, r.Tick)
	}
	return out
}

func TestNew_Empty(t *testing.T) {
	q := New[row]()
	require.NotNil(t, q)
	assert.True(t, q.Empty())
	assert.Equal(t, 0, q.Len())
	assert.Empty(t, q.Drain())
}

func TestPush_KeepsOrder(t *testing.T) {
	q := New[row]()
	q.Push(row{Tick: 1})
	q.Push(row{Tick: 2}, row{Tick: 3})

	assert.Equal(t, 3, q.Len())
	assert.False(t, q.Empty())
	assert.Equal(t, []int{1, 2, 3}, ticks(q))
	assert.True(t, q.Empty())
}

func TestDrain_LeavesQueueUsable(t *testing.T) {
	q := New[row]()
	q.Push(row{Tick: 1}, row{Tick: 2})
	first := q.Drain()

	q.Push(row{Tick: 3})
	assert.Equal(t, []row{{Tick: 1}, {Tick: 2}}, first, "drained batch is not aliased by later pushes")
	assert.Equal(t, []int{3}, ticks(q))
}

func TestRequeue_GoesAheadOfNewerRows(t *testing.T) {
	q := New[row]()
	q.Push(row{Tick: 1}, row{Tick: 2})
	failed := q.Drain()

	q.Push(row{Tick: 3})
	q.Requeue(failed)

	assert.Equal(t, []int{1, 2, 3}, ticks(q))
}

func TestRequeue_Empty(t *testing.T) {
	q := New[row]()
	q.Push(row{Tick: 7})
	q.Requeue(nil)
	assert.Equal(t, []int{7}, ticks(q))
}

func TestConcurrentPushAndDrain(t *testing.T) {
	q := New[row]()
	const writers, perWriter = 8, 250

	var wg sync.WaitGroup
	var mu sync.Mutex
	var drained int
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				q.Push(row{Tick: i, ID: string(rune('a' + w))})
				if i%50 == 0 {
					n := len(q.Drain())
					mu.Lock()
					drained += n
					mu.Unlock()
				}
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, writers*perWriter, drained+q.Len())
}
