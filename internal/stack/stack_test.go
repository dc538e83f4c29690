package stack

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushPopLIFO(t *testing.T) {
	s := New(1)
	s.Push("a", 0)
	s.Push("b", 1)

	item, ok := s.PopWait()
	require.True(t, ok)
	assert.Equal(t, "b", item.Path)
	assert.Equal(t, uint16(1), item.Depth)

	item, ok = s.PopWait()
	require.True(t, ok)
	assert.Equal(t, "a", item.Path)
}

func TestSizeTracksPushPop(t *testing.T) {
	s := New(1)
	assert.Equal(t, int64(0), s.Size())
	s.Push("a", 0)
	assert.Equal(t, int64(1), s.Size())
	_, ok := s.PopWait()
	require.True(t, ok)
	assert.Equal(t, int64(0), s.Size())
}

func TestQuiescenceOnEmptyTree(t *testing.T) {
	const workers = 4
	s := New(workers)

	var wg sync.WaitGroup
	done := make([]bool, workers)
	for i := range workers {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, ok := s.PopWait()
			done[idx] = !ok
		}(i)
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not reach quiescence in time")
	}

	for i, d := range done {
		assert.Truef(t, d, "worker %d did not observe quiescence", i)
	}
}

func TestPushWakesWaiterBeforeQuiescence(t *testing.T) {
	const workers = 2
	s := New(workers)

	results := make(chan bool, workers)
	var wg sync.WaitGroup
	// Only one of the two workers waits, so quiescence cannot be reached and
	// the push must be handed to the waiting worker.
	for range workers - 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := s.PopWait()
			results <- ok
		}()
	}

	time.Sleep(50 * time.Millisecond)
	s.Push("only", 0)

	wg.Wait()
	close(results)

	var gotItem, gotQuiescence int
	for ok := range results {
		if ok {
			gotItem++
		} else {
			gotQuiescence++
		}
	}
	assert.Equal(t, 1, gotItem)
	assert.Equal(t, 0, gotQuiescence)
}
