// Package stack implements the shared work queue that coordinates parafind's
// traversal workers: a LIFO stack of pending directories with a
// quiescence-based termination protocol.
package stack

import (
	"sync"
	"sync/atomic"
)

// Item is a unit of pending work: a directory to scan at a given depth
// relative to its scan-path root.
type Item struct {
	Path  string
	Depth uint16
}

// Stack is a LIFO work queue shared by every traversal worker. Push never
// blocks or fails. PopWait blocks until either an item is available or every
// worker is simultaneously waiting with the stack empty, at which point it
// reports quiescence to all of them.
type Stack struct {
	numWorkers uint32

	mu         sync.Mutex
	cond       *sync.Cond
	items      []Item
	numWaiters uint32

	size atomic.Int64
}

// New creates a Stack for the given number of workers. numWorkers must equal
// the number of goroutines that will call PopWait, since quiescence detection
// counts simultaneous waiters against it.
func New(numWorkers int) *Stack {
	s := &Stack{numWorkers: uint32(numWorkers)} //nolint:gosec // numWorkers is validated >= 1 by config
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Push adds a directory to the top of the stack and wakes one waiting
// worker, if any.
func (s *Stack) Push(path string, depth uint16) {
	s.mu.Lock()
	s.items = append(s.items, Item{Path: path, Depth: depth})
	s.size.Add(1)
	s.mu.Unlock()
	s.cond.Signal()
}

// PopWait blocks until an item is available and returns it with ok == true,
// or until quiescence is reached (every worker is blocked here with an empty
// stack) and returns ok == false. Once any caller observes quiescence, every
// other waiting and future caller observes it too: numWaiters is never
// decremented on the terminal path.
func (s *Stack) PopWait() (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.numWaiters++
	for len(s.items) == 0 {
		if s.numWaiters == s.numWorkers {
			// Quiescence: every worker is here with nothing left to do.
			// numWaiters is deliberately never decremented on this path so
			// every other waiter woken by this broadcast observes the same
			// terminal condition and also returns false.
			s.cond.Broadcast()
			return Item{}, false
		}
		s.cond.Wait()
	}

	s.numWaiters--
	last := len(s.items) - 1
	item := s.items[last]
	s.items = s.items[:last]
	s.size.Add(-1)
	return item, true
}

// Size returns a lock-free, approximate snapshot of the number of queued
// items. Used only as a heuristic for the breadth/depth switch.
func (s *Stack) Size() int64 {
	return s.size.Load()
}
