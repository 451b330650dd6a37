package client

import (
	"sync"

	"github.com/gammazero/deque"
)

// taskQueue is an unbounded FIFO queue feeding the session's task loop.
type taskQueue struct {
	mu sync.Mutex // protects dq
	dq deque.Deque[func()]

	// wake has capacity 1 so pushes never block; the task
	// loop drains the whole queue per wake-up.
	wake chan struct{}
}

func newTaskQueue() *taskQueue {
	return &taskQueue{wake: make(chan struct{}, 1)}
}

func (q *taskQueue) push(task func()) {
	q.mu.Lock()
	q.dq.PushBack(task)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *taskQueue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.dq.Len() == 0 {
		return nil, false
	}
	return q.dq.PopFront(), true
}

func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dq.Len()
}
