// Package scheduler provides the deferred-work queue that stands in for a
// microtask queue. Work scheduled during a change-detection pass runs when the
// host drains the queue, in FIFO order, before the next pass starts.
package scheduler

import "sync"

// Scheduler accepts deferred tasks.
type Scheduler interface {
	Schedule(task func())
}

// Queue is a FIFO task queue. Schedule may be called from any goroutine;
// Drain must be called from the goroutine that owns the bound controls.
type Queue struct {
	mu    sync.Mutex
	tasks []func()
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Schedule appends task. Nil tasks are ignored. There is no cancellation: a
// scheduled task always runs.
func (q *Queue) Schedule(task func()) {
	if q == nil || task == nil {
		return
	}
	q.mu.Lock()
	q.tasks = append(q.tasks, task)
	q.mu.Unlock()
}

// Len reports the number of queued tasks.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Drain runs queued tasks until the queue is empty, including tasks that are
// scheduled by the tasks themselves, and returns how many ran.
func (q *Queue) Drain() int {
	if q == nil {
		return 0
	}
	ran := 0
	for {
		task, ok := q.pop()
		if !ok {
			return ran
		}
		task()
		ran++
	}
}

func (q *Queue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil, false
	}
	task := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return task, true
}
