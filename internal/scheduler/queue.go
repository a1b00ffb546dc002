package scheduler

import "sync"

// taskQueue is a thread-safe FIFO of tasks shared by all workers.
//
// The signal channel has a buffer of one so enqueues coalesce; a worker
// that finds the queue empty waits on it before looking again.
type taskQueue struct {
	mu     sync.Mutex
	tasks  []*task
	signal chan struct{}
}

func newTaskQueue(n int) *taskQueue {
	return &taskQueue{
		tasks:  make([]*task, 0, n),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds t to the back of the queue.
func (q *taskQueue) Enqueue(t *task) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.tasks = append(q.tasks, t)
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// TryDequeue removes the front task. It returns false on an empty queue.
func (q *taskQueue) TryDequeue() (*task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return nil, false
	}
	t := q.tasks[0]
	// Release the slot so the backing array does not pin finished tasks.
	q.tasks[0] = nil
	if len(q.tasks) == 1 {
		q.tasks = q.tasks[:0]
	} else {
		q.tasks = q.tasks[1:]
	}
	return t, true
}

// Wait signals that tasks may be available.
func (q *taskQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued tasks.
func (q *taskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
