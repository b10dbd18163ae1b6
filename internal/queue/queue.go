// Package queue holds the attempt work queue consumed by orchestrator workers.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/priceduck/pricewatch/internal/models"
)

// Task is one scheduled scrape attempt: a product, an optional region, and
// the URL the attempt should open.
type Task struct {
	ID         string
	Product    models.ProductSpec
	RegionCode string
	URL        string
	CreatedAt  time.Time
}

// Queue hands tasks to workers in the order they were pushed.
type Queue interface {
	Push(task Task)
	Pop(ctx context.Context) (Task, bool)
	Size() int
	Close()
}

// InMemoryQueue is a FIFO channel-backed queue. Close drains nothing; workers
// see the channel close once the remaining tasks are consumed.
type InMemoryQueue struct {
	tasks chan Task
	once  sync.Once
}

func NewInMemoryQueue(capacity int) *InMemoryQueue {
	if capacity <= 0 {
		capacity = 256
	}
	return &InMemoryQueue{
		tasks: make(chan Task, capacity),
	}
}

func (q *InMemoryQueue) Push(task Task) {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	q.tasks <- task
}

// Pop blocks until a task is available, the queue is closed and drained, or
// the context is done. The bool reports whether a task was returned.
func (q *InMemoryQueue) Pop(ctx context.Context) (Task, bool) {
	select {
	case task, ok := <-q.tasks:
		return task, ok
	case <-ctx.Done():
		return Task{}, false
	}
}

func (q *InMemoryQueue) Size() int {
	return len(q.tasks)
}

// Close signals that no further tasks will be pushed.
func (q *InMemoryQueue) Close() {
	q.once.Do(func() {
		close(q.tasks)
	})
}
