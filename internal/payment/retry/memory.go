// Package retry stores declined payments until they are due and re-runs them.
package retry

import (
	"context"
	"slices"
	"sync"
	"time"

	"municipal/internal/payment/models"
)

// MemoryQueue keeps directives ordered by NotBefore in process memory.
type MemoryQueue struct {
	mu    sync.Mutex
	items []models.RetryDirective
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Schedule(ctx context.Context, d models.RetryDirective) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	i, _ := slices.BinarySearchFunc(q.items, d.NotBefore, func(item models.RetryDirective, t time.Time) int {
		if item.NotBefore.After(t) {
			return 1
		}
		return -1
	})
	q.items = slices.Insert(q.items, i, d)
	return nil
}

func (q *MemoryQueue) Due(ctx context.Context, now time.Time, limit int) ([]models.RetryDirective, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for n < len(q.items) && n < limit && !q.items[n].NotBefore.After(now) {
		n++
	}
	due := slices.Clone(q.items[:n])
	q.items = slices.Delete(q.items, 0, n)
	return due, nil
}

// Len reports how many directives are waiting.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
