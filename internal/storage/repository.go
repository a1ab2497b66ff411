// Package storage provides the generic in-memory repository backing every
// module's development store.
//
// Entities are held by id and handed out as clones, so callers can never
// mutate stored state except through Save, Insert or Execute. Mutations on the
// same id are serialised; different ids proceed independently.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"municipal/pkg/platform/sentinel"
	txcontext "municipal/pkg/platform/tx"
)

// DefaultOpTimeout bounds Execute when the caller's context has no deadline.
const DefaultOpTimeout = 5 * time.Second

// InMemory is an id-indexed repository with optional unique secondary indexes.
type InMemory[K ~int64, T any] struct {
	mu      sync.RWMutex
	items   map[K]*T
	indexes map[string]*uniqueIndex[K, T]
	locks   *keyedLocks[K]
	seq     atomic.Int64

	idOf    func(*T) K
	clone   func(*T) *T
	timeout time.Duration
}

type uniqueIndex[K comparable, T any] struct {
	keyOf  func(*T) string
	values map[string]K
}

// Option configures an InMemory repository.
type Option[K ~int64, T any] func(*InMemory[K, T])

// WithUniqueIndex adds a unique secondary index. Empty keys are not indexed.
func WithUniqueIndex[K ~int64, T any](name string, keyOf func(*T) string) Option[K, T] {
	return func(r *InMemory[K, T]) {
		r.indexes[name] = &uniqueIndex[K, T]{keyOf: keyOf, values: make(map[string]K)}
	}
}

// WithOpTimeout overrides DefaultOpTimeout.
func WithOpTimeout[K ~int64, T any](d time.Duration) Option[K, T] {
	return func(r *InMemory[K, T]) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// New builds a repository. idOf extracts the entity id; clone must return a
// deep copy (slices and pointers included).
func New[K ~int64, T any](idOf func(*T) K, clone func(*T) *T, opts ...Option[K, T]) *InMemory[K, T] {
	r := &InMemory[K, T]{
		items:   make(map[K]*T),
		indexes: make(map[string]*uniqueIndex[K, T]),
		locks:   newKeyedLocks[K](),
		idOf:    idOf,
		clone:   clone,
		timeout: DefaultOpTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NextID returns the next id in a strictly increasing sequence starting at 1.
func (r *InMemory[K, T]) NextID(_ context.Context) (K, error) {
	return K(r.seq.Add(1)), nil
}

// Get returns a copy of the entity stored under id.
func (r *InMemory[K, T]) Get(_ context.Context, id K) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("get %d: %w", int64(id), sentinel.ErrNotFound)
	}
	return r.clone(item), nil
}

// FindBy looks an entity up through a unique index.
func (r *InMemory[K, T]) FindBy(_ context.Context, index, key string) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.indexes[index]
	if !ok {
		return nil, fmt.Errorf("unknown index %q", index)
	}
	id, ok := idx.values[key]
	if !ok {
		return nil, fmt.Errorf("find by %s: %w", index, sentinel.ErrNotFound)
	}
	return r.clone(r.items[id]), nil
}

// Query returns copies of every entity matching pred, ordered by id.
func (r *InMemory[K, T]) Query(_ context.Context, pred func(*T) bool) ([]*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*T, 0)
	for _, item := range r.items {
		if pred == nil || pred(item) {
			out = append(out, r.clone(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.idOf(out[i]) < r.idOf(out[j]) })
	return out, nil
}

// Insert stores a new entity. It fails with ErrConflict when the id or any
// unique index key is already taken.
func (r *InMemory[K, T]) Insert(_ context.Context, entity *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.idOf(entity)
	if _, exists := r.items[id]; exists {
		return fmt.Errorf("insert %d: %w", int64(id), sentinel.ErrConflict)
	}
	if err := r.checkIndexesLocked(id, entity); err != nil {
		return err
	}
	r.putLocked(id, entity)
	r.bumpSeq(id)
	return nil
}

// Save upserts the entity under its id lock.
func (r *InMemory[K, T]) Save(ctx context.Context, entity *T) error {
	id := r.idOf(entity)
	release, err := r.locks.Acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkIndexesLocked(id, entity); err != nil {
		return err
	}
	r.putLocked(id, entity)
	r.bumpSeq(id)
	return nil
}

// Execute runs fn against a working copy of the entity while holding the id
// lock. The copy replaces the stored entity only when fn returns nil and ctx
// is still live, or when fn called txcontext.MarkIrreversible; otherwise
// nothing fn did is observable. The committed entity is returned.
func (r *InMemory[K, T]) Execute(ctx context.Context, id K, fn func(ctx context.Context, entity *T) error) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	release, err := r.locks.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, irreversible := txcontext.WithCommitGuard(ctx)
	working, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(ctx, working); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil && !irreversible() {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkIndexesLocked(id, working); err != nil {
		return nil, err
	}
	r.putLocked(id, working)
	return r.clone(working), nil
}

// Len reports the number of stored entities.
func (r *InMemory[K, T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *InMemory[K, T]) checkIndexesLocked(id K, entity *T) error {
	for name, idx := range r.indexes {
		key := idx.keyOf(entity)
		if key == "" {
			continue
		}
		if owner, taken := idx.values[key]; taken && owner != id {
			return fmt.Errorf("%s %q: %w", name, key, sentinel.ErrConflict)
		}
	}
	return nil
}

func (r *InMemory[K, T]) putLocked(id K, entity *T) {
	if prev, ok := r.items[id]; ok {
		for _, idx := range r.indexes {
			if key := idx.keyOf(prev); key != "" {
				delete(idx.values, key)
			}
		}
	}
	stored := r.clone(entity)
	r.items[id] = stored
	for _, idx := range r.indexes {
		if key := idx.keyOf(stored); key != "" {
			idx.values[key] = id
		}
	}
}

// bumpSeq keeps NextID ahead of ids assigned outside the sequence (seed data).
func (r *InMemory[K, T]) bumpSeq(id K) {
	for {
		cur := r.seq.Load()
		if int64(id) <= cur || r.seq.CompareAndSwap(cur, int64(id)) {
			return
		}
	}
}
