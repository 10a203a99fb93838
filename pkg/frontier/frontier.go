// Package frontier provides a keyed min-priority queue with decrease-key and
// increase-key support.
//
// =============================================================================
// Keyed Binary Heap
// =============================================================================
//
// Every pending key lives in exactly one heap slot; an auxiliary index maps the
// key to that slot so Priority and Update run without scanning.
//
// Time Complexity:
//   - Push, Pop, Update: O(log n)
//   - Priority, Contains, Len: O(1)
//
// Ordering among entries of equal priority is whatever the supplied less
// function yields; callers needing a stable tie-break encode it in less or
// apply it before calling Update.
// =============================================================================
package frontier

import (
	"container/heap"
	"fmt"
)

// item is a single heap slot.
type item[K comparable, P any] struct {
	key      K
	priority P
	index    int // Index in the heap for updates
}

// queue implements heap.Interface over items.
type queue[K comparable, P any] struct {
	items []*item[K, P]
	less  func(a, b P) bool
}

func (q *queue[K, P]) Len() int { return len(q.items) }

func (q *queue[K, P]) Less(i, j int) bool {
	return q.less(q.items[i].priority, q.items[j].priority)
}

func (q *queue[K, P]) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *queue[K, P]) Push(x any) {
	it := x.(*item[K, P])
	it.index = len(q.items)
	q.items = append(q.items, it)
}

func (q *queue[K, P]) Pop() any {
	old := q.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil // Avoid memory leak
	it.index = -1
	q.items = old[:n-1]
	return it
}

// Frontier is a min-priority queue keyed by K. A key is pending at most once.
// It is not safe for concurrent use.
type Frontier[K comparable, P any] struct {
	q     queue[K, P]
	index map[K]*item[K, P]
}

// New creates an empty frontier ordered by less. capacity is a hint for the
// expected number of simultaneously pending keys.
func New[K comparable, P any](less func(a, b P) bool, capacity int) *Frontier[K, P] {
	if capacity < 0 {
		capacity = 0
	}
	return &Frontier[K, P]{
		q: queue[K, P]{
			items: make([]*item[K, P], 0, capacity),
			less:  less,
		},
		index: make(map[K]*item[K, P], capacity),
	}
}

// Push inserts key with the given priority.
// Pushing a key that is already pending panics.
func (f *Frontier[K, P]) Push(key K, priority P) {
	if _, ok := f.index[key]; ok {
		panic(fmt.Sprintf("frontier: key %v is already pending", key))
	}
	it := &item[K, P]{key: key, priority: priority}
	heap.Push(&f.q, it)
	f.index[key] = it
}

// Pop removes and returns the entry with the minimum priority.
// ok is false when the frontier is empty.
func (f *Frontier[K, P]) Pop() (key K, priority P, ok bool) {
	if f.q.Len() == 0 {
		return key, priority, false
	}
	it := heap.Pop(&f.q).(*item[K, P])
	delete(f.index, it.key)
	return it.key, it.priority, true
}

// Peek returns the minimum entry without removing it.
func (f *Frontier[K, P]) Peek() (key K, priority P, ok bool) {
	if f.q.Len() == 0 {
		return key, priority, false
	}
	it := f.q.items[0]
	return it.key, it.priority, true
}

// Priority returns the current priority of a pending key.
func (f *Frontier[K, P]) Priority(key K) (P, bool) {
	it, ok := f.index[key]
	if !ok {
		var zero P
		return zero, false
	}
	return it.priority, true
}

// Update changes the priority of a pending key, moving it up or down the heap.
// It returns false if the key is not pending.
func (f *Frontier[K, P]) Update(key K, priority P) bool {
	it, ok := f.index[key]
	if !ok {
		return false
	}
	it.priority = priority
	heap.Fix(&f.q, it.index)
	return true
}

// Contains reports whether key is pending.
func (f *Frontier[K, P]) Contains(key K) bool {
	_, ok := f.index[key]
	return ok
}

// Len returns the number of pending keys.
func (f *Frontier[K, P]) Len() int {
	return f.q.Len()
}

// Reset drops every pending entry and keeps the allocated capacity.
func (f *Frontier[K, P]) Reset() {
	for i := range f.q.items {
		f.q.items[i] = nil
	}
	f.q.items = f.q.items[:0]
	clear(f.index)
}
