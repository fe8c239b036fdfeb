package scylla

import (
	"sync"

	"github.com/biilabs/tangle-index/internal/ledger"
)

// HashQueue is the result assembler from spec.md §4.6: a caller-owned,
// insertion-ordered sequence of transaction hashes. Duplicates are
// possible when the same hash satisfies more than one predicate group in
// GetTransactions; deduplication is the caller's responsibility (spec.md
// §4.5, §9) unless Dedup is called explicitly.
//
// It mirrors the original C implementation's hash243_queue_t: a queue the
// write/query paths push onto and the caller drains once, rather than a
// channel, since every push here happens on the same goroutine that issued
// the query (traversal is intentionally sequential; see DESIGN.md).
type HashQueue struct {
	mu    sync.Mutex
	items []ledger.Hash
}

// NewHashQueue returns an empty queue.
func NewHashQueue() *HashQueue {
	return &HashQueue{}
}

// Push appends h to the tail of the queue.
func (q *HashQueue) Push(h ledger.Hash) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, h)
}

// Len reports the number of hashes currently queued.
func (q *HashQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Items returns the queue's contents in insertion order. The returned
// slice is a copy; mutating it does not affect the queue.
func (q *HashQueue) Items() []ledger.Hash {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]ledger.Hash, len(q.items))
	copy(out, q.items)
	return out
}

// Dedup returns the queue's contents with duplicates removed, preserving
// the first occurrence's position. Spec.md leaves deduplication to the
// caller; this is the opt-in helper for callers that want set semantics.
func (q *HashQueue) Dedup() []ledger.Hash {
	q.mu.Lock()
	defer q.mu.Unlock()
	seen := make(map[ledger.Hash]struct{}, len(q.items))
	out := make([]ledger.Hash, 0, len(q.items))
	for _, h := range q.items {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
