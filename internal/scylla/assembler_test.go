package scylla

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biilabs/tangle-index/internal/ledger"
)

func hashOf(b byte) ledger.Hash {
	var h ledger.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func TestHashQueue_PreservesInsertionOrderAndDuplicates(t *testing.T) {
	q := NewHashQueue()
	h1, h2 := hashOf(1), hashOf(2)
	q.Push(h1)
	q.Push(h2)
	q.Push(h1)

	assert.Equal(t, []ledger.Hash{h1, h2, h1}, q.Items())
	assert.Equal(t, 3, q.Len())
}

func TestHashQueue_Dedup(t *testing.T) {
	q := NewHashQueue()
	h1, h2 := hashOf(1), hashOf(2)
	q.Push(h1)
	q.Push(h2)
	q.Push(h1)

	assert.Equal(t, []ledger.Hash{h1, h2}, q.Dedup())
}

func TestHashQueue_ItemsReturnsCopy(t *testing.T) {
	q := NewHashQueue()
	q.Push(hashOf(1))

	items := q.Items()
	items[0] = hashOf(9)

	assert.Equal(t, hashOf(1), q.Items()[0])
}
