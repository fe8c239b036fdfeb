package scylla

import (
	"context"

	"github.com/biilabs/tangle-index/internal/ledger"
	"github.com/biilabs/tangle-index/internal/storeerr"
)

// GetTransactions answers a combined-predicate lookup by bundle, address,
// and approvee hash, pushing every matching transaction hash onto out in
// insertion order (spec.md §4.5). The result is a union across the three
// predicate groups: duplicates across groups are possible and are left for
// the caller to remove (HashQueue.Dedup), matching spec.md §9's explicit
// note that deduplication here is not the planner's job.
//
// The three steps run strictly in order and each predicate within a step
// runs sequentially, so the insertion order callers observe is
// deterministic given deterministic inputs — intentionally not
// parallelized, since spec.md §4.5 documents the queue as order-preserving
// and concurrent pushes from multiple predicates would make that order
// depend on scheduling (see DESIGN.md).
func (s *Session) GetTransactions(ctx context.Context, out *HashQueue, bundles, addresses, approves []ledger.Hash) error {
	if out == nil {
		return storeerr.NewNullArgument("out")
	}

	// Step 1: every transaction in each named bundle.
	for _, b := range bundles {
		if err := s.getHashColumnFromBundleTable(ctx, withBundle, b, ledger.Hash{}, out); err != nil {
			return err
		}
	}

	// Step 2: every transaction whose address matches, found by first
	// resolving which bundles mention the address via the edge table
	// (2a), then re-querying bundleTable with both keys bound (2b) —
	// the edge table alone doesn't carry every column bundleTable does.
	for _, a := range addresses {
		bundleHashes, err := s.getBundlesForEdge(ctx, a)
		if err != nil {
			return err
		}
		for _, b := range bundleHashes {
			if err := s.getHashColumnFromBundleTable(ctx, withBundleAndAddress, b, a, out); err != nil {
				return err
			}
		}
	}

	// Step 3: every transaction that approves (has trunk or branch
	// equal to) one of the given hashes, read directly off the edge
	// table's reverse index.
	for _, p := range approves {
		if err := s.GetColumnFromEdge(ctx, out, p, ColumnHash); err != nil {
			return err
		}
	}

	return nil
}
