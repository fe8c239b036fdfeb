package scylla

import (
	"context"

	"github.com/biilabs/tangle-index/internal/ledger"
	"github.com/biilabs/tangle-index/internal/storeerr"
)

const (
	insertBundleTemplate = "insert_bundle"
	insertBundleCQL      = `INSERT INTO bundleTable (bundle, address, hash, message, value, timestamp, trunk, branch) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	insertEdgeTemplate = "insert_edge"
	insertEdgeCQL       = `INSERT INTO edgeTable (edge, bundle, address, hash) VALUES (?, ?, ?, ?)`
)

// InsertBundle inserts each record into bundleTable, one execute per
// record (no batching; spec.md §4.4). On the first per-row failure the
// operation aborts immediately; prior successful inserts are not rolled
// back. Inserts are idempotent given an identical (bundle, address, hash),
// so callers may safely retry with the same records.
func (s *Session) InsertBundle(ctx context.Context, records []*ledger.Record) error {
	if records == nil {
		return storeerr.NewNullArgument("records")
	}
	for _, r := range records {
		if r == nil {
			return storeerr.NewNullArgument("record")
		}
		err := s.bindAndExecute(ctx, insertBundleTemplate, insertBundleCQL,
			r.Bundle(), r.Address(), r.TransactionHash(), r.Message(),
			r.Value(), r.Timestamp(), r.Trunk(), r.Branch(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// InsertEdges fans each record out to three edge-table rows, with edge set
// to the record's address, trunk, and branch in turn (spec.md §3,
// invariant I1). Aborts on the first failed row, in the same order the
// rows are listed here, so a caller inspecting "how far did this get"
// after a QueryFail can reason about which edges are missing.
func (s *Session) InsertEdges(ctx context.Context, records []*ledger.Record) error {
	if records == nil {
		return storeerr.NewNullArgument("records")
	}
	for _, r := range records {
		if r == nil {
			return storeerr.NewNullArgument("record")
		}
		edges := [][]byte{r.Address(), r.Trunk(), r.Branch()}
		for _, edge := range edges {
			err := s.bindAndExecute(ctx, insertEdgeTemplate, insertEdgeCQL,
				edge, r.Bundle(), r.Address(), r.TransactionHash(),
			)
			if err != nil {
				return err
			}
		}
		s.metrics.edgeFanout.Add(ctx, int64(len(edges)))
	}
	return nil
}
