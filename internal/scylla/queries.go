package scylla

import (
	"context"

	"github.com/gocql/gocql"

	"github.com/biilabs/tangle-index/internal/ledger"
	"github.com/biilabs/tangle-index/internal/storeerr"
)

// selectMethod distinguishes the two canonical bundleTable selects from
// spec.md §4.5 (S1, S2), matching the original C driver's select_method_t.
type selectMethod int

const (
	withBundle selectMethod = iota
	withBundleAndAddress
)

const (
	s1Template = "select_with_bundle"
	s1CQL      = `SELECT bundle, address, hash, message, value, timestamp, trunk, branch FROM bundleTable WHERE bundle = ?`

	s2Template = "select_with_bundle_and_address"
	s2CQL      = `SELECT bundle, address, hash, message, value, timestamp, trunk, branch FROM bundleTable WHERE bundle = ? AND address = ?`

	s3Template = "select_edge"
	s3CQL      = `SELECT edge, bundle, address, hash FROM edgeTable WHERE edge = ?`
)

// Column identifies which column of an edgeTable row get_column_from_edge
// should project (spec.md §4.5, "Column projection via S3").
type Column string

const (
	ColumnBundle Column = "bundle"
	ColumnHash   Column = "hash"
)

// selectBundleIter issues S1 or S2 and returns the row iterator. The
// caller owns the iterator and must Close it on every exit path.
func (s *Session) selectBundleIter(ctx context.Context, method selectMethod, bundle, address ledger.Hash) *gocql.Iter {
	switch method {
	case withBundleAndAddress:
		return s.bindAndQuery(ctx, s2Template, s2CQL, bundle[:], address[:])
	default:
		return s.bindAndQuery(ctx, s1Template, s1CQL, bundle[:])
	}
}

// scanBundleRow reads one bundleTable row into a fresh *ledger.Record.
func scanBundleRow(iter *gocql.Iter) (*ledger.Record, error) {
	var bundle, address, hash, message, trunk, branch []byte
	var value, timestamp int64
	if !iter.Scan(&bundle, &address, &hash, &message, &value, &timestamp, &trunk, &branch) {
		return nil, nil
	}
	r := ledger.New()
	if err := r.SetBundle(bundle); err != nil {
		return nil, err
	}
	if err := r.SetAddress(address); err != nil {
		return nil, err
	}
	if err := r.SetTransactionHash(hash); err != nil {
		return nil, err
	}
	if err := r.SetMessage(message); err != nil {
		return nil, err
	}
	if err := r.SetValue(value); err != nil {
		return nil, err
	}
	if err := r.SetTimestamp(timestamp); err != nil {
		return nil, err
	}
	if err := r.SetTrunk(trunk); err != nil {
		return nil, err
	}
	if err := r.SetBranch(branch); err != nil {
		return nil, err
	}
	return r, nil
}

// SelectByBundle runs S1 and materializes every matching row as a
// *ledger.Record. It walks the result iterator once, appending to a
// growable slice, rather than counting rows in a first pass and
// allocating exact space in a second: spec.md §9 flags the original's
// two-pass approach as relying on an iterator being restartable, which
// the driver does not guarantee, and recommends single-pass accumulation.
// Diagnostic/testing use only, per spec.md §4.5 — GetTransactions never
// calls this.
func (s *Session) SelectByBundle(ctx context.Context, bundle ledger.Hash) ([]*ledger.Record, error) {
	return s.selectAndAssemble(ctx, withBundle, bundle, ledger.Hash{})
}

// SelectByBundleAndAddress runs S2 and materializes matching rows the same
// way SelectByBundle does.
func (s *Session) SelectByBundleAndAddress(ctx context.Context, bundle, address ledger.Hash) ([]*ledger.Record, error) {
	return s.selectAndAssemble(ctx, withBundleAndAddress, bundle, address)
}

func (s *Session) selectAndAssemble(ctx context.Context, method selectMethod, bundle, address ledger.Hash) ([]*ledger.Record, error) {
	iter := s.selectBundleIter(ctx, method, bundle, address)
	var out []*ledger.Record
	for {
		r, err := scanBundleRow(iter)
		if err != nil {
			_ = iter.Close()
			return nil, err
		}
		if r == nil {
			break
		}
		out = append(out, r)
	}
	if err := iter.Close(); err != nil {
		if method == withBundleAndAddress {
			return nil, storeerr.NewQueryFail(s2CQL, err)
		}
		return nil, storeerr.NewQueryFail(s1CQL, err)
	}
	return out, nil
}

// getHashColumnFromBundleTable issues S1 or S2 and pushes the hash column
// of every returned row onto out, streaming row-by-row rather than
// buffering the full result (spec.md §4.5, "Memory discipline").
func (s *Session) getHashColumnFromBundleTable(ctx context.Context, method selectMethod, bundle, address ledger.Hash, out *HashQueue) error {
	iter := s.selectBundleIter(ctx, method, bundle, address)
	var bundleCol, addressCol, hashCol, message, trunk, branch []byte
	var value, timestamp int64
	for iter.Scan(&bundleCol, &addressCol, &hashCol, &message, &value, &timestamp, &trunk, &branch) {
		var h ledger.Hash
		if len(hashCol) != ledger.HashLen {
			_ = iter.Close()
			return storeerr.NewInvalidInput("hash column width", ledger.HashLen, len(hashCol))
		}
		copy(h[:], hashCol)
		out.Push(h)
	}
	if err := iter.Close(); err != nil {
		if method == withBundleAndAddress {
			return storeerr.NewQueryFail(s2CQL, err)
		}
		return storeerr.NewQueryFail(s1CQL, err)
	}
	return nil
}

// GetColumnFromEdge issues S3 with edge = edge and pushes the requested
// column of every returned row onto out (spec.md §4.5, §6:
// get_column_from_edge). column must be ColumnBundle or ColumnHash.
func (s *Session) GetColumnFromEdge(ctx context.Context, out *HashQueue, edge ledger.Hash, column Column) error {
	if out == nil {
		return storeerr.NewNullArgument("out")
	}
	iter := s.bindAndQuery(ctx, s3Template, s3CQL, edge[:])
	var edgeCol, bundleCol, addressCol, hashCol []byte
	for iter.Scan(&edgeCol, &bundleCol, &addressCol, &hashCol) {
		var picked []byte
		switch column {
		case ColumnBundle:
			picked = bundleCol
		case ColumnHash:
			picked = hashCol
		default:
			_ = iter.Close()
			return storeerr.NewInvalidInput("column", 0, 0)
		}
		if len(picked) != ledger.HashLen {
			_ = iter.Close()
			return storeerr.NewInvalidInput("edge column width", ledger.HashLen, len(picked))
		}
		var h ledger.Hash
		copy(h[:], picked)
		out.Push(h)
	}
	if err := iter.Close(); err != nil {
		return storeerr.NewQueryFail(s3CQL, err)
	}
	return nil
}

// getBundlesForEdge is GetColumnFromEdge specialized to collect the
// distinct bundle hashes referencing edge, used internally by
// GetTransactions' address traversal step (spec.md §4.5, step 2a).
func (s *Session) getBundlesForEdge(ctx context.Context, edge ledger.Hash) ([]ledger.Hash, error) {
	q := NewHashQueue()
	if err := s.GetColumnFromEdge(ctx, q, edge, ColumnBundle); err != nil {
		return nil, err
	}
	return q.Dedup(), nil
}
