//go:build integration

// Integration suite exercising the full stack (spec.md §8) against a real
// Cassandra-compatible cluster, started with testcontainers-go's cassandra
// module — the same testcontainers pattern the teacher uses to boot a Dolt
// server for its own integration tests (internal/storage/dolt/*_test.go),
// substituting the cassandra module for the dolt one. Run with:
//
//	go test -tags=integration ./internal/scylla/...
package scylla

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/cassandra"

	"github.com/biilabs/tangle-index/internal/config"
	"github.com/biilabs/tangle-index/internal/ledger"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := cassandra.Run(ctx, "cassandra:4.1.3")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.ConnectionHost(ctx)
	require.NoError(t, err)

	cfg, err := config.New(
		config.WithHosts(host),
		config.WithKeyspace("tangle_index_test"),
		config.WithCreateTables(true),
	)
	require.NoError(t, err)

	s, err := Init(ctx, cfg, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func recordWith(bundle, address, hash, trunk, branch byte, value, ts int64) *ledger.Record {
	r := ledger.New()
	_ = r.SetBundle(fillN(ledger.BundleLen, bundle))
	_ = r.SetAddress(fillN(ledger.AddressLen, address))
	_ = r.SetTransactionHash(fillN(ledger.HashLen, hash))
	_ = r.SetMessage(fillN(ledger.MessageLen, 0x4D))
	_ = r.SetValue(value)
	_ = r.SetTimestamp(ts)
	_ = r.SetTrunk(fillN(ledger.TrunkLen, trunk))
	_ = r.SetBranch(fillN(ledger.BranchLen, branch))
	return r
}

func fillN(n int, b byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

// Scenario 1 / P2: insert R1, S1(b1) returns exactly R1's row byte-for-byte.
func TestIntegration_InsertAndSelectByBundle(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	r1 := recordWith(0x01, 0x02, 0x03, 0x04, 0x05, 100, 1600000000)
	require.NoError(t, s.InsertBundle(ctx, []*ledger.Record{r1}))
	require.NoError(t, s.InsertEdges(ctx, []*ledger.Record{r1}))

	rows, err := s.SelectByBundle(ctx, r1.BundleHash())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, r1.Bundle(), rows[0].Bundle())
	require.Equal(t, r1.Address(), rows[0].Address())
	require.Equal(t, r1.TransactionHash(), rows[0].TransactionHash())
	require.Equal(t, r1.Message(), rows[0].Message())
	require.Equal(t, r1.Value(), rows[0].Value())
	require.Equal(t, r1.Timestamp(), rows[0].Timestamp())
	require.Equal(t, r1.Trunk(), rows[0].Trunk())
	require.Equal(t, r1.Branch(), rows[0].Branch())
}

// Scenario 2: two records sharing a bundle, S2 picks out exactly one.
func TestIntegration_SelectByBundleAndAddress(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	r1 := recordWith(0x11, 0x21, 0x31, 0x41, 0x51, 1, 1)
	r2 := recordWith(0x11, 0x22, 0x32, 0x42, 0x52, 2, 2)
	require.NoError(t, s.InsertBundle(ctx, []*ledger.Record{r1, r2}))

	rows, err := s.SelectByBundleAndAddress(ctx, r2.BundleHash(), r2.AddressHash())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, r2.TransactionHash(), rows[0].TransactionHash())
}

// P3/Scenario 3: after InsertEdges, S3 on address/trunk/branch each finds
// the transaction's own (bundle, address, hash) triple.
func TestIntegration_EdgeTableInvariant(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	r1 := recordWith(0x61, 0x62, 0x63, 0x64, 0x65, 1, 1)
	require.NoError(t, s.InsertBundle(ctx, []*ledger.Record{r1}))
	require.NoError(t, s.InsertEdges(ctx, []*ledger.Record{r1}))

	for _, edge := range []ledger.Hash{r1.AddressHash(), r1.TrunkHash(), r1.BranchHash()} {
		q := NewHashQueue()
		require.NoError(t, s.GetColumnFromEdge(ctx, q, edge, ColumnHash))
		require.Contains(t, q.Items(), r1.HashValue())
	}
}

// P4: inserting the same record twice leaves one bundleTable row and
// three edgeTable rows for its (bundle, address, hash).
func TestIntegration_InsertIdempotence(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	r1 := recordWith(0x71, 0x72, 0x73, 0x74, 0x75, 1, 1)
	require.NoError(t, s.InsertBundle(ctx, []*ledger.Record{r1}))
	require.NoError(t, s.InsertBundle(ctx, []*ledger.Record{r1}))
	require.NoError(t, s.InsertEdges(ctx, []*ledger.Record{r1}))
	require.NoError(t, s.InsertEdges(ctx, []*ledger.Record{r1}))

	rows, err := s.SelectByBundle(ctx, r1.BundleHash())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	q := NewHashQueue()
	require.NoError(t, s.GetColumnFromEdge(ctx, q, r1.AddressHash(), ColumnHash))
	require.Len(t, q.Items(), 1)
}

// Scenario 4/5, P5: union traversal across bundle/address/approvee predicates.
func TestIntegration_GetTransactions_Union(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	r1 := recordWith(0x81, 0x82, 0x83, 0x84, 0x85, 1, 1)
	r3 := recordWith(0x91, 0x92, 0x93, 0x83, 0x95, 3, 3) // r3.trunk == r1.hash
	require.NoError(t, s.InsertBundle(ctx, []*ledger.Record{r1, r3}))
	require.NoError(t, s.InsertEdges(ctx, []*ledger.Record{r1, r3}))

	out := NewHashQueue()
	require.NoError(t, s.GetTransactions(ctx, out,
		[]ledger.Hash{r1.BundleHash()}, nil, nil))
	require.Contains(t, out.Items(), r1.HashValue())

	out2 := NewHashQueue()
	require.NoError(t, s.GetTransactions(ctx, out2, nil, nil, []ledger.Hash{r1.HashValue()}))
	require.Contains(t, out2.Items(), r3.HashValue())
}
