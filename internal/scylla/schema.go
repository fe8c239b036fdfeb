package scylla

import "context"

const (
	bundleTableDDL = `CREATE TABLE IF NOT EXISTS bundleTable (
		bundle blob,
		address blob,
		hash blob,
		message blob,
		value bigint,
		timestamp bigint,
		trunk blob,
		branch blob,
		PRIMARY KEY (bundle, address, hash))`

	edgeTableDDL = `CREATE TABLE IF NOT EXISTS edgeTable (
		edge blob,
		bundle blob,
		address blob,
		hash blob,
		PRIMARY KEY (edge, bundle, address, hash))`

	dropBundleTableDDL = `DROP TABLE IF EXISTS bundleTable`
	dropEdgeTableDDL   = `DROP TABLE IF EXISTS edgeTable`
)

// EnsureSchema creates bundleTable and edgeTable if they do not already
// exist, without ever dropping data. This is the non-destructive default
// spec.md §9 recommends in place of always dropping on create_tables=true:
// "An implementer should expose a separate reset_schema operation and make
// init non-destructive by default." Call this when cfg.CreateTables is
// true and the operator is not deliberately resetting a populated cluster.
func (s *Session) EnsureSchema(ctx context.Context) error {
	if err := s.execRaw(ctx, "create_bundle_table", bundleTableDDL); err != nil {
		return err
	}
	if err := s.execRaw(ctx, "create_edge_table", edgeTableDDL); err != nil {
		return err
	}
	s.MarkSchemaFresh()
	return nil
}

// AssumeSchema records that the caller asserts both tables already exist
// (create_tables=false in spec.md §6), issuing no DDL at all.
func (s *Session) AssumeSchema() {
	s.MarkSchemaAssumed()
}

// ResetSchema drops and recreates both tables unconditionally. This
// reproduces the literal spec.md §4.3 drop-then-create behavior bring-up
// tooling relies on; it is destructive and must never be called against a
// populated cluster (spec.md §4.3, §9). Kept as an explicit, separately
// named operation rather than the implicit behavior of every init call.
func (s *Session) ResetSchema(ctx context.Context) error {
	if err := s.execRaw(ctx, "drop_bundle_table", dropBundleTableDDL); err != nil {
		return err
	}
	if err := s.execRaw(ctx, "drop_edge_table", dropEdgeTableDDL); err != nil {
		return err
	}
	return s.EnsureSchema(ctx)
}
