package scylla

import (
	"context"
	"log/slog"

	"github.com/biilabs/tangle-index/internal/config"
)

// Init performs the full session bring-up sequence from spec.md §6:
// connect, ensure the keyspace exists, bind to it, and either create the
// tables (non-destructively — see EnsureSchema) or assume they already
// exist, depending on cfg.CreateTables.
//
// Unlike the literal original behavior (drop-then-create whenever
// create_tables is true), Init never drops data; call (*Session).ResetSchema
// explicitly for the destructive bring-up-from-scratch path spec.md §9
// recommends separating out.
func Init(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Session, error) {
	s, err := Connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureKeyspace(ctx, cfg.KeyspaceName); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := s.UseKeyspace(ctx, cfg.KeyspaceName); err != nil {
		_ = s.Close()
		return nil, err
	}

	if cfg.CreateTables {
		if err := s.EnsureSchema(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
	} else {
		s.AssumeSchema()
	}

	return s, nil
}
