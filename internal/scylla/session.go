// Package scylla implements the backend session, schema manager, write
// path, query planner/executor, and traversal algorithm described in
// spec.md §4. It wraps github.com/gocql/gocql, the column-store driver
// spec.md treats as an opaque collaborator providing prepare/bind/execute
// primitives with futures.
package scylla

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gocql/gocql"
	"golang.org/x/sync/singleflight"

	"github.com/biilabs/tangle-index/internal/config"
	"github.com/biilabs/tangle-index/internal/storeerr"
)

// state is the session lifecycle described in spec.md §4.6. Transitions are
// linear. A failed EnsureKeyspace or UseKeyspace moves the session to
// stateFailed, after which both refuse to run; Close works from any state.
// A failed EnsureSchema or ResetSchema leaves the state unchanged, and the
// schema, write and query calls do not check the state.
type state int

const (
	stateUninitialized state = iota
	stateConnected
	stateKeyspaceBound
	stateSchemaFresh
	stateSchemaAssumed
	stateReady
	stateClosed
	stateFailed
)

// Session wraps a *gocql.Session behind the synchronous connect/prepare/
// bind/execute contract spec.md §4.2 requires. It is not thread-safe for
// concurrent state transitions (Connect/UseKeyspace/Close), but concurrent
// Execute/Query calls on an already-Ready session are safe, matching the
// driver's own concurrency model (spec.md §5).
type Session struct {
	mu       sync.Mutex
	state    state
	cql      *gocql.Session
	cluster  *gocql.ClusterConfig
	keyspace string
	hosts    []string
	logger   *slog.Logger
	metrics  *sessionMetrics

	// templateGroup coalesces concurrent first-use of the same query
	// template so re-preparation is wasteful-but-correct at worst, and
	// usually free (spec.md §5).
	templateGroup singleflight.Group
	seenTemplates sync.Map // map[string]struct{}
}

// Connect creates the cluster session (state Uninitialized -> Connected).
// It does not bind a keyspace yet; call EnsureKeyspace then UseKeyspace
// before issuing any DDL/DML.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Consistency = gocql.One // tunable; default single-replica consistency per spec.md §5
	cluster.Timeout = 10 * time.Second
	cluster.ConnectTimeout = 10 * time.Second

	cqlSession, err := cluster.CreateSession()
	if err != nil {
		logger.Error("connect to cluster failed", "hosts", cfg.Hosts, "error", err)
		return nil, storeerr.NewConnectFail("connect", err)
	}

	s := &Session{
		state:   stateConnected,
		cql:     cqlSession,
		cluster: cluster,
		hosts:   cfg.Hosts,
		logger:  logger,
		metrics: newSessionMetrics(),
	}
	return s, nil
}

// EnsureKeyspace issues CREATE KEYSPACE IF NOT EXISTS with the replication
// policy fixed by spec.md §6 (SimpleStrategy, factor 2). Idempotent.
func (s *Session) EnsureKeyspace(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateConnected && s.state != stateKeyspaceBound {
		return s.fail("ensure_keyspace", fmt.Errorf("session not connected (state=%d)", s.state))
	}

	stmt := fmt.Sprintf(
		`CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': '2'}`,
		name,
	)
	if err := s.execRaw(ctx, "ensure_keyspace", stmt); err != nil {
		return s.fail("ensure_keyspace", err)
	}
	return nil
}

// UseKeyspace binds the session to name (state Connected/KeyspaceBound ->
// KeyspaceBound). gocql binds a keyspace at connection time rather than
// via a runtime USE statement, so this reconnects the underlying driver
// session with cluster.Keyspace set — the idiomatic equivalent of the
// original driver's USE <keyspace> (see SPEC_FULL.md, "Supplemented
// features", item 1).
func (s *Session) UseKeyspace(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateConnected && s.state != stateKeyspaceBound {
		return s.fail("use_keyspace", fmt.Errorf("session not connected (state=%d)", s.state))
	}

	cluster := gocql.NewCluster(s.hosts...)
	cluster.Consistency = s.cluster.Consistency
	cluster.Timeout = s.cluster.Timeout
	cluster.ConnectTimeout = s.cluster.ConnectTimeout
	cluster.Keyspace = name

	bound, err := cluster.CreateSession()
	if err != nil {
		return s.fail("use_keyspace", storeerr.NewConnectFail("use_keyspace", err))
	}

	s.cql.Close()
	s.cql = bound
	s.cluster = cluster
	s.keyspace = name
	s.state = stateKeyspaceBound
	return nil
}

// MarkSchemaFresh records that the schema manager just (re)created both
// tables (state -> SchemaFresh -> Ready).
func (s *Session) MarkSchemaFresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateReady
	s.logger.Debug("schema initialized fresh", "keyspace", s.keyspace)
}

// MarkSchemaAssumed records that the caller asserted the schema already
// exists (state -> SchemaAssumed -> Ready).
func (s *Session) MarkSchemaAssumed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateReady
	s.logger.Debug("schema assumed present", "keyspace", s.keyspace)
}

// Close releases the underlying driver session. Legal from any state.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stateClosed {
		return nil
	}
	if s.cql != nil {
		s.cql.Close()
	}
	s.state = stateClosed
	return nil
}

func (s *Session) fail(op string, err error) error {
	s.state = stateFailed
	s.logger.Error("session transition failed", "op", op, "error", err)
	return err
}

// prepare marks a query template as seen, coalescing concurrent first-use
// via singleflight. gocql prepares and caches the statement itself (keyed
// by query text) the first time it is executed; this just tracks whether
// this particular template has been exercised before, for the cache-hit
// metric (spec.md §5).
func (s *Session) prepare(ctx context.Context, templateKey, cql string) {
	if _, loaded := s.seenTemplates.LoadOrStore(templateKey, struct{}{}); loaded {
		s.metrics.cacheHit(ctx, templateKey)
		return
	}
	// Coalesce concurrent first-users of the same template into one
	// "first use" accounting event; the underlying gocql statement cache
	// handles the actual (wasteful-but-correct) re-preparation race.
	_, _, _ = s.templateGroup.Do(templateKey, func() (interface{}, error) {
		s.metrics.cacheMiss(ctx, templateKey)
		return nil, nil
	})
}

// execRaw runs a non-prepared statement (DDL) synchronously, awaiting the
// driver future before returning, per spec.md §4.2's contract.
func (s *Session) execRaw(ctx context.Context, op, stmt string) error {
	ctx, span := startSpan(ctx, op)
	defer span.End()

	err := s.withRetry(ctx, func() error {
		return s.cql.Query(stmt).WithContext(ctx).Exec()
	})
	if err != nil {
		span.RecordError(err)
		s.logger.Error("query failed", "op", op, "query", stmt, "error", err)
		return storeerr.NewQueryFail(stmt, err)
	}
	return nil
}

// bindAndExecute prepares (if needed), binds, and executes templateCQL
// with bindings, awaiting completion synchronously. This is the
// bind_and_execute primitive from spec.md §4.2.
func (s *Session) bindAndExecute(ctx context.Context, templateKey, templateCQL string, bindings ...interface{}) error {
	ctx, span := startSpan(ctx, templateKey)
	defer span.End()

	s.prepare(ctx, templateKey, templateCQL)
	start := time.Now()
	err := s.withRetry(ctx, func() error {
		return s.cql.Query(templateCQL, bindings...).WithContext(ctx).Exec()
	})
	s.metrics.observeLatency(ctx, templateKey, time.Since(start))
	if err != nil {
		span.RecordError(err)
		s.logger.Error("execute failed", "template", templateKey, "error", err)
		return storeerr.NewQueryFail(templateCQL, err)
	}
	return nil
}

// bindAndQuery prepares (if needed), binds, and executes a SELECT,
// returning the row iterator for the caller to stream. The iterator is
// owned by the caller and must be closed on every exit path (spec.md §5).
func (s *Session) bindAndQuery(ctx context.Context, templateKey, templateCQL string, bindings ...interface{}) *gocql.Iter {
	ctx, span := startSpan(ctx, templateKey)
	defer span.End()

	s.prepare(ctx, templateKey, templateCQL)
	start := time.Now()
	iter := s.cql.Query(templateCQL, bindings...).WithContext(ctx).Iter()
	s.metrics.observeLatency(ctx, templateKey, time.Since(start))
	return iter
}

// withRetry retries op against gocql's transient-connection error classes
// with bounded exponential backoff, the same retryable/non-retryable split
// as the teacher's isRetryableError/backoff.Permanent pattern.
func (s *Session) withRetry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 10 * time.Second

	attempts := 0
	err := backoff.Retry(func() error {
		attempts++
		err := op()
		if err == nil {
			return nil
		}
		if isRetryableError(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(bo, ctx))

	if attempts > 1 {
		s.metrics.retryCount.Add(ctx, int64(attempts-1))
	}
	return err
}

// isRetryableError reports whether err is a transient gocql connection
// condition worth retrying, rather than a genuine query failure.
func isRetryableError(err error) bool {
	switch err {
	case gocql.ErrNoConnections, gocql.ErrConnectionClosed, gocql.ErrTimeoutNoResponse:
		return true
	}
	return false
}
