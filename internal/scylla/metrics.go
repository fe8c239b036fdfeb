package scylla

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// meter and tracer are the OTel instruments for this package, following the
// teacher's package-scoped otel.Meter(...)/otel.Tracer(...) pattern in
// internal/storage/dolt/store.go (doltMetrics, doltTracer). Both forward to
// no-op providers until a real provider is installed via
// otel.SetMeterProvider/otel.SetTracerProvider, so registering them
// unconditionally at package init is safe.
var (
	meter  = otel.Meter("github.com/biilabs/tangle-index/scylla")
	tracer = otel.Tracer("github.com/biilabs/tangle-index/scylla")
)

// startSpan opens a span for a single query-template execution, mirroring
// the teacher's doltSpanAttrs helper.
func startSpan(ctx context.Context, template string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "scylla."+template, trace.WithAttributes(
		attribute.String("db.system", "cassandra"),
		attribute.String("db.template", template),
	))
}

type sessionMetrics struct {
	retryCount     metric.Int64Counter
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	queryLatencyMs metric.Float64Histogram
	edgeFanout     metric.Int64Counter
}

func newSessionMetrics() *sessionMetrics {
	m := &sessionMetrics{}
	m.retryCount, _ = meter.Int64Counter("tangleindex.session.retry_count",
		metric.WithDescription("retry attempts made after transient connection errors"),
		metric.WithUnit("{retry}"),
	)
	m.cacheHits, _ = meter.Int64Counter("tangleindex.session.template_cache_hits",
		metric.WithDescription("query templates reused from the planner's prepared-statement cache"),
	)
	m.cacheMisses, _ = meter.Int64Counter("tangleindex.session.template_cache_misses",
		metric.WithDescription("query templates seen for the first time this session"),
	)
	m.queryLatencyMs, _ = meter.Float64Histogram("tangleindex.session.query_latency_ms",
		metric.WithDescription("time from bind to future resolution, per query template"),
		metric.WithUnit("ms"),
	)
	m.edgeFanout, _ = meter.Int64Counter("tangleindex.write.edge_fanout_rows",
		metric.WithDescription("edge-table rows written per transaction (invariant: always 3)"),
	)
	return m
}

func (m *sessionMetrics) cacheHit(ctx context.Context, template string) {
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("template", template)))
}

func (m *sessionMetrics) cacheMiss(ctx context.Context, template string) {
	m.cacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("template", template)))
}

func (m *sessionMetrics) observeLatency(ctx context.Context, template string, d time.Duration) {
	m.queryLatencyMs.Record(ctx, float64(d.Microseconds())/1000.0,
		metric.WithAttributes(attribute.String("template", template)))
}
