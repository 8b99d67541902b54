package telemetry

import (
	"context"
	"fmt"

	appcatalog "github.com/erp/product-dimension/internal/application/catalog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for catalog spans
const TracerName = "product-dimension"

// Span attribute keys
const (
	SpanAttrTemplateID = "catalog.template_id"
	SpanAttrOperation  = "catalog.operation"
)

// StartSpan starts an internal span on the global provider.
// The caller must call span.End().
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	opts := []trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindInternal)}
	if len(attrs) > 0 {
		opts = append(opts, trace.WithAttributes(attrs...))
	}
	return tracer.Start(ctx, spanName, opts...)
}

// RecordError records err on the span and marks the span failed
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// GetTraceID returns the trace ID of the span in ctx, or ""
func GetTraceID(ctx context.Context) string {
	traceID := trace.SpanFromContext(ctx).SpanContext().TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}

// TracedTransactionScope wraps every catalog transaction in a span so that
// the SQL spans of one create or propagate share a parent
type TracedTransactionScope struct {
	next appcatalog.TransactionScope
	name string
}

// NewTracedTransactionScope decorates next. Spans are named "<name>.transaction".
func NewTracedTransactionScope(next appcatalog.TransactionScope, name string) *TracedTransactionScope {
	if name == "" {
		name = "catalog"
	}
	return &TracedTransactionScope{next: next, name: name}
}

// Execute runs fn inside the wrapped scope under a span
func (s *TracedTransactionScope) Execute(ctx context.Context, fn func(repos appcatalog.TransactionalRepositories) error) error {
	ctx, span := StartSpan(ctx, fmt.Sprintf("%s.transaction", s.name))
	defer span.End()

	err := s.next.Execute(ctx, fn)
	if err != nil {
		RecordError(span, err)
		span.SetAttributes(attribute.Bool("db.rolled_back", true))
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

var _ appcatalog.TransactionScope = (*TracedTransactionScope)(nil)
