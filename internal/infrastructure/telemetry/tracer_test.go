package telemetry_test

import (
	"context"
	"testing"

	"github.com/erp/product-dimension/internal/infrastructure/config"
	"github.com/erp/product-dimension/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	tp, err := telemetry.NewTracerProvider(ctx, config.TelemetryConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewTracerProvider_WithSpanProcessor(t *testing.T) {
	ctx := context.Background()
	original := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(original) })

	sr := tracetest.NewSpanRecorder()
	tp, err := telemetry.NewTracerProvider(ctx, config.TelemetryConfig{
		Enabled:       true,
		SamplingRatio: 1.0,
		ServiceName:   "product-dimension-test",
	}, zaptest.NewLogger(t), telemetry.WithSpanProcessor(sr))
	require.NoError(t, err)
	defer tp.Shutdown(ctx)

	assert.True(t, tp.IsEnabled())

	_, span := telemetry.StartSpan(ctx, "catalog.create")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "catalog.create", spans[0].Name())
	assert.Equal(t, "product-dimension-test", serviceName(spans[0].Resource().Attributes()))
}

func TestNewTracerProvider_NeverSample(t *testing.T) {
	ctx := context.Background()
	original := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(original) })

	sr := tracetest.NewSpanRecorder()
	cfg := config.TelemetryConfig{Enabled: true, SamplingRatio: 0, ServiceName: "svc"}
	tp, err := telemetry.NewTracerProvider(ctx, cfg, zaptest.NewLogger(t), telemetry.WithSpanProcessor(sr))
	require.NoError(t, err)
	defer tp.Shutdown(ctx)

	_, span := tp.Tracer("test").Start(ctx, "dropped")
	span.End()

	assert.Empty(t, sr.Ended())
}
