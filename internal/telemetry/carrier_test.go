package telemetry

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/metadata"
)

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestHeadersCarrierRoundTrip(t *testing.T) {
	prop := propagation.TraceContext{}
	var headers []sarama.RecordHeader

	prop.Inject(spanContext(t), NewHeadersCarrier(&headers))
	require.Len(t, headers, 1)
	assert.Equal(t, "traceparent", string(headers[0].Key))

	got := trace.SpanContextFromContext(prop.Extract(context.Background(), NewHeadersCarrier(&headers)))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", got.TraceID().String())
	assert.True(t, got.IsRemote())
}

func TestHeadersCarrierSetReplaces(t *testing.T) {
	var headers []sarama.RecordHeader
	c := NewHeadersCarrier(&headers)

	c.Set("k", "1")
	c.Set("k", "2")
	assert.Len(t, headers, 1)
	assert.Equal(t, "2", c.Get("k"))
	assert.Equal(t, "", c.Get("missing"))
	assert.Equal(t, []string{"k"}, c.Keys())
}

func TestMetadataCarrier(t *testing.T) {
	md := metadata.MD{}
	propagation.TraceContext{}.Inject(spanContext(t), MetadataTextMapCarrier(md))

	assert.NotEmpty(t, md.Get("traceparent"))
	got := trace.SpanContextFromContext(propagation.TraceContext{}.Extract(context.Background(), MetadataTextMapCarrier(md)))
	assert.Equal(t, "00f067aa0ba902b7", got.SpanID().String())
}
