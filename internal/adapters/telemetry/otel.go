package telemetry

import (
	"context"
	"io"
	"maps"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
)

var (
	_ ports.Telemetry = (*OTel)(nil)
	_ ports.Vertex    = (*OTelVertex)(nil)
)

// InstrumentationName is the tracer name spans are recorded under.
const InstrumentationName = "go.trai.ch/gimport"

// OTel implements ports.Telemetry with OpenTelemetry spans.
type OTel struct {
	tracer trace.Tracer
}

// NewOTel creates an OTel recording to provider. A nil provider selects the
// global one.
func NewOTel(provider trace.TracerProvider) *OTel {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &OTel{tracer: provider.Tracer(InstrumentationName)}
}

// Record starts a span named name.
func (t *OTel) Record(ctx context.Context, name string, opts ...ports.VertexOption) (context.Context, ports.Vertex) {
	cfg := ports.ApplyVertexOptions(opts...)

	attrs := make([]attribute.KeyValue, 0, len(cfg.Attributes))
	for _, k := range slices.Sorted(maps.Keys(cfg.Attributes)) {
		attrs = append(attrs, attribute.String(k, cfg.Attributes[k]))
	}

	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	v := newOTelVertex(span)
	return ports.ContextWithVertex(ctx, v), v
}

// Close does nothing; the provider's owner shuts it down.
func (t *OTel) Close() error { return nil }

// OTelVertex records a vertex as a span. Output becomes span events.
type OTelVertex struct {
	span   trace.Span
	stdout *BatchWriter
	stderr *BatchWriter
}

func newOTelVertex(span trace.Span) *OTelVertex {
	return &OTelVertex{
		span:   span,
		stdout: NewBatchWriter(0, 0, outputEvent(span, "stdout")),
		stderr: NewBatchWriter(0, 0, outputEvent(span, "stderr")),
	}
}

func outputEvent(span trace.Span, stream string) func([]byte) {
	return func(data []byte) {
		span.AddEvent("output", trace.WithAttributes(
			attribute.String("stream", stream),
			attribute.String("message", string(data)),
		))
	}
}

// Stdout returns a writer recording standard output as span events.
func (v *OTelVertex) Stdout() io.Writer { return v.stdout }

// Stderr returns a writer recording error output as span events.
func (v *OTelVertex) Stderr() io.Writer { return v.stderr }

// Log adds a log event to the span.
func (v *OTelVertex) Log(level domain.LogLevel, msg string) {
	v.span.AddEvent("log", trace.WithAttributes(
		attribute.String("level", level.String()),
		attribute.String("message", msg),
	))
}

// Complete flushes buffered output and ends the span, marking it failed when err is set.
func (v *OTelVertex) Complete(err error) {
	_ = v.stdout.Close()
	_ = v.stderr.Close()
	if err != nil {
		v.span.RecordError(err)
		v.span.SetStatus(codes.Error, err.Error())
	} else {
		v.span.SetStatus(codes.Ok, "")
	}
	v.span.End()
}

// Cached marks the span as a cache hit.
func (v *OTelVertex) Cached() {
	v.span.SetAttributes(attribute.Bool("cached", true))
}
