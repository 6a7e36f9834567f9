package apm

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/bridge-screener/internal/apperror"
)

// Span is the subset of trace.Span the screener uses, plus fault tagging.
type Span interface {
	SetAttributes(value ...attribute.KeyValue)
	AddEvent(name string, attrs ...attribute.KeyValue)
	// RecordFault records err with its apperror code and fault kind and
	// marks the span failed.
	RecordFault(err error)
	End(options ...trace.SpanEndOption)
}

type traceSpan struct {
	span trace.Span
}

func newSpan(span trace.Span) Span {
	return &traceSpan{span}
}

func (t *traceSpan) SetAttributes(values ...attribute.KeyValue) {
	t.span.SetAttributes(values...)
}

func (t *traceSpan) AddEvent(name string, attrs ...attribute.KeyValue) {
	t.span.AddEvent(name, trace.WithAttributes(attrs...))
}

func (t *traceSpan) RecordFault(err error) {
	if err == nil {
		return
	}
	t.span.RecordError(err, trace.WithAttributes(
		attribute.String("error.code", string(apperror.GetCode(err))),
		attribute.String("fault.kind", string(apperror.FaultKind(err))),
	))
	t.span.SetStatus(codes.Error, string(apperror.GetCode(err)))
}

func (t *traceSpan) End(options ...trace.SpanEndOption) {
	t.span.End(options...)
}
