// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tracing wraps OpenTelemetry with the two span shapes this core
// emits: one AI turn (Stream Processor) and one workflow dispatch
// (Workflow Handler), following the teacher's observability.Tracer shape
// scoped down to this core's domain.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	spanAITurn           = "ai.turn"
	spanWorkflowDispatch = "workflow.dispatch"

	attrContextID = "agentcore.context_id"
	attrTaskID    = "agentcore.task_id"
	attrPluginID  = "agentcore.plugin_id"
)

// Tracer is this core's span-opening surface over an OTel TracerProvider.
// A nil *Tracer (the default when tracing isn't configured) returns
// no-op spans so callers never need a conditional.
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// New creates a Tracer exporting spans to stdout (pretty-printed), the
// teacher's "exporter: stdout" path, suitable for local development; swap
// in an OTLP exporter for production without changing call sites.
func New(ctx context.Context, serviceName, serviceVersion string, sampleRatio float64) (*Tracer, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("tracing: create exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing: build resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(sampleRatio)),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)

	return &Tracer{provider: provider, tracer: provider.Tracer(serviceName)}, nil
}

// Start opens a plain named span.
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if t == nil || t.tracer == nil {
		return ctx, noopSpan(ctx)
	}
	return t.tracer.Start(ctx, name, opts...)
}

// StartAITurn opens a span covering one Stream Processor run.
func (t *Tracer) StartAITurn(ctx context.Context, contextID string, taskID string) (context.Context, trace.Span) {
	return t.Start(ctx, spanAITurn, trace.WithAttributes(
		attribute.String(attrContextID, contextID),
		attribute.String(attrTaskID, taskID),
	))
}

// StartWorkflowDispatch opens a span covering one Workflow Handler dispatch.
func (t *Tracer) StartWorkflowDispatch(ctx context.Context, pluginID, contextID string) (context.Context, trace.Span) {
	return t.Start(ctx, spanWorkflowDispatch, trace.WithAttributes(
		attribute.String(attrPluginID, pluginID),
		attribute.String(attrContextID, contextID),
	))
}

// RecordError records err on span, a no-op if either is nil.
func (t *Tracer) RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
}

// Shutdown flushes and closes the underlying provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

func noopSpan(ctx context.Context) trace.Span {
	_, span := trace.NewNoopTracerProvider().Tracer("noop").Start(ctx, "noop")
	return span
}
