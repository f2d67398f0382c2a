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

// Package metrics exposes Prometheus counters/gauges for the workflow
// runtime, event bus, and tool registry. A nil *Metrics is always safe to
// call into -- every recorder method short-circuits -- so components can
// hold one unconditionally and callers can opt out by passing nil.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects this core's runtime counters under one registry.
type Metrics struct {
	namespace string
	registry  *prometheus.Registry

	workflowDispatches     *prometheus.CounterVec
	workflowActive         prometheus.Gauge
	workflowDispatchErrors *prometheus.CounterVec
	workflowResumeLatency  *prometheus.HistogramVec

	busEventsPublished *prometheus.CounterVec

	toolCalls        *prometheus.CounterVec
	toolCallDuration *prometheus.HistogramVec
	toolErrors       *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates a Metrics instance under its own registry; namespace prefixes
// every metric name (e.g. "agentcore").
func New(namespace string) *Metrics {
	m := &Metrics{namespace: namespace, registry: prometheus.NewRegistry()}
	m.initWorkflowMetrics()
	m.initBusMetrics()
	m.initToolMetrics()
	m.initHTTPMetrics()
	return m
}

func (m *Metrics) initWorkflowMetrics() {
	m.workflowDispatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "workflow", Name: "dispatches_total",
		Help: "Total number of workflow plugin dispatches",
	}, []string{"plugin_id"})

	m.workflowActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "workflow", Name: "active_executions",
		Help: "Number of currently running workflow executions",
	})

	m.workflowDispatchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "workflow", Name: "dispatch_errors_total",
		Help: "Total number of failed workflow dispatches",
	}, []string{"plugin_id", "error_type"})

	m.workflowResumeLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "workflow", Name: "resume_latency_seconds",
		Help:    "Time from ResumeWorkflow call to the next yield or completion",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
	}, []string{"plugin_id"})

	m.registry.MustRegister(m.workflowDispatches, m.workflowActive, m.workflowDispatchErrors, m.workflowResumeLatency)
}

func (m *Metrics) initBusMetrics() {
	m.busEventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "eventbus", Name: "events_published_total",
		Help: "Total number of A2A events published per task",
	}, []string{"event_type"})

	m.registry.MustRegister(m.busEventsPublished)
}

func (m *Metrics) initToolMetrics() {
	m.toolCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "tool", Name: "calls_total",
		Help: "Total number of tool invocations",
	}, []string{"tool_name"})

	m.toolCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "tool", Name: "call_duration_seconds",
		Help:    "Tool execution duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
	}, []string{"tool_name"})

	m.toolErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "tool", Name: "errors_total",
		Help: "Total number of tool errors",
	}, []string{"tool_name"})

	m.registry.MustRegister(m.toolCalls, m.toolCallDuration, m.toolErrors)
}

func (m *Metrics) initHTTPMetrics() {
	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "http", Name: "requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "http", Name: "request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	m.registry.MustRegister(m.httpRequests, m.httpDuration)
}

// RecordWorkflowDispatch records a successful workflow plugin dispatch.
func (m *Metrics) RecordWorkflowDispatch(pluginID string) {
	if m == nil {
		return
	}
	m.workflowDispatches.WithLabelValues(pluginID).Inc()
}

// RecordWorkflowDispatchError records a failed dispatch.
func (m *Metrics) RecordWorkflowDispatchError(pluginID, errorType string) {
	if m == nil {
		return
	}
	m.workflowDispatchErrors.WithLabelValues(pluginID, errorType).Inc()
}

// IncActiveExecutions increments the active-execution gauge.
func (m *Metrics) IncActiveExecutions() {
	if m == nil {
		return
	}
	m.workflowActive.Inc()
}

// DecActiveExecutions decrements the active-execution gauge.
func (m *Metrics) DecActiveExecutions() {
	if m == nil {
		return
	}
	m.workflowActive.Dec()
}

// RecordResumeLatency records the time a ResumeWorkflow call took to
// observe its next yield or completion.
func (m *Metrics) RecordResumeLatency(pluginID string, d time.Duration) {
	if m == nil {
		return
	}
	m.workflowResumeLatency.WithLabelValues(pluginID).Observe(d.Seconds())
}

// RecordBusEvent records one A2A event published on a task's bus.
func (m *Metrics) RecordBusEvent(eventType string) {
	if m == nil {
		return
	}
	m.busEventsPublished.WithLabelValues(eventType).Inc()
}

// RecordToolCall records a tool invocation and its duration.
func (m *Metrics) RecordToolCall(toolName string, d time.Duration) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(toolName).Inc()
	m.toolCallDuration.WithLabelValues(toolName).Observe(d.Seconds())
}

// RecordToolError records a tool execution error.
func (m *Metrics) RecordToolError(toolName string) {
	if m == nil {
		return
	}
	m.toolErrors.WithLabelValues(toolName).Inc()
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, statusCodeLabel(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func statusCodeLabel(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

// Handler serves the Prometheus scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
