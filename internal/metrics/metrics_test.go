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

package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordWorkflowDispatch("refund-approval")
		m.IncActiveExecutions()
		m.DecActiveExecutions()
		m.RecordResumeLatency("refund-approval", time.Millisecond)
		m.RecordBusEvent("status-update")
		m.RecordToolCall("lookup_ticket", time.Millisecond)
		m.RecordToolError("lookup_ticket")
		m.RecordHTTPRequest("GET", "/healthz", 200, time.Millisecond)
	})
}

func TestMetrics_HandlerServesRegisteredMetrics(t *testing.T) {
	m := New("agentcore_test")
	m.RecordWorkflowDispatch("refund-approval")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "agentcore_test_workflow_dispatches_total")
}
