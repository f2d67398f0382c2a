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

package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/internal/config"
	"github.com/kadirpekel/agentcore/pkg/workflow"
)

func TestResumeInputFromMessage_PrefersDataPart(t *testing.T) {
	msg := a2a.NewMessage(a2a.MessageRoleUser,
		a2a.TextPart{Text: "approve"},
		a2a.DataPart{Data: map[string]any{"approve": true}},
	)
	got := resumeInputFromMessage(msg)
	assert.Equal(t, map[string]any{"approve": true}, got)
}

func TestResumeInputFromMessage_FallsBackToText(t *testing.T) {
	msg := a2a.NewMessage(a2a.MessageRoleUser, a2a.TextPart{Text: "yes"})
	got := resumeInputFromMessage(msg)
	assert.Equal(t, map[string]any{"text": "yes"}, got)
}

func TestResumeInputFromMessage_NilMessage(t *testing.T) {
	assert.Equal(t, map[string]any{}, resumeInputFromMessage(nil))
}

func TestMCPSources_OneSourcePerManifestServer(t *testing.T) {
	m := &config.AgentManifest{MCPServers: []config.MCPServerManifest{
		{Name: "files", Command: "mcp-files"},
		{Name: "search", Command: "mcp-search"},
	}}
	sources := mcpSources(m)
	require.Len(t, sources, 2)
	assert.Equal(t, "files", sources[0].Namespace())
	assert.Equal(t, "search", sources[1].Namespace())
}

func TestRegisterBuiltinWorkflows_RegistersApproval(t *testing.T) {
	r := workflow.NewRuntime()
	require.NoError(t, registerBuiltinWorkflows(r))
	_, ok := r.Lookup("approval")
	assert.True(t, ok)
}

func TestHealthHandler_WritesOKStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCORSMiddleware_HandlesPreflight(t *testing.T) {
	called := false
	h := corsMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)
}

func TestCardHandler_SetSwapsServedCard(t *testing.T) {
	h := newCardHandler(&a2a.AgentCard{Name: "first"})
	h.set(&a2a.AgentCard{Name: "second"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/agent-card.json", nil))

	assert.Contains(t, rec.Body.String(), "second")
}
