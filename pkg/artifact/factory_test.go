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

package artifact

import (
	"testing"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTextChunk_StableArtifactID(t *testing.T) {
	first := NewTextChunk("t1", "ctx1", KindTextResponse, "Hello", 0, false)
	second := NewTextChunk("t1", "ctx1", KindTextResponse, " world", 1, true)

	assert.Equal(t, first.Artifact.ID, second.Artifact.ID)
	assert.Equal(t, a2a.ArtifactID("text-response-t1"), first.Artifact.ID)
	assert.False(t, first.Append)
	assert.False(t, first.LastChunk)
	assert.True(t, second.Append)
	assert.True(t, second.LastChunk)
}

func TestNewToolCall_FreshArtifactIDPerCall(t *testing.T) {
	first := NewToolCall("t1", "ctx1", ToolCallInput{ID: "c1", Name: "search", Input: map[string]any{"q": "x"}})
	second := NewToolCall("t1", "ctx1", ToolCallInput{ID: "c2", Name: "search", Input: map[string]any{"q": "y"}})

	assert.NotEqual(t, first.Artifact.ID, second.Artifact.ID)
	assert.False(t, first.LastChunk)
	require.Len(t, first.Artifact.Parts, 1)
	_, ok := first.Artifact.Parts[0].(a2a.DataPart)
	assert.True(t, ok)
}

func TestIsWorkflowDispatchTool(t *testing.T) {
	assert.True(t, IsWorkflowDispatchTool("dispatch_workflow_trading"))
	assert.False(t, IsWorkflowDispatchTool("search"))
	assert.False(t, IsWorkflowDispatchTool("dispatch_workflow_"))
}

func TestNewToolResult_PlainPayload(t *testing.T) {
	ev := NewToolResult("t1", "ctx1", "tool-call-search-abc", ToolResult{ID: "c1", Name: "search", Output: "42"})
	assert.True(t, ev.LastChunk)
	assert.True(t, ev.Append)
	require.Len(t, ev.Artifact.Parts, 1)
}

func TestNewToolResult_WorkflowDispatchNormalization(t *testing.T) {
	output := map[string]any{
		"result": []a2a.Part{
			a2a.TextPart{Text: "started"},
		},
		"taskId":   "task-child-1",
		"metadata": map[string]any{"workflowName": "trading"},
	}
	ev := NewToolResult("t1", "ctx1", "tool-call-dispatch_workflow_trading-abc", ToolResult{ID: "c1", Name: "dispatch_workflow_trading", Output: output})

	require.Len(t, ev.Artifact.Parts, 1)
	tp, ok := ev.Artifact.Parts[0].(a2a.TextPart)
	require.True(t, ok)
	assert.Equal(t, "started", tp.Text)
	require.NotNil(t, tp.Metadata)
	assert.Equal(t, "task-child-1", tp.Metadata["taskId"])
	assert.Equal(t, "trading", tp.Metadata["workflowName"])
}

func TestNewToolResult_NonDestructiveMerge(t *testing.T) {
	output := map[string]any{
		"result": []a2a.Part{
			a2a.TextPart{Text: "started", Metadata: map[string]any{"taskId": "child-original"}},
		},
		"taskId": "task-child-2",
	}
	ev := NewToolResult("t1", "ctx1", "tool-call-dispatch_workflow_lending-abc", ToolResult{ID: "c2", Name: "dispatch_workflow_lending", Output: output})

	tp, ok := ev.Artifact.Parts[0].(a2a.TextPart)
	require.True(t, ok)
	assert.Equal(t, "child-original", tp.Metadata["taskId"])
}
