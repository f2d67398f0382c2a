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

package streamevent

import (
	"context"
	"testing"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/pkg/llmstream"
)

func TestHandler_ToolCallMissingNameErrors(t *testing.T) {
	h := New("task-1", "ctx-1", &fakeBus{}, nil)
	err := h.HandleEvent(context.Background(), llmstream.Event{Kind: llmstream.KindToolCall})
	assert.Error(t, err)
}

func TestHandler_WorkflowDispatchResultWithoutHandlerErrors(t *testing.T) {
	h := New("task-1", "ctx-1", &fakeBus{}, nil)
	require.NoError(t, h.HandleEvent(context.Background(), llmstream.Event{
		Kind:     llmstream.KindToolCall,
		ToolName: "dispatch_workflow_approval",
	}))

	err := h.HandleEvent(context.Background(), llmstream.Event{Kind: llmstream.KindToolResult})
	assert.ErrorContains(t, err, "no workflow dispatch handler configured")
}

func TestHandler_ToolResultWithoutPriorCallIsNoop(t *testing.T) {
	bus := &fakeBus{}
	h := New("task-1", "ctx-1", bus, nil)
	require.NoError(t, h.HandleEvent(context.Background(), llmstream.Event{Kind: llmstream.KindToolResult}))
	assert.Empty(t, bus.events)
}

func TestHandler_FlushBufferedMarksLastChunk(t *testing.T) {
	bus := &fakeBus{}
	h := New("task-1", "ctx-1", bus, nil)
	require.NoError(t, h.HandleEvent(context.Background(), llmstream.Event{
		Kind: llmstream.KindTextDelta, Text: "hi", HasText: true,
	}))
	require.Empty(t, bus.events)

	require.NoError(t, h.FlushBuffered(context.Background()))
	require.Len(t, bus.events, 1)
	chunk, ok := bus.events[0].(*a2a.TaskArtifactUpdateEvent)
	require.True(t, ok)
	assert.True(t, chunk.LastChunk)
	assert.Equal(t, "hi", h.AccumulatedText())
}
