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
	"errors"
	"sync"
	"testing"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/pkg/llmstream"
)

type fakeBus struct {
	mu        sync.Mutex
	events    []a2a.Event
	finishedN int
}

func (b *fakeBus) Publish(_ context.Context, event a2a.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *fakeBus) Finished(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finishedN++
	return nil
}

func (b *fakeBus) IsFinished() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.finishedN > 0
}

func emptyStream(yield func(llmstream.Event, error) bool) {}

func TestProcessStream_EmptyStream(t *testing.T) {
	bus := &fakeBus{}
	msg, err := ProcessStream(context.Background(), emptyStream, Config{
		TaskID: "t1", ContextID: "ctx-new", Bus: bus,
	})
	require.NoError(t, err)
	assert.Nil(t, msg)

	require.Len(t, bus.events, 1)
	status, ok := bus.events[0].(*a2a.TaskStatusUpdateEvent)
	require.True(t, ok)
	assert.Equal(t, a2a.TaskStateCompleted, status.Status.State)
	assert.True(t, status.Final)
	assert.Equal(t, 1, bus.finishedN)
}

func TestProcessStream_TwoTextDeltasThenEnd(t *testing.T) {
	stream := func(yield func(llmstream.Event, error) bool) {
		if !yield(llmstream.Event{Kind: llmstream.KindTextDelta, Text: "Hello", HasText: true}, nil) {
			return
		}
		if !yield(llmstream.Event{Kind: llmstream.KindTextDelta, Text: " world", HasText: true}, nil) {
			return
		}
		yield(llmstream.Event{Kind: llmstream.KindTextEnd}, nil)
	}

	bus := &fakeBus{}
	msg, err := ProcessStream(context.Background(), stream, Config{TaskID: "t1", ContextID: "ctx1", Bus: bus})
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.Len(t, msg.Parts, 1)
	tp := msg.Parts[0].(a2a.TextPart)
	assert.Equal(t, "Hello world", tp.Text)

	var artifactEvents []*a2a.TaskArtifactUpdateEvent
	for _, e := range bus.events {
		if ae, ok := e.(*a2a.TaskArtifactUpdateEvent); ok {
			artifactEvents = append(artifactEvents, ae)
		}
	}
	require.Len(t, artifactEvents, 2)
	assert.Equal(t, artifactEvents[0].Artifact.ID, artifactEvents[1].Artifact.ID)
	assert.False(t, artifactEvents[0].Append)
	assert.False(t, artifactEvents[0].LastChunk)
	assert.True(t, artifactEvents[1].Append)
	assert.True(t, artifactEvents[1].LastChunk)

	assert.Equal(t, 1, bus.finishedN)
}

func TestProcessStream_SequentialWorkflowDispatches(t *testing.T) {
	calls := 0
	dispatch := func(_ context.Context, toolName string, _ map[string]any) (a2a.TaskID, string, string, []a2a.Part, error) {
		calls++
		if calls == 1 {
			return "task-child-1", "trading", "Trading workflow", nil, nil
		}
		return "task-child-2", "lending", "Lending workflow", nil, nil
	}

	stream := func(yield func(llmstream.Event, error) bool) {
		if !yield(llmstream.Event{Kind: llmstream.KindToolCall, ToolName: "dispatch_workflow_trading", ToolCallID: "c1"}, nil) {
			return
		}
		if !yield(llmstream.Event{Kind: llmstream.KindToolResult, ToolResultName: "dispatch_workflow_trading", ToolResultID: "c1"}, nil) {
			return
		}
		if !yield(llmstream.Event{Kind: llmstream.KindToolCall, ToolName: "dispatch_workflow_lending", ToolCallID: "c2"}, nil) {
			return
		}
		yield(llmstream.Event{Kind: llmstream.KindToolResult, ToolResultName: "dispatch_workflow_lending", ToolResultID: "c2"}, nil)
	}

	bus := &fakeBus{}
	_, err := ProcessStream(context.Background(), stream, Config{
		TaskID: "t1", ContextID: "ctx1", Bus: bus, OnWorkflowDispatch: dispatch,
	})
	require.NoError(t, err)

	var statusUpdates []*a2a.TaskStatusUpdateEvent
	for _, e := range bus.events {
		if su, ok := e.(*a2a.TaskStatusUpdateEvent); ok && !su.Final {
			statusUpdates = append(statusUpdates, su)
		}
	}
	require.Len(t, statusUpdates, 2)
	assert.Equal(t, []a2a.TaskID{"task-child-1"}, statusUpdates[0].Status.Message.ReferenceTaskIDs)
	assert.Equal(t, []a2a.TaskID{"task-child-2"}, statusUpdates[1].Status.Message.ReferenceTaskIDs)
	assert.NotContains(t, statusUpdates[1].Status.Message.ReferenceTaskIDs, a2a.TaskID("task-child-1"))
}

func TestProcessStream_ErrorMidTurn(t *testing.T) {
	stream := func(yield func(llmstream.Event, error) bool) {
		if !yield(llmstream.Event{Kind: llmstream.KindTextDelta, Text: "Starting...", HasText: true}, nil) {
			return
		}
		yield(llmstream.Event{}, errors.New("boom"))
	}

	bus := &fakeBus{}
	msg, err := ProcessStream(context.Background(), stream, Config{TaskID: "t1", ContextID: "ctx1", Bus: bus})
	require.Error(t, err)
	assert.Nil(t, msg)

	var failed *a2a.TaskStatusUpdateEvent
	for _, e := range bus.events {
		if su, ok := e.(*a2a.TaskStatusUpdateEvent); ok && su.Status.State == a2a.TaskStateFailed {
			failed = su
		}
	}
	require.NotNil(t, failed)
	assert.True(t, failed.Final)
	tp := failed.Status.Message.Parts[0].(a2a.TextPart)
	assert.Contains(t, tp.Text, "boom")
	assert.Equal(t, 1, bus.finishedN)
}
