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

// Package streamevent routes one AI stream's deltas onto the A2A event bus:
// buffering text/reasoning chunks, emitting tool-call/tool-result
// artifacts, and turning workflow dispatch results into parent
// status-updates with referenceTaskIds.
//
// The buffering/chunking discipline follows the teacher's
// v2/model.StreamingAggregator; the workflow-dispatch status-update and
// "postpone terminal event" shape follows the independent a2a-go consumer
// in the retrieval pack (sjzsdu/adk-go's A2A event processor).
package streamevent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/a2aproject/a2a-go/a2a"

	"github.com/kadirpekel/agentcore/pkg/artifact"
	"github.com/kadirpekel/agentcore/pkg/eventbus"
	"github.com/kadirpekel/agentcore/pkg/llmstream"
	"github.com/kadirpekel/agentcore/pkg/toolcall"
)

// WorkflowDispatchFunc is called when a tool-result arrives for a workflow
// dispatch tool. It returns the child taskId, a human name/description for
// the dispatched plugin, and the synchronous result parts to surface to the
// LLM (the first-yield dispatch-response).
type WorkflowDispatchFunc func(ctx context.Context, toolName string, input map[string]any) (childTaskID a2a.TaskID, workflowName, description string, result []a2a.Part, err error)

// Handler is the per-AI-stream state container described by the component
// design: chunk indices, buffered artifacts, the tool-call collector, and
// text/reasoning accumulators.
type Handler struct {
	TaskID    a2a.TaskID
	ContextID string
	Bus       eventbus.Bus

	OnWorkflowDispatch WorkflowDispatchFunc

	textChunkIndex      int
	reasoningChunkIndex int

	bufferedArtifact          *a2a.TaskArtifactUpdateEvent
	bufferedReasoningArtifact *a2a.TaskArtifactUpdateEvent

	toolCalls *toolcall.Collector

	toolInputDeltaCount int

	accumulatedText      string
	accumulatedReasoning string
}

// New creates a Handler for one AI stream.
func New(taskID a2a.TaskID, contextID string, bus eventbus.Bus, onWorkflowDispatch WorkflowDispatchFunc) *Handler {
	return &Handler{
		TaskID:             taskID,
		ContextID:          contextID,
		Bus:                bus,
		OnWorkflowDispatch: onWorkflowDispatch,
		toolCalls:          toolcall.New(),
	}
}

// HandleEvent routes one provider event per the kind-specific rules.
func (h *Handler) HandleEvent(ctx context.Context, ev llmstream.Event) error {
	switch ev.Kind {
	case llmstream.KindTextDelta:
		return h.handleDelta(ctx, ev, artifact.KindTextResponse, &h.textChunkIndex, &h.bufferedArtifact, &h.accumulatedText)
	case llmstream.KindReasoningDelta:
		return h.handleDelta(ctx, ev, artifact.KindReasoning, &h.reasoningChunkIndex, &h.bufferedReasoningArtifact, &h.accumulatedReasoning)
	case llmstream.KindTextEnd:
		return h.handleEnd(ctx, &h.bufferedArtifact)
	case llmstream.KindReasoningEnd:
		return h.handleEnd(ctx, &h.bufferedReasoningArtifact)
	case llmstream.KindToolCall:
		return h.handleToolCall(ctx, ev)
	case llmstream.KindToolResult:
		return h.handleToolResult(ctx, ev)
	case llmstream.KindToolInputEnd:
		h.toolInputDeltaCount = 0
		return nil
	case llmstream.KindReasoningStart:
		slog.Debug("streamevent: reasoning started", "taskId", h.TaskID)
		return nil
	default:
		slog.Debug("streamevent: unrouted event kind", "kind", ev.Kind, "taskId", h.TaskID)
		return nil
	}
}

// handleDelta implements the shared text-delta/reasoning-delta rule: flush
// any existing buffered chunk first so ordering is preserved, then buffer
// the new one.
func (h *Handler) handleDelta(ctx context.Context, ev llmstream.Event, kind artifact.Kind, chunkIndex *int, buffered **a2a.TaskArtifactUpdateEvent, accumulator *string) error {
	if !ev.HasText && ev.Text == "" {
		return nil
	}

	if *buffered != nil {
		if err := h.publish(ctx, *buffered); err != nil {
			return err
		}
	}

	chunk := artifact.NewTextChunk(h.TaskID, h.ContextID, kind, ev.Text, *chunkIndex, false)
	*buffered = chunk
	*accumulator += ev.Text
	*chunkIndex++
	return nil
}

// handleEnd flushes a buffered artifact as the final chunk, or no-ops if
// nothing is buffered.
func (h *Handler) handleEnd(ctx context.Context, buffered **a2a.TaskArtifactUpdateEvent) error {
	if *buffered == nil {
		return nil
	}
	final := *buffered
	final.LastChunk = true
	*buffered = nil
	return h.publish(ctx, final)
}

func (h *Handler) handleToolCall(ctx context.Context, ev llmstream.Event) error {
	if ev.ToolName == "" {
		return fmt.Errorf("streamevent: tool-call event missing toolName")
	}

	if artifact.IsWorkflowDispatchTool(ev.ToolName) {
		// Parent status update will carry the linkage at result time; do
		// not publish a tool-call artifact for workflow dispatch tools.
		h.toolCalls.Push(ev.ToolName, "")
		return nil
	}

	call := artifact.NewToolCall(h.TaskID, h.ContextID, artifact.ToolCallInput{
		ID:    ev.ToolCallID,
		Name:  ev.ToolName,
		Input: ev.ToolInput,
	})
	h.toolCalls.Push(ev.ToolName, call.Artifact.ID)
	return h.publish(ctx, call)
}

func (h *Handler) handleToolResult(ctx context.Context, ev llmstream.Event) error {
	rec, ok := h.toolCalls.Pop()
	if !ok {
		return nil
	}

	if artifact.IsWorkflowDispatchTool(rec.Name) {
		return h.handleWorkflowDispatchResult(ctx, rec, ev)
	}

	result := artifact.NewToolResult(h.TaskID, h.ContextID, rec.ArtifactID, artifact.ToolResult{
		ID:     ev.ToolResultID,
		Name:   ev.ToolResultName,
		Output: ev.ToolResultOutput,
	})
	return h.publish(ctx, result)
}

// handleWorkflowDispatchResult dispatches the plugin via OnWorkflowDispatch
// and publishes exactly one status-update carrying referenceTaskIds for the
// newly dispatched child only -- never accumulating earlier dispatches,
// since rec/ev are scoped to this single tool-result event.
func (h *Handler) handleWorkflowDispatchResult(ctx context.Context, rec toolcall.Record, ev llmstream.Event) error {
	if h.OnWorkflowDispatch == nil {
		return fmt.Errorf("streamevent: no workflow dispatch handler configured for %q", rec.Name)
	}

	childTaskID, workflowName, description, _, err := h.OnWorkflowDispatch(ctx, rec.Name, ev.ToolInput)
	if err != nil {
		return err
	}

	msg := a2a.NewMessage(a2a.MessageRoleAgent, a2a.TextPart{
		Text: fmt.Sprintf("Dispatching workflow: %s (%s)", workflowName, description),
	})
	// referenceTaskIds links this status update to the newly dispatched
	// child task only -- never accumulated across sequential dispatches.
	msg.ReferenceTaskIDs = []a2a.TaskID{childTaskID}

	update := &a2a.TaskStatusUpdateEvent{
		TaskID:    h.TaskID,
		ContextID: h.ContextID,
		Status:    a2a.TaskStatus{State: a2a.TaskStateWorking, Message: msg},
		Final:     false,
		Metadata: map[string]any{
			"referencedWorkflow": map[string]any{
				"workflowName": workflowName,
				"description":  description,
				"pluginId":     strings.TrimPrefix(rec.Name, artifact.WorkflowDispatchPrefix),
			},
		},
	}
	return h.Bus.Publish(ctx, update)
}

func (h *Handler) publish(ctx context.Context, event a2a.Event) error {
	return h.Bus.Publish(ctx, event)
}

// AccumulatedText returns the text accumulated so far.
func (h *Handler) AccumulatedText() string { return h.accumulatedText }

// AccumulatedReasoning returns the reasoning text accumulated so far.
func (h *Handler) AccumulatedReasoning() string { return h.accumulatedReasoning }

// FlushBuffered publishes any still-buffered artifacts as final chunks; used
// by the stream processor when the sequence ends without an explicit
// text-end/reasoning-end.
func (h *Handler) FlushBuffered(ctx context.Context) error {
	if err := h.handleEnd(ctx, &h.bufferedArtifact); err != nil {
		return err
	}
	return h.handleEnd(ctx, &h.bufferedReasoningArtifact)
}
