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
	"fmt"
	"log/slog"
	"time"

	"github.com/a2aproject/a2a-go/a2a"

	"github.com/kadirpekel/agentcore/pkg/a2atask"
	"github.com/kadirpekel/agentcore/pkg/eventbus"
	"github.com/kadirpekel/agentcore/pkg/llmstream"
)

// AssembledMessage is the role-assistant record the processor builds from
// whatever text/reasoning it accumulated, reasoning ordered before text as
// some providers require.
type AssembledMessage struct {
	Role    a2a.MessageRole
	Parts   []a2a.Part
}

// Config configures one ProcessStream call.
type Config struct {
	TaskID             a2a.TaskID
	ContextID          string
	Bus                eventbus.Bus
	OnWorkflowDispatch WorkflowDispatchFunc
}

// ProcessStream drives one provider stream to completion, delegating each
// event to a Handler, then publishing the terminal status-update and
// calling Bus.Finished() exactly once regardless of success, failure, or an
// empty stream. It returns the assembled assistant message, or nil if
// nothing was produced.
func ProcessStream(ctx context.Context, stream llmstream.Stream, cfg Config) (*AssembledMessage, error) {
	h := New(cfg.TaskID, cfg.ContextID, cfg.Bus, cfg.OnWorkflowDispatch)

	sawEvent := false
	var streamErr error

	for ev, err := range stream {
		if err != nil {
			streamErr = err
			break
		}
		sawEvent = true
		if err := h.HandleEvent(ctx, ev); err != nil {
			streamErr = err
			break
		}
	}

	if streamErr != nil {
		return finishWithFailure(ctx, cfg, streamErr)
	}

	if err := h.FlushBuffered(ctx); err != nil {
		return finishWithFailure(ctx, cfg, err)
	}

	completedState := a2atask.StateCompleted
	if err := a2atask.EnsureTransition(string(cfg.TaskID), a2atask.StateWorking, completedState); err != nil {
		slog.Error("streamevent: invalid task transition, escalating to failed", "taskId", cfg.TaskID, "error", err)
		completedState = a2atask.StateFailed
	}

	completed := &a2a.TaskStatusUpdateEvent{
		TaskID:    cfg.TaskID,
		ContextID: cfg.ContextID,
		Status:    a2a.TaskStatus{State: completedState},
		Final:     true,
	}
	if sawEvent {
		completed.Metadata = map[string]any{"timestamp": time.Now()}
	}
	if err := cfg.Bus.Publish(ctx, completed); err != nil {
		_ = cfg.Bus.Finished(ctx)
		return nil, err
	}
	if err := cfg.Bus.Finished(ctx); err != nil {
		return nil, err
	}

	return assembleMessage(h), nil
}

// finishWithFailure publishes the terminal failed status-update and calls
// Finished() exactly once, then always returns cause so the caller (the AI
// handler) can tell "stream failed" apart from "stream succeeded but
// produced nothing" and write no history either way.
func finishWithFailure(ctx context.Context, cfg Config, cause error) (*AssembledMessage, error) {
	if err := a2atask.EnsureTransition(string(cfg.TaskID), a2atask.StateWorking, a2atask.StateFailed); err != nil {
		slog.Error("streamevent: invalid task transition to failed", "taskId", cfg.TaskID, "error", err)
	}

	failed := &a2a.TaskStatusUpdateEvent{
		TaskID:    cfg.TaskID,
		ContextID: cfg.ContextID,
		Status: a2a.TaskStatus{
			State:   a2atask.StateFailed,
			Message: a2a.NewMessage(a2a.MessageRoleAgent, a2a.TextPart{Text: errorText(cause)}),
		},
		Final: true,
	}
	publishErr := cfg.Bus.Publish(ctx, failed)
	finishErr := cfg.Bus.Finished(ctx)
	if publishErr != nil {
		return nil, publishErr
	}
	if finishErr != nil {
		return nil, finishErr
	}
	return nil, cause
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprint(err)
}

// assembleMessage builds the final assistant message with reasoning before
// text, each present only if non-empty. Returns nil if nothing was
// accumulated.
func assembleMessage(h *Handler) *AssembledMessage {
	var parts []a2a.Part
	if r := h.AccumulatedReasoning(); r != "" {
		parts = append(parts, a2a.TextPart{Text: r, Metadata: map[string]any{"kind": "reasoning"}})
	}
	if t := h.AccumulatedText(); t != "" {
		parts = append(parts, a2a.TextPart{Text: t})
	}
	if len(parts) == 0 {
		return nil
	}
	return &AssembledMessage{Role: a2a.MessageRoleAgent, Parts: parts}
}
