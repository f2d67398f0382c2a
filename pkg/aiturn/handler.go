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

// Package aiturn implements the AI Handler: the orchestration of one AI
// turn from an inbound message through the LLM stream to history
// persistence.
package aiturn

import (
	"context"

	"github.com/a2aproject/a2a-go/a2a"

	agentcontext "github.com/kadirpekel/agentcore/pkg/context"
	"github.com/kadirpekel/agentcore/pkg/eventbus"
	"github.com/kadirpekel/agentcore/pkg/llmstream"
	"github.com/kadirpekel/agentcore/pkg/streamevent"
	"github.com/kadirpekel/agentcore/pkg/tool"
)

// Request is what one AI turn sends to the provider.
type Request struct {
	Message   *a2a.Message
	ContextID string
	History   []agentcontext.HistoryEntry
	Tools     []tool.Descriptor
}

// Service is the generic AI provider surface the handler drives: a single
// call that returns a lazy event stream, matching the "core consumes a
// generic typed event stream" scope boundary.
type Service interface {
	StreamMessage(ctx context.Context, req Request) llmstream.Stream
}

// Handler orchestrates one AI turn: resolve history without creating a
// context, build the tool bundle, stream, delegate to the Stream Processor,
// and persist history only on success against a pre-existing context.
type Handler struct {
	Contexts *agentcontext.Manager
	Tools    *tool.Registry
	AI       Service
}

// New creates an AI Handler over the given collaborators.
func New(contexts *agentcontext.Manager, tools *tool.Registry, ai Service) *Handler {
	return &Handler{Contexts: contexts, Tools: tools, AI: ai}
}

// HandleStreamingAIProcessing runs one AI turn. It never creates the
// context and never throws on an unknown contextId -- an unknown context
// simply means an empty history and no history write at the end.
func (h *Handler) HandleStreamingAIProcessing(
	ctx context.Context,
	message *a2a.Message,
	contextID string,
	taskID a2a.TaskID,
	bus eventbus.Bus,
	onWorkflowDispatch streamevent.WorkflowDispatchFunc,
) (*streamevent.AssembledMessage, error) {
	existing := h.Contexts.GetContext(contextID)

	var history []agentcontext.HistoryEntry
	if existing != nil {
		history, _ = h.Contexts.GetHistory(contextID)
	}

	stream := h.AI.StreamMessage(ctx, Request{
		Message:   message,
		ContextID: contextID,
		History:   history,
		Tools:     h.Tools.Descriptors(),
	})

	assembled, err := streamevent.ProcessStream(ctx, stream, streamevent.Config{
		TaskID:             taskID,
		ContextID:          contextID,
		Bus:                bus,
		OnWorkflowDispatch: onWorkflowDispatch,
	})
	if err != nil {
		return nil, err
	}

	if assembled != nil && existing != nil {
		_ = h.Contexts.AddToHistory(contextID, agentcontext.HistoryEntry{
			Role:    a2a.MessageRoleUser,
			Content: message.Parts,
		})
		_ = h.Contexts.AddToHistory(contextID, agentcontext.HistoryEntry{
			Role:    assembled.Role,
			Content: assembled.Parts,
		})
		_ = h.Contexts.ClearTempKeys(contextID)
	}

	return assembled, nil
}
