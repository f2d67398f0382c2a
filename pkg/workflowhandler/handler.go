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

// Package workflowhandler bridges AI-dispatched workflow tool calls to the
// Workflow Runtime: it publishes the child task's opening events on the
// parent's event bus, waits for the plugin's first yield, and drives
// resume requests that target a paused child task.
package workflowhandler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/a2aproject/a2a-go/a2a"

	"github.com/kadirpekel/agentcore/pkg/artifact"
	agentcontext "github.com/kadirpekel/agentcore/pkg/context"
	"github.com/kadirpekel/agentcore/pkg/eventbus"
	"github.com/kadirpekel/agentcore/pkg/workflow"
)

// Handler binds a workflow.Runtime into the parent AI task's event stream.
type Handler struct {
	Runtime  *workflow.Runtime
	Contexts *agentcontext.Manager
}

// New creates a Workflow Handler over a runtime and context manager.
func New(runtime *workflow.Runtime, contexts *agentcontext.Manager) *Handler {
	return &Handler{Runtime: runtime, Contexts: contexts}
}

// DispatchWorkflow implements streamevent.WorkflowDispatchFunc: it strips
// the dispatch_workflow_ prefix, allocates the child its own context,
// starts the execution (publishing its own events directly onto
// parentBus, which doubles as the "subscribe and re-emit" step since the
// runtime publishes under the child's own taskId/contextId), and waits for
// the first yield.
func (h *Handler) DispatchWorkflow(ctx context.Context, toolName string, input map[string]any, parentBus eventbus.Bus) (a2a.TaskID, string, string, []a2a.Part, error) {
	if !artifact.IsWorkflowDispatchTool(toolName) {
		return "", "", "", nil, fmt.Errorf("workflowhandler: %q is not a workflow dispatch tool", toolName)
	}
	pluginID := strings.TrimPrefix(toolName, artifact.WorkflowDispatchPrefix)

	plugin, ok := h.Runtime.Lookup(pluginID)
	if !ok {
		return "", "", "", nil, fmt.Errorf("workflowhandler: plugin %q not found", pluginID)
	}

	childCtx, err := h.Contexts.CreateContext("")
	if err != nil {
		return "", "", "", nil, fmt.Errorf("workflowhandler: create child context: %w", err)
	}

	childTaskID, err := h.Runtime.Dispatch(ctx, pluginID, childCtx.ID, input, nil, parentBus)
	if err != nil {
		return "", "", "", nil, fmt.Errorf("workflowhandler: dispatch %q: %w", pluginID, err)
	}
	_ = h.Contexts.AddTask(childCtx.ID, childTaskID)

	if err := parentBus.Publish(ctx, &a2a.Task{
		ID:        childTaskID,
		ContextID: childCtx.ID,
		Status:    a2a.TaskStatus{State: a2a.TaskStateSubmitted},
	}); err != nil {
		return "", "", "", nil, err
	}
	if err := parentBus.Publish(ctx, &a2a.TaskStatusUpdateEvent{
		TaskID:    childTaskID,
		ContextID: childCtx.ID,
		Status:    a2a.TaskStatus{State: a2a.TaskStateWorking},
	}); err != nil {
		return "", "", "", nil, err
	}

	state, err := h.Runtime.WaitForFirstYield(childTaskID, plugin.DispatchResponseTimeout)
	if err != nil {
		return "", "", "", nil, err
	}

	return childTaskID, plugin.Name, plugin.Description, state.Parts, nil
}

// ResumeWorkflow drives a resume for a child task targeted by an inbound
// A2A message, re-emitting the execution's subsequent events on the
// parent bus via the same mechanism Dispatch used.
func (h *Handler) ResumeWorkflow(ctx context.Context, childTaskID a2a.TaskID, input map[string]any, timeout time.Duration) (workflow.WorkflowState, error) {
	return h.Runtime.ResumeWorkflow(ctx, childTaskID, input, timeout)
}
