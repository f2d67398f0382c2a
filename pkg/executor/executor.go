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

// Package executor implements the Agent Executor: the single entry point
// the transport shell calls on every incoming message, routing it to a
// workflow resume or a fresh AI turn.
//
// Grounded on the teacher's v2/server.Executor, generalized from Hector's
// runner/session plumbing to this core's AI Handler / Workflow Handler
// split.
package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"

	"github.com/kadirpekel/agentcore/internal/tracing"
	"github.com/kadirpekel/agentcore/pkg/a2atask"
	"github.com/kadirpekel/agentcore/pkg/aiturn"
	agentcontext "github.com/kadirpekel/agentcore/pkg/context"
	"github.com/kadirpekel/agentcore/pkg/eventbus"
	"github.com/kadirpekel/agentcore/pkg/streamevent"
	"github.com/kadirpekel/agentcore/pkg/workflow"
	"github.com/kadirpekel/agentcore/pkg/workflowhandler"
)

// Executor bridges the transport's a2asrv.AgentExecutor contract to the AI
// Handler and Workflow Handler.
type Executor struct {
	Contexts    *agentcontext.Manager
	Runtime     *workflow.Runtime
	AIHandler   *aiturn.Handler
	WorkflowH   *workflowhandler.Handler
	Buses       *eventbus.Registry
	ResumeInput func(msg *a2a.Message) map[string]any

	// Tracer is nil-safe; a nil Tracer yields no-op spans.
	Tracer *tracing.Tracer
}

// New creates an Agent Executor over its collaborators. resumeInput
// extracts the structured resume payload from an inbound message targeting
// a paused task; nil falls back to an empty input map.
func New(contexts *agentcontext.Manager, runtime *workflow.Runtime, ai *aiturn.Handler, wh *workflowhandler.Handler, buses *eventbus.Registry, resumeInput func(*a2a.Message) map[string]any) *Executor {
	return &Executor{Contexts: contexts, Runtime: runtime, AIHandler: ai, WorkflowH: wh, Buses: buses, ResumeInput: resumeInput}
}

// WithTracer attaches a Tracer, wrapping the AI turn and each workflow
// dispatch in a span. Returns the same Executor for chaining.
func (e *Executor) WithTracer(t *tracing.Tracer) *Executor {
	e.Tracer = t
	return e
}

// Execute implements a2asrv.AgentExecutor.
func (e *Executor) Execute(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	if reqCtx.Message == nil {
		return fmt.Errorf("executor: message not provided")
	}

	taskID := reqCtx.TaskID
	contextID := reqCtx.ContextID
	bus := eventbus.NewQueueBus(taskID, queue)
	if e.Buses != nil {
		e.Buses.Register(taskID, bus)
		defer e.Buses.Unregister(taskID)
	}

	if taskID != "" && e.Runtime.IsPaused(taskID) {
		input := map[string]any{}
		if e.ResumeInput != nil {
			input = e.ResumeInput(reqCtx.Message)
		}
		_, err := e.WorkflowH.ResumeWorkflow(ctx, taskID, input, 0)
		if err != nil {
			slog.Error("executor: resume failed", "taskId", taskID, "error", err)
		}
		return nil
	}

	ctxRecord, err := e.Contexts.GetOrCreateContext(contextID)
	if err != nil {
		return fmt.Errorf("executor: %w", err)
	}

	onDispatch := func(ctx context.Context, toolName string, input map[string]any) (a2a.TaskID, string, string, []a2a.Part, error) {
		dispatchCtx, span := e.Tracer.StartWorkflowDispatch(ctx, toolName, ctxRecord.ID)
		defer span.End()
		childTaskID, name, desc, parts, err := e.WorkflowH.DispatchWorkflow(dispatchCtx, toolName, input, bus)
		e.Tracer.RecordError(span, err)
		return childTaskID, name, desc, parts, err
	}

	turnCtx, span := e.Tracer.StartAITurn(ctx, ctxRecord.ID, string(taskID))
	defer span.End()
	_, err = e.AIHandler.HandleStreamingAIProcessing(turnCtx, reqCtx.Message, ctxRecord.ID, taskID, bus, streamevent.WorkflowDispatchFunc(onDispatch))
	e.Tracer.RecordError(span, err)
	return err
}

// Cancel implements a2asrv.AgentExecutor.
func (e *Executor) Cancel(ctx context.Context, reqCtx *a2asrv.RequestContext, queue eventqueue.Queue) error {
	bus := eventbus.NewQueueBus(reqCtx.TaskID, queue)
	if err := e.Runtime.Cancel(reqCtx.TaskID); err != nil && err != workflow.ErrExecutionNotFound {
		slog.Warn("executor: cancel workflow execution", "taskId", reqCtx.TaskID, "error", err)
	}
	return bus.Publish(ctx, &a2a.TaskStatusUpdateEvent{
		TaskID:    reqCtx.TaskID,
		ContextID: reqCtx.ContextID,
		Status:    a2a.TaskStatus{State: a2atask.StateCanceled},
		Final:     true,
	})
}

var _ a2asrv.AgentExecutor = (*Executor)(nil)
