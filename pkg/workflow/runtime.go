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

package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/google/uuid"

	"github.com/kadirpekel/agentcore/pkg/a2atask"
	"github.com/kadirpekel/agentcore/pkg/eventbus"
)

// DefaultDispatchTimeout is how long waitForFirstYield blocks when a plugin
// doesn't specify its own DispatchResponseTimeout.
const DefaultDispatchTimeout = 500 * time.Millisecond

// ErrPluginNotFound is returned when a dispatch names an unregistered plugin.
var ErrPluginNotFound = fmt.Errorf("workflow: plugin not found")

// ErrNotPaused is returned by ResumeWorkflow when the named execution isn't
// currently suspended on an interrupted yield.
var ErrNotPaused = fmt.Errorf("workflow: execution is not paused")

// ErrResumeInProgress guards against two concurrent ResumeWorkflow calls
// racing to unblock the same suspended execution.
var ErrResumeInProgress = fmt.Errorf("workflow: a resume is already in progress for this execution")

// ErrExecutionNotFound is returned when a task id has no live execution.
var ErrExecutionNotFound = fmt.Errorf("workflow: execution not found")

// ErrShuttingDown is returned by Dispatch once Shutdown has been called.
var ErrShuttingDown = fmt.Errorf("workflow: runtime is shutting down")

// ValidationFailedError wraps the issues a schema validator reported,
// whether at dispatch time or at resume time.
type ValidationFailedError struct {
	Issues []ValidationIssue
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("workflow: validation failed (%d issue(s))", len(e.Issues))
}

// resumeMsg is what unblocks a parked yield: the resume value, or an error
// (context canceled, runtime shutting down).
type resumeMsg struct {
	value ResumeValue
	err   error
}

// execution is the live bookkeeping for one dispatched workflow run.
type execution struct {
	plugin    *Plugin
	taskID    a2a.TaskID
	contextID string
	bus       eventbus.Bus

	cancel context.CancelFunc

	resumeCh chan resumeMsg
	doneCh   chan struct{}

	mu             sync.Mutex
	firstDelivered bool
	firstYieldCh   chan WorkflowState
	lastPause      *WorkflowState
	resuming       bool
	result         any
	resultErr      error

	// currentState is this execution's last task state admitted through
	// EnsureTransition, the guard every recorded state change must pass.
	currentState a2atask.State
}

// Runtime is the workflow plugin registry and execution scheduler: it owns
// plugin registration, dispatch (starting a new paused-capable execution),
// waiting for a plugin's first yield, and resuming a suspended execution
// with validated input.
type Runtime struct {
	mu           sync.RWMutex
	plugins      map[string]*Plugin
	executions   map[a2a.TaskID]*execution
	shuttingDown bool
}

// NewRuntime creates an empty workflow runtime.
func NewRuntime() *Runtime {
	return &Runtime{
		plugins:    make(map[string]*Plugin),
		executions: make(map[a2a.TaskID]*execution),
	}
}

// Register validates and admits a plugin under its canonicalized id,
// rejecting duplicates.
func (r *Runtime) Register(p *Plugin) error {
	if err := ValidateRegistration(p); err != nil {
		return err
	}
	canonical := CanonicalizeID(p.ID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.plugins[canonical]; exists {
		return fmt.Errorf("workflow: plugin id %q already registered", canonical)
	}
	registered := *p
	registered.ID = canonical
	r.plugins[canonical] = &registered
	return nil
}

// Lookup returns the plugin registered under a canonical or raw id.
func (r *Runtime) Lookup(pluginID string) (*Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[CanonicalizeID(pluginID)]
	return p, ok
}

// IsPaused reports whether taskID names a live execution currently
// suspended on an interrupted yield, the question the Agent Executor asks
// to decide between routing an inbound message to resumeWorkflow or to a
// fresh AI turn.
func (r *Runtime) IsPaused(taskID a2a.TaskID) bool {
	r.mu.RLock()
	es, ok := r.executions[taskID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.lastPause != nil
}

// Plugins returns every registered plugin, for building the dispatch tool
// bundle the Tool Registry advertises to the LLM.
func (r *Runtime) Plugins() []*Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		out = append(out, p)
	}
	return out
}

// Dispatch validates params against the plugin's input schema, allocates a
// fresh task id, and starts the execution's goroutine in the working state.
// It does not wait for any yield; call WaitForFirstYield for that.
func (r *Runtime) Dispatch(ctx context.Context, pluginID, contextID string, params, metadata map[string]any, bus eventbus.Bus) (a2a.TaskID, error) {
	r.mu.RLock()
	shuttingDown := r.shuttingDown
	r.mu.RUnlock()
	if shuttingDown {
		return "", ErrShuttingDown
	}

	plugin, ok := r.Lookup(pluginID)
	if !ok {
		return "", ErrPluginNotFound
	}
	if plugin.InputSchema != nil {
		if issues := plugin.InputSchema.Validate(params); len(issues) > 0 {
			return "", &ValidationFailedError{Issues: issues}
		}
	}

	execCtx, cancel := context.WithCancel(ctx)
	es := &execution{
		plugin:       plugin,
		taskID:       a2a.TaskID("task-" + uuid.Must(uuid.NewV7()).String()),
		contextID:    contextID,
		bus:          bus,
		cancel:       cancel,
		resumeCh:     make(chan resumeMsg),
		doneCh:       make(chan struct{}),
		firstYieldCh: make(chan WorkflowState, 1),
		currentState: a2atask.StateWorking,
	}

	r.mu.Lock()
	r.executions[es.taskID] = es
	r.mu.Unlock()

	go r.run(execCtx, es, params, metadata)

	return es.taskID, nil
}

func (r *Runtime) run(ctx context.Context, es *execution, params, metadata map[string]any) {
	wctx := WorkflowContext{
		ContextID:  es.contextID,
		TaskID:     es.taskID,
		Parameters: params,
		Metadata:   metadata,
	}
	result, err := es.plugin.Execute(wctx, r.yieldFunc(ctx, es))

	es.mu.Lock()
	es.result = result
	es.resultErr = err
	es.mu.Unlock()
	close(es.doneCh)
}

// yieldFunc is the generator pump: every yielded WorkflowState is published
// (except dispatch-response, which is returned directly to whoever is
// waiting rather than placed on the bus) and, unless it's an interrupted
// yield, the plugin goroutine is immediately handed a continuation so it
// can proceed to its next yield or return. An interrupted yield blocks the
// goroutine on resumeCh until ResumeWorkflow supplies a value.
func (r *Runtime) yieldFunc(ctx context.Context, es *execution) YieldFunc {
	return func(state WorkflowState) (ResumeValue, error) {
		es.mu.Lock()
		first := !es.firstDelivered
		es.firstDelivered = true
		capture := es.firstYieldCh
		if state.Tag == TagInterrupted {
			pause := state
			es.lastPause = &pause
		}
		es.mu.Unlock()

		if first {
			select {
			case capture <- state:
			default:
			}
		}

		if state.Tag != TagDispatchResponse {
			r.publishYield(ctx, es, state)
		}

		if state.Tag == TagInterrupted {
			select {
			case msg := <-es.resumeCh:
				es.mu.Lock()
				es.firstDelivered = false
				es.lastPause = nil
				es.mu.Unlock()
				return msg.value, msg.err
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		return nil, nil
	}
}

// transitionState guards a state change with a2atask.EnsureTransition before
// recording it as the execution's new current state, escalating an invalid
// transition to failed rather than admitting it.
func (r *Runtime) transitionState(es *execution, to a2atask.State) a2atask.State {
	es.mu.Lock()
	from := es.currentState
	es.mu.Unlock()

	if err := a2atask.EnsureTransition(string(es.taskID), from, to); err != nil {
		slog.Error("workflow: invalid task transition, escalating to failed", "taskId", es.taskID, "from", from, "to", to, "error", err)
		to = a2atask.StateFailed
	}

	es.mu.Lock()
	es.currentState = to
	es.mu.Unlock()
	return to
}

// publishYield translates a non-dispatch-response WorkflowState into the
// corresponding A2A event and writes it onto the execution's bus. Every
// state-changing tag is routed through transitionState first, so the task
// state machine guards real events rather than only its own unit tests.
func (r *Runtime) publishYield(ctx context.Context, es *execution, state WorkflowState) {
	if es.bus == nil {
		return
	}
	switch state.Tag {
	case TagStatusUpdate:
		next := r.transitionState(es, a2atask.StateWorking)
		_ = es.bus.Publish(ctx, &a2a.TaskStatusUpdateEvent{
			TaskID:    es.taskID,
			ContextID: es.contextID,
			Status:    a2a.TaskStatus{State: next, Message: state.Message},
		})
	case TagArtifact:
		if state.Artifact == nil {
			return
		}
		_ = es.bus.Publish(ctx, &a2a.TaskArtifactUpdateEvent{
			TaskID:    es.taskID,
			ContextID: es.contextID,
			Artifact:  *state.Artifact,
			Append:    state.Append,
			LastChunk: state.LastChunk,
		})
	case TagInterrupted:
		next := r.transitionState(es, state.Reason)
		_ = es.bus.Publish(ctx, &a2a.TaskStatusUpdateEvent{
			TaskID:    es.taskID,
			ContextID: es.contextID,
			Status:    a2a.TaskStatus{State: next, Message: state.Message},
		})
	case TagReject:
		next := r.transitionState(es, a2atask.StateRejected)
		_ = es.bus.Publish(ctx, &a2a.TaskStatusUpdateEvent{
			TaskID:    es.taskID,
			ContextID: es.contextID,
			Status: a2a.TaskStatus{
				State:   next,
				Message: a2a.NewMessage(a2a.MessageRoleAgent, a2a.TextPart{Text: state.RejectReason}),
			},
			Final: true,
		})
	}
}

// publishValidationPause re-emits the execution's current pause on the bus
// with validationErrors attached: the task's state has not changed, so this
// bypasses transitionState rather than treating the re-emit as a transition.
func (r *Runtime) publishValidationPause(ctx context.Context, es *execution, pause *WorkflowState, issues []ValidationIssue) {
	if es.bus == nil {
		return
	}
	_ = es.bus.Publish(ctx, &a2a.TaskStatusUpdateEvent{
		TaskID:    es.taskID,
		ContextID: es.contextID,
		Status:    a2a.TaskStatus{State: pause.Reason, Message: pause.Message},
		Metadata:  map[string]any{"validationErrors": issues},
	})
}

// WaitForFirstYield blocks until the execution's first yield arrives, the
// execution finishes without yielding, or timeout elapses. A zero timeout
// falls back to the plugin's DispatchResponseTimeout, or DefaultDispatchTimeout.
func (r *Runtime) WaitForFirstYield(taskID a2a.TaskID, timeout time.Duration) (WorkflowState, error) {
	r.mu.RLock()
	es, ok := r.executions[taskID]
	r.mu.RUnlock()
	if !ok {
		return WorkflowState{}, ErrExecutionNotFound
	}
	return r.waitFor(es, resolveTimeout(es.plugin, timeout))
}

func resolveTimeout(p *Plugin, override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	if p != nil && p.DispatchResponseTimeout > 0 {
		return p.DispatchResponseTimeout
	}
	return DefaultDispatchTimeout
}

func (r *Runtime) waitFor(es *execution, timeout time.Duration) (WorkflowState, error) {
	es.mu.Lock()
	capture := es.firstYieldCh
	es.mu.Unlock()
	return waitOnChannels(capture, es.doneCh, func() (any, error) {
		es.mu.Lock()
		defer es.mu.Unlock()
		return es.result, es.resultErr
	}, timeout)
}

func waitOnChannels(capture chan WorkflowState, done chan struct{}, getResult func() (any, error), timeout time.Duration) (WorkflowState, error) {
	select {
	case state := <-capture:
		return state, nil
	case <-done:
		result, err := getResult()
		if err != nil {
			return WorkflowState{}, err
		}
		return WorkflowState{Tag: TagDispatchResponse, Parts: resultToParts(result)}, nil
	case <-time.After(timeout):
		return WorkflowState{}, nil
	}
}

func resultToParts(result any) []a2a.Part {
	if result == nil {
		return nil
	}
	if parts, ok := result.([]a2a.Part); ok {
		return parts
	}
	return []a2a.Part{a2a.TextPart{Text: fmt.Sprint(result)}}
}

// ResumeWorkflow validates input against the paused yield's schema (if any)
// and, if it passes, supplies it as the continuation value, then waits for
// the execution's next yield exactly like WaitForFirstYield does. A
// concurrent resume on the same execution is rejected outright, and a
// validation failure leaves the execution paused rather than consuming it.
func (r *Runtime) ResumeWorkflow(ctx context.Context, taskID a2a.TaskID, input map[string]any, timeout time.Duration) (WorkflowState, error) {
	r.mu.RLock()
	es, ok := r.executions[taskID]
	r.mu.RUnlock()
	if !ok {
		return WorkflowState{}, ErrExecutionNotFound
	}

	es.mu.Lock()
	if es.resuming {
		es.mu.Unlock()
		return WorkflowState{}, ErrResumeInProgress
	}
	pause := es.lastPause
	if pause == nil {
		es.mu.Unlock()
		return WorkflowState{}, ErrNotPaused
	}
	es.resuming = true
	es.firstYieldCh = make(chan WorkflowState, 1)
	capture := es.firstYieldCh
	es.mu.Unlock()

	defer func() {
		es.mu.Lock()
		es.resuming = false
		es.mu.Unlock()
	}()

	if pause.InputSchema != nil {
		if issues := pause.InputSchema.Validate(input); len(issues) > 0 {
			r.publishValidationPause(ctx, es, pause, issues)
			return WorkflowState{}, &ValidationFailedError{Issues: issues}
		}
	}

	select {
	case es.resumeCh <- resumeMsg{value: input}:
	case <-ctx.Done():
		return WorkflowState{}, ctx.Err()
	}

	return waitOnChannels(capture, es.doneCh, func() (any, error) {
		es.mu.Lock()
		defer es.mu.Unlock()
		return es.result, es.resultErr
	}, resolveTimeout(es.plugin, timeout))
}

// Cancel cancels a running execution's context, unblocking any parked yield
// with a cancellation error, and removes it from the registry.
func (r *Runtime) Cancel(taskID a2a.TaskID) error {
	r.mu.Lock()
	es, ok := r.executions[taskID]
	if ok {
		delete(r.executions, taskID)
	}
	r.mu.Unlock()
	if !ok {
		return ErrExecutionNotFound
	}
	es.cancel()
	return nil
}

// Shutdown stops accepting new dispatches and cancels every live execution.
func (r *Runtime) Shutdown() {
	r.mu.Lock()
	r.shuttingDown = true
	executions := make([]*execution, 0, len(r.executions))
	for _, es := range r.executions {
		executions = append(executions, es)
	}
	r.executions = make(map[a2a.TaskID]*execution)
	r.mu.Unlock()

	for _, es := range executions {
		es.cancel()
	}
}
