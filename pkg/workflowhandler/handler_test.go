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

package workflowhandler

import (
	"context"
	"testing"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agentcontext "github.com/kadirpekel/agentcore/pkg/context"
	"github.com/kadirpekel/agentcore/pkg/demoworkflow"
	"github.com/kadirpekel/agentcore/pkg/workflow"
)

type fakeBus struct {
	published []a2a.Event
}

func (b *fakeBus) Publish(_ context.Context, ev a2a.Event) error {
	b.published = append(b.published, ev)
	return nil
}
func (*fakeBus) Finished(context.Context) error { return nil }
func (*fakeBus) IsFinished() bool               { return false }

func newHandler(t *testing.T) *Handler {
	t.Helper()
	plugin, err := demoworkflow.Approval()
	require.NoError(t, err)

	runtime := workflow.NewRuntime()
	require.NoError(t, runtime.Register(plugin))

	return New(runtime, agentcontext.NewManager())
}

func TestDispatchWorkflow_HappyPathPausesOnFirstYield(t *testing.T) {
	h := newHandler(t)
	bus := &fakeBus{}

	childTaskID, name, desc, parts, err := h.DispatchWorkflow(context.Background(), "dispatch_workflow_approval", map[string]any{"request": "buy widgets"}, bus)
	require.NoError(t, err)

	assert.NotEmpty(t, childTaskID)
	assert.Equal(t, "Approval", name)
	assert.NotEmpty(t, desc)
	assert.Empty(t, parts)

	require.Len(t, bus.published, 2)
	task, ok := bus.published[0].(*a2a.Task)
	require.True(t, ok)
	assert.Equal(t, childTaskID, task.ID)
	assert.Equal(t, a2a.TaskStateSubmitted, task.Status.State)

	update, ok := bus.published[1].(*a2a.TaskStatusUpdateEvent)
	require.True(t, ok)
	assert.Equal(t, childTaskID, update.TaskID)
	assert.Equal(t, a2a.TaskStateWorking, update.Status.State)
}

func TestDispatchWorkflow_RejectsNonDispatchToolName(t *testing.T) {
	h := newHandler(t)

	_, _, _, _, err := h.DispatchWorkflow(context.Background(), "search", map[string]any{}, &fakeBus{})
	assert.Error(t, err)
}

func TestDispatchWorkflow_RejectsUnknownPlugin(t *testing.T) {
	h := newHandler(t)

	_, _, _, _, err := h.DispatchWorkflow(context.Background(), "dispatch_workflow_nonexistent", map[string]any{}, &fakeBus{})
	assert.Error(t, err)
}

func TestResumeWorkflow_DelegatesToRuntime(t *testing.T) {
	h := newHandler(t)
	bus := &fakeBus{}

	childTaskID, _, _, _, err := h.DispatchWorkflow(context.Background(), "dispatch_workflow_approval", map[string]any{"request": "buy widgets"}, bus)
	require.NoError(t, err)

	final, err := h.ResumeWorkflow(context.Background(), childTaskID, map[string]any{"approve": true}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, workflow.TagDispatchResponse, final.Tag)
	require.Len(t, final.Parts, 1)
	tp, ok := final.Parts[0].(a2a.TextPart)
	require.True(t, ok)
	assert.Equal(t, "approved: buy widgets", tp.Text)
}
