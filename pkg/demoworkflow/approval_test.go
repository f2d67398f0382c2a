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

package demoworkflow

import (
	"context"
	"testing"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentcore/pkg/a2atask"
	"github.com/kadirpekel/agentcore/pkg/workflow"
)

type fakeBus struct{}

func (fakeBus) Publish(context.Context, a2a.Event) error { return nil }
func (fakeBus) Finished(context.Context) error           { return nil }
func (fakeBus) IsFinished() bool                         { return false }

func TestApproval_PausesThenCompletesOnApprove(t *testing.T) {
	plugin, err := Approval()
	require.NoError(t, err)

	r := workflow.NewRuntime()
	require.NoError(t, r.Register(plugin))

	taskID, err := r.Dispatch(context.Background(), "approval", "ctx1", map[string]any{"request": "buy widgets"}, nil, fakeBus{})
	require.NoError(t, err)

	pause, err := r.WaitForFirstYield(taskID, time.Second)
	require.NoError(t, err)
	assert.Equal(t, workflow.TagInterrupted, pause.Tag)
	assert.Equal(t, a2atask.StateInputRequired, pause.Reason)

	final, err := r.ResumeWorkflow(context.Background(), taskID, map[string]any{"approve": true}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, workflow.TagDispatchResponse, final.Tag)
	require.Len(t, final.Parts, 1)
	tp, ok := final.Parts[0].(a2a.TextPart)
	require.True(t, ok)
	assert.Equal(t, "approved: buy widgets", tp.Text)
}

func TestApproval_RejectsOnDecline(t *testing.T) {
	plugin, err := Approval()
	require.NoError(t, err)

	r := workflow.NewRuntime()
	require.NoError(t, r.Register(plugin))

	taskID, err := r.Dispatch(context.Background(), "approval", "ctx1", map[string]any{"request": "buy widgets"}, nil, fakeBus{})
	require.NoError(t, err)

	_, err = r.WaitForFirstYield(taskID, time.Second)
	require.NoError(t, err)

	final, err := r.ResumeWorkflow(context.Background(), taskID, map[string]any{"approve": false}, time.Second)
	require.NoError(t, err)
	assert.Empty(t, final.Parts)
}

func TestApproval_ResumeRejectsInvalidInput(t *testing.T) {
	plugin, err := Approval()
	require.NoError(t, err)

	r := workflow.NewRuntime()
	require.NoError(t, r.Register(plugin))

	taskID, err := r.Dispatch(context.Background(), "approval", "ctx1", map[string]any{"request": "buy widgets"}, nil, fakeBus{})
	require.NoError(t, err)
	_, err = r.WaitForFirstYield(taskID, time.Second)
	require.NoError(t, err)

	_, err = r.ResumeWorkflow(context.Background(), taskID, map[string]any{"approve": "yes"}, time.Second)
	assert.Error(t, err)
}
