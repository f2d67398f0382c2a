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

package a2atask

import (
	"context"
	"testing"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStoreAdapter_SaveThenGetRoundTrips(t *testing.T) {
	store := NewTaskStoreAdapter(NewInMemoryService())
	ctx := context.Background()

	taskID := a2a.TaskID("task-1")
	wire := &a2a.Task{
		ID:        taskID,
		ContextID: "ctx-1",
		Status:    a2a.TaskStatus{State: StateWorking},
		Metadata:  map[string]any{"k": "v"},
	}
	require.NoError(t, store.Save(ctx, wire))

	got, err := store.Get(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, taskID, got.ID)
	assert.Equal(t, "ctx-1", got.ContextID)
	assert.Equal(t, StateWorking, got.Status.State)
	assert.Equal(t, "v", got.Metadata["k"])
}

func TestTaskStoreAdapter_SaveRejectsInvalidTransition(t *testing.T) {
	store := NewTaskStoreAdapter(NewInMemoryService())
	ctx := context.Background()
	taskID := a2a.TaskID("task-2")

	require.NoError(t, store.Save(ctx, &a2a.Task{ID: taskID, Status: a2a.TaskStatus{State: StateWorking}}))
	require.NoError(t, store.Save(ctx, &a2a.Task{ID: taskID, Status: a2a.TaskStatus{State: StateCompleted}}))

	err := store.Save(ctx, &a2a.Task{ID: taskID, Status: a2a.TaskStatus{State: StateWorking}})
	require.Error(t, err)
	var terr *InvalidTransitionError
	assert.ErrorAs(t, err, &terr)
}

func TestTaskStoreAdapter_GetUnknownTaskReturnsErrTaskNotFound(t *testing.T) {
	store := NewTaskStoreAdapter(NewInMemoryService())
	_, err := store.Get(context.Background(), a2a.TaskID("missing"))
	assert.ErrorIs(t, err, a2a.ErrTaskNotFound)
}

func TestInMemoryService_CancelTransitionsToCanceled(t *testing.T) {
	svc := NewInMemoryService()
	ctx := context.Background()

	task, err := svc.Create(ctx, "ctx-1")
	require.NoError(t, err)

	task.SetStatus(StateWorking, nil, nil)
	require.NoError(t, svc.Update(ctx, task))

	require.NoError(t, svc.Cancel(ctx, task.ID))

	got, err := svc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCanceled, got.GetStatus().State)

	err = svc.Cancel(ctx, task.ID)
	require.Error(t, err)
	var terr *InvalidTransitionError
	assert.ErrorAs(t, err, &terr)
}
