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
	"fmt"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"
)

// TaskStoreAdapter backs a2asrv.TaskStore with an InMemoryService, so the
// transport's tasks/get and tasks/resubscribe methods read the same task
// records this package's own Cancel path updates. Every Save is guarded by
// EnsureTransition, making this the one place the state machine sees every
// wire-level status change, not just the ones this runtime yields directly.
type TaskStoreAdapter struct {
	svc *InMemoryService
}

// NewTaskStoreAdapter wraps svc as an a2asrv.TaskStore.
func NewTaskStoreAdapter(svc *InMemoryService) *TaskStoreAdapter {
	return &TaskStoreAdapter{svc: svc}
}

// Save implements a2asrv.TaskStore.
func (a *TaskStoreAdapter) Save(_ context.Context, wire *a2a.Task) error {
	if wire == nil {
		return fmt.Errorf("a2atask: cannot save a nil task")
	}
	t := a.svc.getOrCreate(wire.ID, wire.ContextID)

	from := t.GetStatus().State
	to := wire.Status.State
	if to != "" && to != from {
		if err := EnsureTransition(string(wire.ID), from, to); err != nil {
			return err
		}
	}

	artifacts := make([]a2a.Artifact, 0, len(wire.Artifacts))
	for _, art := range wire.Artifacts {
		if art != nil {
			artifacts = append(artifacts, *art)
		}
	}
	status := Status{State: to, Message: wire.Status.Message}
	t.ReplaceSnapshot(status, wire.History, artifacts, wire.Metadata)
	return nil
}

// Get implements a2asrv.TaskStore.
func (a *TaskStoreAdapter) Get(ctx context.Context, taskID a2a.TaskID) (*a2a.Task, error) {
	t, err := a.svc.Get(ctx, taskID)
	if err != nil {
		return nil, a2a.ErrTaskNotFound
	}

	status, history, artifacts, metadata := t.Snapshot()
	wireArtifacts := make([]*a2a.Artifact, 0, len(artifacts))
	for i := range artifacts {
		wireArtifacts = append(wireArtifacts, &artifacts[i])
	}
	return &a2a.Task{
		ID:        t.ID,
		ContextID: t.ContextID,
		Status:    a2a.TaskStatus{State: status.State, Message: status.Message},
		History:   history,
		Artifacts: wireArtifacts,
		Metadata:  metadata,
	}, nil
}

var _ a2asrv.TaskStore = (*TaskStoreAdapter)(nil)
