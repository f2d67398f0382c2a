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

// Package eventbus wraps the a2a-go event queue with the per-task
// publish/finish contract the rest of the runtime depends on: every task
// gets exactly one bus, and finished() is observed at most once regardless
// of how many completion paths call it.
package eventbus

import (
	"context"
	"sync"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv/eventqueue"
)

// Bus is the per-task publish/finish surface the stream processor and
// workflow runtime publish onto.
type Bus interface {
	// Publish writes one A2A event (task, status-update, or
	// artifact-update) onto the wire.
	Publish(ctx context.Context, event a2a.Event) error

	// Finished marks the bus as done. Idempotent: only the first call has
	// any effect, matching the "finished() observed at most once" property.
	Finished(ctx context.Context) error

	// IsFinished reports whether Finished has already been observed.
	IsFinished() bool
}

// queueBus adapts an eventqueue.Queue to Bus.
type queueBus struct {
	taskID a2a.TaskID
	queue  eventqueue.Queue

	mu       sync.Mutex
	finished bool
}

// NewQueueBus wraps a transport-provided event queue for one task.
func NewQueueBus(taskID a2a.TaskID, queue eventqueue.Queue) Bus {
	return &queueBus{taskID: taskID, queue: queue}
}

func (b *queueBus) Publish(ctx context.Context, event a2a.Event) error {
	return b.queue.Write(ctx, event)
}

func (b *queueBus) Finished(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return nil
	}
	b.finished = true
	return nil
}

func (b *queueBus) IsFinished() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.finished
}

// Registry tracks the live event buses keyed by task id. The Agent Executor
// registers each request's bus for the duration of Execute.
type Registry struct {
	mu    sync.RWMutex
	buses map[a2a.TaskID]Bus
}

// NewRegistry creates an empty bus registry.
func NewRegistry() *Registry {
	return &Registry{buses: make(map[a2a.TaskID]Bus)}
}

// Register associates a bus with a task id, replacing any prior entry.
func (r *Registry) Register(taskID a2a.TaskID, bus Bus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buses[taskID] = bus
}

// Get returns the bus registered for a task id, if any.
func (r *Registry) Get(taskID a2a.TaskID) (Bus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.buses[taskID]
	return b, ok
}

// Unregister removes a task's bus, typically once its terminal event has
// been published.
func (r *Registry) Unregister(taskID a2a.TaskID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.buses, taskID)
}
