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
	"maps"
	"sync"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/google/uuid"
)

// Task is a unit of work belonging to exactly one context. It carries the
// A2A-visible state plus the paused-generator bookkeeping a workflow
// execution needs across a pause/resume boundary.
type Task struct {
	ID        a2a.TaskID
	ContextID string

	Status Status

	History   []*a2a.Message
	Artifacts []a2a.Artifact
	Metadata  map[string]any

	// PauseInfo is set while Status.State is input-required or auth-required.
	PauseInfo *PauseInfo

	CreatedAt time.Time
	UpdatedAt time.Time

	mu sync.RWMutex
}

// Status is the current state plus an optional carried message.
type Status struct {
	State     State
	Message   *a2a.Message
	Timestamp time.Time
	Error     error
}

// PauseInfo records why and how a task is paused.
type PauseInfo struct {
	Reason      State // StateInputRequired or StateAuthRequired
	Message     *a2a.Message
	InputSchema any
}

// New creates a new task in the submitted state.
func New(contextID string) *Task {
	now := time.Now()
	return &Task{
		ID:        a2a.TaskID(uuid.NewString()),
		ContextID: contextID,
		Status: Status{
			State:     StateSubmitted,
			Timestamp: now,
		},
		Metadata:  make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetStatus moves the task to a new status without validating the
// transition; callers must call EnsureTransition first.
func (t *Task) SetStatus(state State, message *a2a.Message, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = Status{State: state, Message: message, Timestamp: time.Now(), Error: err}
	t.UpdatedAt = time.Now()
}

// GetStatus returns the current status.
func (t *Task) GetStatus() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Status
}

// Pause records pause info and moves the task into a pending state.
func (t *Task) Pause(info *PauseInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.PauseInfo = info
	t.Status = Status{State: info.Reason, Message: info.Message, Timestamp: time.Now()}
	t.UpdatedAt = time.Now()
}

// ClearPause clears the stored pause info, e.g. on a successful resume.
func (t *Task) ClearPause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.PauseInfo = nil
	t.UpdatedAt = time.Now()
}

// AppendHistory appends a message to the task-local history.
func (t *Task) AppendHistory(msg *a2a.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.History = append(t.History, msg)
	t.UpdatedAt = time.Now()
}

// AddArtifact records an artifact produced by this task.
func (t *Task) AddArtifact(artifact a2a.Artifact) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Artifacts = append(t.Artifacts, artifact)
	t.UpdatedAt = time.Now()
}

// SetMetadata sets a metadata value.
func (t *Task) SetMetadata(key string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Metadata[key] = value
	t.UpdatedAt = time.Now()
}

// Snapshot returns an independent copy of the task's current status,
// history, artifacts, and metadata, safe to hand to a caller outside the
// lock.
func (t *Task) Snapshot() (Status, []*a2a.Message, []a2a.Artifact, map[string]any) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	history := append([]*a2a.Message(nil), t.History...)
	artifacts := append([]a2a.Artifact(nil), t.Artifacts...)
	return t.Status, history, artifacts, maps.Clone(t.Metadata)
}

// ReplaceSnapshot overwrites status, history, artifacts, and metadata
// wholesale, the shape a2asrv.TaskStore.Save hands over on every call rather
// than as an incremental update.
func (t *Task) ReplaceSnapshot(status Status, history []*a2a.Message, artifacts []a2a.Artifact, metadata map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = status
	t.History = history
	t.Artifacts = artifacts
	if metadata != nil {
		t.Metadata = metadata
	}
	t.UpdatedAt = time.Now()
}

// Service manages task records. It is process-lifetime only: no
// implementation here persists across restarts, per the Non-goal that task
// durability is out of scope.
type Service interface {
	Create(ctx context.Context, contextID string) (*Task, error)
	Get(ctx context.Context, taskID a2a.TaskID) (*Task, error)
	Update(ctx context.Context, task *Task) error
	Cancel(ctx context.Context, taskID a2a.TaskID) error
	List(ctx context.Context, contextID string) ([]*Task, error)
}

// InMemoryService is the only Service implementation: tasks live for the
// process's uptime, matching spec Non-goals around cross-process durability.
type InMemoryService struct {
	tasks map[a2a.TaskID]*Task
	mu    sync.RWMutex
}

// NewInMemoryService creates an empty in-memory task service.
func NewInMemoryService() *InMemoryService {
	return &InMemoryService{tasks: make(map[a2a.TaskID]*Task)}
}

func (s *InMemoryService) Create(_ context.Context, contextID string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := New(contextID)
	s.tasks[t.ID] = t
	return t, nil
}

// getOrCreate returns the task stored under taskID, creating a fresh record
// under that exact id (rather than minting a new one, as New does) the
// first time the store sees it -- the case a2asrv.TaskStore.Save hits for a
// task whose opening event this store never observed directly.
func (s *InMemoryService) getOrCreate(taskID a2a.TaskID, contextID string) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[taskID]; ok {
		return t
	}
	now := time.Now()
	t := &Task{
		ID:        taskID,
		ContextID: contextID,
		Status:    Status{State: StateSubmitted, Timestamp: now},
		Metadata:  make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tasks[taskID] = t
	return t
}

func (s *InMemoryService) Get(_ context.Context, taskID a2a.TaskID) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

func (s *InMemoryService) Update(_ context.Context, task *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return ErrTaskNotFound
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *InMemoryService) Cancel(_ context.Context, taskID a2a.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	from := t.GetStatus().State
	if err := EnsureTransition(string(taskID), from, StateCanceled); err != nil {
		return err
	}
	t.SetStatus(StateCanceled, nil, nil)
	return nil
}

func (s *InMemoryService) List(_ context.Context, contextID string) ([]*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*Task
	for _, t := range s.tasks {
		if t.ContextID == contextID {
			result = append(result, t)
		}
	}
	return result, nil
}

// TaskError is a kind-tagged task error, matching the taxonomy in the error
// handling design: not-found is surfaced as Invalid Params/Invalid Request.
type TaskError struct {
	Code    string
	Message string
}

func (e *TaskError) Error() string { return e.Message }

var ErrTaskNotFound = &TaskError{Code: "task_not_found", Message: "task not found"}
