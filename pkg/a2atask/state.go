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

// Package a2atask implements the A2A task lifecycle: the state vocabulary,
// the allowed-transition table, and the in-memory task record used by the
// rest of the runtime.
package a2atask

import "github.com/a2aproject/a2a-go/a2a"

// State mirrors the wire-level a2a.TaskState values this runtime recognizes.
type State = a2a.TaskState

const (
	StateSubmitted     = a2a.TaskStateSubmitted
	StateWorking       = a2a.TaskStateWorking
	StateInputRequired = a2a.TaskStateInputRequired
	StateAuthRequired  = a2a.TaskStateAuthRequired
	StateCompleted     = a2a.TaskStateCompleted
	StateFailed        = a2a.TaskStateFailed
	StateCanceled      = a2a.TaskStateCanceled
	StateRejected      = a2a.TaskStateRejected
)

// terminal holds the states from which no further transition is possible.
var terminal = map[State]bool{
	StateCompleted: true,
	StateFailed:    true,
	StateCanceled:  true,
	StateRejected:  true,
}

// pending holds the states in which a task is paused awaiting a resume value.
var pending = map[State]bool{
	StateInputRequired: true,
	StateAuthRequired:  true,
}

// IsTerminal reports whether s admits no further transitions.
func IsTerminal(s State) bool { return terminal[s] }

// IsPending reports whether s is paused awaiting a resume value.
func IsPending(s State) bool { return pending[s] }
