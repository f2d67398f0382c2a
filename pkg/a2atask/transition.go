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

import "fmt"

// allowed is the A2A task-lifecycle transition table. Terminal states have
// no entry and therefore admit nothing.
var allowed = map[State]map[State]bool{
	StateSubmitted: {
		StateWorking:  true,
		StateCanceled: true,
		StateRejected: true,
	},
	StateWorking: {
		StateWorking:       true,
		StateInputRequired: true,
		StateAuthRequired:  true,
		StateCompleted:     true,
		StateFailed:        true,
		StateCanceled:      true,
	},
	StateInputRequired: {
		StateWorking:  true,
		StateCanceled: true,
		StateFailed:   true,
	},
	StateAuthRequired: {
		StateWorking:  true,
		StateCanceled: true,
		StateFailed:   true,
	},
}

// InvalidTransitionError is returned by EnsureTransition for a disallowed pair.
type InvalidTransitionError struct {
	TaskID string
	From    State
	To      State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid task transition for %q: %s -> %s", e.TaskID, e.From, e.To)
}

// EnsureTransition is the pure, stateless, side-effect-free guard every
// caller must pass before recording a new task state. It never admits a
// transition out of a terminal state.
func EnsureTransition(taskID string, from, to State) error {
	if IsTerminal(from) {
		return &InvalidTransitionError{TaskID: taskID, From: from, To: to}
	}
	if !allowed[from][to] {
		return &InvalidTransitionError{TaskID: taskID, From: from, To: to}
	}
	return nil
}
