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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureTransition_Allowed(t *testing.T) {
	cases := []struct {
		from, to State
	}{
		{StateSubmitted, StateWorking},
		{StateSubmitted, StateCanceled},
		{StateSubmitted, StateRejected},
		{StateWorking, StateWorking},
		{StateWorking, StateInputRequired},
		{StateWorking, StateAuthRequired},
		{StateWorking, StateCompleted},
		{StateWorking, StateFailed},
		{StateWorking, StateCanceled},
		{StateInputRequired, StateWorking},
		{StateInputRequired, StateCanceled},
		{StateInputRequired, StateFailed},
		{StateAuthRequired, StateWorking},
		{StateAuthRequired, StateCanceled},
		{StateAuthRequired, StateFailed},
	}
	for _, c := range cases {
		require.NoError(t, EnsureTransition("t1", c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestEnsureTransition_RejectsTerminalOutgoing(t *testing.T) {
	for _, from := range []State{StateCompleted, StateFailed, StateCanceled, StateRejected} {
		err := EnsureTransition("t1", from, StateWorking)
		require.Error(t, err)
		var ite *InvalidTransitionError
		require.ErrorAs(t, err, &ite)
		assert.Equal(t, from, ite.From)
	}
}

func TestEnsureTransition_RejectsUnlistedPair(t *testing.T) {
	err := EnsureTransition("t1", StateSubmitted, StateCompleted)
	require.Error(t, err)

	err = EnsureTransition("t1", StateSubmitted, StateInputRequired)
	require.Error(t, err)
}

func TestIsTerminalIsPending(t *testing.T) {
	assert.True(t, IsTerminal(StateCompleted))
	assert.True(t, IsTerminal(StateRejected))
	assert.False(t, IsTerminal(StateWorking))

	assert.True(t, IsPending(StateInputRequired))
	assert.True(t, IsPending(StateAuthRequired))
	assert.False(t, IsPending(StateWorking))
}
