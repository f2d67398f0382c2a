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

package agentcontext

import (
	"testing"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateContext_GeneratesIDAndEmitsCreated(t *testing.T) {
	m := NewManager()
	var notes []Notification
	m.Subscribe(func(n Notification) { notes = append(notes, n) })

	ctx, err := m.CreateContext("")
	require.NoError(t, err)
	require.NotEmpty(t, ctx.ID)

	require.Len(t, notes, 1)
	assert.Equal(t, "contextCreated", notes[0].Kind)
}

func TestCreateContext_UnknownIDFails(t *testing.T) {
	m := NewManager()
	_, err := m.CreateContext("ctx-new")
	require.Error(t, err)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestCreateContext_ReattachSameIdentity(t *testing.T) {
	m := NewManager()
	created, err := m.CreateContext("")
	require.NoError(t, err)

	reattached, err := m.CreateContext(created.ID)
	require.NoError(t, err)
	assert.Same(t, created, reattached)
}

func TestGetContext_NeverThrows(t *testing.T) {
	m := NewManager()
	assert.Nil(t, m.GetContext("nope"))
}

func TestHistory_AppendOnly(t *testing.T) {
	m := NewManager()
	ctx, err := m.CreateContext("")
	require.NoError(t, err)

	require.NoError(t, m.AddToHistory(ctx.ID, HistoryEntry{Role: a2a.MessageRoleUser, Content: []a2a.Part{a2a.TextPart{Text: "hi"}}}))
	require.NoError(t, m.AddToHistory(ctx.ID, HistoryEntry{Role: a2a.MessageRoleAgent, Content: []a2a.Part{a2a.TextPart{Text: "hello"}}}))

	hist, err := m.GetHistory(ctx.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, a2a.MessageRoleUser, hist[0].Role)
	assert.Equal(t, a2a.MessageRoleAgent, hist[1].Role)
}

func TestDeleteContext_CannotReattach(t *testing.T) {
	m := NewManager()
	ctx, err := m.CreateContext("")
	require.NoError(t, err)

	require.NoError(t, m.DeleteContext(ctx.ID))

	_, err = m.CreateContext(ctx.ID)
	require.Error(t, err)
}

func TestCleanupInactive_IsManualOnly(t *testing.T) {
	m := NewManager()
	ctx, err := m.CreateContext("")
	require.NoError(t, err)

	removed := m.CleanupInactive(0)
	require.Len(t, removed, 1)
	assert.Equal(t, ctx.ID, removed[0])
	assert.Nil(t, m.GetContext(ctx.ID))
}

func TestAddTask_UnknownContextFails(t *testing.T) {
	m := NewManager()
	err := m.AddTask("nope", a2a.TaskID("t1"))
	require.Error(t, err)
}
