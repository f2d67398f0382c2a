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

// Package context implements the process-lifetime keyed store of
// conversation contexts required by A2A: history, task associations, and
// metadata, with explicit create/reattach/not-found semantics.
//
// The shape follows the teacher's in-memory session service
// (github.com/kadirpekel/hector/pkg/session), generalized from a
// (app, user, session) tuple to A2A's single contextId addressing, and from
// "session" to "context" terminology throughout.
package agentcontext

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/google/uuid"
)

// State key scoping prefixes, carried over from the teacher's session
// package: app: is shared across contexts, user: persists per user, temp:
// is meant to be cleared at the end of a turn.
const (
	KeyPrefixApp  = "app:"
	KeyPrefixUser = "user:"
	KeyPrefixTemp = "temp:"
)

// HistoryEntry is one turn of conversation history.
type HistoryEntry struct {
	Role      a2a.MessageRole
	Content   []a2a.Part
	Timestamp time.Time
}

// Context is a conversation scope: history, associated task ids, and
// metadata, addressed by a single opaque contextId.
type Context struct {
	ID string

	mu           sync.RWMutex
	history      []HistoryEntry
	taskIDs      map[a2a.TaskID]struct{}
	metadata     map[string]any
	lastActivity time.Time
	createdAt    time.Time
}

func newContext(id string) *Context {
	now := time.Now()
	return &Context{
		ID:           id,
		taskIDs:      make(map[a2a.TaskID]struct{}),
		metadata:     make(map[string]any),
		lastActivity: now,
		createdAt:    now,
	}
}

func (c *Context) touch() {
	c.lastActivity = time.Now()
}

// NotFoundError is returned whenever an operation addresses an unknown
// contextId. hint offers a short remediation note for the caller.
type NotFoundError struct {
	ContextID string
	Hint      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("context not found: %s (%s)", e.ContextID, e.Hint)
}

// Notification is published on genuine create/update/delete transitions so
// external subscribers (e.g. metrics, audit logs) can observe context
// lifecycle without polling.
type Notification struct {
	Kind      string // "contextCreated" | "contextUpdated" | "contextDeleted"
	ContextID string
}

// Listener receives context lifecycle notifications.
type Listener func(Notification)

// Manager is the process-wide, shared, mutable singleton context store.
// All mutation happens on the single cooperative scheduler, so a coarse
// mutex here (rather than fine-grained per-context locks only) is
// sufficient and matches the "shared mutable singleton" resource policy.
type Manager struct {
	mu        sync.RWMutex
	contexts  map[string]*Context
	deleted   map[string]struct{}
	saved     map[string]savedContext
	listeners []Listener
}

// NewManager creates an empty context manager.
func NewManager() *Manager {
	return &Manager{
		contexts: make(map[string]*Context),
		deleted:  make(map[string]struct{}),
	}
}

// Subscribe registers a listener for lifecycle notifications.
func (m *Manager) Subscribe(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

func (m *Manager) notify(n Notification) {
	m.mu.RLock()
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.RUnlock()
	for _, l := range listeners {
		l(n)
	}
}

// CreateContext creates a context. Without an id, a fresh opaque id is
// generated. With an id that already exists, this is a reattach: only
// lastActivity is refreshed, no contextCreated notification fires. With an
// unknown explicit id, it fails NotFoundError — callers who want
// create-or-reattach semantics for an unknown id should use
// GetOrCreateContext instead.
func (m *Manager) CreateContext(contextID string) (*Context, error) {
	m.mu.Lock()
	if contextID == "" {
		contextID = uuid.Must(uuid.NewV7()).String()
		ctx := newContext(contextID)
		m.contexts[contextID] = ctx
		m.mu.Unlock()
		m.notify(Notification{Kind: "contextCreated", ContextID: contextID})
		return ctx, nil
	}

	if ctx, ok := m.contexts[contextID]; ok {
		ctx.mu.Lock()
		ctx.touch()
		ctx.mu.Unlock()
		m.mu.Unlock()
		return ctx, nil
	}
	if _, wasDeleted := m.deleted[contextID]; wasDeleted {
		m.mu.Unlock()
		return nil, &NotFoundError{ContextID: contextID, Hint: "context was deleted and cannot be reattached"}
	}
	m.mu.Unlock()
	return nil, &NotFoundError{ContextID: contextID, Hint: "unknown contextId; omit it to create a new context"}
}

// GetOrCreateContext creates a context when no id is given, returns the
// existing context for a known id, and fails NotFoundError for an unknown
// explicit id.
func (m *Manager) GetOrCreateContext(contextID string) (*Context, error) {
	if contextID == "" {
		return m.CreateContext("")
	}
	m.mu.RLock()
	ctx, ok := m.contexts[contextID]
	m.mu.RUnlock()
	if ok {
		ctx.mu.Lock()
		ctx.touch()
		ctx.mu.Unlock()
		return ctx, nil
	}
	return nil, &NotFoundError{ContextID: contextID, Hint: "unknown contextId"}
}

// GetContext returns the context for id, or nil. It never fails.
func (m *Manager) GetContext(contextID string) *Context {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.contexts[contextID]
}

// ListContexts returns every live context.
func (m *Manager) ListContexts() []*Context {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Context, 0, len(m.contexts))
	for _, c := range m.contexts {
		out = append(out, c)
	}
	return out
}

// AddTask associates a task id with a context.
func (m *Manager) AddTask(contextID string, taskID a2a.TaskID) error {
	ctx := m.GetContext(contextID)
	if ctx == nil {
		return &NotFoundError{ContextID: contextID, Hint: "cannot add task to unknown context"}
	}
	ctx.mu.Lock()
	ctx.taskIDs[taskID] = struct{}{}
	ctx.touch()
	ctx.mu.Unlock()
	m.notify(Notification{Kind: "contextUpdated", ContextID: contextID})
	return nil
}

// GetTasks returns the task ids associated with a context.
func (m *Manager) GetTasks(contextID string) ([]a2a.TaskID, error) {
	ctx := m.GetContext(contextID)
	if ctx == nil {
		return nil, &NotFoundError{ContextID: contextID, Hint: "unknown context"}
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	out := make([]a2a.TaskID, 0, len(ctx.taskIDs))
	for id := range ctx.taskIDs {
		out = append(out, id)
	}
	return out, nil
}

// AddToHistory appends one entry. An AI turn appends at most one user and
// one assistant entry, and only on successful completion, per the
// append-only-per-turn invariant.
func (m *Manager) AddToHistory(contextID string, entry HistoryEntry) error {
	ctx := m.GetContext(contextID)
	if ctx == nil {
		return &NotFoundError{ContextID: contextID, Hint: "cannot append history to unknown context"}
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	ctx.mu.Lock()
	ctx.history = append(ctx.history, entry)
	ctx.touch()
	ctx.mu.Unlock()
	m.notify(Notification{Kind: "contextUpdated", ContextID: contextID})
	return nil
}

// GetHistory returns the ordered history for a context.
func (m *Manager) GetHistory(contextID string) ([]HistoryEntry, error) {
	ctx := m.GetContext(contextID)
	if ctx == nil {
		return nil, &NotFoundError{ContextID: contextID, Hint: "unknown context"}
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	out := make([]HistoryEntry, len(ctx.history))
	copy(out, ctx.history)
	return out, nil
}

// UpdateContextState merges metadata into a context.
func (m *Manager) UpdateContextState(contextID string, metadata map[string]any) error {
	ctx := m.GetContext(contextID)
	if ctx == nil {
		return &NotFoundError{ContextID: contextID, Hint: "cannot update unknown context"}
	}
	ctx.mu.Lock()
	for k, v := range metadata {
		ctx.metadata[k] = v
	}
	ctx.touch()
	ctx.mu.Unlock()
	m.notify(Notification{Kind: "contextUpdated", ContextID: contextID})
	return nil
}

// GetMetadata returns a copy of a context's metadata map.
func (m *Manager) GetMetadata(contextID string) (map[string]any, error) {
	ctx := m.GetContext(contextID)
	if ctx == nil {
		return nil, &NotFoundError{ContextID: contextID, Hint: "unknown context"}
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	out := make(map[string]any, len(ctx.metadata))
	for k, v := range ctx.metadata {
		out[k] = v
	}
	return out, nil
}

// ClearTempKeys removes all temp: scoped metadata keys, intended to be
// called after each AI turn completes.
func (m *Manager) ClearTempKeys(contextID string) error {
	ctx := m.GetContext(contextID)
	if ctx == nil {
		return &NotFoundError{ContextID: contextID, Hint: "unknown context"}
	}
	ctx.mu.Lock()
	for k := range ctx.metadata {
		if strings.HasPrefix(k, KeyPrefixTemp) {
			delete(ctx.metadata, k)
		}
	}
	ctx.mu.Unlock()
	return nil
}

// UpdateActivity refreshes lastActivity without any other mutation.
func (m *Manager) UpdateActivity(contextID string) error {
	ctx := m.GetContext(contextID)
	if ctx == nil {
		return &NotFoundError{ContextID: contextID, Hint: "unknown context"}
	}
	ctx.mu.Lock()
	ctx.touch()
	ctx.mu.Unlock()
	return nil
}

// IsContextActive reports whether a context exists and has not timed out.
func (m *Manager) IsContextActive(contextID string, timeout time.Duration) bool {
	ctx := m.GetContext(contextID)
	if ctx == nil {
		return false
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return time.Since(ctx.lastActivity) < timeout
}

// savedContext is the in-memory persistence stub payload for
// SaveContext/LoadContext.
type savedContext struct {
	history      []HistoryEntry
	taskIDs      map[a2a.TaskID]struct{}
	metadata     map[string]any
	lastActivity time.Time
}

var errNoSavedContext = errors.New("no saved context")

// SaveContext snapshots a context into the manager's own in-memory store.
// This is a stub: it does not persist across process restarts, matching
// the cross-process durability Non-goal.
func (m *Manager) SaveContext(contextID string) error {
	ctx := m.GetContext(contextID)
	if ctx == nil {
		return &NotFoundError{ContextID: contextID, Hint: "unknown context"}
	}
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = make(map[string]savedContext)
	}
	m.saved[contextID] = savedContext{
		history:      append([]HistoryEntry(nil), ctx.history...),
		taskIDs:      maps.Clone(ctx.taskIDs),
		metadata:     maps.Clone(ctx.metadata),
		lastActivity: ctx.lastActivity,
	}
	return nil
}

// LoadContext restores a context previously snapshotted with SaveContext.
func (m *Manager) LoadContext(contextID string) error {
	m.mu.Lock()
	snap, ok := m.saved[contextID]
	m.mu.Unlock()
	if !ok {
		return errNoSavedContext
	}
	ctx := m.GetContext(contextID)
	if ctx == nil {
		ctx = newContext(contextID)
		m.mu.Lock()
		m.contexts[contextID] = ctx
		m.mu.Unlock()
	}
	ctx.mu.Lock()
	ctx.history = append([]HistoryEntry(nil), snap.history...)
	ctx.taskIDs = maps.Clone(snap.taskIDs)
	ctx.metadata = maps.Clone(snap.metadata)
	ctx.lastActivity = snap.lastActivity
	ctx.mu.Unlock()
	return nil
}

// DeleteContext removes a context. A deleted context cannot be reattached
// under the same id.
func (m *Manager) DeleteContext(contextID string) error {
	m.mu.Lock()
	if _, ok := m.contexts[contextID]; !ok {
		m.mu.Unlock()
		return &NotFoundError{ContextID: contextID, Hint: "unknown context"}
	}
	delete(m.contexts, contextID)
	m.deleted[contextID] = struct{}{}
	m.mu.Unlock()
	m.notify(Notification{Kind: "contextDeleted", ContextID: contextID})
	return nil
}

// CleanupInactive removes contexts whose lastActivity predates the cutoff,
// marks their ids deleted, and returns those ids. It is exposed only as a
// manual operation: this runtime never
// calls it automatically, per current A2A guidance that automatic context
// expiry is a policy decision, not a default behavior.
func (m *Manager) CleanupInactive(timeout time.Duration) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed []string
	cutoff := time.Now().Add(-timeout)
	for id, ctx := range m.contexts {
		ctx.mu.RLock()
		stale := ctx.lastActivity.Before(cutoff)
		ctx.mu.RUnlock()
		if stale {
			delete(m.contexts, id)
			m.deleted[id] = struct{}{}
			removed = append(removed, id)
		}
	}
	return removed
}
