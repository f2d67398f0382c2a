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

// Package tool merges the MCP tool catalog and the workflow dispatch tool
// set into one registry the AI Handler queries when building a turn's tool
// bundle, and through which ordinary (non-workflow) tool calls are routed
// to execution.
package tool

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Descriptor is what the registry advertises to the LLM: enough to build a
// provider-specific tool definition without leaking the backing transport.
type Descriptor struct {
	Name        string
	Description string
	Schema      map[string]any

	// IsWorkflowDispatch marks a dispatch_workflow_* synthetic tool; the Tool
	// Registry never executes these itself -- the Workflow Handler
	// intercepts the call before Execute is reached.
	IsWorkflowDispatch bool
}

// Callable is a tool the registry can execute directly (an MCP tool).
type Callable interface {
	Descriptor() Descriptor
	Call(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Source supplies a set of callables, e.g. one MCP server connection.
type Source interface {
	// Namespace identifies the source for tool-name prefixing; empty for
	// sources (like the workflow dispatch set) that are already namespaced.
	Namespace() string
	Tools(ctx context.Context) ([]Callable, error)
}

var namespacePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// CanonicalizeNamespace lowercases and underscore-separates a server id,
// matching the `{server_namespace}__{tool}` naming rule.
func CanonicalizeNamespace(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	id = strings.ReplaceAll(id, "-", "_")
	id = strings.ReplaceAll(id, " ", "_")
	return id
}

// Registry merges every configured Source's tools into one namespaced
// catalog, refreshed on demand via Refresh.
type Registry struct {
	mu      sync.RWMutex
	sources []Source
	byName  map[string]Callable
	descs   []Descriptor
}

// NewRegistry creates an empty registry over the given sources.
func NewRegistry(sources ...Source) *Registry {
	return &Registry{sources: sources, byName: make(map[string]Callable)}
}

// AddSource registers an additional tool source (e.g. a newly configured MCP
// server), to be picked up on the next Refresh.
func (r *Registry) AddSource(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, s)
}

// Refresh re-fetches every source's tool catalog and rebuilds the merged,
// namespaced index. MCP tools are exposed as `{namespace}__{tool}`;
// already-namespaced sources (the workflow dispatch set) pass through
// unprefixed.
func (r *Registry) Refresh(ctx context.Context) error {
	r.mu.Lock()
	sources := append([]Source(nil), r.sources...)
	r.mu.Unlock()

	byName := make(map[string]Callable)
	var descs []Descriptor

	for _, src := range sources {
		tools, err := src.Tools(ctx)
		if err != nil {
			return fmt.Errorf("tool: refresh source %q: %w", src.Namespace(), err)
		}
		ns := CanonicalizeNamespace(src.Namespace())
		for _, t := range tools {
			desc := t.Descriptor()
			name := desc.Name
			if ns != "" {
				name = ns + "__" + desc.Name
				desc.Name = name
			}
			byName[name] = t
			descs = append(descs, desc)
		}
	}

	r.mu.Lock()
	r.byName = byName
	r.descs = descs
	r.mu.Unlock()
	return nil
}

// Descriptors returns the current merged tool catalog.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Descriptor(nil), r.descs...)
}

// Execute routes a tool call by its fully namespaced name. Workflow dispatch
// tools are never found here in practice -- the Workflow Handler intercepts
// them first -- but a lookup miss is reported the same way a genuinely
// unknown tool would be.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	r.mu.RLock()
	t, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("tool: unknown tool %q", name)
	}
	return t.Call(ctx, args)
}
