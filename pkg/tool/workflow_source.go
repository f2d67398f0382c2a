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

package tool

import (
	"context"
	"fmt"

	"github.com/kadirpekel/agentcore/pkg/workflow"
)

// WorkflowSource exposes every plugin registered with a workflow.Runtime as
// a dispatch_workflow_{canonicalId} tool. Only the dispatch tool is ever
// surfaced: resuming a paused workflow happens through an A2A message
// targeting the paused taskId, not through a tool call.
type WorkflowSource struct {
	runtime *workflow.Runtime
}

// NewWorkflowSource wraps a runtime's registered plugins as a tool Source.
func NewWorkflowSource(runtime *workflow.Runtime) *WorkflowSource {
	return &WorkflowSource{runtime: runtime}
}

// Namespace is empty: dispatch tool names are already fully formed.
func (s *WorkflowSource) Namespace() string { return "" }

func (s *WorkflowSource) Tools(_ context.Context) ([]Callable, error) {
	plugins := s.runtime.Plugins()
	out := make([]Callable, 0, len(plugins))
	for _, p := range plugins {
		out = append(out, &dispatchToolStub{plugin: p})
	}
	return out, nil
}

// dispatchToolStub advertises a plugin's dispatch tool but refuses direct
// execution: dispatching a workflow requires the Workflow Handler's task
// bookkeeping (child context, parent bus re-emission), which a bare
// Registry.Execute call cannot provide.
type dispatchToolStub struct {
	plugin *workflow.Plugin
}

func (d *dispatchToolStub) Descriptor() Descriptor {
	return Descriptor{
		Name:               d.plugin.DispatchToolName(),
		Description:        d.plugin.Description,
		Schema:             d.plugin.InputSchemaDoc,
		IsWorkflowDispatch: true,
	}
}

func (d *dispatchToolStub) Call(context.Context, map[string]any) (map[string]any, error) {
	return nil, fmt.Errorf("tool: %s must be dispatched through the workflow handler, not called directly", d.plugin.DispatchToolName())
}
