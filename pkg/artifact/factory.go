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

// Package artifact builds the three A2A artifact-update shapes the stream
// event handler emits on the wire: streaming text/reasoning chunks,
// tool-call descriptors, and tool-result payloads.
package artifact

import (
	"fmt"
	"maps"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/google/uuid"
)

// Kind identifies which streaming-text artifact is being built.
type Kind string

const (
	KindTextResponse Kind = "text-response"
	KindReasoning    Kind = "reasoning"
)

// WorkflowDispatchPrefix is the synthetic-tool naming prefix that routes a
// tool call to the Workflow Handler instead of the Tool Registry's direct
// execution path.
const WorkflowDispatchPrefix = "dispatch_workflow_"

// NewTextChunk builds one streaming-text (or reasoning) artifact-update
// event. artifactId is stable per logical stream: "{kind}-{taskId}". append
// is true for every chunk after the first.
func NewTextChunk(taskID a2a.TaskID, contextID string, kind Kind, content string, chunkIndex int, isLastChunk bool) *a2a.TaskArtifactUpdateEvent {
	artifactID := a2a.ArtifactID(fmt.Sprintf("%s-%s", kind, taskID))
	ev := &a2a.TaskArtifactUpdateEvent{
		TaskID:    taskID,
		ContextID: contextID,
		Artifact: a2a.Artifact{
			ID:    artifactID,
			Name:  string(kind),
			Parts: []a2a.Part{a2a.TextPart{Text: content}},
		},
		Append:    chunkIndex > 0,
		LastChunk: isLastChunk,
	}
	return ev
}

// ToolCallInput is the declared input of a tool invocation, surfaced as a
// single data part on the tool-call artifact.
type ToolCallInput struct {
	ID    string
	Name  string
	Input map[string]any
}

// NewToolCall builds the tool-call artifact for a single invocation. The
// artifactId is fresh per call: "tool-call-{toolName}-{uuid}".
//
// Callers must not publish the returned event for workflow-dispatch tools
// (names starting with WorkflowDispatchPrefix): their linkage is carried by
// the parent status-update published at result time instead, per the
// "no initial emission for workflow tools" rule.
func NewToolCall(taskID a2a.TaskID, contextID string, call ToolCallInput) *a2a.TaskArtifactUpdateEvent {
	artifactID := a2a.ArtifactID(fmt.Sprintf("tool-call-%s-%s", call.Name, uuid.NewString()))
	return &a2a.TaskArtifactUpdateEvent{
		TaskID:    taskID,
		ContextID: contextID,
		Artifact: a2a.Artifact{
			ID:    artifactID,
			Name:  call.Name,
			Parts: []a2a.Part{a2a.DataPart{Data: call.Input}},
		},
		Append:    false,
		LastChunk: false,
	}
}

// IsWorkflowDispatchTool reports whether a tool name routes to the workflow
// handler rather than direct tool execution.
func IsWorkflowDispatchTool(name string) bool {
	return len(name) > len(WorkflowDispatchPrefix) && name[:len(WorkflowDispatchPrefix)] == WorkflowDispatchPrefix
}

// ToolResult is the observed output of a completed tool invocation.
type ToolResult struct {
	ID     string
	Name   string
	Output any
}

// workflowDispatchResponse is the normalized shape a workflow dispatch
// result is checked against: result[], taskId, metadata.
type workflowDispatchResponse struct {
	Result   []a2a.Part
	TaskID   string
	Metadata map[string]any
}

// asWorkflowDispatchResponse inspects an arbitrary result value and, if it
// structurally matches a workflow-dispatch response, returns the normalized
// fields. Only map[string]any payloads with result/taskId/metadata keys in
// the expected shapes qualify.
func asWorkflowDispatchResponse(output any) (*workflowDispatchResponse, bool) {
	m, ok := output.(map[string]any)
	if !ok {
		return nil, false
	}
	rawResult, hasResult := m["result"]
	rawTaskID, hasTaskID := m["taskId"]
	if !hasResult || !hasTaskID {
		return nil, false
	}
	taskID, ok := rawTaskID.(string)
	if !ok {
		return nil, false
	}
	var parts []a2a.Part
	switch rs := rawResult.(type) {
	case []a2a.Part:
		parts = rs
	case []any:
		for _, item := range rs {
			if p, ok := item.(a2a.Part); ok {
				parts = append(parts, p)
			}
		}
	default:
		return nil, false
	}
	meta, _ := m["metadata"].(map[string]any)
	return &workflowDispatchResponse{Result: parts, TaskID: taskID, Metadata: meta}, true
}

// NewToolResult builds the tool-result artifact that replaces the matching
// tool-call's payload. If output is structurally a workflow-dispatch
// response, each child part is cloned, its metadata merged non-destructively
// with the response's own metadata, and the child taskId stamped onto it.
// lastChunk is always true: a tool result is always the final chunk for its
// artifactId.
func NewToolResult(taskID a2a.TaskID, contextID string, artifactID a2a.ArtifactID, result ToolResult) *a2a.TaskArtifactUpdateEvent {
	parts := []a2a.Part{a2a.DataPart{Data: map[string]any{
		"id":     result.ID,
		"name":   result.Name,
		"output": result.Output,
	}}}

	if wd, ok := asWorkflowDispatchResponse(result.Output); ok {
		parts = normalizeWorkflowDispatchParts(wd)
	}

	return &a2a.TaskArtifactUpdateEvent{
		TaskID:    taskID,
		ContextID: contextID,
		Artifact: a2a.Artifact{
			ID:    artifactID,
			Name:  result.Name,
			Parts: parts,
		},
		Append:    true,
		LastChunk: true,
	}
}

// normalizeWorkflowDispatchParts clones each child part, merges metadata
// non-destructively, and stamps the child taskId onto every part.
func normalizeWorkflowDispatchParts(wd *workflowDispatchResponse) []a2a.Part {
	out := make([]a2a.Part, 0, len(wd.Result))
	for _, p := range wd.Result {
		switch part := p.(type) {
		case a2a.TextPart:
			merged := maps.Clone(part.Metadata)
			merged = mergeNonDestructive(merged, wd.Metadata)
			merged = mergeNonDestructive(merged, map[string]any{"taskId": wd.TaskID})
			part.Metadata = merged
			out = append(out, part)
		case a2a.DataPart:
			merged := maps.Clone(part.Metadata)
			merged = mergeNonDestructive(merged, wd.Metadata)
			merged = mergeNonDestructive(merged, map[string]any{"taskId": wd.TaskID})
			part.Metadata = merged
			out = append(out, part)
		default:
			out = append(out, p)
		}
	}
	return out
}

// mergeNonDestructive copies src entries into dst only for keys dst does not
// already carry, returning a new map when dst is nil.
func mergeNonDestructive(dst map[string]any, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		if _, exists := dst[k]; !exists {
			dst[k] = v
		}
	}
	return dst
}
