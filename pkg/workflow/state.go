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

// Package workflow implements the cooperative scheduler for generator-
// based, pausable multi-step procedures: the plugin registry, the
// execution loop that pumps a plugin's yields into A2A events, and
// pause/resume with schema-validated resume input.
//
// Go has no first-class coroutines, so a workflow's "asynchronous lazy
// sequence" is expressed as an explicit step function (YieldFunc) that
// blocks on a channel until the driver decides to advance it -- the
// channel-pair plays the role of the generator pump the design notes call
// for, and "suspend the loop and return" is implemented by simply not
// sending a continuation value until ResumeWorkflow provides one.
package workflow

import (
	"github.com/a2aproject/a2a-go/a2a"

	"github.com/kadirpekel/agentcore/pkg/a2atask"
)

// Tag identifies the variant of a yielded WorkflowState.
type Tag string

const (
	TagDispatchResponse Tag = "dispatch-response"
	TagStatusUpdate     Tag = "status-update"
	TagArtifact         Tag = "artifact"
	TagInterrupted      Tag = "interrupted"
	TagReject           Tag = "reject"
)

// WorkflowState is the tagged variant yielded by a workflow step.
type WorkflowState struct {
	Tag Tag

	// dispatch-response
	Parts []a2a.Part

	// status-update
	Message *a2a.Message

	// artifact
	Artifact  *a2a.Artifact
	Append    bool
	LastChunk bool
	Metadata  map[string]any

	// interrupted
	Reason      a2atask.State // StateInputRequired or StateAuthRequired
	InputSchema Validator

	// reject
	RejectReason string
}

// WorkflowContext is what a plugin's Execute factory receives.
type WorkflowContext struct {
	ContextID  string
	TaskID     a2a.TaskID
	Parameters map[string]any
	Metadata   map[string]any
}

// ResumeValue is whatever value resumes a suspended yield -- the resume
// input after it has passed (or explicitly skipped) schema validation.
type ResumeValue any

// YieldFunc is how a workflow step yields a WorkflowState and blocks until
// the driver advances it. It returns an error only when the execution's
// context is canceled (shutdown, cancel) while suspended.
type YieldFunc func(state WorkflowState) (ResumeValue, error)

// ExecuteFunc is a plugin's step function: the asynchronous lazy sequence
// collapsed into one call that yields via the given YieldFunc and
// eventually returns a final result or an error.
type ExecuteFunc func(wctx WorkflowContext, yield YieldFunc) (result any, err error)

// ValidationIssue describes one schema validation failure.
type ValidationIssue struct {
	Path    string
	Message string
}

// Validator is the abstract schema-validator interface: any schema library
// satisfying safeParse-like semantics is acceptable. This runtime backs it
// with santhosh-tekuri/jsonschema/v6.
type Validator interface {
	Validate(input map[string]any) []ValidationIssue
}
