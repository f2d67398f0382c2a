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

// Package demoworkflow ships one concrete workflow plugin -- approval --
// so `agentcore serve` has something real to dispatch, pause, and resume
// end to end without a deployment-specific plugin wired in. Deployments
// are expected to register their own plugins the same way; this one just
// keeps the runtime from starting with an empty plugin table.
package demoworkflow

import (
	"encoding/json"
	"fmt"

	"github.com/kadirpekel/agentcore/pkg/a2atask"
	"github.com/kadirpekel/agentcore/pkg/workflow"
)

const approvalInputSchema = `{
	"type": "object",
	"properties": {
		"request": {"type": "string"}
	},
	"required": ["request"]
}`

const approvalResumeSchema = `{
	"type": "object",
	"properties": {
		"approve": {"type": "boolean"}
	},
	"required": ["approve"]
}`

// Approval builds (but does not register) a workflow that pauses
// immediately for a yes/no decision on its input, then reports the outcome. It demonstrates the
// pause/resume contract (interrupted -> resume -> completed/rejected)
// every real workflow plugin follows.
func Approval() (*workflow.Plugin, error) {
	var inputDoc map[string]any
	if err := unmarshalSchema(approvalInputSchema, &inputDoc); err != nil {
		return nil, err
	}
	inputValidator, err := workflow.NewSchemaValidator("demoworkflow.approval.input", inputDoc)
	if err != nil {
		return nil, err
	}

	var resumeDoc map[string]any
	if err := unmarshalSchema(approvalResumeSchema, &resumeDoc); err != nil {
		return nil, err
	}
	resumeValidator, err := workflow.NewSchemaValidator("demoworkflow.approval.resume", resumeDoc)
	if err != nil {
		return nil, err
	}

	return &workflow.Plugin{
		ID:             "approval",
		Name:           "Approval",
		Description:    "Requests a yes/no decision before reporting an outcome.",
		Version:        "0.1.0",
		InputSchema:    inputValidator,
		InputSchemaDoc: inputDoc,
		Execute:        execute(resumeValidator),
	}, nil
}

func execute(resumeValidator workflow.Validator) workflow.ExecuteFunc {
	return func(wctx workflow.WorkflowContext, yield workflow.YieldFunc) (any, error) {
		request, _ := wctx.Parameters["request"].(string)
		if request == "" {
			request = "the pending request"
		}

		resume, err := yield(workflow.WorkflowState{
			Tag:         workflow.TagInterrupted,
			Reason:      a2atask.StateInputRequired,
			InputSchema: resumeValidator,
		})
		if err != nil {
			return nil, err
		}

		decision, _ := resume.(map[string]any)
		approve, _ := decision["approve"].(bool)

		if !approve {
			if _, err := yield(workflow.WorkflowState{
				Tag:          workflow.TagReject,
				RejectReason: fmt.Sprintf("rejected: %s", request),
			}); err != nil {
				return nil, err
			}
			return nil, nil
		}
		return fmt.Sprintf("approved: %s", request), nil
	}
}

func unmarshalSchema(doc string, out *map[string]any) error {
	return json.Unmarshal([]byte(doc), out)
}
