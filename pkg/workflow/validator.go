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

package workflow

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaValidator backs Validator with a compiled JSON Schema, the concrete
// choice for the abstract "safeParse"-shaped validator interface the
// design notes call for.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles a JSON Schema document (already decoded into
// Go values, e.g. via encoding/json.Unmarshal into `any`) into a Validator.
func NewSchemaValidator(name string, doc any) (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("workflow: add schema resource %q: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("workflow: compile schema %q: %w", name, err)
	}
	return &SchemaValidator{schema: schema}, nil
}

// Validate reports every validation issue found, or nil if input is valid.
func (v *SchemaValidator) Validate(input map[string]any) []ValidationIssue {
	if err := v.schema.Validate(input); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			return flattenValidationError(verr)
		}
		return []ValidationIssue{{Message: err.Error()}}
	}
	return nil
}

func flattenValidationError(verr *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Path:    fmt.Sprint(e.InstanceLocation),
				Message: e.Error(),
			})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return issues
}

var _ Validator = (*SchemaValidator)(nil)
