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
	"regexp"
	"strings"
	"time"
)

// canonicalIDPattern matches a registered plugin id once hyphens have been
// canonicalized to underscores.
var canonicalIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// rawIDPattern is what a caller may submit: hyphens are still allowed and
// get canonicalized.
var rawIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Plugin is a registered workflow: a canonical id, descriptive metadata, an
// optional input validator, and the step function that drives execution.
type Plugin struct {
	ID          string // canonical: lowercase, hyphens -> underscores
	Name        string
	Description string
	Version     string
	InputSchema Validator // optional

	// InputSchemaDoc is the raw JSON Schema document InputSchema was compiled
	// from, if any, so the Tool Registry can advertise it to the LLM without
	// needing to reverse a compiled Validator.
	InputSchemaDoc map[string]any

	Execute ExecuteFunc

	// DispatchResponseTimeout bounds waitForFirstYield; zero means the
	// runtime default (500ms) applies.
	DispatchResponseTimeout time.Duration
}

// DispatchToolName returns the synthetic tool name this plugin is exposed
// as to the LLM.
func (p *Plugin) DispatchToolName() string {
	return "dispatch_workflow_" + p.ID
}

// CanonicalizeID lowercases, trims, and turns hyphens into underscores.
func CanonicalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	return strings.ReplaceAll(id, "-", "_")
}

// ValidateRegistration checks a plugin's shape before it is admitted to the
// registry: id pattern and required fields (name, version, execute). The
// input schema validator is not inspected.
func ValidateRegistration(p *Plugin) error {
	if p == nil {
		return fmt.Errorf("workflow: nil plugin")
	}
	trimmed := strings.ToLower(strings.TrimSpace(p.ID))
	if !rawIDPattern.MatchString(trimmed) {
		return fmt.Errorf("workflow: invalid plugin id %q: must match ^[a-z][a-z0-9_-]*$", p.ID)
	}
	if p.Name == "" {
		return fmt.Errorf("workflow: plugin %q missing name", p.ID)
	}
	if p.Version == "" {
		return fmt.Errorf("workflow: plugin %q missing version", p.ID)
	}
	if p.Execute == nil {
		return fmt.Errorf("workflow: plugin %q missing execute", p.ID)
	}
	canonical := CanonicalizeID(trimmed)
	if !canonicalIDPattern.MatchString(canonical) {
		return fmt.Errorf("workflow: plugin id %q does not canonicalize to a valid id", p.ID)
	}
	return nil
}
