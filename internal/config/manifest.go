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

// Package config is the thin manifest layer the Config Orchestrator reads
// from: YAML-defined agent/skill/MCP-server/workflow manifests, decoded
// into typed structs. It composes nothing itself -- pkg/agentcard owns
// turning a Manifest into an agent card and effective tool set.
package config

// SkillManifest describes one A2A-discoverable skill.
type SkillManifest struct {
	ID          string   `yaml:"id,omitempty" mapstructure:"id"`
	Name        string   `yaml:"name,omitempty" mapstructure:"name"`
	Description string   `yaml:"description,omitempty" mapstructure:"description"`
	Tags        []string `yaml:"tags,omitempty" mapstructure:"tags"`
	Examples    []string `yaml:"examples,omitempty" mapstructure:"examples"`
}

// MCPServerManifest configures one MCP tool source.
type MCPServerManifest struct {
	Name    string            `yaml:"name,omitempty" mapstructure:"name"`
	Command string            `yaml:"command,omitempty" mapstructure:"command"`
	Args    []string          `yaml:"args,omitempty" mapstructure:"args"`
	Env     map[string]string `yaml:"env,omitempty" mapstructure:"env"`
	Filter  []string          `yaml:"filter,omitempty" mapstructure:"filter"`
}

// WorkflowManifest declares one workflow plugin entry. The plugin itself is
// registered in code. Enabled is read by agentcard.EffectiveWorkflows; the
// dispatch tools offered to the LLM are not filtered by it, and
// DispatchTimeout is decoded but not read by the runtime.
type WorkflowManifest struct {
	PluginID        string `yaml:"plugin_id,omitempty" mapstructure:"plugin_id"`
	Enabled         *bool  `yaml:"enabled,omitempty" mapstructure:"enabled"`
	DispatchTimeout string `yaml:"dispatch_timeout,omitempty" mapstructure:"dispatch_timeout"`
}

// AgentManifest is the root manifest for one agent: persona, skills, and
// the MCP/workflow sets it composes into its effective tool set.
type AgentManifest struct {
	Name        string              `yaml:"name,omitempty" mapstructure:"name"`
	Description string              `yaml:"description,omitempty" mapstructure:"description"`
	Version     string              `yaml:"version,omitempty" mapstructure:"version"`
	Instruction string              `yaml:"instruction,omitempty" mapstructure:"instruction"`
	Streaming   *bool               `yaml:"streaming,omitempty" mapstructure:"streaming"`
	InputModes  []string            `yaml:"input_modes,omitempty" mapstructure:"input_modes"`
	OutputModes []string            `yaml:"output_modes,omitempty" mapstructure:"output_modes"`
	Skills      []SkillManifest     `yaml:"skills,omitempty" mapstructure:"skills"`
	MCPServers  []MCPServerManifest `yaml:"mcp_servers,omitempty" mapstructure:"mcp_servers"`
	Workflows   []WorkflowManifest  `yaml:"workflows,omitempty" mapstructure:"workflows"`
}

// SetDefaults fills agent-level defaults the way the teacher's
// AgentConfig.SetDefaults does, scoped to what this core actually reads.
func (m *AgentManifest) SetDefaults() {
	if m.Streaming == nil {
		enabled := true
		m.Streaming = &enabled
	}
	if len(m.InputModes) == 0 {
		m.InputModes = []string{"text/plain"}
	}
	if len(m.OutputModes) == 0 {
		m.OutputModes = []string{"text/plain"}
	}
	for i := range m.Workflows {
		if m.Workflows[i].Enabled == nil {
			enabled := true
			m.Workflows[i].Enabled = &enabled
		}
	}
}
