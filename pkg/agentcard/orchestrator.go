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

// Package agentcard is the Config Orchestrator: it composes an
// AgentManifest, the registered workflow plugins, and the live tool
// registry into the agent card and system prompt the transport and AI
// Handler consume. Deep manifest validation and hot-reload plumbing live
// in internal/config; this package stays the thin composition surface the
// core spec calls for.
package agentcard

import (
	"fmt"
	"strings"

	"github.com/a2aproject/a2a-go/a2a"

	"github.com/kadirpekel/agentcore/internal/config"
	"github.com/kadirpekel/agentcore/pkg/tool"
)

// protocolVersion is the A2A protocol version this core's transport speaks.
const protocolVersion = "1.0"

// Skill mirrors one A2A-discoverable capability.
type Skill struct {
	ID          string
	Name        string
	Description string
	Tags        []string
	Examples    []string
}

// Card is this core's composed view of an agent's public identity: the
// fields a transport needs to answer an agent-card request, independent
// of whatever wire struct the A2A transport library itself defines.
type Card struct {
	Name        string
	Description string
	Version     string
	Streaming   bool
	InputModes  []string
	OutputModes []string
	Skills      []Skill
	ToolNames   []string
}

// Orchestrator composes manifests and the live tool registry into a Card
// and a system prompt, without owning any deep tool-resolution or
// validation logic itself.
type Orchestrator struct {
	manifest *config.AgentManifest
	tools    *tool.Registry
}

// New creates a Config Orchestrator over a loaded manifest and the tool
// registry it should reflect in the composed card.
func New(manifest *config.AgentManifest, tools *tool.Registry) *Orchestrator {
	return &Orchestrator{manifest: manifest, tools: tools}
}

// Update swaps in a freshly reloaded manifest, e.g. from an
// internal/config.Watcher tick.
func (o *Orchestrator) Update(manifest *config.AgentManifest) {
	o.manifest = manifest
}

// BuildCard composes the agent card from the current manifest and the
// tool registry's live descriptors.
func (o *Orchestrator) BuildCard() Card {
	m := o.manifest
	skills := make([]Skill, 0, len(m.Skills))
	for _, s := range m.Skills {
		skills = append(skills, Skill{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Tags:        s.Tags,
			Examples:    s.Examples,
		})
	}

	var toolNames []string
	if o.tools != nil {
		for _, d := range o.tools.Descriptors() {
			toolNames = append(toolNames, d.Name)
		}
	}

	streaming := m.Streaming == nil || *m.Streaming
	return Card{
		Name:        m.Name,
		Description: m.Description,
		Version:     m.Version,
		Streaming:   streaming,
		InputModes:  m.InputModes,
		OutputModes: m.OutputModes,
		Skills:      skills,
		ToolNames:   toolNames,
	}
}

// BuildA2ACard composes the wire-level a2a.AgentCard the transport's
// well-known agent-card handler serves, grounded on the teacher's
// buildAgentCard/buildAgentSkills pattern. url is this agent's externally
// reachable endpoint.
func (o *Orchestrator) BuildA2ACard(url string) *a2a.AgentCard {
	m := o.manifest

	inputModes := m.InputModes
	if len(inputModes) == 0 {
		inputModes = []string{"text/plain"}
	}
	outputModes := m.OutputModes
	if len(outputModes) == 0 {
		outputModes = []string{"text/plain"}
	}

	skills := o.buildA2ASkills()
	if len(skills) == 0 {
		skills = []a2a.AgentSkill{{
			ID:          m.Name,
			Name:        m.Name,
			Description: m.Description,
			Tags:        []string{"general", "assistant"},
		}}
	}

	version := m.Version
	if version == "" {
		version = "0.1.0"
	}

	return &a2a.AgentCard{
		Name:               m.Name,
		Description:        m.Description,
		URL:                url,
		Version:            version,
		ProtocolVersion:    protocolVersion,
		DefaultInputModes:  inputModes,
		DefaultOutputModes: outputModes,
		Skills:             skills,
		Capabilities: a2a.AgentCapabilities{
			Streaming:              m.Streaming == nil || *m.Streaming,
			PushNotifications:      false,
			StateTransitionHistory: false,
		},
		PreferredTransport: a2a.TransportProtocolJSONRPC,
	}
}

func (o *Orchestrator) buildA2ASkills() []a2a.AgentSkill {
	out := make([]a2a.AgentSkill, 0, len(o.manifest.Skills))
	for _, s := range o.manifest.Skills {
		out = append(out, a2a.AgentSkill{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Tags:        s.Tags,
			Examples:    s.Examples,
		})
	}
	return out
}

// SystemPrompt composes the manifest's instruction with the names of the
// tools currently available, so the LLM prompt always reflects the live
// registry rather than a manifest-time snapshot.
func (o *Orchestrator) SystemPrompt() string {
	var b strings.Builder
	b.WriteString(o.manifest.Instruction)

	if o.tools == nil {
		return b.String()
	}
	descs := o.tools.Descriptors()
	if len(descs) == 0 {
		return b.String()
	}

	b.WriteString("\n\nAvailable tools:\n")
	for _, d := range descs {
		fmt.Fprintf(&b, "- %s: %s\n", d.Name, d.Description)
	}
	return b.String()
}

// EffectiveMCPServers returns the manifest's configured MCP server set,
// the Tool Registry's MCP-source input.
func (o *Orchestrator) EffectiveMCPServers() []config.MCPServerManifest {
	return o.manifest.MCPServers
}

// EffectiveWorkflows returns the plugin ids of the manifest's workflow
// entries that are not disabled, in manifest order. The ids are not checked
// against the plugins registered with the workflow runtime.
func (o *Orchestrator) EffectiveWorkflows() []string {
	ids := make([]string, 0, len(o.manifest.Workflows))
	for _, w := range o.manifest.Workflows {
		if w.Enabled != nil && !*w.Enabled {
			continue
		}
		ids = append(ids, w.PluginID)
	}
	return ids
}
