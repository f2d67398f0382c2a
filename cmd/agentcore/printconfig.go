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

package main

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kadirpekel/agentcore/internal/config"
)

// PrintConfigCmd prints the resolved agent manifest, per spec §6's
// `print-config [--format json|yaml] [--redact] [--prompt summary|full]`.
type PrintConfigCmd struct {
	Format string `help:"Output format (json or yaml)." enum:"json,yaml" default:"yaml"`
	Redact bool   `help:"Redact the instruction text and MCP server env vars."`
	Prompt string `help:"Instruction rendering (summary or full)." enum:"summary,full" default:"full"`
}

func (c *PrintConfigCmd) Run(cli *CLI) error {
	manifest, err := config.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("agentcore print-config: %w", err)
	}

	if c.Redact {
		redactManifest(manifest)
	}
	if c.Prompt == "summary" {
		manifest.Instruction = summarize(manifest.Instruction)
	}

	switch c.Format {
	case "json":
		data, err := json.MarshalIndent(manifest, "", "  ")
		if err != nil {
			return fmt.Errorf("agentcore print-config: marshal json: %w", err)
		}
		fmt.Println(string(data))
	default:
		data, err := yaml.Marshal(manifest)
		if err != nil {
			return fmt.Errorf("agentcore print-config: marshal yaml: %w", err)
		}
		fmt.Print(string(data))
	}
	return nil
}

func redactManifest(m *config.AgentManifest) {
	if m.Instruction != "" {
		m.Instruction = "[redacted]"
	}
	for i := range m.MCPServers {
		for k := range m.MCPServers[i].Env {
			m.MCPServers[i].Env[k] = "[redacted]"
		}
	}
}

// summarize renders only the instruction's first sentence, the "summary"
// prompt rendering spec §6 asks for.
func summarize(instruction string) string {
	for i, r := range instruction {
		if r == '.' || r == '\n' {
			return instruction[:i+1]
		}
	}
	return instruction
}
