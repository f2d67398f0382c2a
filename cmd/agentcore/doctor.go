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
	"fmt"

	"github.com/kadirpekel/agentcore/internal/config"
	"github.com/kadirpekel/agentcore/pkg/agentcard"
	"github.com/kadirpekel/agentcore/pkg/tool"
)

// DoctorCmd validates a manifest's shape and reports the configuration an
// agent would actually run with. Deep guardrail composition across
// multiple config sources is out of scope here -- this core loads one
// manifest, not a merged stack, so "tightest guardrail" semantics (spec's
// doctor Open Question) never arise.
type DoctorCmd struct{}

func (c *DoctorCmd) Run(cli *CLI) error {
	manifest, err := config.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("agentcore doctor: %w", err)
	}

	if manifest.Name == "" {
		return fmt.Errorf("agentcore doctor: manifest %s is missing a name", cli.Config)
	}

	orch := agentcard.New(manifest, tool.NewRegistry())
	fmt.Printf("Manifest:     %s\n", cli.Config)
	fmt.Printf("Agent:        %s\n", manifest.Name)
	if manifest.Description != "" {
		fmt.Printf("Description:  %s\n", manifest.Description)
	}
	fmt.Printf("Streaming:    %v\n", manifest.Streaming == nil || *manifest.Streaming)
	fmt.Printf("Input modes:  %v\n", manifest.InputModes)
	fmt.Printf("Output modes: %v\n", manifest.OutputModes)

	fmt.Printf("Skills (%d):\n", len(manifest.Skills))
	for _, s := range manifest.Skills {
		fmt.Printf("  - %s: %s\n", s.ID, s.Description)
	}

	mcpServers := orch.EffectiveMCPServers()
	fmt.Printf("MCP servers (%d):\n", len(mcpServers))
	for _, m := range mcpServers {
		fmt.Printf("  - %s: %s %v\n", m.Name, m.Command, m.Args)
	}

	workflows := orch.EffectiveWorkflows()
	fmt.Printf("Enabled workflows (%d): %v\n", len(workflows), workflows)

	fmt.Println("OK")
	return nil
}
