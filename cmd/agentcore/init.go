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
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kadirpekel/agentcore/internal/config"
)

// InitCmd scaffolds a starter agent manifest at the --config path.
type InitCmd struct {
	Force bool `help:"Overwrite an existing manifest."`
}

func (c *InitCmd) Run(cli *CLI) error {
	if _, err := os.Stat(cli.Config); err == nil && !c.Force {
		return fmt.Errorf("agentcore: %s already exists; pass --force to overwrite", cli.Config)
	}

	enabled := true
	manifest := &config.AgentManifest{
		Name:        "my-agent",
		Description: "A conversational agent.",
		Version:     "0.1.0",
		Instruction: "You are a helpful assistant.",
		Streaming:   &enabled,
		InputModes:  []string{"text/plain"},
		OutputModes: []string{"text/plain"},
		Skills: []config.SkillManifest{
			{ID: "general", Name: "General assistance", Description: "Answer questions and use available tools."},
		},
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("agentcore: marshal starter manifest: %w", err)
	}
	if err := os.WriteFile(cli.Config, data, 0o644); err != nil {
		return fmt.Errorf("agentcore: write %s: %w", cli.Config, err)
	}

	fmt.Printf("Wrote starter manifest to %s\n", cli.Config)
	return nil
}
