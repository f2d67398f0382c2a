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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kadirpekel/agentcore/internal/config"
)

func TestRedactManifest_ClearsInstructionAndEnv(t *testing.T) {
	m := &config.AgentManifest{
		Instruction: "be helpful",
		MCPServers: []config.MCPServerManifest{
			{Name: "files", Env: map[string]string{"TOKEN": "secret"}},
		},
	}

	redactManifest(m)

	assert.Equal(t, "[redacted]", m.Instruction)
	assert.Equal(t, "[redacted]", m.MCPServers[0].Env["TOKEN"])
}

func TestRedactManifest_NoopOnEmptyInstruction(t *testing.T) {
	m := &config.AgentManifest{}
	redactManifest(m)
	assert.Empty(t, m.Instruction)
}

func TestSummarize_StopsAtFirstSentence(t *testing.T) {
	assert.Equal(t, "Be helpful.", summarize("Be helpful. Also be terse."))
}

func TestSummarize_StopsAtFirstNewline(t *testing.T) {
	assert.Equal(t, "Be helpful\n", summarize("Be helpful\nAlso be terse"))
}

func TestSummarize_ReturnsWholeStringWithoutTerminator(t *testing.T) {
	assert.Equal(t, "Be helpful", summarize("Be helpful"))
}
