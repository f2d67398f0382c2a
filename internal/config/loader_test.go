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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
name: support-agent
description: Handles support tickets
instruction: You are a helpful support agent.
skills:
  - id: triage
    name: Triage
    tags: [support, triage]
mcp_servers:
  - name: "Ticket API"
    command: ticket-mcp
    args: ["--stdio"]
workflows:
  - plugin_id: refund-approval
`

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DecodesManifestAndAppliesDefaults(t *testing.T) {
	path := writeManifest(t, t.TempDir(), sampleManifest)

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "support-agent", m.Name)
	require.Len(t, m.Skills, 1)
	assert.Equal(t, "triage", m.Skills[0].ID)
	require.Len(t, m.MCPServers, 1)
	assert.Equal(t, "ticket-mcp", m.MCPServers[0].Command)
	require.Len(t, m.Workflows, 1)
	assert.Equal(t, "refund-approval", m.Workflows[0].PluginID)
	require.NotNil(t, m.Workflows[0].Enabled)
	assert.True(t, *m.Workflows[0].Enabled)
	require.NotNil(t, m.Streaming)
	assert.True(t, *m.Streaming)
	assert.Equal(t, []string{"text/plain"}, m.InputModes)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
