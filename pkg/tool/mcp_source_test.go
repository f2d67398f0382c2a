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

package tool

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMCPSource_BuildsFilterSetFromConfig(t *testing.T) {
	s := NewMCPSource(MCPServerConfig{Name: "files", Filter: []string{"read", "write"}})
	assert.Equal(t, "files", s.Namespace())
	require.NotNil(t, s.filterSet)
	assert.True(t, s.filterSet["read"])
	assert.False(t, s.filterSet["delete"])
}

func TestNewMCPSource_NilFilterSetWhenUnfiltered(t *testing.T) {
	s := NewMCPSource(MCPServerConfig{Name: "files"})
	assert.Nil(t, s.filterSet)
}

func TestFirstText_ReturnsFirstTextContent(t *testing.T) {
	content := []mcp.Content{
		mcp.TextContent{Text: "hello"},
		mcp.TextContent{Text: "world"},
	}
	assert.Equal(t, "hello", firstText(content))
}

func TestFirstText_EmptyWhenNoTextContent(t *testing.T) {
	assert.Equal(t, "", firstText(nil))
}

func TestSchemaToMap_MarshalsToolInputSchemaToMap(t *testing.T) {
	out := schemaToMap(mcp.ToolInputSchema{})
	assert.NotNil(t, out)
}
