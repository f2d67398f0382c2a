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
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// MCPServerConfig configures one stdio-launched MCP server connection.
type MCPServerConfig struct {
	// Name is the server id; CanonicalizeNamespace(Name) prefixes every tool
	// this server exposes.
	Name string

	Command string
	Args    []string
	Env     map[string]string

	// Filter, if non-empty, restricts which tool names (unprefixed, as the
	// server reports them) are exposed.
	Filter []string
}

// MCPSource lazily connects to one MCP server over stdio and lists its
// tools, matching the teacher's connect-on-first-Tools-call discipline.
type MCPSource struct {
	cfg       MCPServerConfig
	filterSet map[string]bool

	mu        sync.Mutex
	mcpClient *client.Client
	connected bool
}

// NewMCPSource creates a (not-yet-connected) MCP tool source.
func NewMCPSource(cfg MCPServerConfig) *MCPSource {
	var filterSet map[string]bool
	if len(cfg.Filter) > 0 {
		filterSet = make(map[string]bool, len(cfg.Filter))
		for _, name := range cfg.Filter {
			filterSet[name] = true
		}
	}
	return &MCPSource{cfg: cfg, filterSet: filterSet}
}

func (s *MCPSource) Namespace() string { return s.cfg.Name }

func (s *MCPSource) Tools(ctx context.Context) ([]Callable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		if err := s.connect(ctx); err != nil {
			return nil, fmt.Errorf("tool: connect MCP server %q: %w", s.cfg.Name, err)
		}
	}

	listResp, err := s.mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("tool: list tools on %q: %w", s.cfg.Name, err)
	}

	out := make([]Callable, 0, len(listResp.Tools))
	for _, mt := range listResp.Tools {
		if s.filterSet != nil && !s.filterSet[mt.Name] {
			continue
		}
		out = append(out, &mcpCallable{
			client: s.mcpClient,
			name:   mt.Name,
			desc:   mt.Description,
			schema: schemaToMap(mt.InputSchema),
		})
	}
	return out, nil
}

func (s *MCPSource) connect(ctx context.Context) error {
	env := make([]string, 0, len(s.cfg.Env))
	for k, v := range s.cfg.Env {
		env = append(env, k+"="+v)
	}

	mcpClient, err := client.NewStdioMCPClient(s.cfg.Command, env, s.cfg.Args...)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	if err := mcpClient.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ClientInfo = mcp.Implementation{Name: "agentcore", Version: "0.1.0"}
	initReq.Params.ProtocolVersion = "2024-11-05"
	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		mcpClient.Close()
		return fmt.Errorf("initialize: %w", err)
	}

	s.mcpClient = mcpClient
	s.connected = true
	return nil
}

// Close tears down the server connection, if one was established.
func (s *MCPSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mcpClient == nil {
		return nil
	}
	err := s.mcpClient.Close()
	s.mcpClient = nil
	s.connected = false
	return err
}

type mcpCallable struct {
	client *client.Client
	name   string
	desc   string
	schema map[string]any
}

func (c *mcpCallable) Descriptor() Descriptor {
	return Descriptor{Name: c.name, Description: c.desc, Schema: c.schema}
}

func (c *mcpCallable) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = c.name
	req.Params.Arguments = args

	resp, err := c.client.CallTool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("tool: call %q: %w", c.name, err)
	}

	result := make(map[string]any)
	if resp.IsError {
		result["error"] = firstText(resp.Content)
		if result["error"] == "" {
			result["error"] = "unknown error"
		}
		return result, nil
	}

	var texts []string
	for _, content := range resp.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			texts = append(texts, tc.Text)
		}
	}
	switch len(texts) {
	case 0:
	case 1:
		result["result"] = texts[0]
	default:
		result["results"] = texts
	}
	return result, nil
}

func firstText(content []mcp.Content) string {
	for _, c := range content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func schemaToMap(schema mcp.ToolInputSchema) map[string]any {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

var _ Source = (*MCPSource)(nil)
