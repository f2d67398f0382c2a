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

// Command agentcore is the CLI entry point for this runtime core.
//
// Usage:
//
//	agentcore init --config agent.yaml
//	agentcore doctor --config agent.yaml
//	agentcore print-config --config agent.yaml --format yaml
//	agentcore serve --config agent.yaml
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/kadirpekel/agentcore/internal/logging"
)

// CLI is the top-level command tree.
type CLI struct {
	Init        InitCmd        `cmd:"" help:"Scaffold a starter agent manifest."`
	Doctor      DoctorCmd      `cmd:"" help:"Validate an agent manifest and report its effective configuration."`
	PrintConfig PrintConfigCmd `cmd:"print-config" help:"Print the resolved agent manifest."`
	Serve       ServeCmd       `cmd:"" help:"Start the A2A HTTP/SSE server."`
	Register    RegisterCmd    `cmd:"" help:"Register this agent with an on-chain registry (stub)."`

	Config    string `short:"c" help:"Path to the agent manifest." default:"agent.yaml" type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFormat string `help:"Log format (simple, verbose)." default:"simple"`
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("agentcore"),
		kong.Description("Conversational agent runtime core over A2A"),
		kong.UsageOnError(),
	)

	level, err := logging.ParseLevel(cli.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	logging.Init(level, os.Stderr, cli.LogFormat)

	if err := ctx.Run(&cli); err != nil {
		slog.Error("agentcore: command failed", "error", err)
		ctx.FatalIfErrorf(err)
	}
}
