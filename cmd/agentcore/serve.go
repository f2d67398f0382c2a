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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/a2aproject/a2a-go/a2a"
	"github.com/a2aproject/a2a-go/a2asrv"

	"github.com/kadirpekel/agentcore/internal/config"
	"github.com/kadirpekel/agentcore/internal/metrics"
	"github.com/kadirpekel/agentcore/internal/tracing"
	"github.com/kadirpekel/agentcore/pkg/a2atask"
	"github.com/kadirpekel/agentcore/pkg/agentcard"
	"github.com/kadirpekel/agentcore/pkg/aiturn"
	agentcontext "github.com/kadirpekel/agentcore/pkg/context"
	"github.com/kadirpekel/agentcore/pkg/demoworkflow"
	"github.com/kadirpekel/agentcore/pkg/eventbus"
	"github.com/kadirpekel/agentcore/pkg/executor"
	"github.com/kadirpekel/agentcore/pkg/tool"
	"github.com/kadirpekel/agentcore/pkg/workflow"
	"github.com/kadirpekel/agentcore/pkg/workflowhandler"
)

// ServeCmd boots the A2A HTTP/SSE surface: it wires every collaborator
// (Context Manager, Workflow Runtime, Tool Registry, AI Handler, Workflow
// Handler, Agent Executor) into a2a-go's own JSON-RPC/SSE handler and
// serves it behind a chi router, mirroring the teacher's http.Server
// construction in pkg/server/http.go.
type ServeCmd struct {
	Addr       string  `help:"HTTP listen address." default:":8080"`
	URL        string  `help:"Externally reachable base URL for the agent card. Defaults to http://localhost<addr>."`
	Watch      bool    `help:"Reload the manifest on change and refresh the agent card."`
	TraceRatio float64 `help:"OpenTelemetry trace sample ratio (0-1)." default:"1"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manifest, err := config.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("agentcore serve: %w", err)
	}

	tracer, err := tracing.New(ctx, manifest.Name, manifest.Version, c.TraceRatio)
	if err != nil {
		return fmt.Errorf("agentcore serve: tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			slog.Error("agentcore serve: tracer shutdown", "error", err)
		}
	}()

	contexts := agentcontext.NewManager()
	runtime := workflow.NewRuntime()
	if err := registerBuiltinWorkflows(runtime); err != nil {
		return fmt.Errorf("agentcore serve: %w", err)
	}

	registry := tool.NewRegistry(mcpSources(manifest)...)
	registry.AddSource(tool.NewWorkflowSource(runtime))
	if err := registry.Refresh(ctx); err != nil {
		slog.Warn("agentcore serve: initial tool refresh failed", "error", err)
	}

	orch := agentcard.New(manifest, registry)
	aiHandler := aiturn.New(contexts, registry, echoService{})
	wfHandler := workflowhandler.New(runtime, contexts)
	buses := eventbus.NewRegistry()
	exec := executor.New(contexts, runtime, aiHandler, wfHandler, buses, resumeInputFromMessage).WithTracer(tracer)

	metricsRec := metrics.New("agentcore")

	tasks := a2atask.NewInMemoryService()
	taskStore := a2atask.NewTaskStoreAdapter(tasks)
	requestHandler := a2asrv.NewHandler(exec, a2asrv.WithTaskStore(taskStore))
	jsonRPCHandler := a2asrv.NewJSONRPCHandler(requestHandler)

	url := c.URL
	if url == "" {
		url = "http://localhost" + c.Addr
	}
	card := newCardHandler(orch.BuildA2ACard(url))

	if c.Watch {
		go c.watchManifest(ctx, cli.Config, orch, card, url)
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(corsMiddleware)
	router.Use(loggingMiddleware)

	router.Get("/health", healthHandler)
	router.Handle("/metrics", metricsRec.Handler())
	router.Method(http.MethodGet, a2asrv.WellKnownAgentCardPath, card)
	router.Method(http.MethodGet, "/", card)
	router.Method(http.MethodPost, "/", jsonRPCHandler)

	httpServer := &http.Server{
		Addr:         c.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		slog.Info("agentcore serve: listening", "addr", c.Addr, "agent", manifest.Name)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
			return
		}
		serveErrCh <- nil
	}()

	select {
	case <-ctx.Done():
		slog.Info("agentcore serve: shutting down")
	case err := <-serveErrCh:
		if err != nil {
			return fmt.Errorf("agentcore serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("agentcore serve: shutdown: %w", err)
	}
	runtime.Shutdown()
	return nil
}

// registerBuiltinWorkflows registers the workflows this core ships with.
// Deployment-specific plugins are registered the same way; wiring them in
// from configuration is a deployment concern, not this core's.
func registerBuiltinWorkflows(runtime *workflow.Runtime) error {
	approval, err := demoworkflow.Approval()
	if err != nil {
		return fmt.Errorf("build approval workflow: %w", err)
	}
	return runtime.Register(approval)
}

func mcpSources(manifest *config.AgentManifest) []tool.Source {
	sources := make([]tool.Source, 0, len(manifest.MCPServers))
	for _, m := range manifest.MCPServers {
		sources = append(sources, tool.NewMCPSource(tool.MCPServerConfig{
			Name:    m.Name,
			Command: m.Command,
			Args:    m.Args,
			Env:     m.Env,
			Filter:  m.Filter,
		}))
	}
	return sources
}

// resumeInputFromMessage extracts a paused task's resume payload from the
// inbound message: the first DataPart's map is used verbatim, otherwise the
// first text part is passed on as {"text": <text>}. The text is not
// interpreted, so a reply such as "approve" or "yes" is not turned into a
// boolean field.
func resumeInputFromMessage(msg *a2a.Message) map[string]any {
	if msg == nil {
		return map[string]any{}
	}
	for _, part := range msg.Parts {
		if dp, ok := part.(a2a.DataPart); ok && dp.Data != nil {
			return dp.Data
		}
	}
	for _, part := range msg.Parts {
		if tp, ok := part.(a2a.TextPart); ok {
			return map[string]any{"text": tp.Text}
		}
	}
	return map[string]any{}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// corsMiddleware is permissive by default: this core has no per-deployment
// origin allowlist of its own, matching the teacher's unconfigured-CORS
// fallback.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs at Debug level without wrapping the
// ResponseWriter, so http.Flusher survives for SSE responses.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("agentcore serve: request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// cardHandler lets the agent card be hot-swapped under --watch without
// tearing down the router.
type cardHandler struct {
	current atomic.Pointer[http.Handler]
}

func newCardHandler(card *a2a.AgentCard) *cardHandler {
	h := &cardHandler{}
	h.set(card)
	return h
}

func (h *cardHandler) set(card *a2a.AgentCard) {
	handler := a2asrv.NewStaticAgentCardHandler(card)
	h.current.Store(&handler)
}

func (h *cardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	(*h.current.Load()).ServeHTTP(w, r)
}

func (c *ServeCmd) watchManifest(ctx context.Context, path string, orch *agentcard.Orchestrator, card *cardHandler, url string) {
	watcher, err := config.NewWatcher(path)
	if err != nil {
		slog.Error("agentcore serve: manifest watcher", "error", err)
		return
	}
	updates := make(chan *config.AgentManifest)
	go watcher.Watch(ctx, updates)

	for m := range updates {
		orch.Update(m)
		card.set(orch.BuildA2ACard(url))
		slog.Info("agentcore serve: manifest reloaded", "agent", m.Name)
	}
}
