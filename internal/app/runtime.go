// Package app wires the runtime together: store, incident cache, tools,
// fallback model, gateway, watcher, scheduler and HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/opsline/opsline/internal/agent"
	"github.com/opsline/opsline/internal/config"
	"github.com/opsline/opsline/internal/gateway"
	"github.com/opsline/opsline/internal/httpapi"
	"github.com/opsline/opsline/internal/incident"
	"github.com/opsline/opsline/internal/llm/openai"
	"github.com/opsline/opsline/internal/mcp"
	"github.com/opsline/opsline/internal/provider"
	"github.com/opsline/opsline/internal/scheduler"
	"github.com/opsline/opsline/internal/session"
	"github.com/opsline/opsline/internal/store"
	"github.com/opsline/opsline/internal/watcher"
)

type Runtime struct {
	cfg        config.Config
	logger     *slog.Logger
	store      *store.Store
	cache      *incident.Cache
	gateway    *gateway.Service
	httpServer *http.Server
	watcher    *watcher.Service
	scheduler  *scheduler.Service
	mcpManager *mcp.Manager
}

func New(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	sqlStore, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := sqlStore.AutoMigrate(context.Background()); err != nil {
		sqlStore.Close()
		return nil, err
	}

	feed := provider.New(provider.Config{
		BaseURL: cfg.ProviderBaseURL,
		Timeout: time.Duration(cfg.ProviderTimeoutSec) * time.Second,
	}, logger.With("component", "provider"))
	cache := incident.NewCache(feed, time.Duration(cfg.CacheTTLSec)*time.Second, cfg.RecordLimit,
		logger.With("component", "cache"))

	registry := gateway.BuiltinRegistry(cache, sqlStore)

	mcpCatalog, err := mcp.LoadCatalog(cfg.MCPConfigFile)
	if err != nil {
		sqlStore.Close()
		return nil, err
	}
	mcpManager := mcp.NewManager(mcpCatalog, registry, logger.With("component", "mcp"))

	caller := openai.New(openai.Config{
		APIKey:        cfg.LLMAPIKey,
		BaseURL:       cfg.LLMBaseURL,
		Model:         cfg.LLMModel,
		Timeout:       time.Duration(cfg.LLMTimeoutSec) * time.Second,
		MaxToolRounds: cfg.LLMMaxToolRounds,
	}, logger.With("component", "llm"))

	sessions := session.NewStore(cfg.SessionMaxTurns)
	fallback := agent.New(sessions, caller, registry, logger.With("component", "agent"))
	chatGateway := gateway.NewService(cache, fallback, logger.With("component", "gateway"))

	promptWatcher, err := watcher.New(cfg.SystemPromptFile, logger.With("component", "watcher"),
		func(_ context.Context, prompt string) {
			fallback.SetSystemPrompt(prompt)
		})
	if err != nil {
		sqlStore.Close()
		return nil, err
	}

	warmScheduler, err := scheduler.New(cache, cfg.CacheWarmCron, logger.With("component", "scheduler"))
	if err != nil {
		sqlStore.Close()
		return nil, err
	}

	handler := httpapi.NewRouter(httpapi.Dependencies{
		Config:  cfg,
		Gateway: chatGateway,
		Store:   sqlStore,
		Logger:  logger.With("component", "httpapi"),
	})

	return &Runtime{
		cfg:     cfg,
		logger:  logger,
		store:   sqlStore,
		cache:   cache,
		gateway: chatGateway,
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		watcher:    promptWatcher,
		scheduler:  warmScheduler,
		mcpManager: mcpManager,
	}, nil
}

// Gateway exposes the chat gateway for in-process surfaces (chat REPL, TUI).
func (r *Runtime) Gateway() *gateway.Service {
	return r.gateway
}

func (r *Runtime) Close() error {
	if r.mcpManager != nil {
		_ = r.mcpManager.Close()
	}
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}
