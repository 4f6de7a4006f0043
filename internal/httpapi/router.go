// Package httpapi exposes the chat gateway over HTTP and websocket.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/opsline/opsline/internal/config"
	"github.com/opsline/opsline/internal/gateway"
	"github.com/opsline/opsline/internal/incident"
)

// Gateway is the slice of the chat gateway the API needs.
type Gateway interface {
	HandleMessage(ctx context.Context, input gateway.MessageInput) gateway.MessageOutput
	ClearSession(sessionID string)
	Incidents(ctx context.Context) []incident.Record
	Analysis(ctx context.Context) incident.Summary
}

// Pinger reports backing-store health for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Config  config.Config
	Gateway Gateway
	Store   Pinger
	Logger  *slog.Logger
}

type router struct {
	deps Dependencies
}

func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	rt := &router{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.handleHealth)
	mux.HandleFunc("/readyz", rt.handleReady)
	mux.HandleFunc("/api/v1/chat", rt.handleChat)
	mux.HandleFunc("/api/v1/sessions/clear", rt.handleSessionsClear)
	mux.HandleFunc("/api/v1/incidents", rt.handleIncidents)
	mux.HandleFunc("/api/v1/incidents/analysis", rt.handleAnalysis)
	mux.HandleFunc("/ws", rt.handleWebsocket)
	return mux
}

func (r *router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *router) handleReady(w http.ResponseWriter, req *http.Request) {
	if r.deps.Store != nil {
		if err := r.deps.Store.Ping(req.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not-ready", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
