package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/opsline/opsline/internal/gateway"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     sameHostOrigin,
}

// sameHostOrigin admits non-browser clients (no Origin header) and browsers
// served from this host; cross-origin pages are rejected at the handshake.
func sameHostOrigin(req *http.Request) bool {
	origin := req.Header.Get("Origin")
	if origin == "" {
		return true
	}
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Host, req.Host)
}

type wsInbound struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// handleWebsocket runs one chat conversation per connection. The session id
// from the first reply is reused for subsequent messages unless the client
// pins its own.
func (r *router) handleWebsocket(w http.ResponseWriter, req *http.Request) {
	if r.deps.Gateway == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "chat gateway is unavailable"})
		return
	}
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.deps.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionID := ""
	for {
		var inbound wsInbound
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				r.deps.Logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		message := strings.TrimSpace(inbound.Message)
		if message == "" {
			if err := conn.WriteJSON(map[string]string{"error": "message is required"}); err != nil {
				return
			}
			continue
		}
		if pinned := strings.TrimSpace(inbound.SessionID); pinned != "" {
			sessionID = pinned
		}

		output := r.deps.Gateway.HandleMessage(req.Context(), gateway.MessageInput{
			SessionID: sessionID,
			Message:   message,
		})
		sessionID = output.SessionID
		if err := conn.WriteJSON(output); err != nil {
			r.deps.Logger.Warn("websocket write failed", "error", err)
			return
		}
	}
}
