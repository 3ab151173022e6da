package handlers

import (
	"net/http"

	"github.com/dom/mama-respira/internal/service"
	"github.com/dom/mama-respira/internal/websocket"
	ws "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the token query parameter is the credential
	},
}

type WebSocketHandler struct {
	hub         *websocket.Hub
	authService *service.AuthService
	log         *zap.Logger
}

func NewWebSocketHandler(hub *websocket.Hub, authService *service.AuthService, log *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
		log:         log,
	}
}

// Handle upgrades a connection authenticated by the token query parameter.
// Browsers cannot set headers on WebSocket handshakes.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondJSON(w, r, http.StatusUnauthorized, ErrorResponse{Detail: "Token requerido"})
		return
	}

	user, ok := h.authService.Authenticate(r.Context(), token)
	if !ok {
		respondJSON(w, r, http.StatusUnauthorized, ErrorResponse{Detail: "Token inválido"})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.String("user_id", user.UserID), zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, conn, user.UserID)
	h.hub.Register(client)
	client.Send(websocket.MessageTypeConnected, websocket.ConnectedPayload{UserID: user.UserID})

	go client.WritePump()
	go client.ReadPump()
}
