package handler

import (
	"net/http"

	"github.com/dafibh/payfi/payfi-backend/internal/websocket"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// JWTValidator validates JWT tokens and returns the owner ID
type JWTValidator interface {
	ValidateToken(token string) (ownerID string, err error)
}

// WebSocketHandler opens owner-scoped event streams
type WebSocketHandler struct {
	hub       *websocket.Hub
	validator JWTValidator
	origins   map[string]struct{}
	upgrader  ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler accepting browser
// connections from allowedOrigins
func NewWebSocketHandler(hub *websocket.Hub, validator JWTValidator, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:       hub,
		validator: validator,
		origins:   make(map[string]struct{}, len(allowedOrigins)),
	}
	for _, origin := range allowedOrigins {
		h.origins[origin] = struct{}{}
	}
	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin allows non-browser clients, which send no Origin header
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if _, ok := h.origins[origin]; ok {
		return true
	}
	log.Warn().Str("origin", origin).Msg("Event stream rejected: origin not allowed")
	return false
}

// HandleWS opens an event stream at GET /ws?token=<jwt>[&agentId=<uuid>].
// Without agentId the stream carries events for every agent of the owner.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	ownerID, err := h.validator.ValidateToken(token)
	if err != nil {
		log.Debug().Err(err).Msg("Event stream rejected: invalid token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	sub := websocket.Subscription{OwnerID: ownerID}
	if raw := c.QueryParam("agentId"); raw != "" {
		agentID, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "agentId must be a UUID")
		}
		sub.AgentID = agentID.String()
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("Event stream upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, sub, h.hub)
	if data, err := websocket.StreamOpened(sub).ToJSON(); err == nil {
		client.Send(data)
	}

	log.Info().
		Str("owner_id", ownerID).
		Str("agent_id", sub.AgentID).
		Str("client_id", client.ID()).
		Msg("Event stream opened")

	go client.Serve()
	return nil
}
