package handler

import (
	"errors"

	"book-discovery-be/internal/pkg/logger"
	"book-discovery-be/internal/pkg/serverutils"
	internalWS "book-discovery-be/internal/websocket"
	"book-discovery-be/pkg/session"
	"book-discovery-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type SessionStreamHandler struct {
	sessions *session.Manager
	hub      *internalWS.Hub
	logger   logger.ILogger
}

func NewSessionStreamHandler(sessions *session.Manager, hub *internalWS.Hub, log logger.ILogger) *SessionStreamHandler {
	return &SessionStreamHandler{
		sessions: sessions,
		hub:      hub,
		logger:   log,
	}
}

// ServeWs streams the session's events (follow-up questions added, survey
// completed, recommendations ready) to the connected reader.
func (h *SessionStreamHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	err := h.sessions.View(c.UserContext(), sessionID, func(*store.Session) error { return nil })
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return serverutils.NewAppError(fiber.StatusNotFound, err.Error(), err)
		}
		return err
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("SessionStream", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, conn, sessionID)
			h.logger.Info("SessionStream", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *SessionStreamHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/discovery/v1/sessions/:id/ws", h.ServeWs)
}
