package server

import (
	"log/slog"

	"hotorflop/internal/middleware"
	"hotorflop/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// requireUpgrade rejects plain HTTP requests on websocket routes.
func requireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return models.RespondWithError(c, fiber.StatusUpgradeRequired,
			models.NewValidationError("WebSocket upgrade required"))
	}
	return c.Next()
}

// MessagesSocket handles GET /ws/messages. The connection only receives
// frames; sending goes through the REST endpoints.
func (s *Server) MessagesSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(uint)
		if !ok {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket rejected",
				slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
			_ = conn.WriteJSON(fiber.Map{"error": err.Error()})
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
