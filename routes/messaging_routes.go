package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/platewise/chefchat/chat"
	"github.com/platewise/chefchat/handlers"
	"github.com/platewise/chefchat/middleware"
)

func MessagingRoutes(app *fiber.App, h *handlers.MessagingHandler, gateway *chat.Gateway) {
	api := app.Group("/api/v1")

	conversations := api.Group("/conversations", middleware.Protected())
	conversations.Get("", h.GetConversations)
	conversations.Get("/:conversationId/messages", h.GetConversationMessages)
	conversations.Post("/:conversationId/read", h.MarkConversationRead)

	// The socket authenticates itself via the first frame, so the upgrade
	// route sits outside the JWT middleware.
	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(gateway.ServeWS))
}
