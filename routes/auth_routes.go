package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/platewise/chefchat/handlers"
)

func AuthRoutes(app *fiber.App, h *handlers.AuthHandler) {
	auth := app.Group("/api/v1/auth")
	auth.Post("/register", h.RegisterUser)
	auth.Post("/login", h.LoginUser)
}
