package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"

	"github.com/platewise/chefchat/chat"
	config "github.com/platewise/chefchat/configs"
	"github.com/platewise/chefchat/database"
	"github.com/platewise/chefchat/handlers"
	"github.com/platewise/chefchat/jobs"
	"github.com/platewise/chefchat/notifications"
	"github.com/platewise/chefchat/routes"
)

func main() {
	config.Load()

	db := database.Connect()
	database.Migrate(db)

	store := chat.NewGormMessageStore(db)
	notifier := notifications.NewPushService(
		config.Config("PUSH_GATEWAY_URL"),
		config.Config("PUSH_GATEWAY_API_KEY"),
	)
	verifier := chat.NewJWTVerifier(config.Config("JWT_SECRET"))

	hub := chat.NewHub()
	gateway := chat.NewGateway(hub, store, verifier, notifier)

	c := cron.New()
	digest := &jobs.UnreadDigestJob{Store: store, Notifier: notifier, Window: time.Hour}
	if _, err := c.AddJob("0 * * * *", digest); err != nil {
		log.Fatalf("🔥 Failed to schedule unread digest job: %v", err)
	}
	c.Start()
	log.Println("✅ Cron job for unread digests scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:       "Platewise Messaging",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	authHandler := handlers.NewAuthHandler(db)
	messagingHandler := handlers.NewMessagingHandler(gateway, store)

	routes.AuthRoutes(app, authHandler)
	routes.MessagingRoutes(app, messagingHandler, gateway)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	port := config.ConfigDefault("PORT", "8080")
	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
