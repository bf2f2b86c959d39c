package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"Bankly/internal/config"
	"Bankly/internal/database"
	"Bankly/internal/ledger"
	"Bankly/internal/routes"
	"Bankly/internal/services"
)

func main() {
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable must be set")
	}

	// Connect to database
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}
	log.Println("Database connected and migrated successfully")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Bankly API v1.0",
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Health check routes
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to Bankly API",
			"status":  "running",
			"version": "1.0",
		})
	})
	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "Bankly",
		})
	})

	// Setup application routes
	routes.Setup(app, routes.Deps{
		DB:            database.DB,
		Ledger:        ledger.NewService(database.DB),
		Email:         services.NewEmailService(cfg.ResendAPIKey, cfg.FromEmail),
		Notifications: services.NewNotificationService(database.DB),
	})

	log.Printf("Bankly server starting on http://localhost:%s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
