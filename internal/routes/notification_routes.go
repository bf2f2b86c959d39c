package routes

import (
	"github.com/gofiber/fiber/v2"

	"Bankly/internal/handlers"
	"Bankly/internal/middleware"
)

func setupNotificationRoutes(app *fiber.App, deps Deps) {
	notificationHandler := handlers.NewNotificationHandler(deps.DB)

	notifications := app.Group("/api/notifications", middleware.Protected())
	notifications.Get("/", notificationHandler.GetNotifications)
	notifications.Put("/:id/read", notificationHandler.MarkAsRead)
	notifications.Put("/read-all", notificationHandler.MarkAllAsRead)
}
