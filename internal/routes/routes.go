package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Bankly/internal/handlers"
	"Bankly/internal/ledger"
	"Bankly/internal/middleware"
	"Bankly/internal/services"
)

// Deps carries the shared dependencies handed to every handler.
type Deps struct {
	DB            *gorm.DB
	Ledger        *ledger.Service
	Email         *services.EmailService
	Notifications *services.NotificationService
}

// Setup registers the whole API surface on the app.
func Setup(app *fiber.App, deps Deps) {
	setupAuthRoutes(app, deps)
	setupAccountRoutes(app, deps)
	setupLoanRoutes(app, deps)
	setupNotificationRoutes(app, deps)
	setupAdminRoutes(app, deps)
}

func setupAuthRoutes(app *fiber.App, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.DB, deps.Email)
	profileHandler := handlers.NewProfileHandler(deps.DB)

	auth := app.Group("/api/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/change-password", middleware.Protected(), authHandler.ChangePassword)

	profile := app.Group("/api/profile", middleware.Protected())
	profile.Get("/", profileHandler.GetProfile)
	profile.Put("/", profileHandler.UpdateProfile)
}
