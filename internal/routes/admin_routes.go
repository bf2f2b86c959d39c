package routes

import (
	"github.com/gofiber/fiber/v2"

	"Bankly/internal/handlers"
	"Bankly/internal/middleware"
)

func setupAdminRoutes(app *fiber.App, deps Deps) {
	adminHandler := handlers.NewAdminHandler(deps.DB, deps.Ledger, deps.Notifications)

	adminAuth := app.Group("/api/admin/auth")
	adminAuth.Post("/login", adminHandler.AdminLogin)

	// Protected admin routes
	admin := app.Group("/api/admin", middleware.Protected(), middleware.AdminOnly())

	admin.Get("/dashboard", adminHandler.GetDashboardStats)

	admin.Get("/users", adminHandler.GetAllUsers)
	admin.Get("/transactions", adminHandler.GetAllTransactions)

	// Loan approval queue
	admin.Get("/loans/pending", adminHandler.GetPendingLoans)
	admin.Post("/loans/:id/approve", adminHandler.ApproveLoan)

	// Bank-wide state
	admin.Get("/bank", adminHandler.GetBank)
	admin.Post("/bank/bankrupt", adminHandler.SetBankrupt)
}
