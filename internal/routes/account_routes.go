package routes

import (
	"github.com/gofiber/fiber/v2"

	"Bankly/internal/handlers"
	"Bankly/internal/middleware"
)

func setupAccountRoutes(app *fiber.App, deps Deps) {
	accountHandler := handlers.NewAccountHandler(deps.DB, deps.Ledger, deps.Notifications, deps.Email)

	account := app.Group("/api/account", middleware.Protected())
	account.Get("/balance", accountHandler.GetBalance)
	account.Post("/deposit", accountHandler.Deposit)
	account.Post("/withdraw", accountHandler.Withdraw)
	account.Post("/transfer", accountHandler.Transfer)
	account.Get("/transactions", accountHandler.GetTransactions)
}
