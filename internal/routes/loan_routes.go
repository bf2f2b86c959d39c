package routes

import (
	"github.com/gofiber/fiber/v2"

	"Bankly/internal/handlers"
	"Bankly/internal/middleware"
)

func setupLoanRoutes(app *fiber.App, deps Deps) {
	loanHandler := handlers.NewLoanHandler(deps.DB, deps.Ledger, deps.Notifications, deps.Email)

	loans := app.Group("/api/loans", middleware.Protected())
	loans.Post("/", loanHandler.RequestLoan)
	loans.Get("/", loanHandler.ListLoans)
	loans.Post("/:id/pay", loanHandler.PayLoan)
}
