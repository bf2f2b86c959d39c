package handlers

import (
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Bankly/internal/ledger"
	"Bankly/internal/models"
	"Bankly/internal/services"
)

type LoanHandler struct {
	db            *gorm.DB
	ledger        *ledger.Service
	notifications *services.NotificationService
	email         *services.EmailService
}

func NewLoanHandler(db *gorm.DB, lgr *ledger.Service, notifications *services.NotificationService, email *services.EmailService) *LoanHandler {
	return &LoanHandler{db: db, ledger: lgr, notifications: notifications, email: email}
}

// RequestLoan files a loan request for admin approval. The balance is not
// touched until the loan is approved and later repaid.
func (h *LoanHandler) RequestLoan(c *fiber.Ctx) error {
	req := new(AmountRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	userID := c.Locals("user_id").(uint)
	acct, err := accountForUser(h.db, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve account",
		})
	}

	loan, err := h.ledger.RequestLoan(acct.ID, req.Amount)
	if err != nil {
		return ledgerError(c, err)
	}

	if h.notifications != nil {
		if err := h.notifications.NotifyLoanRequested(userID, loan.Amount, loan.ID); err != nil {
			log.Printf("loan-requested notification failed: %v", err)
		}
	}
	if h.email != nil {
		var user models.User
		if err := h.db.First(&user, userID).Error; err == nil {
			if err := h.email.SendTransactionEmail(user.Email, "Bankly - Loan Request Received", "Loan Request Received",
				fmt.Sprintf("Your loan request for %s has been sent to the admin for approval.", loan.Amount.StringFixed(2))); err != nil {
				log.Printf("loan email to %s failed: %v", user.Email, err)
			}
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("Loan request for %s has been successfully sent to admin", loan.Amount.StringFixed(2)),
		"loan": fiber.Map{
			"id":            loan.ID,
			"reference":     loan.Reference,
			"amount":        loan.Amount,
			"loan_approved": loan.LoanApproved,
		},
	})
}

// ListLoans returns the caller's loans, outstanding and settled
func (h *LoanHandler) ListLoans(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	acct, err := accountForUser(h.db, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve account",
		})
	}

	loans, err := h.ledger.Loans(acct.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve loans",
		})
	}

	return c.JSON(fiber.Map{
		"loans": loans,
		"count": len(loans),
	})
}

// PayLoan settles an approved loan against the caller's balance
func (h *LoanHandler) PayLoan(c *fiber.Ctx) error {
	loanID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid loan ID",
		})
	}

	userID := c.Locals("user_id").(uint)
	acct, err := accountForUser(h.db, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve account",
		})
	}

	loan, err := h.ledger.PayLoan(acct.ID, uint(loanID))
	if err != nil {
		return ledgerError(c, err)
	}

	if h.notifications != nil {
		if err := h.notifications.NotifyLoanRepaid(userID, loan.Amount, loan.ID); err != nil {
			log.Printf("loan-repaid notification failed: %v", err)
		}
	}
	if h.email != nil {
		var user models.User
		if err := h.db.First(&user, userID).Error; err == nil {
			if err := h.email.SendTransactionEmail(user.Email, "Bankly - Loan Paid Off", "Loan Paid Off",
				fmt.Sprintf("Your loan of %s has been successfully paid off. New balance: %s.",
					loan.Amount.StringFixed(2), loan.BalanceAfter.StringFixed(2))); err != nil {
				log.Printf("loan email to %s failed: %v", user.Email, err)
			}
		}
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Loan of %s has been successfully paid off", loan.Amount.StringFixed(2)),
		"loan": fiber.Map{
			"id":                        loan.ID,
			"reference":                 loan.Reference,
			"transaction_type":          loan.Type,
			"amount":                    loan.Amount,
			"balance_after_transaction": loan.BalanceAfter,
		},
		"new_balance": loan.BalanceAfter,
	})
}
