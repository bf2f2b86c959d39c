package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"Bankly/internal/ledger"
	"Bankly/internal/models"
	"Bankly/internal/services"
)

type AccountHandler struct {
	db            *gorm.DB
	ledger        *ledger.Service
	notifications *services.NotificationService
	email         *services.EmailService
}

func NewAccountHandler(db *gorm.DB, lgr *ledger.Service, notifications *services.NotificationService, email *services.EmailService) *AccountHandler {
	return &AccountHandler{db: db, ledger: lgr, notifications: notifications, email: email}
}

type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type TransferRequest struct {
	AccountNo int64           `json:"account_no" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
}

// GetBalance returns the current stored balance for the caller's account
func (h *AccountHandler) GetBalance(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	acct, err := accountForUser(h.db, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve balance",
		})
	}

	return c.JSON(fiber.Map{
		"account_no":   acct.AccountNo,
		"account_type": acct.AccountType,
		"balance":      acct.Balance,
	})
}

// Deposit credits the caller's account
func (h *AccountHandler) Deposit(c *fiber.Ctx) error {
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

	entry, err := h.ledger.Deposit(acct.ID, req.Amount)
	if err != nil {
		return ledgerError(c, err)
	}

	h.notifyTransaction(userID, entry, "Deposit Successful",
		fmt.Sprintf("%s was deposited to your account. New balance: %s.",
			entry.Amount.StringFixed(2), entry.BalanceAfter.StringFixed(2)))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("%s was deposited to your account successfully", entry.Amount.StringFixed(2)),
		"transaction": fiber.Map{
			"id":                        entry.ID,
			"reference":                 entry.Reference,
			"transaction_type":          entry.Type,
			"amount":                    entry.Amount,
			"balance_after_transaction": entry.BalanceAfter,
		},
		"new_balance": entry.BalanceAfter,
	})
}

// Withdraw debits the caller's account
func (h *AccountHandler) Withdraw(c *fiber.Ctx) error {
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

	entry, err := h.ledger.Withdraw(acct.ID, req.Amount)
	if err != nil {
		return ledgerError(c, err)
	}

	h.notifyTransaction(userID, entry, "Withdrawal Successful",
		fmt.Sprintf("%s was withdrawn from your account. New balance: %s.",
			entry.Amount.StringFixed(2), entry.BalanceAfter.StringFixed(2)))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("Successfully withdrew %s from your account", entry.Amount.StringFixed(2)),
		"transaction": fiber.Map{
			"id":                        entry.ID,
			"reference":                 entry.Reference,
			"transaction_type":          entry.Type,
			"amount":                    entry.Amount,
			"balance_after_transaction": entry.BalanceAfter,
		},
		"new_balance": entry.BalanceAfter,
	})
}

// Transfer moves money to another account by account number. Both legs
// commit atomically in the ledger.
func (h *AccountHandler) Transfer(c *fiber.Ctx) error {
	req := new(TransferRequest)
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

	sent, received, err := h.ledger.Transfer(acct.ID, req.AccountNo, req.Amount)
	if err != nil {
		return ledgerError(c, err)
	}

	// Notify both parties, best-effort.
	var sender models.User
	if err := h.db.First(&sender, userID).Error; err == nil {
		if h.notifications != nil {
			if err := h.notifications.NotifyTransferSent(sender.ID, req.Amount, req.AccountNo, sent.Reference); err != nil {
				log.Printf("transfer-sent notification failed: %v", err)
			}
		}
		if h.email != nil {
			if err := h.email.SendTransactionEmail(sender.Email, "Bankly - Transfer Sent", "Transfer Sent",
				fmt.Sprintf("You sent %s to account %d. New balance: %s.",
					req.Amount.StringFixed(2), req.AccountNo, sent.BalanceAfter.StringFixed(2))); err != nil {
				log.Printf("transfer email to %s failed: %v", sender.Email, err)
			}
		}
	}
	var recipientAcct models.Account
	if err := h.db.Preload("User").First(&recipientAcct, received.AccountID).Error; err == nil && recipientAcct.User != nil {
		if h.notifications != nil {
			if err := h.notifications.NotifyTransferReceived(recipientAcct.UserID, req.Amount, sender.FullName(), received.Reference); err != nil {
				log.Printf("transfer-received notification failed: %v", err)
			}
		}
		if h.email != nil {
			if err := h.email.SendTransactionEmail(recipientAcct.User.Email, "Bankly - Transfer Received", "Transfer Received",
				fmt.Sprintf("You received %s from %s.", req.Amount.StringFixed(2), sender.FullName())); err != nil {
				log.Printf("transfer email to %s failed: %v", recipientAcct.User.Email, err)
			}
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("Successfully transferred %s to account %d", req.Amount.StringFixed(2), req.AccountNo),
		"transaction": fiber.Map{
			"id":                        sent.ID,
			"reference":                 sent.Reference,
			"transaction_type":          sent.Type,
			"amount":                    sent.Amount,
			"balance_after_transaction": sent.BalanceAfter,
		},
		"new_balance": sent.BalanceAfter,
	})
}

// GetTransactions returns the caller's ledger, optionally restricted to an
// inclusive date range (YYYY-MM-DD), plus the sum over the listed window.
func (h *AccountHandler) GetTransactions(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	acct, err := accountForUser(h.db, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve account",
		})
	}

	var from, to *time.Time
	if s := c.Query("start_date"); s != "" {
		parsed, perr := time.Parse("2006-01-02", s)
		if perr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid start_date, expected YYYY-MM-DD",
			})
		}
		from = &parsed
	}
	if s := c.Query("end_date"); s != "" {
		parsed, perr := time.Parse("2006-01-02", s)
		if perr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid end_date, expected YYYY-MM-DD",
			})
		}
		to = &parsed
	}

	entries, total, err := h.ledger.Statement(acct.ID, from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve transactions",
		})
	}

	return c.JSON(fiber.Map{
		"transactions": entries,
		"count":        len(entries),
		"total_amount": total,
		"balance":      acct.Balance,
	})
}

// notifyTransaction fans a completed operation out to the in-app feed and
// email. Failures are logged, never propagated.
func (h *AccountHandler) notifyTransaction(userID uint, entry *models.Transaction, title, message string) {
	if h.notifications != nil {
		var err error
		switch entry.Type {
		case models.TransactionDeposit:
			err = h.notifications.NotifyDeposit(userID, entry.Amount, entry.Reference)
		case models.TransactionWithdrawal:
			err = h.notifications.NotifyWithdrawal(userID, entry.Amount, entry.Reference)
		}
		if err != nil {
			log.Printf("notification for %s failed: %v", entry.Reference, err)
		}
	}
	if h.email != nil {
		var user models.User
		if err := h.db.First(&user, userID).Error; err == nil {
			if err := h.email.SendTransactionEmail(user.Email, "Bankly - "+title, title, message); err != nil {
				log.Printf("transaction email to %s failed: %v", user.Email, err)
			}
		}
	}
}
