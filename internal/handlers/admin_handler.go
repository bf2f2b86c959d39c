package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"Bankly/internal/ledger"
	"Bankly/internal/models"
	"Bankly/internal/services"
)

type AdminHandler struct {
	db            *gorm.DB
	ledger        *ledger.Service
	notifications *services.NotificationService
}

func NewAdminHandler(db *gorm.DB, lgr *ledger.Service, notifications *services.NotificationService) *AdminHandler {
	return &AdminHandler{db: db, ledger: lgr, notifications: notifications}
}

// AdminLogin authenticates an admin user
func (h *AdminHandler) AdminLogin(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(&req); err != nil {
		return validationError(c, err)
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if !user.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Admin access required",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token, err := generateJWT(&user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"admin": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// GetAllUsers lists every registered user with account and address
func (h *AdminHandler) GetAllUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := h.db.Preload("Account").Preload("Address").Order("id").Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve users",
		})
	}

	return c.JSON(fiber.Map{
		"users": users,
		"count": len(users),
	})
}

// GetAllTransactions lists the full ledger, newest first
func (h *AdminHandler) GetAllTransactions(c *fiber.Ctx) error {
	query := h.db.Preload("Account")
	if t := c.Query("type"); t != "" {
		query = query.Where("transaction_type = ?", t)
	}

	var transactions []models.Transaction
	if err := query.Order("id DESC").Find(&transactions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve transactions",
		})
	}

	return c.JSON(fiber.Map{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// GetPendingLoans lists loan requests awaiting approval
func (h *AdminHandler) GetPendingLoans(c *fiber.Ctx) error {
	var loans []models.Transaction
	err := h.db.Preload("Account").
		Where("transaction_type = ? AND loan_approved = ?", models.TransactionLoan, false).
		Order("id").
		Find(&loans).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve pending loans",
		})
	}

	return c.JSON(fiber.Map{
		"loans": loans,
		"count": len(loans),
	})
}

// ApproveLoan marks a requested loan as approved so the owner can repay it
func (h *AdminHandler) ApproveLoan(c *fiber.Ctx) error {
	loanID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid loan ID",
		})
	}

	loan, err := h.ledger.ApproveLoan(uint(loanID))
	if err != nil {
		return ledgerError(c, err)
	}

	if h.notifications != nil {
		var acct models.Account
		if err := h.db.First(&acct, loan.AccountID).Error; err == nil {
			if err := h.notifications.NotifyLoanApproved(acct.UserID, loan.Amount, loan.ID); err != nil {
				log.Printf("loan-approved notification failed: %v", err)
			}
		}
	}

	return c.JSON(fiber.Map{
		"message": "Loan approved successfully",
		"loan": fiber.Map{
			"id":            loan.ID,
			"amount":        loan.Amount,
			"loan_approved": loan.LoanApproved,
		},
	})
}

// GetBank returns the bank-wide state
func (h *AdminHandler) GetBank(c *fiber.Ctx) error {
	bank, err := h.ledger.Bank()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve bank state",
		})
	}

	return c.JSON(fiber.Map{
		"bank": bank,
	})
}

// SetBankrupt flips the global bankrupt switch. While set, withdrawals,
// loans and transfers are refused; deposits stay open.
func (h *AdminHandler) SetBankrupt(c *fiber.Ctx) error {
	var req struct {
		Bankrupt *bool `json:"bankrupt" validate:"required"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Bankrupt == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "bankrupt field is required",
		})
	}

	bank, err := h.ledger.SetBankrupt(*req.Bankrupt)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update bank state",
		})
	}

	message := "The bank is operating normally again"
	if bank.Bankrupt {
		message = "The bank has been marked bankrupt"
	}

	return c.JSON(fiber.Map{
		"message": message,
		"bank":    bank,
	})
}

// GetDashboardStats aggregates bank-wide totals for the admin overview
func (h *AdminHandler) GetDashboardStats(c *fiber.Ctx) error {
	var totalUsers int64
	h.db.Model(&models.User{}).Count(&totalUsers)

	var accounts []models.Account
	if err := h.db.Find(&accounts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve accounts",
		})
	}
	totalBalance := decimal.Zero
	for _, a := range accounts {
		totalBalance = totalBalance.Add(a.Balance)
	}

	var totalTransactions, pendingLoans, approvedLoans int64
	h.db.Model(&models.Transaction{}).Count(&totalTransactions)
	h.db.Model(&models.Transaction{}).
		Where("transaction_type = ? AND loan_approved = ?", models.TransactionLoan, false).
		Count(&pendingLoans)
	h.db.Model(&models.Transaction{}).
		Where("transaction_type = ? AND loan_approved = ?", models.TransactionLoan, true).
		Count(&approvedLoans)

	bank, err := h.ledger.Bank()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve bank state",
		})
	}

	return c.JSON(fiber.Map{
		"stats": fiber.Map{
			"total_users":        totalUsers,
			"total_balance":      totalBalance,
			"total_transactions": totalTransactions,
			"pending_loans":      pendingLoans,
			"approved_loans":     approvedLoans,
			"bankrupt":           bank.Bankrupt,
		},
	})
}
