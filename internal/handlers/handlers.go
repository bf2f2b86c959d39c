package handlers

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"Bankly/internal/ledger"
	"Bankly/internal/models"
)

var validate = validator.New()

// validationError renders a failed request-body validation.
func validationError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "Validation failed",
		"details": err.Error(),
	})
}

// ledgerError maps the ledger's sentinel errors onto HTTP responses. Every
// ledger failure is recovered here and surfaced as a user-visible message.
func ledgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrBankSuspended):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, ledger.ErrLoanNotFound),
		errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrRecipientNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, ledger.ErrAmountNotPositive),
		errors.Is(err, ledger.ErrDepositBelowMinimum),
		errors.Is(err, ledger.ErrWithdrawBelowMinimum),
		errors.Is(err, ledger.ErrWithdrawAboveMaximum),
		errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrLoanLimitExceeded),
		errors.Is(err, ledger.ErrLoanNotApproved),
		errors.Is(err, ledger.ErrSameAccountTransfer):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Something went wrong, please try again",
	})
}

func generateJWT(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET environment variable not set")
	}
	return token.SignedString([]byte(secret))
}

// accountForUser loads the bank account owned by the authenticated user.
func accountForUser(db *gorm.DB, userID uint) (*models.Account, error) {
	var acct models.Account
	if err := db.Where("user_id = ?", userID).First(&acct).Error; err != nil {
		return nil, err
	}
	return &acct, nil
}
