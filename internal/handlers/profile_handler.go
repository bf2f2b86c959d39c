package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Bankly/internal/models"
)

type ProfileHandler struct {
	db *gorm.DB
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

type UpdateProfileRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
}

// GetProfile returns the user's identity, account and address
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var user models.User
	if err := h.db.Preload("Account").Preload("Address").First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve profile",
		})
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":         user.ID,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"email":      user.Email,
			"created_at": user.CreatedAt,
		},
		"account": user.Account,
		"address": user.Address,
	})
}

// UpdateProfile updates name and address fields. Email, account number and
// balance are not editable here.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	req := new(UpdateProfileRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	userID := c.Locals("user_id").(uint)

	var user models.User
	if err := h.db.Preload("Address").First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve profile",
		})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if req.FirstName != "" {
			user.FirstName = req.FirstName
		}
		if req.LastName != "" {
			user.LastName = req.LastName
		}
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
		}).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if req.StreetAddress != "" {
			updates["street_address"] = req.StreetAddress
		}
		if req.City != "" {
			updates["city"] = req.City
		}
		if req.PostalCode != "" {
			updates["postal_code"] = req.PostalCode
		}
		if req.Country != "" {
			updates["country"] = req.Country
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Address{}).Where("user_id = ?", user.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update profile",
		})
	}

	if err := h.db.Preload("Account").Preload("Address").First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve profile",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user": fiber.Map{
			"id":         user.ID,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"email":      user.Email,
		},
		"address": user.Address,
	})
}
