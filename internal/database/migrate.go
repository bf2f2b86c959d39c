package database

import (
	"fmt"

	"Bankly/internal/models"
)

func Migrate() error {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Address{},
		&models.Transaction{},
		&models.Bank{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
