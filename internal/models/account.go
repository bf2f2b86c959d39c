package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AccountType string
type Gender string

const (
	AccountSavings AccountType = "savings"
	AccountCurrent AccountType = "current"
)

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// AccountNoBase is added to the owner's user ID to derive the public
// account number. Assigned once at registration, never reissued.
const AccountNoBase = 1000000

type Account struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	UserID      uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	AccountType AccountType     `gorm:"type:varchar(10);not null" json:"account_type"`
	AccountNo   int64           `gorm:"uniqueIndex;not null" json:"account_no"`
	Gender      Gender          `gorm:"type:varchar(10)" json:"gender"`
	BirthDate   *time.Time      `json:"birth_date,omitempty"`
	Balance     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Account) TableName() string {
	return "accounts"
}

type Address struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	UserID        uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	StreetAddress string         `gorm:"not null" json:"street_address"`
	City          string         `gorm:"not null" json:"city"`
	PostalCode    string         `gorm:"not null" json:"postal_code"`
	Country       string         `gorm:"not null" json:"country"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Address) TableName() string {
	return "addresses"
}
