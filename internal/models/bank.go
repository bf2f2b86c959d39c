package models

import "time"

// Bank is a singleton row holding bank-wide state. When Bankrupt is set,
// withdrawals, loans and transfers are refused; deposits stay open.
type Bank struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Bankrupt  bool      `gorm:"default:false" json:"bankrupt"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Bank) TableName() string {
	return "bank"
}
