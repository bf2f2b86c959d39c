package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionLoan       TransactionType = "loan"
	TransactionLoanPaid   TransactionType = "loan_paid"
	TransactionTransfer   TransactionType = "transfer"
)

// Transaction is a ledger entry: one row per monetary event, carrying the
// account balance as it stood right after the event. Rows are append-only;
// the single allowed mutation is a loan row flipping to loan_paid on
// repayment.
type Transaction struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	AccountID    uint            `gorm:"not null;index" json:"account_id"`
	Type         TransactionType `gorm:"column:transaction_type;type:varchar(20);not null" json:"transaction_type"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balance_after_transaction"`
	LoanApproved bool            `gorm:"default:false" json:"loan_approved"`
	Reference    string          `gorm:"uniqueIndex;not null" json:"reference"`
	CreatedAt    time.Time       `json:"created_at"`

	Account Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}
