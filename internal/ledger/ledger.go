// Package ledger holds the money-moving core: every balance mutation runs
// inside a database transaction and is applied as a guarded atomic delta
// (balance = balance - ? ... AND balance >= ?), so two concurrent operations
// on the same account can never observe a stale balance. The two-leg peer
// transfer commits both balance updates and both ledger rows together or
// not at all.
package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"Bankly/internal/models"
)

// Operation limits, in whole currency units.
var (
	MinDeposit  = decimal.NewFromInt(500)
	MinWithdraw = decimal.NewFromInt(500)
	MaxWithdraw = decimal.NewFromInt(500000)
)

// MaxApprovedLoans caps the number of approved, still-outstanding loans an
// account may hold before further requests are refused.
const MaxApprovedLoans = 2

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Bank returns the singleton bank row, creating it on first use.
func (s *Service) Bank() (models.Bank, error) {
	var bank models.Bank
	err := s.db.FirstOrCreate(&bank, models.Bank{ID: 1}).Error
	return bank, err
}

// SetBankrupt flips the bank-wide bankrupt switch.
func (s *Service) SetBankrupt(bankrupt bool) (models.Bank, error) {
	bank, err := s.Bank()
	if err != nil {
		return bank, err
	}
	bank.Bankrupt = bankrupt
	err = s.db.Model(&bank).Update("bankrupt", bankrupt).Error
	return bank, err
}

func (s *Service) bankSuspended(tx *gorm.DB) error {
	var bank models.Bank
	if err := tx.FirstOrCreate(&bank, models.Bank{ID: 1}).Error; err != nil {
		return err
	}
	if bank.Bankrupt {
		return ErrBankSuspended
	}
	return nil
}

// Deposit credits the account and appends a deposit ledger row. Deposits
// below MinDeposit are refused. Deposits stay open even when the bank is
// bankrupt.
func (s *Service) Deposit(accountID uint, amount decimal.Decimal) (*models.Transaction, error) {
	if amount.LessThan(MinDeposit) {
		return nil, ErrDepositBelowMinimum
	}

	var entry *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Account{}).
			Where("id = ?", accountID).
			UpdateColumn("balance", gorm.Expr("balance + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAccountNotFound
		}

		var err error
		entry, err = appendEntry(tx, accountID, models.TransactionDeposit, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Withdraw debits the account and appends a withdrawal ledger row. Refused
// when the bank is bankrupt, when the amount is outside [MinWithdraw,
// MaxWithdraw], or when it exceeds the balance.
func (s *Service) Withdraw(accountID uint, amount decimal.Decimal) (*models.Transaction, error) {
	if amount.LessThan(MinWithdraw) {
		return nil, ErrWithdrawBelowMinimum
	}
	if amount.GreaterThan(MaxWithdraw) {
		return nil, ErrWithdrawAboveMaximum
	}

	var entry *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.bankSuspended(tx); err != nil {
			return err
		}
		if err := debit(tx, accountID, amount); err != nil {
			return err
		}

		var err error
		entry, err = appendEntry(tx, accountID, models.TransactionWithdrawal, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// RequestLoan records an unapproved loan request. The balance is untouched;
// approval is an administrative action. An account already holding
// MaxApprovedLoans approved loans is refused.
func (s *Service) RequestLoan(accountID uint, amount decimal.Decimal) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrAmountNotPositive
	}

	var entry *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.bankSuspended(tx); err != nil {
			return err
		}

		var approved int64
		err := tx.Model(&models.Transaction{}).
			Where("account_id = ? AND transaction_type = ? AND loan_approved = ?",
				accountID, models.TransactionLoan, true).
			Count(&approved).Error
		if err != nil {
			return err
		}
		if approved >= MaxApprovedLoans {
			return ErrLoanLimitExceeded
		}

		entry, err = appendEntry(tx, accountID, models.TransactionLoan, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ApproveLoan marks a pending loan request as approved. Administrative.
func (s *Service) ApproveLoan(loanID uint) (*models.Transaction, error) {
	var loan models.Transaction
	err := s.db.Where("id = ? AND transaction_type = ?", loanID, models.TransactionLoan).
		First(&loan).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	if loan.LoanApproved {
		return &loan, nil
	}

	loan.LoanApproved = true
	if err := s.db.Model(&loan).Update("loan_approved", true).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

// PayLoan settles an approved loan: the account is debited by the loan
// amount and the same ledger row flips to loan_paid with a fresh balance
// snapshot. The in-place flip mirrors the loan lifecycle: an unapproved or
// already-settled loan cannot be paid.
func (s *Service) PayLoan(accountID, loanID uint) (*models.Transaction, error) {
	var loan models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND account_id = ?", loanID, accountID).First(&loan).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrLoanNotFound
			}
			return err
		}
		if loan.Type != models.TransactionLoan {
			return ErrLoanNotFound
		}
		if !loan.LoanApproved {
			return ErrLoanNotApproved
		}

		if err := debit(tx, accountID, loan.Amount); err != nil {
			return err
		}

		var acct models.Account
		if err := tx.First(&acct, accountID).Error; err != nil {
			return err
		}

		loan.Type = models.TransactionLoanPaid
		loan.BalanceAfter = acct.Balance
		return tx.Model(&loan).Updates(map[string]interface{}{
			"transaction_type": models.TransactionLoanPaid,
			"balance_after":    acct.Balance,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Transfer moves amount from the sender's account to the account holding
// recipientNo. Both balance updates and both ledger rows (signed negative
// on the sender, positive on the recipient) commit atomically.
func (s *Service) Transfer(senderAccountID uint, recipientNo int64, amount decimal.Decimal) (sent, received *models.Transaction, err error) {
	if !amount.IsPositive() {
		return nil, nil, ErrAmountNotPositive
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.bankSuspended(tx); err != nil {
			return err
		}

		var recipient models.Account
		if err := tx.Where("account_no = ?", recipientNo).First(&recipient).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrRecipientNotFound
			}
			return err
		}
		if recipient.ID == senderAccountID {
			return ErrSameAccountTransfer
		}

		if err := debit(tx, senderAccountID, amount); err != nil {
			return err
		}
		res := tx.Model(&models.Account{}).
			Where("id = ?", recipient.ID).
			UpdateColumn("balance", gorm.Expr("balance + ?", amount))
		if res.Error != nil {
			return res.Error
		}

		var err error
		sent, err = appendEntry(tx, senderAccountID, models.TransactionTransfer, amount.Neg())
		if err != nil {
			return err
		}
		received, err = appendEntry(tx, recipient.ID, models.TransactionTransfer, amount)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return sent, received, nil
}

// Statement lists the account's ledger rows in insertion order, optionally
// restricted to an inclusive date-only range, together with the sum of the
// listed amounts. Reads never mutate the store.
func (s *Service) Statement(accountID uint, from, to *time.Time) ([]models.Transaction, decimal.Decimal, error) {
	q := s.db.Where("account_id = ?", accountID)
	if from != nil {
		q = q.Where("created_at >= ?", startOfDay(*from))
	}
	if to != nil {
		q = q.Where("created_at < ?", startOfDay(*to).AddDate(0, 0, 1))
	}

	var entries []models.Transaction
	if err := q.Order("id").Find(&entries).Error; err != nil {
		return nil, decimal.Zero, err
	}

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return entries, total, nil
}

// Loans lists the account's loan ledger rows, outstanding and settled.
func (s *Service) Loans(accountID uint) ([]models.Transaction, error) {
	var loans []models.Transaction
	err := s.db.
		Where("account_id = ? AND transaction_type IN ?", accountID,
			[]models.TransactionType{models.TransactionLoan, models.TransactionLoanPaid}).
		Order("id").
		Find(&loans).Error
	return loans, err
}

// Balance returns the account's current stored balance.
func (s *Service) Balance(accountID uint) (decimal.Decimal, error) {
	var acct models.Account
	if err := s.db.First(&acct, accountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.Zero, ErrAccountNotFound
		}
		return decimal.Zero, err
	}
	return acct.Balance, nil
}

// debit applies a guarded atomic debit: the update only matches when the
// balance covers the amount, so a concurrent withdrawal cannot overdraw.
func debit(tx *gorm.DB, accountID uint, amount decimal.Decimal) error {
	res := tx.Model(&models.Account{}).
		Where("id = ? AND balance >= ?", accountID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := tx.Model(&models.Account{}).Where("id = ?", accountID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrAccountNotFound
		}
		return ErrInsufficientFunds
	}
	return nil
}

// appendEntry writes a ledger row snapshotting the balance as it stands
// inside the surrounding transaction.
func appendEntry(tx *gorm.DB, accountID uint, typ models.TransactionType, amount decimal.Decimal) (*models.Transaction, error) {
	var acct models.Account
	if err := tx.First(&acct, accountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	entry := models.Transaction{
		AccountID:    accountID,
		Type:         typ,
		Amount:       amount,
		BalanceAfter: acct.Balance,
		Reference:    newReference(typ),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func newReference(typ models.TransactionType) string {
	prefix := map[models.TransactionType]string{
		models.TransactionDeposit:    "DEP",
		models.TransactionWithdrawal: "WTH",
		models.TransactionLoan:       "LON",
		models.TransactionTransfer:   "TRF",
	}[typ]
	if prefix == "" {
		prefix = "TXN"
	}
	return fmt.Sprintf("%s-%s", prefix, uuid.New().String())
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
