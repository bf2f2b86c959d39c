package ledger

import "errors"

var (
	ErrAmountNotPositive    = errors.New("amount must be positive")
	ErrDepositBelowMinimum  = errors.New("deposit amount is below the minimum")
	ErrWithdrawBelowMinimum = errors.New("withdrawal amount is below the minimum")
	ErrWithdrawAboveMaximum = errors.New("withdrawal amount is above the maximum")
	ErrInsufficientFunds    = errors.New("insufficient balance")
	ErrLoanLimitExceeded    = errors.New("loan limit exceeded")
	ErrLoanNotFound         = errors.New("loan not found")
	ErrLoanNotApproved      = errors.New("loan is not approved")
	ErrBankSuspended        = errors.New("the bank is bankrupt and cannot process this operation")
	ErrRecipientNotFound    = errors.New("recipient account not found")
	ErrSameAccountTransfer  = errors.New("cannot transfer to the same account")
	ErrAccountNotFound      = errors.New("account not found")
)
