package services

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"Bankly/internal/models"
)

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// CreateNotification creates a new in-app notification
func (s *NotificationService) CreateNotification(userID uint, notifType models.NotificationType, title, message string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		jsonBytes, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal notification data: %w", err)
		}
		dataJSON = string(jsonBytes)
	}

	notification := models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    dataJSON,
		IsRead:  false,
	}

	if err := s.db.Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// NotifyDeposit records a successful deposit
func (s *NotificationService) NotifyDeposit(userID uint, amount decimal.Decimal, reference string) error {
	return s.CreateNotification(
		userID,
		models.NotificationDepositSuccess,
		"Deposit Successful",
		fmt.Sprintf("%s was deposited to your account.", amount.StringFixed(2)),
		map[string]interface{}{
			"amount":    amount.StringFixed(2),
			"reference": reference,
		},
	)
}

// NotifyWithdrawal records a successful withdrawal
func (s *NotificationService) NotifyWithdrawal(userID uint, amount decimal.Decimal, reference string) error {
	return s.CreateNotification(
		userID,
		models.NotificationWithdrawalSuccess,
		"Withdrawal Successful",
		fmt.Sprintf("%s was withdrawn from your account.", amount.StringFixed(2)),
		map[string]interface{}{
			"amount":    amount.StringFixed(2),
			"reference": reference,
		},
	)
}

// NotifyLoanRequested confirms a loan request reached the admin queue
func (s *NotificationService) NotifyLoanRequested(userID uint, amount decimal.Decimal, loanID uint) error {
	return s.CreateNotification(
		userID,
		models.NotificationLoanRequested,
		"Loan Request Submitted",
		fmt.Sprintf("Your loan request for %s has been sent to the admin for approval.", amount.StringFixed(2)),
		map[string]interface{}{
			"loan_id": loanID,
			"amount":  amount.StringFixed(2),
		},
	)
}

// NotifyLoanApproved tells the user their loan can now be repaid
func (s *NotificationService) NotifyLoanApproved(userID uint, amount decimal.Decimal, loanID uint) error {
	return s.CreateNotification(
		userID,
		models.NotificationLoanApproved,
		"Loan Approved",
		fmt.Sprintf("Your loan of %s has been approved.", amount.StringFixed(2)),
		map[string]interface{}{
			"loan_id": loanID,
			"amount":  amount.StringFixed(2),
		},
	)
}

// NotifyLoanRepaid confirms a loan settlement
func (s *NotificationService) NotifyLoanRepaid(userID uint, amount decimal.Decimal, loanID uint) error {
	return s.CreateNotification(
		userID,
		models.NotificationLoanRepaid,
		"Loan Paid Off",
		fmt.Sprintf("Your loan of %s has been successfully paid off.", amount.StringFixed(2)),
		map[string]interface{}{
			"loan_id": loanID,
			"amount":  amount.StringFixed(2),
		},
	)
}

// NotifyTransferSent notifies the sender of an outgoing transfer
func (s *NotificationService) NotifyTransferSent(userID uint, amount decimal.Decimal, recipientNo int64, reference string) error {
	return s.CreateNotification(
		userID,
		models.NotificationTransferSent,
		"Transfer Sent",
		fmt.Sprintf("You sent %s to account %d.", amount.StringFixed(2), recipientNo),
		map[string]interface{}{
			"amount":       amount.StringFixed(2),
			"recipient_no": recipientNo,
			"reference":    reference,
		},
	)
}

// NotifyTransferReceived notifies the recipient of an incoming transfer
func (s *NotificationService) NotifyTransferReceived(userID uint, amount decimal.Decimal, senderName string, reference string) error {
	return s.CreateNotification(
		userID,
		models.NotificationTransferReceived,
		"Transfer Received",
		fmt.Sprintf("You received %s from %s.", amount.StringFixed(2), senderName),
		map[string]interface{}{
			"amount":    amount.StringFixed(2),
			"sender":    senderName,
			"reference": reference,
		},
	)
}
