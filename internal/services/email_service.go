package services

import (
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	Client *resend.Client
	From   string
}

func NewEmailService(apiKey, fromEmail string) *EmailService {
	if apiKey == "" {
		log.Printf("WARNING: RESEND_API_KEY is empty, outgoing email will fail")
	}
	if fromEmail == "" {
		fromEmail = "onboarding@resend.dev"
	}

	return &EmailService{
		Client: resend.NewClient(apiKey),
		From:   fromEmail,
	}
}

// SendWelcomeEmail greets a freshly registered user with their new account
// number.
func (es *EmailService) SendWelcomeEmail(to, name string, accountNo int64) error {
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2>Welcome to Bankly, %s!</h2>
        <p>Your account has been created successfully.</p>
        <div style="background-color: #f4f4f4; border: 2px dashed #007bff; padding: 20px; text-align: center; margin: 20px 0; border-radius: 5px;">
            <div style="font-size: 28px; font-weight: bold; color: #007bff; letter-spacing: 3px;">%d</div>
            <div style="font-size: 12px; color: #666;">Your account number</div>
        </div>
        <p>You can now deposit funds, request loans and transfer money to other Bankly accounts.</p>
        <div style="margin-top: 30px; font-size: 12px; color: #666;">
            <p>This is an automated message, please do not reply.</p>
        </div>
    </div>
</body>
</html>
`, name, accountNo)

	return es.send(to, "Welcome to Bankly", body)
}

// SendPasswordChangedEmail notifies the user that their password was updated.
func (es *EmailService) SendPasswordChangedEmail(to, name string) error {
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2>Password Changed</h2>
        <p>Hi %s,</p>
        <p>The password for your Bankly account was just changed. If this was you, no further action is needed.</p>
        <p>If you did not make this change, please contact support immediately.</p>
        <div style="margin-top: 30px; font-size: 12px; color: #666;">
            <p>This is an automated message, please do not reply.</p>
        </div>
    </div>
</body>
</html>
`, name)

	return es.send(to, "Bankly - Password Changed", body)
}

// SendTransactionEmail reports a completed monetary operation. Best-effort:
// a failure here never rolls back the operation itself.
func (es *EmailService) SendTransactionEmail(to, subject, heading, detail string) error {
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2>%s</h2>
        <p>%s</p>
        <div style="margin-top: 30px; font-size: 12px; color: #666;">
            <p>This is an automated message, please do not reply.</p>
        </div>
    </div>
</body>
</html>
`, heading, detail)

	return es.send(to, subject, body)
}

func (es *EmailService) send(to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    es.From,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	sent, err := es.Client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Email sent to %s (ID: %s)", to, sent.Id)
	return nil
}
