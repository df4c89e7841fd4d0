package email

import (
	"fmt"

	"github.com/resend/resend-go/v3"
)

// ResendMailer implements Mailer using the Resend API.
type ResendMailer struct {
	client      *resend.Client
	fromAddress string
}

// NewResendMailer creates a new Resend mailer.
// apiKey is the Resend API key; fromAddress is the sender address (must be
// verified in Resend).
func NewResendMailer(apiKey, fromAddress string) *ResendMailer {
	return &ResendMailer{
		client:      resend.NewClient(apiKey),
		fromAddress: fromAddress,
	}
}

// Send sends an email using the specified template via Resend.
func (r *ResendMailer) Send(to, templateName string, data any) error {
	subject, html := renderTemplate(templateName, data)

	params := &resend.SendEmailRequest{
		From:    r.fromAddress,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	_, err := r.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("resend: failed to send email: %w", err)
	}

	return nil
}

// renderTemplate renders the email template and returns subject and HTML body.
func renderTemplate(templateName string, data any) (subject, html string) {
	switch templateName {
	case TemplatePasswordReset:
		d := data.(PasswordResetData)
		subject = "Reset your password"
		html = renderPasswordResetHTML(d)
	default:
		subject = "Message from your notes"
		html = fmt.Sprintf("<p>%+v</p>", data)
	}
	return
}

// renderPasswordResetHTML generates HTML for password reset emails.
func renderPasswordResetHTML(data PasswordResetData) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Reset your password</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #2c3e50; padding: 30px; border-radius: 10px 10px 0 0;">
        <h1 style="color: white; margin: 0; font-size: 24px;">Notes</h1>
    </div>
    <div style="background: #ffffff; padding: 30px; border: 1px solid #e0e0e0; border-top: none; border-radius: 0 0 10px 10px;">
        <h2 style="color: #333; margin-top: 0;">Reset your password</h2>
        <p>We received a request to reset your password. Click the button below to create a new password. This link will expire in <strong>%s</strong>.</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background: #2c3e50; color: white; padding: 14px 30px; text-decoration: none; border-radius: 6px; font-weight: 600; display: inline-block;">Reset Password</a>
        </div>
        <p style="color: #666; font-size: 14px;">If you didn't request a password reset, you can safely ignore this email. Your password will remain unchanged.</p>
        <hr style="border: none; border-top: 1px solid #e0e0e0; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated message. Please do not reply to this email.</p>
    </div>
</body>
</html>`, data.ExpiresIn, data.Link)
}
