// Package email provides the outbound mail capability: a Mailer interface, a
// Resend transport, and a mock that captures sends for tests. The application
// uses it exactly once, for password-reset links; delivery is best-effort with
// no retry or queue.
package email

import (
	"sync"

	"github.com/PotatoBoi2658/notesapp/internal/obs"
)

// Mailer sends an email rendered from the named template.
type Mailer interface {
	// Send sends an email using the specified template.
	// Parameters:
	//   - to: recipient email address
	//   - templateName: name of the email template (e.g., "password_reset")
	//   - data: template data (varies by template)
	Send(to, templateName string, data any) error
}

// SentEmail represents a captured email for testing.
type SentEmail struct {
	To       string
	Template string
	Data     any
}

// MockMailer captures emails instead of sending them. Used in tests and when
// the server runs with --no-email.
type MockMailer struct {
	mu     sync.Mutex
	Emails []SentEmail
}

// NewMockMailer creates a new mock mailer.
func NewMockMailer() *MockMailer {
	return &MockMailer{Emails: make([]SentEmail, 0)}
}

// Send captures the email and logs it for manual testing visibility.
func (m *MockMailer) Send(to, templateName string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Emails = append(m.Emails, SentEmail{
		To:       to,
		Template: templateName,
		Data:     data,
	})

	log := obs.Pkg("email")
	switch d := data.(type) {
	case PasswordResetData:
		log.Info("mock email captured",
			"to", to, "template", templateName,
			"link", d.Link, "expires_in", d.ExpiresIn)
	default:
		log.Info("mock email captured", "to", to, "template", templateName)
	}

	return nil
}

// LastEmail returns the most recently sent email, or the zero value when
// nothing has been sent.
func (m *MockMailer) LastEmail() SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Emails) == 0 {
		return SentEmail{}
	}
	return m.Emails[len(m.Emails)-1]
}

// Count returns the number of captured emails.
func (m *MockMailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Emails)
}

// Clear removes all captured emails.
func (m *MockMailer) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Emails = m.Emails[:0]
}
