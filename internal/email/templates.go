package email

// Template names as constants for type safety.
const (
	TemplatePasswordReset = "password_reset"
)

// PasswordResetData contains data for password reset emails.
type PasswordResetData struct {
	Link      string
	ExpiresIn string // e.g., "15 minutes"
}
