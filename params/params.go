package params

import "time"

const (
	ServerBodyLimit             = 1048576 // 1 MiB
	ServerIdleTimeout           = 30 * time.Second
	ServerReadTimeout           = 10 * time.Second
	ServerWriteTimeout          = 10 * time.Second
	ResendKeyPrefix             = "rv:"
	VerificationTokenPurpose    = "verify_email"
	VerificationTokenExpiration = 1 * time.Hour   // verification link lifetime
	ResendVerificationCooldown  = 1 * time.Minute // minimum gap between verification mails per email
	MailSendTimeout             = 10 * time.Second
	PasswordMinLength           = 6
	PasswordMaxLength           = 72 // bcrypt input limit in bytes
	HealthCheckServerAddr       = ":3001" // health check server address
	APIVersion                  = "1.0"
)

// Document categories served by the landing pages.
var DocumentCategories = []string{"policy", "manuals", "circular"}
