package auth

import "errors"

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("email not verified")
	ErrTokenInvalid       = errors.New("verification token invalid")
	ErrTokenExpired       = errors.New("verification token expired")
	ErrSessionFailed      = errors.New("session error")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrResendTooSoon      = errors.New("verification email requested too recently")
)

// ValidationError reports a rejected input field. Message is safe to show to
// the client.
type ValidationError struct {
	Field   string
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
