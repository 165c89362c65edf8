package auth

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/khanghh/docportal/internal/audit"
	"github.com/khanghh/docportal/params"
)

type Validator struct {
	emailPattern      *regexp.Regexp
	passwordMinLength int
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (v *Validator) ValidateEmail(email string) error {
	if !v.emailPattern.MatchString(email) {
		return &ValidationError{
			Field:   "email",
			Reason:  audit.ReasonInvalidEmailFormat,
			Message: "Please use your organization email address.",
		}
	}
	return nil
}

func (v *Validator) ValidatePassword(password string) error {
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	if len(password) > params.PasswordMaxLength {
		return &ValidationError{
			Field:   "password",
			Reason:  audit.ReasonInvalidPasswordFormat,
			Message: fmt.Sprintf("Password must not be longer than %d bytes.", params.PasswordMaxLength),
		}
	}
	if len(password) < v.passwordMinLength || !hasLower || !hasUpper || !hasDigit || !hasSymbol {
		return &ValidationError{
			Field:   "password",
			Reason:  audit.ReasonInvalidPasswordFormat,
			Message: fmt.Sprintf("Password must be at least %d characters long and contain upper and lower case letters, a digit and a special character.", v.passwordMinLength),
		}
	}
	return nil
}

// NewValidator accepts addresses of the form local@domain where the local part
// is limited to letters, digits and ._%+- characters.
func NewValidator(emailDomain string, passwordMinLength int) *Validator {
	if passwordMinLength <= 0 {
		passwordMinLength = params.PasswordMinLength
	}
	pattern := `^[a-zA-Z0-9._%+-]+@` + regexp.QuoteMeta(strings.ToLower(emailDomain)) + `$`
	return &Validator{
		emailPattern:      regexp.MustCompile(pattern),
		passwordMinLength: passwordMinLength,
	}
}
