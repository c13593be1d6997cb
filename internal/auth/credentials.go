package auth

import (
	"net/mail"
	"strings"
)

// Messages shown to users on the login and signup forms.
const (
	MsgEmailRequired      = "Email address is required."
	MsgEmailInvalid       = "Unable to validate email address: invalid format"
	MsgPasswordTooShort   = "Password should be at least 6 characters."
	MsgInvalidCredentials = "Invalid login credentials"
	MsgAlreadyRegistered  = "User already registered"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUpProblem validates sign-up credentials and returns the message to show,
// or an empty string when they are acceptable.
func SignUpProblem(email, password string) string {
	email = NormalizeEmail(email)
	if email == "" {
		return MsgEmailRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return MsgEmailInvalid
	}
	if len(password) < MinPasswordLength {
		return MsgPasswordTooShort
	}
	return ""
}
