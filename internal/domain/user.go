package domain

import (
	"strings"
	"time"
)

// User is a registered account. Accounts are owned by the external identity
// subsystem; this service keeps a read-model copy and only ever looks it up
// by username or email.
type User struct {
	ID        int64
	Username  string
	Email     string
	CreatedAt time.Time
}

// RegisterUserRequest holds parameters for syncing a newly registered
// account from the identity subsystem.
type RegisterUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Validate checks that the request is well-formed.
func (r *RegisterUserRequest) Validate() error {
	if r.Username == "" {
		return ErrValidation("username is required")
	}
	if r.Email == "" {
		return ErrValidation("email is required")
	}
	if !strings.Contains(r.Email, "@") {
		return ErrValidation("email %q is not an email address", r.Email)
	}
	if strings.Contains(r.Username, "@") {
		return ErrValidation("username %q must not contain '@'", r.Username)
	}
	return nil
}

// IsEmail reports whether an identifier should be treated as an email
// address rather than a username. Presence of '@' is the only signal;
// no further format validation is applied.
func IsEmail(identifier string) bool {
	return strings.Contains(identifier, "@")
}
