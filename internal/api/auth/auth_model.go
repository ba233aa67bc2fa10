package auth

// RegisterInput is the raw registration form.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	PasswordConfirm string
}

// Registration is a RegisterInput that passed validation. Name and Email
// are trimmed; Password is kept exactly as typed.
type Registration struct {
	Name     string
	Email    string
	Password string
}

// LoginInput is the raw login form.
type LoginInput struct {
	Email    string
	Password string
}

type Credentials struct {
	Email    string
	Password string
}
