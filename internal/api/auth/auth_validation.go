package auth

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/FACorreiaa/go-user-sessions/internal/types"
)

// MsgPasswordTooLong is shown when bcrypt cannot hash the password.
const MsgPasswordTooLong = "password too long"

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRegistration checks the form in a fixed order and reports only the
// first failure. It does not consult the store; uniqueness is checked by
// the service.
func ValidateRegistration(in RegisterInput) (Registration, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	if name == "" || email == "" || strings.TrimSpace(in.Password) == "" {
		return Registration{}, types.NewValidationError(types.MsgRequiredFields)
	}
	if !ValidEmail(email) {
		return Registration{}, types.NewValidationError(types.MsgInvalidEmail)
	}
	if in.Password != in.PasswordConfirm {
		return Registration{}, types.NewValidationError(types.MsgPasswordMismatch)
	}
	return Registration{Name: name, Email: email, Password: in.Password}, nil
}

func ValidateLogin(in LoginInput) (Credentials, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || strings.TrimSpace(in.Password) == "" {
		return Credentials{}, types.NewValidationError(types.MsgRequiredFields)
	}
	return Credentials{Email: email, Password: in.Password}, nil
}

// ValidEmail reports whether s is a bare address such as a@example.com.
// Display names and angle brackets are rejected.
func ValidEmail(s string) bool {
	if strings.ContainsAny(s, " <>\t\r\n") {
		return false
	}
	return validate.Var(s, "required,email") == nil
}
