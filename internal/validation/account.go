package validation

import (
	"fmt"
	"regexp"
	"unicode"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
	maxUsernameLength = 150
	maxEmailLength    = 254
)

var (
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("password must not exceed %d characters", maxPasswordLength)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter {
		return fmt.Errorf("password can't be entirely numeric")
	}
	if !hasDigit {
		return fmt.Errorf("password must contain at least one digit")
	}

	return nil
}

// ValidateUsername checks that a handle is usable in profile URLs.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if len(username) > maxUsernameLength {
		return fmt.Errorf("username must not exceed %d characters", maxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, digits and @/./+/-/_")
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	if len(email) > maxEmailLength {
		return fmt.Errorf("email must not exceed %d characters", maxEmailLength)
	}
	return nil
}

// SignupForm is the registration payload.
type SignupForm struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Validate checks every field and reports all failures at once.
func (f SignupForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if err := ValidateUsername(f.Username); err != nil {
		errs.Add("username", err.Error())
	}
	if err := ValidateEmail(f.Email); err != nil {
		errs.Add("email", err.Error())
	}
	if err := ValidatePassword(f.Password); err != nil {
		errs.Add("password", err.Error())
	}
	if len(f.FirstName) > 150 {
		errs.Add("first_name", "first name must not exceed 150 characters")
	}
	if len(f.LastName) > 150 {
		errs.Add("last_name", "last name must not exceed 150 characters")
	}
	return errs
}
