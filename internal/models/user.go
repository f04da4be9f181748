package models

import (
	"errors"
	"regexp"
	"strings"
)

var phoneRegex = regexp.MustCompile(`^[6-9]\d{9}$`)

// User represents the authenticated customer. There is at most one
// persisted session per local profile.
type User struct {
	Phone string `json:"phone"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// DisplayName returns the user's name, deriving one from the phone
// number when none was supplied.
func (u *User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	if len(u.Phone) >= 4 {
		return "User " + u.Phone[len(u.Phone)-4:]
	}
	return "User"
}

// ValidatePhone checks a 10-digit Indian mobile number.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return errors.New("phone number is required")
	}
	if !phoneRegex.MatchString(phone) {
		return errors.New("phone number must be a valid 10-digit mobile number")
	}
	return nil
}

// ValidateOTP checks a 6-digit one-time password.
func ValidateOTP(code string) error {
	code = strings.TrimSpace(code)
	if len(code) != 6 {
		return errors.New("OTP must be 6 digits")
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return errors.New("OTP must contain only digits")
		}
	}
	return nil
}
