package models

import "testing"

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		wantErr bool
	}{
		{"valid", "9876543210", false},
		{"valid starting 6", "6123456789", false},
		{"empty", "", true},
		{"too short", "98765", true},
		{"too long", "98765432101", true},
		{"starts with 5", "5876543210", true},
		{"letters", "98765abcde", true},
		{"trims whitespace", "  9876543210  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePhone(tt.phone)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePhone(%q) error = %v, wantErr %v", tt.phone, err, tt.wantErr)
			}
		})
	}
}

func TestValidateOTP(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"valid", "123456", false},
		{"too short", "12345", true},
		{"too long", "1234567", true},
		{"non digits", "12a456", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOTP(tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOTP(%q) error = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
		})
	}
}

func TestUserDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"explicit name", User{Name: "Asha", Phone: "9876543210"}, "Asha"},
		{"derived from phone", User{Phone: "9876543210"}, "User 3210"},
		{"no phone", User{}, "User"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
