package users

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func validUser() NewUser {
	return NewUser{
		FullName:      "Asha Rao",
		Email:         "asha.rao@students.iiit.ac.in",
		Age:           21,
		ContactNumber: "9876543210",
		Password:      "correct horse battery",
	}
}

func TestNewUserValidation(t *testing.T) {
	validate := validator.New()

	if err := validate.Struct(validUser()); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*NewUser)
	}{
		{"missing name", func(u *NewUser) { u.FullName = "" }},
		{"bad email", func(u *NewUser) { u.Email = "not-an-email" }},
		{"underage", func(u *NewUser) { u.Age = 15 }},
		{"short contact", func(u *NewUser) { u.ContactNumber = "12345" }},
		{"short password", func(u *NewUser) { u.Password = "seven77" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u := validUser()
			tc.mutate(&u)
			if err := validate.Struct(u); err == nil {
				t.Error("invalid payload accepted")
			}
		})
	}
}
