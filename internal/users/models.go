package users

import "time"

// User represents an account. The password hash never serializes.
type User struct {
	ID            string    `json:"id"`
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	Age           int       `json:"age"`
	ContactNumber string    `json:"contactNumber"`
	PasswordHash  string    `json:"-"`
	Rating        float64   `json:"rating"`
	IsCAS         bool      `json:"isCAS"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewUser is the registration payload.
type NewUser struct {
	FullName      string `json:"fullName" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Age           int    `json:"age" validate:"required,min=16"`
	ContactNumber string `json:"contactNumber" validate:"required,min=10"`
	Password      string `json:"password" validate:"required,min=8"`
}
