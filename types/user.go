package types

import "time"

// User represents an account in the system.
// It contains identity and contact details plus audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// FirstName is the user's given name.
	FirstName string `json:"firstname" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"lastname" db:"last_name"`

	// Email is the user's email address and sign-in identifier.
	// It is unique across accounts.
	Email string `json:"email" db:"email"`

	// Phone is the user's contact phone number. It may be empty.
	Phone string `json:"phone" db:"phone"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
