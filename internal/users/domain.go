package users

import (
	"errors"
	"time"
)

var (
	// ErrDuplicateEmail indicates another user already owns the email.
	ErrDuplicateEmail = errors.New("user already exist with this email")
	// ErrDuplicatePhone indicates another user already owns the phone number.
	ErrDuplicatePhone = errors.New("user already exist with this phone number")
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned by stores when no user matches a lookup.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidCredentials is reserved for credential verification, which Login does not perform yet.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User represents a persisted account.
type User struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Password    string    `json:"password"`
	PhoneNumber int64     `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserRecord is the data required to create a user. Password must already be hashed.
type UserRecord struct {
	Name        string
	Email       string
	Password    string
	PhoneNumber int64
}

// PendingRegistration is a registration awaiting activation. It only ever
// travels inside the activation token.
type PendingRegistration struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber int64  `json:"phone_number"`
}

// Record converts the pending registration into the shape accepted by UserStore.Create.
func (p PendingRegistration) Record() UserRecord {
	return UserRecord{
		Name:        p.Name,
		Email:       p.Email,
		Password:    p.Password,
		PhoneNumber: p.PhoneNumber,
	}
}

// RegisterResult is returned by a successful registration.
type RegisterResult struct {
	User           PendingRegistration `json:"user"`
	Token          string              `json:"activation_token"`
	ActivationCode int                 `json:"-"`
}
