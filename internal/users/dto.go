package users

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

// RegisterInput carries the fields submitted at sign-up.
type RegisterInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Email       string `json:"email" validate:"required,email,max=320"`
	Password    string `json:"password" validate:"required,bcrypt_len"`
	PhoneNumber int64  `json:"phone_number" validate:"required,phone_number"`
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone_number", validPhoneNumber)
	_ = v.RegisterValidation("bcrypt_len", validBcryptLength)
	return v
}

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// validBcryptLength bounds the byte length, not the rune count.
func validBcryptLength(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= maxPasswordBytes
}

// validPhoneNumber accepts the digits of an E.164 number without the leading "+".
func validPhoneNumber(fl validator.FieldLevel) bool {
	n := fl.Field().Int()
	if n <= 0 {
		return false
	}
	num, err := phonenumbers.Parse("+"+strconv.FormatInt(n, 10), "")
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}

// Validate checks required fields and formats.
func (in RegisterInput) Validate() error {
	return validateStruct(in)
}

// Validate checks required fields.
func (in LoginInput) Validate() error {
	return validateStruct(in)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %q", fe.Field(), fe.Tag()))
	}
	sort.Strings(msgs)
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}
