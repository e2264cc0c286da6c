package core

import (
	"errors"
	"strings"
	"time"
)

// Customer is a lead captured by the customer details form.
type Customer struct {
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Amount        float64   `json:"amount"`
	PreferredFund string    `json:"preferred_fund"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

var (
	ErrFieldTooLong  = errors.New("field too long (max 200 characters)")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrUnknownFund   = errors.New("unknown preferred fund")
)

// Complete reports whether name, email and phone are all filled in.
func (c Customer) Complete() bool {
	return strings.TrimSpace(c.Name) != "" &&
		strings.TrimSpace(c.Email) != "" &&
		strings.TrimSpace(c.Phone) != ""
}

// Validate only enforces basic types and sizes; empty fields are allowed.
func (c Customer) Validate() error {
	for _, v := range []string{c.Name, c.Email, c.Phone, c.PreferredFund} {
		if len(v) > 200 {
			return ErrFieldTooLong
		}
	}
	if c.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}
