package dashboard

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"mfdist/internal/core"
)

// CustomerForm is the customer details page state.
type CustomerForm struct {
	FundNames []string
	Input     core.Customer
	Banner    string
	Error     string
	Submitted *core.Customer
}

// SummaryMessage is shown instead of the summary when details are missing.
const SummaryMessage = "Please fill in all details."

// NewCustomerForm returns an empty form with defaults applied.
func NewCustomerForm(c *core.Catalog) CustomerForm {
	names := c.Names()
	f := CustomerForm{
		FundNames: names,
		Input:     core.Customer{Amount: core.MinInvestment},
	}
	if len(names) > 0 {
		f.Input.PreferredFund = names[0]
	}
	return f
}

// Complete reports whether the last submission can be summarised.
func (f CustomerForm) Complete() bool {
	return f.Submitted != nil && f.Submitted.Complete()
}

// ParseCustomer reads the customer form. Only the amount is type checked.
func ParseCustomer(v url.Values, now time.Time) (core.Customer, error) {
	c := core.Customer{
		Name:          strings.TrimSpace(v.Get("name")),
		Email:         strings.TrimSpace(v.Get("email")),
		Phone:         strings.TrimSpace(v.Get("phone")),
		Amount:        core.MinInvestment,
		PreferredFund: strings.TrimSpace(v.Get("preferred_fund")),
		SubmittedAt:   now,
	}
	if raw := v.Get("amount"); strings.TrimSpace(raw) != "" {
		amt, err := core.ParseAmount(raw)
		if err != nil {
			return c, fmt.Errorf("amount %q: %w", raw, core.ErrInvalidAmount)
		}
		c.Amount = amt
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// SubmittedBanner is the confirmation shown after a submission.
func SubmittedBanner(name string) string {
	return fmt.Sprintf("Details for %s have been submitted!", name)
}
