// Package leads defines where customer submissions go.
package leads

import (
	"context"

	"mfdist/internal/core"
)

// Record is a stored lead as seen by listing callers.
type Record struct {
	Ref      string
	Customer core.Customer
	Status   string
}

// Ports for outbound adapters.
type (
	// Writer records a customer submission and returns a reference to it.
	Writer interface {
		Append(ctx context.Context, c core.Customer) (ref string, err error)
	}

	// Lister returns the most recent leads first.
	Lister interface {
		List(ctx context.Context, limit int) ([]Record, error)
	}

	// Exporter copies a lead to an external destination such as a
	// spreadsheet and returns where it landed.
	Exporter interface {
		Export(ctx context.Context, ref string, c core.Customer) (destRef string, err error)
	}

	// Pinger is implemented by backends that can report readiness.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
