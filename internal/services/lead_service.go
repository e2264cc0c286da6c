package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"mfdist/internal/core"
	"mfdist/internal/leads"
)

// LeadStore persists leads durably.
type LeadStore interface {
	CreateLead(ctx context.Context, c core.Customer) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// LeadPublisher announces stored leads to the export worker.
type LeadPublisher interface {
	PublishLeadSubmitted(ctx context.Context, id int64) error
	Close() error
}

var _ leads.Writer = (*LeadService)(nil)

// LeadService stores a lead and then publishes an event for it. Publishing is
// best effort: the export processor picks up anything left pending.
type LeadService struct {
	store     LeadStore
	publisher LeadPublisher
}

// NewLeadService accepts a nil publisher when events are disabled.
func NewLeadService(store LeadStore, publisher LeadPublisher) *LeadService {
	return &LeadService{
		store:     store,
		publisher: publisher,
	}
}

// Append implements leads.Writer.
func (s *LeadService) Append(ctx context.Context, c core.Customer) (string, error) {
	if err := c.Validate(); err != nil {
		return "", fmt.Errorf("validate lead: %w", err)
	}

	id, err := s.store.CreateLead(ctx, c)
	if err != nil {
		return "", fmt.Errorf("save lead: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishLeadSubmitted(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish lead event", "id", id, "error", err)
		}
	}

	return strconv.FormatInt(id, 10), nil
}

// Ping reports store readiness.
func (s *LeadService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close closes the store and the publisher.
func (s *LeadService) Close() error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close lead service: %w", err)
	}
	return nil
}
