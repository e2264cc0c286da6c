// Package worker connects lead messages to the export processor.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mfdist/internal/amqp"
	"mfdist/internal/services"
	"mfdist/internal/storage"
)

// Exporter is the processor surface the worker drives.
type Exporter interface {
	ExportLead(ctx context.Context, id int64) error
	ExportPending(ctx context.Context) int
}

// StatusCounter reports lead counts per export state.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type LeadWorker struct {
	exporter Exporter
	counter  StatusCounter
}

func NewLeadWorker(exporter Exporter, counter StatusCounter) *LeadWorker {
	return &LeadWorker{exporter: exporter, counter: counter}
}

// HandleLeadMessage exports the lead named by msg. A returned error requeues
// the message. Exporter failures are already recorded on the lead and retried
// by the poll loop, so those messages are acknowledged.
func (w *LeadWorker) HandleLeadMessage(ctx context.Context, msg *amqp.LeadSubmittedMessage) error {
	slog.DebugContext(ctx, "Processing lead message", "id", msg.ID, "published_at", msg.Timestamp)
	err := w.exporter.ExportLead(ctx, msg.ID)
	if errors.Is(err, services.ErrExportFailed) {
		slog.WarnContext(ctx, "Lead export deferred to retry loop", "id", msg.ID, "error", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("handle lead message: %w", err)
	}
	return nil
}

// StartupExportCheck logs the backlog and drains one batch before the
// consumer starts, covering messages lost while the worker was down.
func (w *LeadWorker) StartupExportCheck(ctx context.Context) error {
	if w.counter != nil {
		counts, err := w.counter.CountByStatus(ctx)
		if err != nil {
			return fmt.Errorf("count leads: %w", err)
		}
		slog.InfoContext(ctx, "Lead export backlog",
			"pending", counts[storage.ExportPending],
			"exporting", counts[storage.ExportExporting],
			"error", counts[storage.ExportError],
			"failed", counts[storage.ExportFailed],
			"exported", counts[storage.ExportExported])
	}
	if n := w.exporter.ExportPending(ctx); n > 0 {
		slog.InfoContext(ctx, "Exported backlog at startup", "count", n)
	}
	return nil
}
