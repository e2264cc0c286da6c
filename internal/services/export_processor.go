package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"mfdist/internal/leads"
	"mfdist/internal/storage"
)

// ErrExportFailed wraps exporter failures. The lead has been marked for a
// later retry by the poll loop, so message consumers can acknowledge it.
var ErrExportFailed = errors.New("lead export failed")

// ExportStore is the part of the lead repository the processor needs.
type ExportStore interface {
	GetLead(ctx context.Context, id int64) (*storage.Lead, error)
	GetPendingExportLeads(ctx context.Context, limit int, staleBefore time.Time) ([]storage.Lead, error)
	ClaimLead(ctx context.Context, id int64, at, staleBefore time.Time) (int, error)
	MarkExported(ctx context.Context, id int64, at time.Time) error
	MarkExportError(ctx context.Context, id int64, cause error, final bool) error
}

type ExportProcessorConfig struct {
	// PollInterval is how often pending leads are retried (default: 30s)
	PollInterval time.Duration

	// BatchSize caps the leads exported per poll (default: 10)
	BatchSize int

	// MaxAttempts is the number of tries before a lead is marked failed (default: 5)
	MaxAttempts int

	// ClaimTimeout is how long a claim is honoured before another consumer
	// may take the lead over (default: 5m)
	ClaimTimeout time.Duration
}

func DefaultExportProcessorConfig() ExportProcessorConfig {
	return ExportProcessorConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    10,
		MaxAttempts:  5,
		ClaimTimeout: 5 * time.Minute,
	}
}

// ExportProcessor copies stored leads to an Exporter. ExportLead serves
// message-driven exports; the polling loop catches leads whose message was
// lost or whose export failed.
type ExportProcessor struct {
	store    ExportStore
	exporter leads.Exporter
	config   ExportProcessorConfig
	now      func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewExportProcessor(store ExportStore, exporter leads.Exporter, config ExportProcessorConfig) *ExportProcessor {
	defaults := DefaultExportProcessorConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.ClaimTimeout <= 0 {
		config.ClaimTimeout = defaults.ClaimTimeout
	}
	return &ExportProcessor{
		store:    store,
		exporter: exporter,
		config:   config,
		now:      time.Now,
	}
}

// Start begins the polling loop. Returns an error if already running.
func (p *ExportProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("export processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Export processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)
	return nil
}

// Stop waits for the current batch to finish.
func (p *ExportProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.running = false
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Export processor stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Export processor stop timed out")
		return ctx.Err()
	}
}

func (p *ExportProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ExportProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.ExportPending(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ExportPending(ctx)
		}
	}
}

// ExportPending exports one batch of pending leads and returns how many
// succeeded.
func (p *ExportProcessor) ExportPending(ctx context.Context) int {
	pending, err := p.store.GetPendingExportLeads(ctx, p.config.BatchSize, p.staleBefore())
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load pending leads", "error", err)
		return 0
	}
	if len(pending) == 0 {
		return 0
	}

	slog.DebugContext(ctx, "Exporting pending leads", "count", len(pending))

	exported := 0
	for _, lead := range pending {
		if ctx.Err() != nil {
			break
		}
		ok, err := p.export(ctx, lead)
		if err == nil && ok {
			exported++
		}
	}
	return exported
}

// ExportLead exports a single lead by id. Leads that are exported, failed
// for good or claimed by another consumer are skipped, so redelivered
// messages do not create duplicate rows.
func (p *ExportProcessor) ExportLead(ctx context.Context, id int64) error {
	lead, err := p.store.GetLead(ctx, id)
	if errors.Is(err, storage.ErrLeadNotFound) {
		slog.WarnContext(ctx, "Lead from message not found, dropping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get lead %d: %w", id, err)
	}
	switch lead.ExportStatus {
	case storage.ExportExported, storage.ExportFailed:
		slog.DebugContext(ctx, "Lead export already settled", "id", id, "status", lead.ExportStatus)
		return nil
	}
	_, err = p.export(ctx, *lead)
	return err
}

func (p *ExportProcessor) staleBefore() time.Time {
	return p.now().Add(-p.config.ClaimTimeout)
}

// export claims lead and copies it to the exporter. It reports false without
// an error when the claim was lost to another consumer.
func (p *ExportProcessor) export(ctx context.Context, lead storage.Lead) (bool, error) {
	attempt, err := p.store.ClaimLead(ctx, lead.ID, p.now(), p.staleBefore())
	if errors.Is(err, storage.ErrLeadClaimed) {
		slog.DebugContext(ctx, "Lead claimed elsewhere, skipping", "id", lead.ID)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	dest, err := p.exporter.Export(ctx, strconv.FormatInt(lead.ID, 10), lead.Customer)
	if err != nil {
		final := attempt >= p.config.MaxAttempts
		if final {
			slog.ErrorContext(ctx, "Lead export failed permanently", "id", lead.ID, "attempts", attempt, "error", err)
		} else {
			slog.WarnContext(ctx, "Lead export failed", "id", lead.ID, "attempt", attempt, "error", err)
		}
		if markErr := p.store.MarkExportError(ctx, lead.ID, err, final); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", lead.ID, "error", markErr)
		}
		return false, fmt.Errorf("export lead %d: %w: %w", lead.ID, ErrExportFailed, err)
	}

	if err := p.store.MarkExported(ctx, lead.ID, p.now()); err != nil {
		// The row is in the sheet; a retry would duplicate it, so only log.
		slog.ErrorContext(ctx, "Failed to mark lead exported", "id", lead.ID, "error", err)
	}

	slog.InfoContext(ctx, "Exported lead", "id", lead.ID, "dest", dest, "attempt", attempt)
	return true, nil
}
