package adapters

import (
	"context"

	"mfdist/internal/core"
	"mfdist/internal/leads"
	"mfdist/internal/services"
	"mfdist/internal/storage"
)

var (
	_ leads.Writer = (*SQLiteAdapter)(nil)
	_ leads.Lister = (*SQLiteAdapter)(nil)
	_ leads.Pinger = (*SQLiteAdapter)(nil)
)

// SQLiteAdapter exposes the SQLite + AMQP pipeline through the leads ports
// so HTTP handlers do not depend on the chosen backend.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.LeadService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.LeadService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// Append stores the lead and publishes its event.
func (a *SQLiteAdapter) Append(ctx context.Context, c core.Customer) (string, error) {
	return a.service.Append(ctx, c)
}

// List returns recent leads with their export state.
func (a *SQLiteAdapter) List(ctx context.Context, limit int) ([]leads.Record, error) {
	rows, err := a.storage.ListLeads(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]leads.Record, len(rows))
	for i, r := range rows {
		out[i] = leads.Record{Ref: r.Ref(), Customer: r.Customer, Status: r.ExportStatus}
	}
	return out, nil
}

func (a *SQLiteAdapter) Ping(ctx context.Context) error {
	return a.storage.Ping(ctx)
}
