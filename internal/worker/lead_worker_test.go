package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"mfdist/internal/amqp"
	"mfdist/internal/services"
	"mfdist/internal/storage"
)

type fakeExporter struct {
	ids        []int64
	err        error
	pendingRun int
}

func (f *fakeExporter) ExportLead(_ context.Context, id int64) error {
	f.ids = append(f.ids, id)
	return f.err
}

func (f *fakeExporter) ExportPending(context.Context) int {
	f.pendingRun++
	return 0
}

type fakeCounter struct {
	counts map[string]int
	err    error
}

func (f fakeCounter) CountByStatus(context.Context) (map[string]int, error) {
	return f.counts, f.err
}

func TestHandleLeadMessage(t *testing.T) {
	exp := &fakeExporter{}
	w := NewLeadWorker(exp, nil)

	if err := w.HandleLeadMessage(context.Background(), amqp.NewLeadSubmittedMessage(7)); err != nil {
		t.Fatalf("HandleLeadMessage() error = %v", err)
	}
	if len(exp.ids) != 1 || exp.ids[0] != 7 {
		t.Errorf("exported ids = %v, want [7]", exp.ids)
	}

	exp.err = errors.New("database is locked")
	if err := w.HandleLeadMessage(context.Background(), amqp.NewLeadSubmittedMessage(8)); err == nil {
		t.Error("expected error to requeue the message")
	}
}

func TestHandleLeadMessage_ExportFailureAcks(t *testing.T) {
	exp := &fakeExporter{err: fmt.Errorf("export lead 9: %w: quota", services.ErrExportFailed)}
	w := NewLeadWorker(exp, nil)

	if err := w.HandleLeadMessage(context.Background(), amqp.NewLeadSubmittedMessage(9)); err != nil {
		t.Errorf("HandleLeadMessage() error = %v, want nil so the message is acked", err)
	}
}

func TestStartupExportCheck(t *testing.T) {
	exp := &fakeExporter{}
	w := NewLeadWorker(exp, fakeCounter{counts: map[string]int{storage.ExportPending: 2}})

	if err := w.StartupExportCheck(context.Background()); err != nil {
		t.Fatalf("StartupExportCheck() error = %v", err)
	}
	if exp.pendingRun != 1 {
		t.Errorf("ExportPending called %d times, want 1", exp.pendingRun)
	}

	w = NewLeadWorker(exp, fakeCounter{err: errors.New("db locked")})
	if err := w.StartupExportCheck(context.Background()); err == nil {
		t.Error("expected count error")
	}
}
