// Package memory keeps leads in process. It is the default lead backend and
// doubles as an Exporter for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"mfdist/internal/core"
	"mfdist/internal/leads"
)

var (
	_ leads.Writer   = (*Store)(nil)
	_ leads.Lister   = (*Store)(nil)
	_ leads.Exporter = (*Store)(nil)
)

type Store struct {
	mu       sync.Mutex
	items    []core.Customer
	exported []string
}

func New() *Store {
	return &Store{}
}

// Append stores the lead and returns a synthetic reference.
func (s *Store) Append(_ context.Context, c core.Customer) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, c)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// List returns up to limit leads, newest first. limit <= 0 means all.
func (s *Store) List(_ context.Context, limit int) ([]leads.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.items)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]leads.Record, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, leads.Record{
			Ref:      fmt.Sprintf("mem:%d", i+1),
			Customer: s.items[i],
			Status:   "stored",
		})
	}
	return out, nil
}

// Export records ref as exported.
func (s *Store) Export(_ context.Context, ref string, _ core.Customer) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exported = append(s.exported, ref)
	return fmt.Sprintf("mem-export:%d", len(s.exported)), nil
}

// Exported returns the refs passed to Export, in call order.
func (s *Store) Exported() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.exported...)
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored leads.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
