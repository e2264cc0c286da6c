// Package session holds per-visitor dashboard state.
//
// Every UI interaction is handled as an independent request; whatever must
// survive between interactions (the chat transcript and the last customer
// submission) lives in a Session loaded from a Store by cookie id.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"mfdist/internal/chat"
	"mfdist/internal/core"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrClosed   = errors.New("session store closed")
)

// Session is the explicit state object passed to request handlers.
type Session struct {
	ID           string          `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Transcript   chat.Transcript `json:"transcript"`
	LastCustomer *core.Customer  `json:"last_customer,omitempty"`
}

// New returns an empty session with a fresh random id.
func New(now time.Time) *Session {
	return &Session{
		ID:        NewID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewID returns a random session identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id has the shape produced by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Clone returns a deep copy so stored sessions are never shared with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Transcript = append(chat.Transcript(nil), s.Transcript...)
	if s.LastCustomer != nil {
		c := *s.LastCustomer
		out.LastCustomer = &c
	}
	return &out
}

// Store persists sessions. Implementations must be safe for concurrent use;
// Update runs fn atomically with respect to other updates of the same id.
type Store interface {
	Create(ctx context.Context) (*Session, error)
	Load(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, id string) error
	Len(ctx context.Context) (int, error)
	Close() error
}

// LoadOrCreate returns the session for id, creating a new one when id is
// empty, malformed or unknown.
func LoadOrCreate(ctx context.Context, st Store, id string) (*Session, bool, error) {
	if id != "" && ValidID(id) {
		s, err := st.Load(ctx, id)
		if err == nil {
			return s, false, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, false, err
		}
	}
	s, err := st.Create(ctx)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}
