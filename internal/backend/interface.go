package backend

import (
	"context"
	"time"

	"mfdist/internal/leads"
	"mfdist/internal/session"
)

// Backend is what the HTTP layer needs from the lead store.
type Backend interface {
	leads.Writer
	leads.Lister
	leads.Pinger
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult holds the lead backend, the session store and their cleanup.
type BackendResult struct {
	Backend  Backend
	Sessions session.Store
	Cleanup  CleanupFunc
}

// Factory builds backends from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config selects the lead and session backends.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Sessions
	SessionType     BackendType
	SessionTTL      time.Duration
	SessionMax      int
	RedisAddr       string
	CleanupInterval time.Duration
}

// BackendType names a backend implementation.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
	RedisBackend  BackendType = "redis"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid reports whether bt can back leads.
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// IsValidSession reports whether bt can back sessions.
func (bt BackendType) IsValidSession() bool {
	switch bt {
	case MemoryBackend, RedisBackend:
		return true
	default:
		return false
	}
}
