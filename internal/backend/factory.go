package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mfdist/internal/adapters"
	"mfdist/internal/amqp"
	"mfdist/internal/leads/memory"
	"mfdist/internal/services"
	"mfdist/internal/session"
	"mfdist/internal/storage"
)

// DefaultFactory implements Factory.
type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend builds the lead backend first, then the session store.
// Partially built resources are released on error.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		backend     Backend
		leadCleanup CleanupFunc
		err         error
	)
	switch config.Type {
	case SQLiteBackend:
		backend, leadCleanup, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		backend = f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	sessions, err := f.createSessionStore(ctx, config)
	if err != nil {
		if leadCleanup != nil {
			leadCleanup()
		}
		return nil, err
	}

	return &BackendResult{
		Backend:  backend,
		Sessions: sessions,
		Cleanup: func() error {
			var errs []error
			if leadCleanup != nil {
				errs = append(errs, leadCleanup())
			}
			errs = append(errs, sessions.Close())
			return errors.Join(errs...)
		},
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (Backend, CleanupFunc, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional; without it the worker's poller exports leads.
	var publisher services.LeadPublisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without lead events", "error", err)
		} else {
			publisher = client
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	svc := services.NewLeadService(repo, publisher)
	f.logger.Info("Initialized SQLite lead backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", publisher != nil)

	return adapters.NewSQLiteAdapter(repo, svc), svc.Close, nil
}

func (f *DefaultFactory) createMemoryBackend() Backend {
	f.logger.Info("Initialized memory lead backend")
	return memory.New()
}

func (f *DefaultFactory) createSessionStore(ctx context.Context, config Config) (session.Store, error) {
	switch config.SessionType {
	case RedisBackend:
		st, err := session.NewRedisStore(ctx, config.RedisAddr, config.SessionTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis session store: %w", err)
		}
		f.logger.Info("Initialized Redis session store", "addr", config.RedisAddr, "ttl", config.SessionTTL)
		return st, nil
	default:
		f.logger.Info("Initialized memory session store", "max", config.SessionMax, "ttl", config.SessionTTL)
		return session.NewMemoryStore(config.SessionMax, config.SessionTTL, config.CleanupInterval), nil
	}
}
