package backend

import (
	"context"
	"fmt"

	"dompet/internal/log"
	"dompet/internal/storage"
	"dompet/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		b   Backend
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		b, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		b = memory.New()
		f.logger.Warn("Using in-memory backend, data is lost on restart")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := b.Ping(ctx); err != nil {
		b.Close()
		return nil, fmt.Errorf("ping %s backend: %w", config.Type, err)
	}

	f.logger.Info("Backend ready", "type", config.Type.String())
	return &BackendResult{
		Backend: b,
		Cleanup: b.Close,
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (Backend, error) {
	store, err := storage.NewSQLiteStore(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}
	f.logger.Info("SQLite store initialized", "path", config.SQLiteDBPath)
	return store, nil
}
