package backend

import (
	"context"
	"fmt"

	"salesdash/internal/log"
	gsheet "salesdash/internal/source/google"
	"salesdash/internal/source/memory"
	"salesdash/internal/storage"
)

type DefaultFactory struct {
	base   *log.Logger
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{base: logger, logger: logger.WithComponent(log.ComponentBackend)}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend()
	case FilesBackend:
		return f.createFilesBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	store := memory.NewBuiltin()
	f.logger.Info("Initialized memory backend", log.FieldBackend, MemoryBackend)
	return &BackendResult{Backend: store, Writer: store}, nil
}

func (f *DefaultFactory) createFilesBackend(config Config) (*BackendResult, error) {
	store, err := memory.NewFromDir(config.DataDirectory)
	if err != nil {
		return nil, fmt.Errorf("load datasets from %s: %w", config.DataDirectory, err)
	}
	f.logger.Info("Initialized files backend", log.FieldBackend, FilesBackend, "data_directory", config.DataDirectory)
	return &BackendResult{Backend: store, Writer: store}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	repo.WithLogger(f.base)
	f.logger.Info("Initialized SQLite backend", log.FieldBackend, SQLiteBackend, "db_path", config.SQLiteDBPath)
	return &BackendResult{Backend: repo, Writer: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	ctx = log.NewContext(ctx, f.base)
	creds, err := gsheet.LoadCredentials(ctx, config.GoogleServiceAccountJSON, config.GoogleServiceAccountFile)
	if err != nil {
		return nil, err
	}
	cli, err := gsheet.NewWithServiceAccount(ctx, config.GoogleSpreadsheetID, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	cli.WithLogger(f.base)
	f.logger.Info("Initialized Google Sheets backend", log.FieldBackend, SheetsBackend)
	return &BackendResult{Backend: cli, Writer: cli}, nil
}
