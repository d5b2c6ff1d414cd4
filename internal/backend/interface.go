// Package backend builds the dataset source selected by DATA_BACKEND.
package backend

import (
	"context"

	"salesdash/internal/source"
)

// Backend serves branch datasets. Writer is nil for read-only sources.
type Backend interface {
	source.DatasetReader
}

type CleanupFunc func() error

// BackendResult is a ready source plus whatever must be released on shutdown.
type BackendResult struct {
	Backend Backend
	Writer  source.DatasetWriter
	Cleanup CleanupFunc
}

// Close runs Cleanup if one was set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// files
	DataDirectory string

	// sqlite
	SQLiteDBPath string

	// sheets
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FilesBackend  BackendType = "files"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, FilesBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
