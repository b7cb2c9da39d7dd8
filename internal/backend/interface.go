package backend

import (
	"context"

	"burnrate/internal/config"
	"burnrate/internal/ledger"
	"burnrate/internal/services"
	"burnrate/internal/sheets"
)

// CleanupFunc releases what a backend holds open.
type CleanupFunc func() error

// BackendResult is a ready ledger store plus the optional event
// publisher. Publisher is a nil interface when AMQP is disabled.
type BackendResult struct {
	Store     ledger.Store
	Publisher services.EventPublisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreatePublisher returns the spreadsheet mirror, or nil when no
	// spreadsheet is configured.
	CreatePublisher(ctx context.Context, config Config) (sheets.SeriesPublisher, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// AMQP, optional for every backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror, optional
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = config.BackendSQLite
	MemoryBackend BackendType = config.BackendMemory
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
