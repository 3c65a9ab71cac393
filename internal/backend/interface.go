package backend

import (
	"context"

	"familybudget/internal/gateway"
)

// CleanupFunc releases backend resources
type CleanupFunc func() error

// BackendResult contains the store ports and optional cleanup function.
// Writer is nil for read-only backends.
type BackendResult struct {
	Reader  gateway.Reader
	Writer  gateway.Writer
	Cleanup CleanupFunc
}

// ReadOnly reports whether the backend rejects ledger writes.
func (r *BackendResult) ReadOnly() bool {
	return r.Writer == nil
}

// Close runs Cleanup if one is set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
	GoogleExpensesTab        string
	GoogleIncomesTab         string
	GoogleGoalsTab           string

	// Memory backend specific
	SeedDir string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
