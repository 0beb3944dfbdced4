// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the CLI drives the application.
package primary

import (
	"context"

	"github.com/example/schemapilot/internal/core/migration"
	"github.com/example/schemapilot/internal/core/risk"
)

// Script is a reconciled migration script. It is the core value itself so that
// reconciliation can hand back identical pointers for unchanged scripts.
type Script = migration.Script

// MigrationService defines the primary port for migration state and execution.
type MigrationService interface {
	// Refresh scans the scripts root, reads the ledger and reconciles the two.
	// Scan and ledger failures degrade to empty inputs and are reported on the response.
	Refresh(ctx context.Context) (*RefreshResponse, error)

	// Preview reconciles against the cached ledger snapshot only. The result is
	// provisional and must be replaced by a Refresh.
	Preview(ctx context.Context) (*RefreshResponse, error)

	// AssessScript classifies a script for destructive statements.
	AssessScript(ctx context.Context, scriptRef string) (*RiskReport, error)

	// ExecuteScript applies one Pending script. The caller must have satisfied
	// the risk confirmation gate already.
	ExecuteScript(ctx context.Context, req ExecuteScriptRequest) (*ExecutionResult, error)

	// ExecuteBatch applies several Pending scripts in version order, stopping at
	// the first execution failure.
	ExecuteBatch(ctx context.Context, req ExecuteBatchRequest) (*BatchResult, error)

	// ListHistory returns the ledger rows, falling back to the cache when the
	// target cannot be read.
	ListHistory(ctx context.Context) (*HistoryResponse, error)
}

// RefreshResponse contains the reconciled scripts.
type RefreshResponse struct {
	Scripts     []*Script
	Changed     bool   // false when every script kept its previous identity
	Provisional bool   // true when derived from the cache snapshot
	ScanError   string // non-empty when the scripts root could not be read
	LedgerError string // non-empty when the ledger could not be read
	Summary     migration.Summary
}

// RiskReport describes why a script was or was not flagged.
type RiskReport struct {
	Script     *Script
	Assessment risk.Assessment
}

// ExecuteScriptRequest contains parameters for a single-script migration.
// ScriptRef is a script ID, filename or path relative to the scripts root.
type ExecuteScriptRequest struct {
	ScriptRef string
}

// ExecuteBatchRequest contains parameters for a batch migration.
// When AllPending is set, ScriptRefs is ignored and every Pending script is applied.
type ExecuteBatchRequest struct {
	ScriptRefs []string
	AllPending bool
}

// ExecutionResult is the outcome of one script. Executed and HistoryError are
// independent: a script can run successfully while its ledger row fails to write.
type ExecutionResult struct {
	Name            string
	Version         string
	Executed        bool
	Error           string
	HistoryError    string
	InstalledRank   int // 0 when no ledger row was written
	Checksum        int32
	ExecutionTimeMs int
	State           string
}

// BatchResult is the outcome of a batch. Results holds the prefix of scripts
// attempted; Error is set when a script's execution stopped the batch.
type BatchResult struct {
	Results []*ExecutionResult
	Error   string
}

// OK reports whether every attempted script executed.
func (b *BatchResult) OK() bool {
	if b.Error != "" {
		return false
	}
	for _, r := range b.Results {
		if !r.Executed {
			return false
		}
	}
	return true
}

// HistoryResponse contains ledger rows for display.
type HistoryResponse struct {
	Rows      []*HistoryRow
	FromCache bool
}

// HistoryRow represents a ledger row at the port boundary.
type HistoryRow struct {
	InstalledRank   int
	Version         string
	Description     string
	Type            string
	Script          string
	Checksum        string
	InstalledBy     string
	InstalledOn     string
	ExecutionTimeMs int
	Success         bool
}
