// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
	"time"
)

// ErrRankConflict is returned by HistoryRepository.Append when the installed_rank
// is already taken, typically because another operator migrated concurrently.
var ErrRankConflict = errors.New("installed_rank already exists")

// HistoryRepository defines the secondary port for the schema history ledger.
// Implementations are bound to one open session on the target database.
type HistoryRepository interface {
	// EnsureSchema creates the ledger table and its index if absent. Idempotent.
	EnsureSchema(ctx context.Context) error

	// ReadAll returns every ledger row ordered by installed_rank ascending.
	ReadAll(ctx context.Context) ([]*HistoryRecord, error)

	// NextRank returns max(installed_rank)+1, or 1 for an empty ledger.
	NextRank(ctx context.Context) (int, error)

	// Append inserts one ledger row. installed_on is assigned by the server.
	Append(ctx context.Context, record *HistoryRecord) error
}

// HistoryRecord represents a ledger row as stored in persistence.
type HistoryRecord struct {
	InstalledRank   int       `json:"installed_rank"`
	Version         *string   `json:"version"`
	Description     string    `json:"description"`
	Type            string    `json:"type"`
	Script          string    `json:"script"`
	Checksum        *int32    `json:"checksum"`
	InstalledBy     string    `json:"installed_by"`
	InstalledOn     time.Time `json:"installed_on"`
	ExecutionTimeMs int       `json:"execution_time"`
	Success         bool      `json:"success"`
}

// TargetConnector opens sessions on the database being migrated.
type TargetConnector interface {
	// Connect opens a dedicated session using the active configuration.
	Connect(ctx context.Context) (TargetSession, error)

	// Key identifies the target for cache lookups (kind, host, port, database, schema).
	Key() string
}

// TargetSession is one connection to the target database. Session state such as
// search_path and transaction mode is shared by everything issued through it.
type TargetSession interface {
	// Execute runs a script's full content as one multi-statement batch.
	Execute(ctx context.Context, content string) error

	// History returns the ledger repository bound to this session.
	History() HistoryRepository

	// Commit issues an explicit commit. The preceding script may have changed
	// the session's transaction state, so ambient autocommit is not trusted.
	Commit(ctx context.Context) error

	// Close releases the connection.
	Close() error
}

// ScriptRepository defines the secondary port for migration script files.
type ScriptRepository interface {
	// Scan walks root recursively and returns every .sql file found.
	Scan(ctx context.Context, root string) ([]*ScriptFileRecord, error)

	// Write creates or overwrites a script file under root/relDir.
	Write(ctx context.Context, root, relDir, name, content string) (*ScriptFileRecord, error)

	// Rename renames a script file within root/relDir.
	Rename(ctx context.Context, root, relDir, oldName, newName string) error

	// Delete removes a script file from root/relDir.
	Delete(ctx context.Context, root, relDir, name string) error
}

// ScriptFileRecord represents a script file as discovered on disk.
type ScriptFileRecord struct {
	ID          string
	Path        string // absolute
	RelativeDir string // slash-separated, "" for the root
	Name        string
	Version     string
	Description string
	Content     string
}

// HistoryCache is the non-authoritative snapshot of a target's ledger.
type HistoryCache interface {
	// TryRead returns the cached snapshot. Any failure is reported as a miss.
	TryRead(ctx context.Context, key string) ([]*HistoryRecord, bool)

	// Write stores a snapshot. Failures are logged and swallowed.
	Write(ctx context.Context, key string, records []*HistoryRecord)
}
