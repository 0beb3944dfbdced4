// Package migration contains the pure business logic for migration scripts.
// This is part of the Functional Core - no I/O, only pure functions.
package migration

import "time"

// Status is the derived state of a script relative to the history ledger.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// ScriptType is the only ledger type this engine writes.
const ScriptType = "SQL"

// Script is one discovered .sql file with its derived metadata.
// Status, InstalledOn and ExecutionTimeMs are derived by Reconcile and never stored.
type Script struct {
	ID              string
	Version         string
	Description     string
	Name            string
	Content         string
	RelativeDir     string
	Path            string
	Status          Status
	InstalledOn     *time.Time
	ExecutionTimeMs *int
}

// HistoryEntry is one row of the ledger as seen by the core.
type HistoryEntry struct {
	InstalledRank   int
	Version         string // empty when the ledger row has NULL
	Description     string
	Type            string
	Script          string
	Checksum        *int32
	InstalledBy     string
	InstalledOn     time.Time
	ExecutionTimeMs int
	Success         bool
}

// Editable reports whether a script in this status may still change or run.
// Success and Failed are terminal; an empty status has not been reconciled yet
// and counts as Pending.
func (s Status) Editable() bool {
	return s == StatusPending || s == ""
}

// InitialStatus is the status of a freshly scanned script.
func InitialStatus() Status {
	return StatusPending
}
