package app

import (
	"errors"
	"fmt"
)

// ErrScriptNotFound is returned when a script reference matches nothing.
var ErrScriptNotFound = errors.New("script not found")

// ErrLedgerUnavailable is returned when an operation needs the authoritative
// ledger and it could not be read.
var ErrLedgerUnavailable = errors.New("history ledger unavailable")

// ExecutionError reports that a script's content was rejected by the target.
// The driver's message is kept verbatim.
type ExecutionError struct {
	Script string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("failed to execute %s: %v", e.Script, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
