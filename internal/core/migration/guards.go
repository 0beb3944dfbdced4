package migration

import (
	"fmt"
	"strings"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// ScriptStateContext provides context for edit and execute guards.
type ScriptStateContext struct {
	Name   string
	Status Status
}

// CanEditScript evaluates whether a script's content may be saved, renamed or deleted.
// Rules:
// - Only Pending scripts are editable; Success and Failed are read-only
func CanEditScript(ctx ScriptStateContext) GuardResult {
	if !ctx.Status.Editable() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("script %s is %s and read-only (only PENDING scripts can be edited)", ctx.Name, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}

// CanExecuteScript evaluates whether a script may be submitted to the pipeline.
// Rules:
// - Script must be Pending
// - Script must have content
func CanExecuteScript(ctx ScriptStateContext, content string) GuardResult {
	if !ctx.Status.Editable() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("script %s is already %s", ctx.Name, ctx.Status),
		}
	}
	if content == "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("script %s is empty", ctx.Name),
		}
	}
	return GuardResult{Allowed: true}
}

// CanSaveScriptName evaluates whether a filename is acceptable for a script file.
// Rules:
// - Name must be a bare filename (no directory separators)
// - Name must end in .sql
func CanSaveScriptName(name string) GuardResult {
	if name == "" {
		return GuardResult{Allowed: false, Reason: "script name is required"}
	}
	if strings.ContainsAny(name, `/\`) {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("script name %q must not contain path separators", name)}
	}
	if len(name) < 4 || !strings.EqualFold(name[len(name)-4:], ".sql") {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("only .sql files allowed (got %s)", name)}
	}
	return GuardResult{Allowed: true}
}
