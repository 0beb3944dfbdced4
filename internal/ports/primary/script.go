package primary

import "context"

// ScriptService defines the primary port for editing script files.
// Only Pending scripts may be changed.
type ScriptService interface {
	// SaveScript creates a script or overwrites a Pending one.
	SaveScript(ctx context.Context, req SaveScriptRequest) (*Script, error)

	// RenameScript renames a Pending script in place.
	RenameScript(ctx context.Context, req RenameScriptRequest) error

	// DeleteScript removes a Pending script.
	DeleteScript(ctx context.Context, scriptRef string) error

	// GetScript resolves a script by ID, filename or relative path.
	GetScript(ctx context.Context, scriptRef string) (*Script, error)
}

// SaveScriptRequest contains parameters for saving a script file.
type SaveScriptRequest struct {
	RelativeDir string
	Name        string
	Content     string
}

// RenameScriptRequest contains parameters for renaming a script file.
type RenameScriptRequest struct {
	ScriptRef string
	NewName   string
}
