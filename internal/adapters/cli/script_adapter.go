package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/example/schemapilot/internal/core/migration"
	"github.com/example/schemapilot/internal/ctxutil"
	"github.com/example/schemapilot/internal/ports/primary"
	"github.com/example/schemapilot/internal/templates"
)

// ScriptAdapter is a thin adapter that translates CLI operations to ScriptService calls.
type ScriptAdapter struct {
	service primary.ScriptService
	out     io.Writer
	now     func() time.Time
}

// NewScriptAdapter creates a new ScriptAdapter with the given service.
func NewScriptAdapter(service primary.ScriptService, out io.Writer) *ScriptAdapter {
	return &ScriptAdapter{
		service: service,
		out:     out,
		now:     time.Now,
	}
}

// Save writes content to a script file, creating it if needed.
func (a *ScriptAdapter) Save(ctx context.Context, relDir, name, content string) error {
	script, err := a.service.SaveScript(ctx, primary.SaveScriptRequest{
		RelativeDir: relDir,
		Name:        name,
		Content:     content,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Saved %s\n", scriptPath(script))
	return nil
}

// New creates a script named V<version>__<description>.sql from the new-script template.
func (a *ScriptAdapter) New(ctx context.Context, relDir, version, description string) error {
	name := fmt.Sprintf("V%s__%s.sql", version, description)
	parsedVersion, parsedDescription := migration.ParseName(name)
	content, err := templates.RenderNewScript(templates.NewScriptData{
		Name:        name,
		Version:     parsedVersion,
		Description: parsedDescription,
		Author:      ctxutil.OperatorFromContext(ctx),
		Created:     a.now().Format("2006-01-02"),
	})
	if err != nil {
		return err
	}
	return a.Save(ctx, relDir, name, content)
}

// Rename renames a Pending script.
func (a *ScriptAdapter) Rename(ctx context.Context, scriptRef, newName string) error {
	if err := a.service.RenameScript(ctx, primary.RenameScriptRequest{ScriptRef: scriptRef, NewName: newName}); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Renamed %s to %s\n", scriptRef, newName)
	return nil
}

// Delete removes a Pending script.
func (a *ScriptAdapter) Delete(ctx context.Context, scriptRef string) error {
	if err := a.service.DeleteScript(ctx, scriptRef); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Deleted %s\n", scriptRef)
	return nil
}

// Show prints a script's metadata and content.
func (a *ScriptAdapter) Show(ctx context.Context, scriptRef string) error {
	script, err := a.service.GetScript(ctx, scriptRef)
	if err != nil {
		return fmt.Errorf("failed to get script: %w", err)
	}

	fmt.Fprintf(a.out, "\nScript:  %s\n", scriptPath(script))
	fmt.Fprintf(a.out, "Version: %s\n", dash(script.Version))
	fmt.Fprintf(a.out, "Status:  %s\n", statusLabel(script.Status))
	fmt.Fprintf(a.out, "ID:      %s\n", script.ID)
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, script.Content)

	return nil
}
