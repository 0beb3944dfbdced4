package app

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/example/schemapilot/internal/core/migration"
	"github.com/example/schemapilot/internal/ports/primary"
	"github.com/example/schemapilot/internal/ports/secondary"
)

// ScriptServiceImpl implements the ScriptService interface.
// Script status comes from a MigrationService refresh.
type ScriptServiceImpl struct {
	scriptRepo  secondary.ScriptRepository
	migrations  primary.MigrationService
	scriptsRoot string
}

// NewScriptService creates a new ScriptService with injected dependencies.
func NewScriptService(scriptRepo secondary.ScriptRepository, migrations primary.MigrationService, scriptsRoot string) *ScriptServiceImpl {
	return &ScriptServiceImpl{
		scriptRepo:  scriptRepo,
		migrations:  migrations,
		scriptsRoot: scriptsRoot,
	}
}

// SaveScript creates a new script, or overwrites an existing Pending one.
func (s *ScriptServiceImpl) SaveScript(ctx context.Context, req primary.SaveScriptRequest) (*primary.Script, error) {
	if err := migration.CanSaveScriptName(req.Name).Error(); err != nil {
		return nil, err
	}

	resp, err := s.migrations.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if resp.ScanError != "" {
		return nil, fmt.Errorf("failed to scan scripts: %s", resp.ScanError)
	}

	target := path.Join(strings.Trim(strings.ReplaceAll(req.RelativeDir, `\`, "/"), "/"), req.Name)
	for _, existing := range resp.Scripts {
		if path.Join(existing.RelativeDir, existing.Name) != target {
			continue
		}
		if err := s.checkEditable(resp, existing); err != nil {
			return nil, err
		}
		break
	}

	record, err := s.scriptRepo.Write(ctx, s.scriptsRoot, req.RelativeDir, req.Name, req.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to save script: %w", err)
	}

	return &primary.Script{
		ID:          record.ID,
		Version:     record.Version,
		Description: record.Description,
		Name:        record.Name,
		Content:     record.Content,
		RelativeDir: record.RelativeDir,
		Path:        record.Path,
		Status:      migration.InitialStatus(),
	}, nil
}

// RenameScript renames a Pending script within its directory.
func (s *ScriptServiceImpl) RenameScript(ctx context.Context, req primary.RenameScriptRequest) error {
	if err := migration.CanSaveScriptName(req.NewName).Error(); err != nil {
		return err
	}

	script, err := s.editable(ctx, req.ScriptRef)
	if err != nil {
		return err
	}

	if err := s.scriptRepo.Rename(ctx, s.scriptsRoot, script.RelativeDir, script.Name, req.NewName); err != nil {
		return fmt.Errorf("failed to rename script: %w", err)
	}
	return nil
}

// DeleteScript removes a Pending script.
func (s *ScriptServiceImpl) DeleteScript(ctx context.Context, scriptRef string) error {
	script, err := s.editable(ctx, scriptRef)
	if err != nil {
		return err
	}

	if err := s.scriptRepo.Delete(ctx, s.scriptsRoot, script.RelativeDir, script.Name); err != nil {
		return fmt.Errorf("failed to delete script: %w", err)
	}
	return nil
}

// GetScript resolves a script by ID, filename or relative path.
func (s *ScriptServiceImpl) GetScript(ctx context.Context, scriptRef string) (*primary.Script, error) {
	resp, err := s.migrations.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if resp.ScanError != "" {
		return nil, fmt.Errorf("failed to scan scripts: %s", resp.ScanError)
	}
	return findScript(resp.Scripts, scriptRef)
}

func (s *ScriptServiceImpl) editable(ctx context.Context, ref string) (*migration.Script, error) {
	resp, err := s.migrations.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if resp.ScanError != "" {
		return nil, fmt.Errorf("failed to scan scripts: %s", resp.ScanError)
	}
	script, err := findScript(resp.Scripts, ref)
	if err != nil {
		return nil, err
	}
	if err := s.checkEditable(resp, script); err != nil {
		return nil, err
	}
	return script, nil
}

// checkEditable refuses changes to existing scripts when their status cannot
// be verified against the ledger.
func (s *ScriptServiceImpl) checkEditable(resp *primary.RefreshResponse, script *migration.Script) error {
	if resp.LedgerError != "" {
		return fmt.Errorf("%w: cannot verify %s is still pending: %s", ErrLedgerUnavailable, script.Name, resp.LedgerError)
	}
	return migration.CanEditScript(migration.ScriptStateContext{Name: script.Name, Status: script.Status}).Error()
}

// Ensure ScriptServiceImpl implements the interface
var _ primary.ScriptService = (*ScriptServiceImpl)(nil)
