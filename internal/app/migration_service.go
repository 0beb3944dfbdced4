package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/example/schemapilot/internal/core/migration"
	"github.com/example/schemapilot/internal/core/risk"
	"github.com/example/schemapilot/internal/ports/primary"
	"github.com/example/schemapilot/internal/ports/secondary"
)

const historyTimeLayout = "2006-01-02 15:04:05"

// MigrationServiceImpl implements the MigrationService interface.
type MigrationServiceImpl struct {
	scriptRepo  secondary.ScriptRepository
	connector   secondary.TargetConnector
	cache       secondary.HistoryCache
	pipeline    *ExecutionPipeline
	scriptsRoot string
	logger      *slog.Logger

	mu      sync.Mutex
	current []*migration.Script
}

// NewMigrationService creates a new MigrationService with injected dependencies.
// cache may be nil when no cache server is configured.
func NewMigrationService(
	scriptRepo secondary.ScriptRepository,
	connector secondary.TargetConnector,
	cache secondary.HistoryCache,
	pipeline *ExecutionPipeline,
	scriptsRoot string,
	logger *slog.Logger,
) *MigrationServiceImpl {
	if cache == nil {
		cache = noopHistoryCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MigrationServiceImpl{
		scriptRepo:  scriptRepo,
		connector:   connector,
		cache:       cache,
		pipeline:    pipeline,
		scriptsRoot: scriptsRoot,
		logger:      logger,
	}
}

// Refresh scans the scripts root and reconciles against the live ledger.
func (s *MigrationServiceImpl) Refresh(ctx context.Context) (*primary.RefreshResponse, error) {
	resp := &primary.RefreshResponse{}

	records, err := s.scriptRepo.Scan(ctx, s.scriptsRoot)
	if err != nil {
		s.logger.Error("script scan failed", "root", s.scriptsRoot, "error", err)
		resp.ScanError = err.Error()
		records = nil
	}

	history, err := s.readLedger(ctx)
	if err != nil {
		s.logger.Error("ledger read failed", "target", s.connector.Key(), "error", err)
		resp.LedgerError = err.Error()
		history = nil
	} else {
		s.cache.Write(ctx, s.connector.Key(), history)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base, scanChanged := mergeScan(s.current, records)
	scripts, statusChanged := migration.Reconcile(base, toEntries(history))
	s.current = scripts

	resp.Scripts = scripts
	resp.Changed = scanChanged || statusChanged
	resp.Summary = migration.Summarize(scripts)
	return resp, nil
}

// Preview reconciles against the cached ledger snapshot. It does not replace
// the last authoritative result.
func (s *MigrationServiceImpl) Preview(ctx context.Context) (*primary.RefreshResponse, error) {
	resp := &primary.RefreshResponse{Provisional: true}

	records, err := s.scriptRepo.Scan(ctx, s.scriptsRoot)
	if err != nil {
		resp.ScanError = err.Error()
		records = nil
	}

	history, ok := s.cache.TryRead(ctx, s.connector.Key())
	if !ok {
		history = nil
	}

	s.mu.Lock()
	base, scanChanged := mergeScan(s.current, records)
	s.mu.Unlock()

	scripts, statusChanged := migration.Reconcile(base, toEntries(history))
	resp.Scripts = scripts
	resp.Changed = scanChanged || statusChanged
	resp.Summary = migration.Summarize(scripts)
	return resp, nil
}

// AssessScript classifies a script for destructive statements.
func (s *MigrationServiceImpl) AssessScript(ctx context.Context, scriptRef string) (*primary.RiskReport, error) {
	script, err := s.resolve(ctx, scriptRef, false)
	if err != nil {
		return nil, err
	}
	return &primary.RiskReport{
		Script:     script,
		Assessment: risk.Classify(script.Content),
	}, nil
}

// ExecuteScript applies one Pending script.
func (s *MigrationServiceImpl) ExecuteScript(ctx context.Context, req primary.ExecuteScriptRequest) (*primary.ExecutionResult, error) {
	script, err := s.resolve(ctx, req.ScriptRef, true)
	if err != nil {
		return nil, err
	}

	guard := migration.CanExecuteScript(migration.ScriptStateContext{Name: script.Name, Status: script.Status}, script.Content)
	if err := guard.Error(); err != nil {
		return nil, err
	}

	return s.pipeline.RunOne(ctx, script)
}

// ExecuteBatch applies the requested Pending scripts in version order.
func (s *MigrationServiceImpl) ExecuteBatch(ctx context.Context, req primary.ExecuteBatchRequest) (*primary.BatchResult, error) {
	scripts, err := s.authoritative(ctx)
	if err != nil {
		return nil, err
	}

	var selected []*migration.Script
	if req.AllPending {
		selected = migration.PendingScripts(scripts)
	} else {
		// A script named twice (filename, path or ID) runs once.
		seen := make(map[string]struct{}, len(req.ScriptRefs))
		for _, ref := range req.ScriptRefs {
			script, err := findScript(scripts, ref)
			if err != nil {
				return nil, err
			}
			if _, dup := seen[script.ID]; dup {
				continue
			}
			seen[script.ID] = struct{}{}
			selected = append(selected, script)
		}
	}

	for _, script := range selected {
		guard := migration.CanExecuteScript(migration.ScriptStateContext{Name: script.Name, Status: script.Status}, script.Content)
		if err := guard.Error(); err != nil {
			return nil, err
		}
	}

	return s.pipeline.RunBatch(ctx, selected)
}

// ListHistory returns the ledger rows, falling back to the cache snapshot.
func (s *MigrationServiceImpl) ListHistory(ctx context.Context) (*primary.HistoryResponse, error) {
	history, err := s.readLedger(ctx)
	if err == nil {
		s.cache.Write(ctx, s.connector.Key(), history)
		return &primary.HistoryResponse{Rows: toRows(history)}, nil
	}

	cached, ok := s.cache.TryRead(ctx, s.connector.Key())
	if !ok {
		return nil, err
	}
	s.logger.Warn("ledger unreadable, showing cached history", "error", err)
	return &primary.HistoryResponse{Rows: toRows(cached), FromCache: true}, nil
}

// readLedger opens a short-lived session and reads every ledger row.
func (s *MigrationServiceImpl) readLedger(ctx context.Context) ([]*secondary.HistoryRecord, error) {
	session, err := s.connector.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target: %w", err)
	}
	defer session.Close()

	history := session.History()
	if err := history.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare history table: %w", err)
	}
	return history.ReadAll(ctx)
}

// authoritative refreshes and fails unless both scan and ledger were read.
func (s *MigrationServiceImpl) authoritative(ctx context.Context) ([]*migration.Script, error) {
	resp, err := s.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if resp.ScanError != "" {
		return nil, fmt.Errorf("failed to scan scripts: %s", resp.ScanError)
	}
	if resp.LedgerError != "" {
		return nil, fmt.Errorf("%w: %s", ErrLedgerUnavailable, resp.LedgerError)
	}
	return resp.Scripts, nil
}

// resolve finds a script after a refresh. When needLedger is set the ledger
// must have been readable so the script's status can be trusted.
func (s *MigrationServiceImpl) resolve(ctx context.Context, ref string, needLedger bool) (*migration.Script, error) {
	if needLedger {
		scripts, err := s.authoritative(ctx)
		if err != nil {
			return nil, err
		}
		return findScript(scripts, ref)
	}

	resp, err := s.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	if resp.ScanError != "" {
		return nil, fmt.Errorf("failed to scan scripts: %s", resp.ScanError)
	}
	return findScript(resp.Scripts, ref)
}

// mergeScan turns scanned files into scripts, reusing the previous script
// value for every file whose identity and content are unchanged.
func mergeScan(previous []*migration.Script, records []*secondary.ScriptFileRecord) ([]*migration.Script, bool) {
	byID := make(map[string]*migration.Script, len(previous))
	for _, p := range previous {
		byID[p.ID] = p
	}

	changed := len(previous) != len(records)
	out := make([]*migration.Script, len(records))
	for i, r := range records {
		if p, ok := byID[r.ID]; ok && sameFile(p, r) {
			out[i] = p
			if !changed && previous[i] != p {
				changed = true
			}
			continue
		}
		out[i] = &migration.Script{
			ID:          r.ID,
			Version:     r.Version,
			Description: r.Description,
			Name:        r.Name,
			Content:     r.Content,
			RelativeDir: r.RelativeDir,
			Path:        r.Path,
			Status:      migration.InitialStatus(),
		}
		changed = true
	}
	return out, changed
}

func sameFile(s *migration.Script, r *secondary.ScriptFileRecord) bool {
	return s.Name == r.Name && s.RelativeDir == r.RelativeDir && s.Path == r.Path && s.Content == r.Content
}

func toEntries(records []*secondary.HistoryRecord) []migration.HistoryEntry {
	entries := make([]migration.HistoryEntry, 0, len(records))
	for _, r := range records {
		e := migration.HistoryEntry{
			InstalledRank:   r.InstalledRank,
			Description:     r.Description,
			Type:            r.Type,
			Script:          r.Script,
			Checksum:        r.Checksum,
			InstalledBy:     r.InstalledBy,
			InstalledOn:     r.InstalledOn,
			ExecutionTimeMs: r.ExecutionTimeMs,
			Success:         r.Success,
		}
		if r.Version != nil {
			e.Version = *r.Version
		}
		entries = append(entries, e)
	}
	return entries
}

func toRows(records []*secondary.HistoryRecord) []*primary.HistoryRow {
	rows := make([]*primary.HistoryRow, 0, len(records))
	for _, r := range records {
		row := &primary.HistoryRow{
			InstalledRank:   r.InstalledRank,
			Description:     r.Description,
			Type:            r.Type,
			Script:          r.Script,
			InstalledBy:     r.InstalledBy,
			ExecutionTimeMs: r.ExecutionTimeMs,
			Success:         r.Success,
		}
		if r.Version != nil {
			row.Version = *r.Version
		}
		if r.Checksum != nil {
			row.Checksum = strconv.FormatInt(int64(*r.Checksum), 10)
		}
		if !r.InstalledOn.IsZero() {
			row.InstalledOn = r.InstalledOn.Format(historyTimeLayout)
		}
		rows = append(rows, row)
	}
	return rows
}

// noopHistoryCache stands in when caching is disabled.
type noopHistoryCache struct{}

func (noopHistoryCache) TryRead(context.Context, string) ([]*secondary.HistoryRecord, bool) {
	return nil, false
}

func (noopHistoryCache) Write(context.Context, string, []*secondary.HistoryRecord) {}

// Ensure MigrationServiceImpl implements the interface
var _ primary.MigrationService = (*MigrationServiceImpl)(nil)
