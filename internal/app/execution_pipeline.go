package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/schemapilot/internal/core/migration"
	"github.com/example/schemapilot/internal/ctxutil"
	"github.com/example/schemapilot/internal/ports/primary"
	"github.com/example/schemapilot/internal/ports/secondary"
)

// PipelineState is the stage a script has reached in the pipeline.
type PipelineState string

const (
	StateIdle             PipelineState = "idle"
	StateConnecting       PipelineState = "connecting"
	StateExecuting        PipelineState = "executing"
	StateRecordingHistory PipelineState = "recording_history"
	StateDone             PipelineState = "done"
	StateScriptFailed     PipelineState = "script_failed"
)

// ExecutionPipeline applies scripts to the target and records them in the ledger.
type ExecutionPipeline struct {
	connector secondary.TargetConnector
	logger    *slog.Logger
	now       func() time.Time
}

// NewExecutionPipeline creates a pipeline over the given target.
func NewExecutionPipeline(connector secondary.TargetConnector, logger *slog.Logger) *ExecutionPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecutionPipeline{
		connector: connector,
		logger:    logger,
		now:       time.Now,
	}
}

// RunOne applies a single script on a fresh session.
// Execution failures are returned as *ExecutionError along with the result.
// Ledger failures after a successful execution are reported on the result only.
func (p *ExecutionPipeline) RunOne(ctx context.Context, script *migration.Script) (*primary.ExecutionResult, error) {
	session, err := p.open(ctx, script.Name)
	if err != nil {
		return failedResult(script, err), err
	}
	defer p.close(session)

	nextRank := 0
	return p.apply(ctx, session, script, &nextRank)
}

// RunBatch applies scripts in version order over one session. The ledger rank
// is computed once and advanced only by successful appends. The first
// execution failure stops the batch; the results of the attempted prefix are
// returned with it.
func (p *ExecutionPipeline) RunBatch(ctx context.Context, scripts []*migration.Script) (*primary.BatchResult, error) {
	batch := &primary.BatchResult{}
	if len(scripts) == 0 {
		return batch, nil
	}

	ordered := migration.SortForBatch(scripts)

	session, err := p.open(ctx, ordered[0].Name)
	if err != nil {
		batch.Error = err.Error()
		return batch, err
	}
	defer p.close(session)

	nextRank, err := session.History().NextRank(ctx)
	if err != nil {
		p.logger.Warn("could not read next installed_rank", "error", err)
		nextRank = 0
	}

	for _, script := range ordered {
		result, err := p.apply(ctx, session, script, &nextRank)
		batch.Results = append(batch.Results, result)
		if err != nil {
			batch.Error = err.Error()
			p.logger.Info("batch stopped", "script", script.Name, "completed", len(batch.Results)-1, "remaining", len(ordered)-len(batch.Results))
			return batch, err
		}
	}
	return batch, nil
}

// open connects and makes sure the ledger exists.
func (p *ExecutionPipeline) open(ctx context.Context, first string) (secondary.TargetSession, error) {
	p.transition(first, StateConnecting)
	session, err := p.connector.Connect(ctx)
	if err != nil {
		p.transition(first, StateScriptFailed)
		return nil, fmt.Errorf("failed to connect to target: %w", err)
	}
	if err := session.History().EnsureSchema(ctx); err != nil {
		p.close(session)
		p.transition(first, StateScriptFailed)
		return nil, fmt.Errorf("failed to prepare history table: %w", err)
	}
	return session, nil
}

func (p *ExecutionPipeline) close(session secondary.TargetSession) {
	if err := session.Close(); err != nil {
		p.logger.Warn("failed to close target session", "error", err)
	}
}

// apply runs one script on an open session. nextRank is the rank the next
// ledger row should take; 0 means it must be read from the ledger first.
func (p *ExecutionPipeline) apply(ctx context.Context, session secondary.TargetSession, script *migration.Script, nextRank *int) (*primary.ExecutionResult, error) {
	result := &primary.ExecutionResult{
		Name:    script.Name,
		Version: script.Version,
	}

	p.transition(script.Name, StateExecuting)
	start := p.now()
	if err := session.Execute(ctx, script.Content); err != nil {
		execErr := &ExecutionError{Script: script.Name, Err: err}
		result.Error = err.Error()
		result.State = string(StateScriptFailed)
		p.transition(script.Name, StateScriptFailed)
		p.logger.Error("script execution failed", "script", script.Name, "error", err)
		return result, execErr
	}
	result.Executed = true
	result.ExecutionTimeMs = int(p.now().Sub(start).Milliseconds())
	result.Checksum = migration.Checksum(script.Content)

	p.transition(script.Name, StateRecordingHistory)
	rank, err := p.record(ctx, session.History(), script, result, *nextRank)
	if err != nil {
		result.HistoryError = err.Error()
		p.logger.Error("history append failed", "script", script.Name, "error", err)
	} else {
		result.InstalledRank = rank
		*nextRank = rank + 1
	}

	if err := session.Commit(ctx); err != nil {
		p.logger.Error("commit failed", "script", script.Name, "error", err)
		if result.HistoryError == "" {
			result.HistoryError = err.Error()
		}
		result.InstalledRank = 0
		// The row may not have persisted; re-read the rank for the next script.
		*nextRank = 0
	}

	result.State = string(StateDone)
	p.transition(script.Name, StateDone)
	return result, nil
}

// record appends the ledger row. A rank conflict is retried once with a
// freshly computed rank.
func (p *ExecutionPipeline) record(ctx context.Context, history secondary.HistoryRepository, script *migration.Script, result *primary.ExecutionResult, rank int) (int, error) {
	if rank <= 0 {
		next, err := history.NextRank(ctx)
		if err != nil {
			return 0, err
		}
		rank = next
	}

	checksum := result.Checksum
	record := &secondary.HistoryRecord{
		InstalledRank:   rank,
		Description:     script.Description,
		Type:            migration.ScriptType,
		Script:          script.Name,
		Checksum:        &checksum,
		InstalledBy:     ctxutil.OperatorFromContext(ctx),
		ExecutionTimeMs: result.ExecutionTimeMs,
		Success:         true,
	}
	if script.Version != "" {
		version := script.Version
		record.Version = &version
	}

	err := history.Append(ctx, record)
	if errors.Is(err, secondary.ErrRankConflict) {
		p.logger.Warn("installed_rank taken, retrying", "script", script.Name, "rank", rank)
		next, nextErr := history.NextRank(ctx)
		if nextErr != nil {
			return 0, nextErr
		}
		record.InstalledRank = next
		err = history.Append(ctx, record)
	}
	if err != nil {
		return 0, err
	}
	return record.InstalledRank, nil
}

func (p *ExecutionPipeline) transition(script string, state PipelineState) {
	p.logger.Debug("pipeline state", "script", script, "state", string(state))
}

func failedResult(script *migration.Script, err error) *primary.ExecutionResult {
	return &primary.ExecutionResult{
		Name:    script.Name,
		Version: script.Version,
		Error:   err.Error(),
		State:   string(StateScriptFailed),
	}
}
