// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/schemapilot/internal/core/migration"
	"github.com/example/schemapilot/internal/ports/primary"
)

// MigrationAdapter is a thin adapter that translates CLI operations to MigrationService calls.
type MigrationAdapter struct {
	service primary.MigrationService
	in      io.Reader
	out     io.Writer
}

// NewMigrationAdapter creates a new MigrationAdapter. in is read for risk confirmations.
func NewMigrationAdapter(service primary.MigrationService, in io.Reader, out io.Writer) *MigrationAdapter {
	return &MigrationAdapter{
		service: service,
		in:      in,
		out:     out,
	}
}

// Status prints every script with its reconciled status. With cached set the
// ledger snapshot from the cache is used instead of the target.
func (a *MigrationAdapter) Status(ctx context.Context, cached bool) error {
	var (
		resp *primary.RefreshResponse
		err  error
	)
	if cached {
		resp, err = a.service.Preview(ctx)
	} else {
		resp, err = a.service.Refresh(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to load scripts: %w", err)
	}

	if resp.ScanError != "" {
		fmt.Fprintf(a.out, "%s scripts could not be read: %s\n", color.New(color.FgRed).Sprint("✗"), resp.ScanError)
	}
	if resp.LedgerError != "" {
		fmt.Fprintf(a.out, "%s history unavailable, all scripts shown as PENDING: %s\n", color.New(color.FgYellow).Sprint("⚠"), resp.LedgerError)
	}
	if resp.Provisional {
		fmt.Fprintln(a.out, color.New(color.FgYellow).Sprint("(cached snapshot - run without --cached for live status)"))
	}

	if len(resp.Scripts) == 0 {
		fmt.Fprintln(a.out, "No scripts found")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCRIPT\tVERSION\tSTATUS\tINSTALLED ON\tTIME")
	fmt.Fprintln(w, "------\t-------\t------\t------------\t----")
	for _, s := range resp.Scripts {
		installedOn, execTime := "-", "-"
		if s.InstalledOn != nil {
			installedOn = s.InstalledOn.Format("2006-01-02 15:04:05")
		}
		if s.ExecutionTimeMs != nil {
			execTime = fmt.Sprintf("%dms", *s.ExecutionTimeMs)
		}
		version := s.Version
		if version == "" {
			version = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", scriptPath(s), version, statusLabel(s.Status), installedOn, execTime)
	}
	w.Flush()

	sum := resp.Summary
	fmt.Fprintf(a.out, "\n%d pending, %d applied, %d failed\n", sum.Pending, sum.Success, sum.Failed)
	return nil
}

// Migrate applies one script. Dangerous scripts require confirmation unless
// assumeYes is set; declining is not an error.
func (a *MigrationAdapter) Migrate(ctx context.Context, scriptRef string, assumeYes bool) error {
	report, err := a.service.AssessScript(ctx, scriptRef)
	if err != nil {
		return err
	}

	if !a.confirmRisk([]*primary.RiskReport{report}, assumeYes) {
		fmt.Fprintln(a.out, "✗ Migration cancelled")
		return nil
	}

	result, err := a.service.ExecuteScript(ctx, primary.ExecuteScriptRequest{ScriptRef: report.Script.ID})
	if result != nil {
		a.printResult(result)
	}
	return err
}

// MigrateBatch applies several scripts, or every Pending one when all is set.
func (a *MigrationAdapter) MigrateBatch(ctx context.Context, scriptRefs []string, all, assumeYes bool) error {
	refs := scriptRefs
	if all {
		resp, err := a.service.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("failed to load scripts: %w", err)
		}
		refs = nil
		for _, s := range migration.PendingScripts(resp.Scripts) {
			refs = append(refs, s.ID)
		}
	}
	if len(refs) == 0 {
		fmt.Fprintln(a.out, "Nothing to migrate")
		return nil
	}

	reports := make([]*primary.RiskReport, 0, len(refs))
	for _, ref := range refs {
		report, err := a.service.AssessScript(ctx, ref)
		if err != nil {
			return err
		}
		reports = append(reports, report)
	}
	if !a.confirmRisk(reports, assumeYes) {
		fmt.Fprintln(a.out, "✗ Migration cancelled")
		return nil
	}

	// Only the scripts assessed above are sent; a script added since then was never confirmed.
	batch, err := a.service.ExecuteBatch(ctx, primary.ExecuteBatchRequest{ScriptRefs: refs})
	if batch != nil {
		for _, r := range batch.Results {
			a.printResult(r)
		}
		if batch.OK() {
			fmt.Fprintf(a.out, "\n✓ %d script(s) migrated\n", len(batch.Results))
		} else if batch.Error != "" {
			skipped := len(refs) - len(batch.Results)
			fmt.Fprintf(a.out, "\n✗ Batch stopped; %d script(s) not attempted\n", skipped)
		}
	}
	return err
}

// History prints the ledger rows.
func (a *MigrationAdapter) History(ctx context.Context) error {
	resp, err := a.service.ListHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if resp.FromCache {
		fmt.Fprintln(a.out, color.New(color.FgYellow).Sprint("(target unreachable - showing cached history)"))
	}
	if len(resp.Rows) == 0 {
		fmt.Fprintln(a.out, "No history found")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tVERSION\tSCRIPT\tCHECKSUM\tINSTALLED BY\tINSTALLED ON\tTIME\tSUCCESS")
	fmt.Fprintln(w, "----\t-------\t------\t--------\t------------\t------------\t----\t-------")
	for _, r := range resp.Rows {
		success := color.New(color.FgGreen).Sprint("true")
		if !r.Success {
			success = color.New(color.FgRed).Sprint("false")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%dms\t%s\n",
			r.InstalledRank, dash(r.Version), r.Script, dash(r.Checksum), r.InstalledBy, dash(r.InstalledOn), r.ExecutionTimeMs, success)
	}
	w.Flush()
	return nil
}

// confirmRisk prints the findings of dangerous scripts and asks once for all of them.
func (a *MigrationAdapter) confirmRisk(reports []*primary.RiskReport, assumeYes bool) bool {
	var dangerous []*primary.RiskReport
	for _, r := range reports {
		if r.Assessment.Dangerous() {
			dangerous = append(dangerous, r)
		}
	}
	if len(dangerous) == 0 {
		return true
	}

	warn := color.New(color.FgRed, color.Bold)
	for _, r := range dangerous {
		fmt.Fprintf(a.out, "%s %s contains destructive statements:\n", warn.Sprint("⚠"), r.Script.Name)
		for _, p := range r.Assessment.Patterns() {
			fmt.Fprintf(a.out, "  - %s\n", p.Describe())
		}
		for _, f := range r.Assessment.Findings {
			fmt.Fprintf(a.out, "    #%d: %s\n", f.Statement+1, f.Excerpt)
		}
	}

	if assumeYes {
		return true
	}

	fmt.Fprint(a.out, "Proceed? [y/N]: ")
	answer, _ := bufio.NewReader(a.in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (a *MigrationAdapter) printResult(r *primary.ExecutionResult) {
	switch {
	case !r.Executed:
		fmt.Fprintf(a.out, "%s %s failed: %s\n", color.New(color.FgRed).Sprint("✗"), r.Name, r.Error)
	case r.HistoryError != "":
		fmt.Fprintf(a.out, "%s %s executed in %dms but history was not recorded: %s\n",
			color.New(color.FgYellow).Sprint("⚠"), r.Name, r.ExecutionTimeMs, r.HistoryError)
	default:
		fmt.Fprintf(a.out, "%s %s migrated in %dms (rank %d, checksum %d)\n",
			color.New(color.FgGreen).Sprint("✓"), r.Name, r.ExecutionTimeMs, r.InstalledRank, r.Checksum)
	}
}

func statusLabel(s migration.Status) string {
	switch s {
	case migration.StatusSuccess:
		return color.New(color.FgGreen).Sprint(string(s))
	case migration.StatusFailed:
		return color.New(color.FgRed).Sprint(string(s))
	}
	return color.New(color.FgYellow).Sprint(string(migration.StatusPending))
}

func scriptPath(s *primary.Script) string {
	if s.RelativeDir == "" {
		return s.Name
	}
	return s.RelativeDir + "/" + s.Name
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
