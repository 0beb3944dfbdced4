package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/schemapilot/internal/config"
)

func writeSQLiteProject(t *testing.T, withScript bool) string {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Version:  "1",
		Database: config.DatabaseConfig{Kind: config.KindSQLite, Name: filepath.Join(dir, "target.db")},
	}
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if err := config.SaveConfig(dir, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	scripts := cfg.ResolveScriptsPath(dir)
	if err := os.MkdirAll(scripts, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if withScript {
		if err := os.WriteFile(filepath.Join(scripts, "V1__init.sql"), []byte("CREATE TABLE t (id INT);"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	return dir
}

func statusByName(results []CheckResult) map[string]string {
	out := make(map[string]string, len(results))
	for _, r := range results {
		out[r.Name] = r.Status
	}
	return out
}

func TestRunChecks_HealthySQLiteProject(t *testing.T) {
	dir := writeSQLiteProject(t, true)

	got := statusByName(runChecks(context.Background(), dir))
	for _, name := range []string{"Config", "Scripts", "Target", "History table", "Cache"} {
		if got[name] != "✓" {
			t.Errorf("%s = %q, want ✓", name, got[name])
		}
	}
}

func TestRunChecks_EmptyScriptsIsWarning(t *testing.T) {
	dir := writeSQLiteProject(t, false)

	got := statusByName(runChecks(context.Background(), dir))
	if got["Scripts"] != "⚠" {
		t.Errorf("Scripts = %q, want ⚠", got["Scripts"])
	}
}

func TestRunChecks_MissingConfig(t *testing.T) {
	results := runChecks(context.Background(), t.TempDir())
	if len(results) != 1 || results[0].Name != "Config" || results[0].Status != "✗" {
		t.Errorf("results = %+v", results)
	}
}
