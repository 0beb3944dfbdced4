package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/example/schemapilot/internal/config"
	"github.com/example/schemapilot/internal/wire"
)

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	wire.Configure(dir, false)

	out := &bytes.Buffer{}
	initCmd := ConfigCmd()
	initCmd.SetOut(out)
	initCmd.SetArgs([]string{"init", "--kind", "mysql", "--name", "shop", "--user", "app", "--password", "s3cret"})
	if err := initCmd.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Config written") {
		t.Errorf("unexpected output: %s", out.String())
	}

	cfg, err := config.LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Database.Port != 3306 || cfg.Database.Password != "s3cret" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if _, err := os.Stat(cfg.ResolveScriptsPath(dir)); err != nil {
		t.Errorf("scripts directory not created: %v", err)
	}

	again := ConfigCmd()
	again.SetOut(&bytes.Buffer{})
	again.SetErr(&bytes.Buffer{})
	again.SetArgs([]string{"init", "--name", "other"})
	if err := again.Execute(); err == nil {
		t.Error("expected error when config exists without --force")
	}

	shown := &bytes.Buffer{}
	showCmd := ConfigCmd()
	showCmd.SetOut(shown)
	showCmd.SetArgs([]string{"show"})
	if err := showCmd.Execute(); err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if strings.Contains(shown.String(), "s3cret") {
		t.Error("password must be masked")
	}
	if !strings.Contains(shown.String(), "kind: mysql") {
		t.Errorf("unexpected output:\n%s", shown.String())
	}
}
