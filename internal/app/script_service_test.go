package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/schemapilot/internal/ports/primary"
)

func newScriptFixture() (*ScriptServiceImpl, *migrationFixture) {
	f := newMigrationFixture()
	return NewScriptService(f.scripts, f.service, "/scripts"), f
}

func TestSaveScript_CreatesNewScript(t *testing.T) {
	service, f := newScriptFixture()

	script, err := service.SaveScript(context.Background(), primary.SaveScriptRequest{
		RelativeDir: "core",
		Name:        "V5__add_index.sql",
		Content:     "CREATE INDEX i ON t (c);",
	})
	if err != nil {
		t.Fatalf("SaveScript failed: %v", err)
	}
	if script.Version != "5" || script.Status != "PENDING" {
		t.Errorf("script = %+v", script)
	}
	if _, ok := f.scripts.files["core/V5__add_index.sql"]; !ok {
		t.Error("file was not written")
	}
}

func TestSaveScript_RejectsBadName(t *testing.T) {
	service, _ := newScriptFixture()

	for _, name := range []string{"", "notes.txt", "../V1__x.sql"} {
		if _, err := service.SaveScript(context.Background(), primary.SaveScriptRequest{Name: name}); err == nil {
			t.Errorf("expected error for name %q", name)
		}
	}
}

func TestSaveScript_AppliedScriptIsReadOnly(t *testing.T) {
	service, f := newScriptFixture()
	f.scripts.add("", "V1__init.sql", "SELECT 1;")
	f.connector.history().seed(1, "V1__init.sql", "1", true)

	_, err := service.SaveScript(context.Background(), primary.SaveScriptRequest{Name: "V1__init.sql", Content: "SELECT 2;"})
	if err == nil {
		t.Fatal("expected error overwriting applied script")
	}
	if f.scripts.files["V1__init.sql"].Content != "SELECT 1;" {
		t.Error("applied script content must not change")
	}
}

func TestSaveScript_OverwritesPendingScript(t *testing.T) {
	service, f := newScriptFixture()
	f.scripts.add("", "V2__draft.sql", "SELECT 1;")

	if _, err := service.SaveScript(context.Background(), primary.SaveScriptRequest{Name: "V2__draft.sql", Content: "SELECT 2;"}); err != nil {
		t.Fatalf("SaveScript failed: %v", err)
	}
	if f.scripts.files["V2__draft.sql"].Content != "SELECT 2;" {
		t.Error("pending script should be overwritten")
	}
}

func TestSaveScript_SameNameInOtherDirectory(t *testing.T) {
	service, f := newScriptFixture()
	f.scripts.add("archive", "V1__init.sql", "SELECT 1;")
	f.connector.history().seed(1, "V1__init.sql", "1", true)

	if _, err := service.SaveScript(context.Background(), primary.SaveScriptRequest{RelativeDir: "drafts", Name: "V1__init.sql", Content: "SELECT 2;"}); err != nil {
		t.Fatalf("SaveScript failed: %v", err)
	}
	if f.scripts.files["archive/V1__init.sql"].Content != "SELECT 1;" {
		t.Error("script in another directory must not change")
	}
	if f.scripts.files["drafts/V1__init.sql"].Content != "SELECT 2;" {
		t.Error("new script was not written")
	}
}

func TestRenameScript(t *testing.T) {
	service, f := newScriptFixture()
	f.scripts.add("", "V2__draft.sql", "SELECT 1;")
	f.scripts.add("", "V1__init.sql", "SELECT 1;")
	f.connector.history().seed(1, "V1__init.sql", "1", true)
	ctx := context.Background()

	if err := service.RenameScript(ctx, primary.RenameScriptRequest{ScriptRef: "V2__draft.sql", NewName: "V3__draft.sql"}); err != nil {
		t.Fatalf("RenameScript failed: %v", err)
	}
	if _, ok := f.scripts.files["V3__draft.sql"]; !ok {
		t.Error("renamed file missing")
	}

	if err := service.RenameScript(ctx, primary.RenameScriptRequest{ScriptRef: "V1__init.sql", NewName: "V9__init.sql"}); err == nil {
		t.Error("expected error renaming applied script")
	}
	if err := service.RenameScript(ctx, primary.RenameScriptRequest{ScriptRef: "V3__draft.sql", NewName: "draft.txt"}); err == nil {
		t.Error("expected error for non-.sql target name")
	}
}

func TestDeleteScript(t *testing.T) {
	service, f := newScriptFixture()
	f.scripts.add("", "V2__draft.sql", "SELECT 1;")
	f.scripts.add("", "V1__init.sql", "SELECT 1;")
	f.connector.history().seed(1, "V1__init.sql", "1", false)
	ctx := context.Background()

	if err := service.DeleteScript(ctx, "V1__init.sql"); err == nil {
		t.Error("expected error deleting failed script")
	}
	if err := service.DeleteScript(ctx, "V2__draft.sql"); err != nil {
		t.Fatalf("DeleteScript failed: %v", err)
	}
	if _, ok := f.scripts.files["V2__draft.sql"]; ok {
		t.Error("file should be deleted")
	}
}

func TestDeleteScript_LedgerUnavailable(t *testing.T) {
	service, f := newScriptFixture()
	f.scripts.add("", "V2__draft.sql", "SELECT 1;")
	f.connector.connectErr = errors.New("connection refused")

	err := service.DeleteScript(context.Background(), "V2__draft.sql")
	if !errors.Is(err, ErrLedgerUnavailable) {
		t.Errorf("expected ErrLedgerUnavailable, got %v", err)
	}
	if _, ok := f.scripts.files["V2__draft.sql"]; !ok {
		t.Error("file must survive when status cannot be verified")
	}
}

func TestGetScript(t *testing.T) {
	service, f := newScriptFixture()
	f.scripts.add("core", "V1__init.sql", "SELECT 1;")

	script, err := service.GetScript(context.Background(), "core/V1__init.sql")
	if err != nil {
		t.Fatalf("GetScript failed: %v", err)
	}
	if script.Content != "SELECT 1;" {
		t.Errorf("content = %q", script.Content)
	}
}
