// Package sqldb_test contains integration tests for the database/sql adapters.
//
// The ledger schema comes from db.GetSchemaSQL(); tests never hardcode the
// CREATE TABLE statement for flyway_schema_history.
package sqldb_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/schemapilot/internal/config"
	"github.com/example/schemapilot/internal/db"
	"github.com/example/schemapilot/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the ledger schema.
// A single connection keeps every query on the same in-memory database.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// sqliteFileConfig returns a sqlite target config backed by a temp file.
func sqliteFileConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		Kind: config.KindSQLite,
		Name: filepath.Join(t.TempDir(), "target.db"),
	}
}

// seedHistory appends a ledger row and fails the test on error.
func seedHistory(t *testing.T, repo secondary.HistoryRepository, rank int, script string, success bool) {
	t.Helper()
	version := ""
	if len(script) > 1 && (script[0] == 'V' || script[0] == 'v') {
		version = script[1:2]
	}
	checksum := int32(rank * 100)
	record := &secondary.HistoryRecord{
		InstalledRank:   rank,
		Version:         &version,
		Description:     "seed " + script,
		Type:            "SQL",
		Script:          script,
		Checksum:        &checksum,
		InstalledBy:     "tester",
		ExecutionTimeMs: rank,
		Success:         success,
	}
	if err := repo.Append(context.Background(), record); err != nil {
		t.Fatalf("failed to seed history rank %d: %v", rank, err)
	}
}
