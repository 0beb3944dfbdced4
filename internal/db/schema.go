package db

import (
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"

	"github.com/example/schemapilot/internal/config"
)

// HistoryTable is the ledger table name used by Flyway-managed databases.
const HistoryTable = "flyway_schema_history"

// HistoryIndex is the secondary index on the success column.
const HistoryIndex = "flyway_schema_history_s_idx"

var schemaNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// QualifiedHistoryTable returns the ledger table reference for a dialect.
// Postgres tables are schema-qualified; the schema name must be a plain identifier.
func QualifiedHistoryTable(kind, schema string) (string, error) {
	if kind != config.KindPostgres {
		return HistoryTable, nil
	}
	if schema == "" {
		schema = "public"
	}
	if !schemaNamePattern.MatchString(schema) {
		return "", fmt.Errorf("invalid schema name %q", schema)
	}
	return pgx.Identifier{schema, HistoryTable}.Sanitize(), nil
}

// LedgerDDL returns the idempotent statements that create the ledger table and
// its success index. The column set matches Flyway's history table.
func LedgerDDL(kind, schema string) ([]string, error) {
	table, err := QualifiedHistoryTable(kind, schema)
	if err != nil {
		return nil, err
	}

	switch kind {
	case config.KindPostgres:
		if schema == "" {
			schema = "public"
		}
		return []string{
			"CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{schema}.Sanitize(),
			`CREATE TABLE IF NOT EXISTS ` + table + ` (
				installed_rank INT NOT NULL,
				version VARCHAR(50),
				description VARCHAR(200) NOT NULL,
				type VARCHAR(20) NOT NULL,
				script VARCHAR(1000) NOT NULL,
				checksum INT,
				installed_by VARCHAR(100) NOT NULL,
				installed_on TIMESTAMP NOT NULL DEFAULT NOW(),
				execution_time INT NOT NULL,
				success BOOLEAN NOT NULL,
				CONSTRAINT flyway_schema_history_pk PRIMARY KEY (installed_rank)
			)`,
			`CREATE INDEX IF NOT EXISTS ` + HistoryIndex + ` ON ` + table + ` (success)`,
		}, nil

	case config.KindMySQL, config.KindMariaDB:
		// MySQL has no CREATE INDEX IF NOT EXISTS, so the index is declared inline.
		return []string{
			`CREATE TABLE IF NOT EXISTS ` + table + ` (
				installed_rank INT NOT NULL,
				version VARCHAR(50),
				description VARCHAR(200) NOT NULL,
				type VARCHAR(20) NOT NULL,
				script VARCHAR(1000) NOT NULL,
				checksum INT,
				installed_by VARCHAR(100) NOT NULL,
				installed_on TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				execution_time INT NOT NULL,
				success TINYINT(1) NOT NULL,
				PRIMARY KEY (installed_rank),
				INDEX ` + HistoryIndex + ` (success)
			)`,
		}, nil

	case config.KindSQLite:
		return []string{GetSchemaSQL()}, nil
	}
	return nil, fmt.Errorf("unsupported database kind: %s", kind)
}

// SQLiteSchemaSQL is the ledger schema for SQLite targets.
//
// installed_rank is declared INT rather than INTEGER so it stays an ordinary
// primary key and duplicate ranks fail instead of aliasing the rowid.
const SQLiteSchemaSQL = `
CREATE TABLE IF NOT EXISTS flyway_schema_history (
	installed_rank INT NOT NULL PRIMARY KEY,
	version VARCHAR(50),
	description VARCHAR(200) NOT NULL,
	type VARCHAR(20) NOT NULL,
	script VARCHAR(1000) NOT NULL,
	checksum INT,
	installed_by VARCHAR(100) NOT NULL,
	installed_on TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	execution_time INT NOT NULL,
	success BOOLEAN NOT NULL
);

CREATE INDEX IF NOT EXISTS flyway_schema_history_s_idx ON flyway_schema_history (success);
`

// GetSchemaSQL returns the SQLite ledger schema.
// Tests use this instead of hardcoding CREATE TABLE statements.
func GetSchemaSQL() string {
	return SQLiteSchemaSQL
}
