// Package sqldb contains database/sql implementations of the ledger and target ports.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/example/schemapilot/internal/config"
	"github.com/example/schemapilot/internal/db"
)

const (
	pgUniqueViolation   = "23505"
	mysqlDuplicateEntry = 1062
)

// dialect captures the per-driver differences the ledger cares about.
type dialect struct {
	kind   string
	schema string
	table  string
}

func newDialect(kind, schema string) (dialect, error) {
	table, err := db.QualifiedHistoryTable(kind, schema)
	if err != nil {
		return dialect{}, err
	}
	if kind == config.KindPostgres && schema == "" {
		schema = "public"
	}
	return dialect{kind: kind, schema: schema, table: table}, nil
}

// placeholders returns n bind markers in the driver's syntax.
func (d dialect) placeholders(n int) string {
	marks := make([]string, n)
	for i := range marks {
		if d.kind == config.KindPostgres {
			marks[i] = "$" + strconv.Itoa(i+1)
		} else {
			marks[i] = "?"
		}
	}
	return strings.Join(marks, ", ")
}

// sessionSetup returns statements run once when a session opens.
func (d dialect) sessionSetup() []string {
	if d.kind == config.KindPostgres {
		return []string{"SET search_path TO " + pgx.Identifier{d.schema}.Sanitize()}
	}
	return nil
}

// isRankConflict reports whether err is a primary-key violation on insert.
func (d dialect) isRankConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// commit issues an explicit COMMIT on the session. SQLite rejects COMMIT
// outside a transaction, so it is skipped there when the connection is
// already in autocommit mode.
func (d dialect) commit(ctx context.Context, conn *sql.Conn) error {
	if d.kind == config.KindSQLite {
		inTx := false
		err := conn.Raw(func(driverConn any) error {
			if c, ok := driverConn.(*sqlite3.SQLiteConn); ok {
				inTx = !c.AutoCommit()
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to inspect transaction state: %w", err)
		}
		if !inTx {
			return nil
		}
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
