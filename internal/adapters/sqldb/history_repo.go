package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/schemapilot/internal/db"
	"github.com/example/schemapilot/internal/ports/secondary"
)

// Querier is the subset of *sql.DB, *sql.Conn and *sql.Tx used by the ledger.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// HistoryRepository implements secondary.HistoryRepository over database/sql.
type HistoryRepository struct {
	q       Querier
	dialect dialect
}

// NewHistoryRepository creates a ledger repository for the given database kind.
// schema is only used by postgres.
func NewHistoryRepository(q Querier, kind, schema string) (*HistoryRepository, error) {
	d, err := newDialect(kind, schema)
	if err != nil {
		return nil, err
	}
	return &HistoryRepository{q: q, dialect: d}, nil
}

// EnsureSchema creates the ledger table and index if absent.
func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	stmts, err := db.LedgerDDL(r.dialect.kind, r.dialect.schema)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := r.q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure %s: %w", db.HistoryTable, err)
		}
	}
	return nil
}

// ReadAll returns every ledger row ordered by installed_rank.
func (r *HistoryRepository) ReadAll(ctx context.Context) ([]*secondary.HistoryRecord, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT installed_rank, version, description, type, script, checksum, installed_by, installed_on, execution_time, success FROM "+r.dialect.table+" ORDER BY installed_rank",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	defer rows.Close()

	var records []*secondary.HistoryRecord
	for rows.Next() {
		var (
			rank        int64
			version     sql.NullString
			checksum    sql.NullInt64
			installedOn any
			execTime    int64
			success     any
		)

		record := &secondary.HistoryRecord{}
		err := rows.Scan(&rank, &version, &record.Description, &record.Type, &record.Script, &checksum, &record.InstalledBy, &installedOn, &execTime, &success)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		record.InstalledRank = int(rank)
		if version.Valid {
			v := version.String
			record.Version = &v
		}
		if checksum.Valid {
			c := int32(checksum.Int64)
			record.Checksum = &c
		}
		record.InstalledOn = normalizeTime(installedOn)
		record.ExecutionTimeMs = int(execTime)
		record.Success = normalizeBool(success)

		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return records, nil
}

// NextRank returns max(installed_rank)+1, or 1 for an empty ledger.
func (r *HistoryRepository) NextRank(ctx context.Context) (int, error) {
	var maxRank sql.NullInt64
	err := r.q.QueryRowContext(ctx, "SELECT MAX(installed_rank) FROM "+r.dialect.table).Scan(&maxRank)
	if err != nil {
		return 0, fmt.Errorf("failed to get max installed_rank: %w", err)
	}
	if !maxRank.Valid {
		return 1, nil
	}
	return int(maxRank.Int64) + 1, nil
}

// Append inserts one ledger row; installed_on takes the server default.
// A duplicate installed_rank is reported as secondary.ErrRankConflict.
func (r *HistoryRepository) Append(ctx context.Context, record *secondary.HistoryRecord) error {
	var version, checksum any
	if record.Version != nil && *record.Version != "" {
		version = *record.Version
	}
	if record.Checksum != nil {
		checksum = int64(*record.Checksum)
	}

	_, err := r.q.ExecContext(ctx,
		"INSERT INTO "+r.dialect.table+" (installed_rank, version, description, type, script, checksum, installed_by, execution_time, success) VALUES ("+r.dialect.placeholders(9)+")",
		record.InstalledRank, version, record.Description, record.Type, record.Script, checksum, record.InstalledBy, record.ExecutionTimeMs, record.Success,
	)
	if err != nil {
		if r.dialect.isRankConflict(err) {
			return fmt.Errorf("failed to append rank %d: %w: %w", record.InstalledRank, secondary.ErrRankConflict, err)
		}
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// normalizeBool folds driver representations (bool, TINYINT, text) into a bool.
func normalizeBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	case int32:
		return b != 0
	case int:
		return b != 0
	case []byte:
		return parseBoolText(string(b))
	case string:
		return parseBoolText(b)
	}
	return false
}

func parseBoolText(s string) bool {
	s = strings.TrimSpace(s)
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	n, err := strconv.Atoi(s)
	return err == nil && n != 0
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
}

// normalizeTime folds driver timestamp representations into a time.Time.
// Unparseable values become the zero time.
func normalizeTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case []byte:
		return parseTimeText(string(t))
	case string:
		return parseTimeText(t)
	case int64:
		return time.Unix(t, 0).UTC()
	}
	return time.Time{}
}

func parseTimeText(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Ensure HistoryRepository implements the interface
var _ secondary.HistoryRepository = (*HistoryRepository)(nil)
