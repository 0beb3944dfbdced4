package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/schemapilot/internal/config"
	"github.com/example/schemapilot/internal/db"
	"github.com/example/schemapilot/internal/ports/secondary"
)

// Connector implements secondary.TargetConnector. It owns a lazily opened
// pool and hands out one dedicated connection per session.
type Connector struct {
	cfg    config.DatabaseConfig
	logger *slog.Logger

	mu       sync.Mutex
	database *sql.DB
	owned    bool
}

// NewConnector creates a connector that opens the pool on first use.
func NewConnector(cfg config.DatabaseConfig, logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Connector{cfg: cfg, logger: logger, owned: true}
}

// NewConnectorWithDB creates a connector backed by an existing pool.
// The pool is not closed by Close. This is intended for testing.
func NewConnectorWithDB(cfg config.DatabaseConfig, database *sql.DB, logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Connector{cfg: cfg, logger: logger, database: database}
}

// Key identifies the target for cache lookups.
func (c *Connector) Key() string {
	return c.cfg.Key()
}

// Connect opens a session: one pooled connection with the dialect's session
// setup applied (search_path for postgres).
func (c *Connector) Connect(ctx context.Context) (secondary.TargetSession, error) {
	database, err := c.pool()
	if err != nil {
		return nil, err
	}

	d, err := newDialect(c.cfg.Kind, c.cfg.Schema)
	if err != nil {
		return nil, err
	}

	conn, err := database.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.cfg.Kind, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", c.cfg.Kind, err)
	}

	for _, stmt := range d.sessionSetup() {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to prepare session: %w", err)
		}
	}

	c.logger.Debug("target session opened", "kind", c.cfg.Kind, "host", c.cfg.Host, "database", c.cfg.Name)
	return &Session{
		conn:    conn,
		dialect: d,
		history: &HistoryRepository{q: conn, dialect: d},
		logger:  c.logger,
	}, nil
}

// Close closes the pool if this connector opened it.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.database == nil || !c.owned {
		return nil
	}
	err := c.database.Close()
	c.database = nil
	return err
}

func (c *Connector) pool() (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.database != nil {
		return c.database, nil
	}
	database, err := db.Open(c.cfg)
	if err != nil {
		return nil, err
	}
	c.database = database
	return database, nil
}

// Session implements secondary.TargetSession over a single *sql.Conn.
type Session struct {
	conn    *sql.Conn
	dialect dialect
	history *HistoryRepository
	logger  *slog.Logger
}

// Execute runs the full script content in one call. The drivers are
// configured for multi-statement execution.
func (s *Session) Execute(ctx context.Context, content string) error {
	if _, err := s.conn.ExecContext(ctx, content); err != nil {
		return err
	}
	return nil
}

// History returns the ledger repository bound to this session.
func (s *Session) History() secondary.HistoryRepository {
	return s.history
}

// Commit issues an explicit commit on the session.
func (s *Session) Commit(ctx context.Context) error {
	return s.dialect.commit(ctx, s.conn)
}

// Close returns the connection to the pool.
func (s *Session) Close() error {
	s.logger.Debug("target session closed", "kind", s.dialect.kind)
	return s.conn.Close()
}

var (
	_ secondary.TargetConnector = (*Connector)(nil)
	_ secondary.TargetSession   = (*Session)(nil)
)
