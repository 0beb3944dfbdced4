// Package db opens connections to the target database and owns the ledger DDL.
package db

import (
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/schemapilot/internal/config"
)

// DriverName returns the database/sql driver registered for a database kind.
func DriverName(kind string) (string, error) {
	switch kind {
	case config.KindPostgres:
		return "pgx", nil
	case config.KindMySQL, config.KindMariaDB:
		return "mysql", nil
	case config.KindSQLite:
		return "sqlite3", nil
	}
	return "", fmt.Errorf("unsupported database kind: %s", kind)
}

// DSN builds the driver connection string for a database config.
// MySQL connections enable multiStatements so a script runs as one batch.
func DSN(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Kind {
	case config.KindPostgres:
		u := &url.URL{
			Scheme: "postgres",
			Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Path:   "/" + cfg.Name,
		}
		if cfg.User != "" {
			if cfg.Password != "" {
				u.User = url.UserPassword(cfg.User, cfg.Password)
			} else {
				u.User = url.User(cfg.User)
			}
		}
		q := url.Values{}
		for k, v := range cfg.Params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
		return u.String(), nil

	case config.KindMySQL, config.KindMariaDB:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.Name
		mc.MultiStatements = true
		mc.ParseTime = true
		if len(cfg.Params) > 0 {
			mc.Params = make(map[string]string, len(cfg.Params))
			for k, v := range cfg.Params {
				mc.Params[k] = v
			}
		}
		return mc.FormatDSN(), nil

	case config.KindSQLite:
		if len(cfg.Params) == 0 {
			return cfg.Name, nil
		}
		q := url.Values{}
		for k, v := range cfg.Params {
			q.Set(k, v)
		}
		return "file:" + cfg.Name + "?" + q.Encode(), nil
	}
	return "", fmt.Errorf("unsupported database kind: %s", cfg.Kind)
}

// Open opens a connection pool to the target database.
// It does not ping; the first session surfaces connection errors.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	driver, err := DriverName(cfg.Kind)
	if err != nil {
		return nil, err
	}
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	database, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}
