// Package wire provides dependency injection for the schemapilot application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"

	cliadapter "github.com/example/schemapilot/internal/adapters/cli"
	"github.com/example/schemapilot/internal/adapters/filesystem"
	rediscache "github.com/example/schemapilot/internal/adapters/redis"
	"github.com/example/schemapilot/internal/adapters/sqldb"
	"github.com/example/schemapilot/internal/app"
	"github.com/example/schemapilot/internal/config"
	"github.com/example/schemapilot/internal/ctxutil"
	"github.com/example/schemapilot/internal/ports/primary"
	"github.com/example/schemapilot/internal/ports/secondary"
)

var (
	workDir = "."
	verbose bool

	cfg              *config.Config
	logger           *slog.Logger
	connector        *sqldb.Connector
	historyCache     *rediscache.HistoryCache
	migrationService primary.MigrationService
	scriptService    primary.ScriptService
	once             sync.Once
)

// Configure sets the project directory and log verbosity.
// It must be called before any service is requested.
func Configure(dir string, debug bool) {
	if dir != "" {
		workDir = dir
	}
	verbose = debug
}

// WorkDir returns the project directory holding .schemapilot/.
func WorkDir() string {
	return workDir
}

// NewLogger builds the process logger. Debug output is enabled by --verbose.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Config returns the loaded project configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the singleton logger.
func Logger() *slog.Logger {
	once.Do(initServices)
	return logger
}

// Context returns ctx carrying the configured operator identity.
func Context(ctx context.Context) context.Context {
	once.Do(initServices)
	return ctxutil.WithOperator(ctx, cfg.Operator)
}

// MigrationService returns the singleton MigrationService instance.
func MigrationService() primary.MigrationService {
	once.Do(initServices)
	return migrationService
}

// ScriptService returns the singleton ScriptService instance.
func ScriptService() primary.ScriptService {
	once.Do(initServices)
	return scriptService
}

// HistoryCache returns the redis cache, or nil when caching is disabled.
func HistoryCache() *rediscache.HistoryCache {
	once.Do(initServices)
	return historyCache
}

// SettingsStore returns the shared settings store, or nil when caching is disabled.
func SettingsStore() secondary.SettingsStore {
	once.Do(initServices)
	if historyCache == nil {
		return nil
	}
	return historyCache
}

// Connector returns the target database connector.
func Connector() *sqldb.Connector {
	once.Do(initServices)
	return connector
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	loaded, err := config.LoadConfig(workDir)
	if err != nil {
		log.Fatalf("failed to load config: %v\nRun 'schemapilot config init' to create one.", err)
	}
	cfg = loaded

	logger = NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Create adapters (secondary ports)
	connector = sqldb.NewConnector(cfg.Database, logger)
	scriptRepo := filesystem.NewScriptRepository()

	var cache secondary.HistoryCache
	if cfg.Cache.Enabled {
		historyCache, err = rediscache.NewHistoryCache(cfg.Cache, logger)
		if err != nil {
			log.Fatalf("failed to initialize cache: %v", err)
		}
		cache = historyCache
	}

	// Create services (primary ports implementation)
	scriptsRoot := cfg.ResolveScriptsPath(workDir)
	pipeline := app.NewExecutionPipeline(connector, logger)
	migrations := app.NewMigrationService(scriptRepo, connector, cache, pipeline, scriptsRoot, logger)
	migrationService = migrations
	scriptService = app.NewScriptService(scriptRepo, migrations, scriptsRoot)
}

// Shutdown releases pooled connections. Safe to call when nothing was initialized.
func Shutdown() {
	if connector != nil {
		if err := connector.Close(); err != nil {
			logger.Warn("failed to close target pool", "error", err)
		}
	}
	if historyCache != nil {
		if err := historyCache.Close(); err != nil {
			logger.Warn("failed to close cache", "error", err)
		}
	}
}

// MigrationAdapter returns a new MigrationAdapter on stdin/stdout.
// Each call creates a new adapter (adapters are stateless translators).
func MigrationAdapter() *cliadapter.MigrationAdapter {
	return MigrationAdapterWithIO(os.Stdin, os.Stdout)
}

// MigrationAdapterWithIO returns a new MigrationAdapter on the given streams.
func MigrationAdapterWithIO(in io.Reader, out io.Writer) *cliadapter.MigrationAdapter {
	once.Do(initServices)
	return cliadapter.NewMigrationAdapter(migrationService, in, out)
}

// ScriptAdapter returns a new ScriptAdapter writing to stdout.
func ScriptAdapter() *cliadapter.ScriptAdapter {
	return ScriptAdapterWithOutput(os.Stdout)
}

// ScriptAdapterWithOutput returns a new ScriptAdapter writing to the given output.
func ScriptAdapterWithOutput(out io.Writer) *cliadapter.ScriptAdapter {
	once.Do(initServices)
	return cliadapter.NewScriptAdapter(scriptService, out)
}
