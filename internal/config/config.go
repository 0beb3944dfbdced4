package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database kinds supported by the target connector.
const (
	KindPostgres = "postgres"
	KindMySQL    = "mysql"
	KindMariaDB  = "mariadb"
	KindSQLite   = "sqlite"
)

const (
	dirName  = ".schemapilot"
	fileName = "config.yaml"

	defaultScriptsPath = "db/migration"
	defaultCacheTTL    = 24 * time.Hour
)

// Config represents the schemapilot configuration.
type Config struct {
	Version     string         `yaml:"version"`
	Database    DatabaseConfig `yaml:"database"`
	ScriptsPath string         `yaml:"scripts_path"`
	Operator    string         `yaml:"operator,omitempty"` // recorded as installed_by
	Cache       CacheConfig    `yaml:"cache"`
	AI          AIConfig       `yaml:"ai,omitempty"`
}

// DatabaseConfig describes the target database.
type DatabaseConfig struct {
	Kind     string            `yaml:"kind"`
	Host     string            `yaml:"host,omitempty"`
	Port     int               `yaml:"port,omitempty"`
	Name     string            `yaml:"name"` // database name, or file path for sqlite
	User     string            `yaml:"user,omitempty"`
	Password string            `yaml:"password,omitempty"`
	Schema   string            `yaml:"schema,omitempty"` // postgres only, defaults to public
	Params   map[string]string `yaml:"params,omitempty"`
}

// CacheConfig describes the optional redis ledger cache.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	TTL      string `yaml:"ttl,omitempty"`
}

// Path returns the config file location for a working directory.
func Path(dir string) string {
	return filepath.Join(dir, dirName, fileName)
}

var envRefPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvRefs replaces ${NAME} with the value of a set environment variable.
// Bare $ and references to unset variables are left untouched, so secrets
// containing $ survive a save/load round trip.
func expandEnvRefs(s string) string {
	return envRefPattern.ReplaceAllStringFunc(s, func(ref string) string {
		if v, ok := os.LookupEnv(ref[2 : len(ref)-1]); ok {
			return v
		}
		return ref
	})
}

// LoadConfig reads .schemapilot/config.yaml from the specified directory.
// ${VAR} references to set variables are expanded before parsing.
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnvRefs(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes config.yaml to directory.
func SaveConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Join(dir, dirName), 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", dirName, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the file may hold database and cache passwords
	if err := os.WriteFile(Path(dir), data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Normalize applies defaults and validates, as LoadConfig does.
func (c *Config) Normalize() error {
	c.applyDefaults()
	return c.Validate()
}

func (c *Config) applyDefaults() {
	c.Database.Kind = strings.ToLower(strings.TrimSpace(c.Database.Kind))
	if c.Database.Kind == "" {
		c.Database.Kind = KindPostgres
	}
	if c.Database.Kind == "postgresql" {
		c.Database.Kind = KindPostgres
	}
	if c.Database.Kind != KindSQLite {
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = DefaultPort(c.Database.Kind)
		}
	}
	if c.Database.Kind == KindPostgres && strings.TrimSpace(c.Database.Schema) == "" {
		c.Database.Schema = "public"
	}
	if c.ScriptsPath == "" {
		c.ScriptsPath = defaultScriptsPath
	}
	if c.Cache.Host == "" {
		c.Cache.Host = "127.0.0.1"
	}
	if c.Cache.Port == 0 {
		c.Cache.Port = 6379
	}
}

// Validate checks the fields the engine cannot default.
func (c *Config) Validate() error {
	switch c.Database.Kind {
	case KindPostgres, KindMySQL, KindMariaDB, KindSQLite:
	default:
		return fmt.Errorf("unsupported database kind: %s\nValid kinds: postgres, mysql, mariadb, sqlite", c.Database.Kind)
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if _, err := c.Cache.TTLDuration(); err != nil {
		return err
	}
	return nil
}

// DefaultPort returns the conventional port for a database kind.
func DefaultPort(kind string) int {
	switch kind {
	case KindMySQL, KindMariaDB:
		return 3306
	case KindPostgres:
		return 5432
	}
	return 0
}

// ResolveScriptsPath returns the absolute scripts root for a working directory.
func (c *Config) ResolveScriptsPath(dir string) string {
	if filepath.IsAbs(c.ScriptsPath) {
		return c.ScriptsPath
	}
	return filepath.Join(dir, c.ScriptsPath)
}

// Key identifies the target database in cache keys: kind, host, port,
// database name and schema joined by ':'.
func (d DatabaseConfig) Key() string {
	return strings.Join([]string{d.Kind, d.Host, strconv.Itoa(d.Port), d.Name, d.Schema}, ":")
}

// Addr returns host:port of the cache server.
func (c CacheConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TTLDuration parses the cache TTL. Empty means the default of 24h; "0" disables expiry.
func (c CacheConfig) TTLDuration() (time.Duration, error) {
	if c.TTL == "" {
		return defaultCacheTTL, nil
	}
	if c.TTL == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid cache.ttl %q: %w", c.TTL, err)
	}
	return d, nil
}

// Redacted returns a copy with secrets masked, for display.
func (c *Config) Redacted() *Config {
	out := *c
	out.Database.Password = mask(c.Database.Password)
	out.Cache.Password = mask(c.Cache.Password)
	out.AI.APIKey = mask(c.AI.APIKey)
	return &out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
