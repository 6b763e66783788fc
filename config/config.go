/*
Package config loads server configuration.

SOURCES (later wins):
  1. Built-in defaults
  2. Config file (YAML/TOML/JSON), when a path is given or ./multicota.yaml exists
  3. .env file in the working directory, loaded into the process environment
  4. Environment variables prefixed MULTICOTA_, dots become underscores:
     MULTICOTA_DATABASE_DRIVER=postgres overrides database.driver

KEYS:
  server.port            HTTP port (8080)
  server.shutdown_timeout graceful shutdown budget (10s)
  database.driver        sqlite | postgres | memory (sqlite)
  database.path          SQLite file (./data/multicota.db)
  database.dsn           PostgreSQL DSN
  log.level              debug | info | warn | error (info)
  cache.ttl              report cache lifetime (5m)
  catalog.path           optional catalog file seeded at startup
  cors.allowed_origins   comma separated origins (*)
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Drivers accepted in database.driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Cache    CacheConfig
	Catalog  CatalogConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver string
	Path   string
	DSN    string
}

type LogConfig struct {
	Level string
}

type CacheConfig struct {
	TTL time.Duration
}

type CatalogConfig struct {
	Path string
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration. path may be empty.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "./data/multicota.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("catalog.path", "")
	v.SetDefault("cors.allowed_origins", "*")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("multicota")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MULTICOTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.CORS.AllowedOrigins = splitOrigins(c.CORS.AllowedOrigins)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the values Load cannot default.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database.path is required for sqlite")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for postgres")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// env vars arrive as one comma separated string
func splitOrigins(in []string) []string {
	var out []string
	for _, s := range in {
		for _, o := range strings.Split(s, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// EnsureDataDir creates the directory holding the SQLite file.
func (c Config) EnsureDataDir() error {
	if c.Database.Driver != DriverSQLite || c.Database.Path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(c.Database.Path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
