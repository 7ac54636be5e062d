package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment variable the service reads.
const EnvPrefix = "TODO_"

// Config holds all configuration options for the todo service
type Config struct {
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Auth        AuthConfig        `toml:"auth"`
	Cache       CacheConfig       `toml:"cache"`
	Logging     LoggingConfig     `toml:"logging"`
	Validation  ValidationConfig  `toml:"validation"`
	Application ApplicationConfig `toml:"application"`
}

// DatabaseConfig selects and tunes the task store. Driver is "sqlite" or
// "postgres". For sqlite an empty DSN means Dir/Filename.
type DatabaseConfig struct {
	Driver         string        `toml:"driver" env:"TODO_DB_DRIVER"`
	DSN            string        `toml:"dsn" env:"TODO_DB_DSN"`
	Dir            string        `toml:"dir" env:"TODO_DB_DIR"`
	Filename       string        `toml:"filename" env:"TODO_DB_FILENAME"`
	QueryTimeout   time.Duration `toml:"query_timeout" env:"TODO_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `toml:"write_timeout" env:"TODO_DB_WRITE_TIMEOUT"`
	DirPermissions uint32        `toml:"dir_permissions" env:"TODO_DB_DIR_PERMISSIONS"`
	MaxOpenConns   int           `toml:"max_open_conns" env:"TODO_DB_MAX_OPEN_CONNS"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Address         string        `toml:"address" env:"TODO_SERVER_ADDRESS"`
	CORSOrigins     []string      `toml:"cors_origins" env:"TODO_SERVER_CORS_ORIGINS"`
	BodyLimit       string        `toml:"body_limit" env:"TODO_SERVER_BODY_LIMIT"`
	RequestTimeout  time.Duration `toml:"request_timeout" env:"TODO_SERVER_REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"TODO_SERVER_SHUTDOWN_TIMEOUT"`
}

// AuthConfig configures bearer token verification. A JWKS URL switches
// verification from the shared HS256 secret to RS256 keys.
type AuthConfig struct {
	JWTSecret string        `toml:"jwt_secret" env:"TODO_AUTH_JWT_SECRET"`
	JWKSURL   string        `toml:"jwks_url" env:"TODO_AUTH_JWKS_URL"`
	Audience  string        `toml:"audience" env:"TODO_AUTH_AUDIENCE"`
	Issuer    string        `toml:"issuer" env:"TODO_AUTH_ISSUER"`
	TokenTTL  time.Duration `toml:"token_ttl" env:"TODO_AUTH_TOKEN_TTL"`
}

// CacheConfig configures the optional Redis query cache. An empty RedisURL
// disables caching.
type CacheConfig struct {
	RedisURL string        `toml:"redis_url" env:"TODO_CACHE_REDIS_URL"`
	TTL      time.Duration `toml:"ttl" env:"TODO_CACHE_TTL"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `toml:"level" env:"TODO_LOG_LEVEL"`
	Format string `toml:"format" env:"TODO_LOG_FORMAT"`
}

// ValidationConfig holds input limits
type ValidationConfig struct {
	TitleMaxLength       int `toml:"title_max_length"`
	DescriptionMaxLength int `toml:"description_max_length"`
	CategoryMaxLength    int `toml:"category_max_length"`
	TagMaxLength         int `toml:"tag_max_length"`
	MaxTags              int `toml:"max_tags"`
	MaxBatchSize         int `toml:"max_batch_size" env:"TODO_VALIDATION_MAX_BATCH_SIZE"`
	DefaultPageLimit     int `toml:"default_page_limit"`
	MaxPageLimit         int `toml:"max_page_limit"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `toml:"timeout" env:"TODO_APP_TIMEOUT"`
	Verbose bool          `toml:"verbose" env:"TODO_APP_VERBOSE"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Database: DatabaseConfig{
			Driver:         "sqlite",
			Dir:            filepath.Join(homeDir, ".todo"),
			Filename:       "todo.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
			MaxOpenConns:   10,
		},
		Server: ServerConfig{
			Address:         ":3001",
			CORSOrigins:     []string{"http://localhost:3000"},
			BodyLimit:       "1M",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Validation: ValidationConfig{
			TitleMaxLength:       200,
			DescriptionMaxLength: 1000,
			CategoryMaxLength:    50,
			TagMaxLength:         50,
			MaxTags:              10,
			MaxBatchSize:         500,
			DefaultPageLimit:     20,
			MaxPageLimit:         50,
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
			Verbose: false,
		},
	}
}

// GetDatabasePath returns the full path to the sqlite database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetQueryTimeout returns the database query timeout
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Database.QueryTimeout
}

// GetWriteTimeout returns the database write timeout
func (c *Config) GetWriteTimeout() time.Duration {
	return c.Database.WriteTimeout
}

// LoadFromEnvironment overrides fields from TODO_* environment variables.
// Unparseable values are ignored and the previous value is kept.
func (c *Config) LoadFromEnvironment() error {
	// Database
	setString(&c.Database.Driver, "TODO_DB_DRIVER")
	setString(&c.Database.DSN, "TODO_DB_DSN")
	setString(&c.Database.Dir, "TODO_DB_DIR")
	setString(&c.Database.Filename, "TODO_DB_FILENAME")
	setDuration(&c.Database.QueryTimeout, "TODO_DB_QUERY_TIMEOUT")
	setDuration(&c.Database.WriteTimeout, "TODO_DB_WRITE_TIMEOUT")
	if perms := os.Getenv("TODO_DB_DIR_PERMISSIONS"); perms != "" {
		if p, err := strconv.ParseUint(perms, 8, 32); err == nil {
			c.Database.DirPermissions = uint32(p)
		}
	}
	setInt(&c.Database.MaxOpenConns, "TODO_DB_MAX_OPEN_CONNS")

	// Server
	setString(&c.Server.Address, "TODO_SERVER_ADDRESS")
	if origins := os.Getenv("TODO_SERVER_CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = splitList(origins)
	}
	setString(&c.Server.BodyLimit, "TODO_SERVER_BODY_LIMIT")
	setDuration(&c.Server.RequestTimeout, "TODO_SERVER_REQUEST_TIMEOUT")
	setDuration(&c.Server.ShutdownTimeout, "TODO_SERVER_SHUTDOWN_TIMEOUT")

	// Auth
	setString(&c.Auth.JWTSecret, "TODO_AUTH_JWT_SECRET")
	setString(&c.Auth.JWKSURL, "TODO_AUTH_JWKS_URL")
	setString(&c.Auth.Audience, "TODO_AUTH_AUDIENCE")
	setString(&c.Auth.Issuer, "TODO_AUTH_ISSUER")
	setDuration(&c.Auth.TokenTTL, "TODO_AUTH_TOKEN_TTL")

	// Cache
	setString(&c.Cache.RedisURL, "TODO_CACHE_REDIS_URL")
	setDuration(&c.Cache.TTL, "TODO_CACHE_TTL")

	// Logging
	setString(&c.Logging.Level, "TODO_LOG_LEVEL")
	setString(&c.Logging.Format, "TODO_LOG_FORMAT")

	setInt(&c.Validation.MaxBatchSize, "TODO_VALIDATION_MAX_BATCH_SIZE")

	// Application
	setDuration(&c.Application.Timeout, "TODO_APP_TIMEOUT")
	if verbose := os.Getenv("TODO_APP_VERBOSE"); verbose != "" {
		if b, err := strconv.ParseBool(verbose); err == nil {
			c.Application.Verbose = b
		}
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.DSN == "" && c.Database.Dir == "" {
			return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
		}
		if c.Database.DSN == "" && c.Database.Filename == "" {
			return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
		}
	case "postgres":
		if c.Database.DSN == "" {
			return &ConfigError{Field: "database.dsn", Message: "postgres requires a DSN"}
		}
	default:
		return &ConfigError{Field: "database.driver", Message: "driver must be sqlite or postgres"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}

	if c.Server.Address == "" {
		return &ConfigError{Field: "server.address", Message: "listen address cannot be empty"}
	}
	if c.Server.ShutdownTimeout <= 0 {
		return &ConfigError{Field: "server.shutdown_timeout", Message: "shutdown timeout must be positive"}
	}

	if c.Auth.TokenTTL <= 0 {
		return &ConfigError{Field: "auth.token_ttl", Message: "token TTL must be positive"}
	}

	if c.Cache.RedisURL != "" && c.Cache.TTL <= 0 {
		return &ConfigError{Field: "cache.ttl", Message: "cache TTL must be positive when caching is enabled"}
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return &ConfigError{Field: "logging.format", Message: "format must be json or text"}
	}

	v := c.Validation
	if v.TitleMaxLength < 1 {
		return &ConfigError{Field: "validation.title_max_length", Message: "title maximum length must be at least 1"}
	}
	if v.MaxTags < 0 {
		return &ConfigError{Field: "validation.max_tags", Message: "max tags cannot be negative"}
	}
	if v.MaxPageLimit < 1 {
		return &ConfigError{Field: "validation.max_page_limit", Message: "max page limit must be at least 1"}
	}
	if v.DefaultPageLimit < 1 || v.DefaultPageLimit > v.MaxPageLimit {
		return &ConfigError{Field: "validation.default_page_limit", Message: "default page limit must be between 1 and the max page limit"}
	}

	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
