package shared

import (
	_ "embed"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Webhook  WebhookConfig  `toml:"webhook"`
	Queue    QueueConfig    `toml:"queue"`
	Redis    RedisConfig    `toml:"redis"`
	Client   ClientConfig   `toml:"client"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string        `toml:"host"`
	Port            int           `toml:"port"`
	FrontendURL     string        `toml:"frontend_url"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// Addr returns the host:port pair the server listens on.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DatabaseConfig contains database connection settings.
//
// Driver selects between "sqlite3" (Path is used) and "pgx" (the remaining
// connection fields are used).
type DatabaseConfig struct {
	Driver       string `toml:"driver"`
	Path         string `toml:"path"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Name         string `toml:"name"`
	SSLMode      string `toml:"sslmode"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// DSN builds the data source name for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver != DriverPostgres {
		return d.Path
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
	}
	return u.String()
}

// AuthConfig contains session token settings.
type AuthConfig struct {
	Secret   string        `toml:"secret"`
	TokenTTL time.Duration `toml:"token_ttl"`
}

// WebhookConfig contains the n8n endpoints and dispatcher tuning.
type WebhookConfig struct {
	TranscriptURL string        `toml:"transcript_url"`
	ChatURL       string        `toml:"chat_url"`
	Timeout       time.Duration `toml:"timeout"`
	RateLimit     float64       `toml:"rate_limit"`
	Burst         int           `toml:"burst"`
	MaxRetries    int           `toml:"max_retries"`
	Backoff       time.Duration `toml:"backoff"`
	Workers       int           `toml:"workers"`
	DedupeTTL     time.Duration `toml:"dedupe_ttl"`
	AutoDispatch  bool          `toml:"auto_dispatch"`
}

// Retries returns the dispatcher retry count, where 0 disables retries.
func (w WebhookConfig) Retries() int {
	if w.MaxRetries == 0 {
		return -1
	}
	return w.MaxRetries
}

// QueueConfig selects the dispatch queue backend.
type QueueConfig struct {
	Backend string `toml:"backend"`
	URL     string `toml:"url"`
	Name    string `toml:"name"`
	Buffer  int    `toml:"buffer"`
}

// RedisConfig contains the optional Redis connection used for token
// revocation and dispatch deduplication.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// ClientConfig contains settings for the CLI and TUI client.
type ClientConfig struct {
	APIURL      string `toml:"api_url"`
	SessionPath string `toml:"session_path"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ResolveConfig loads the file at path when it exists, falls back to the
// defaults when it doesn't, then applies the environment (including a .env
// file in the working directory).
func ResolveConfig(path string) (*Config, error) {
	var (
		config *Config
		err    error
	)

	if _, statErr := os.Stat(path); statErr == nil {
		if config, err = LoadConfig(path); err != nil {
			return nil, err
		}
	} else {
		config = DefaultConfig()
	}

	if err := LoadEnvFile(".env"); err != nil {
		return nil, err
	}
	config.ApplyEnv(os.LookupEnv)

	return config, nil
}

// LoadEnvFile loads variables from a dotenv file without overriding values
// already present in the environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config values with environment variables.
//
// lookup is usually [os.LookupEnv]; tests pass a map-backed function.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("DATABASE_DRIVER", &c.Database.Driver)
	str("DATABASE_PATH", &c.Database.Path)
	str("POSTGRES_HOST", &c.Database.Host)
	num("POSTGRES_PORT", &c.Database.Port)
	str("POSTGRES_USER", &c.Database.User)
	str("POSTGRES_PASSWORD", &c.Database.Password)
	str("POSTGRES_DB", &c.Database.Name)

	str("FRONTEND_URL", &c.Server.FrontendURL)
	num("SERVER_PORT", &c.Server.Port)

	str("JWT_SECRET", &c.Auth.Secret)

	str("N8N_TRANSCRIPT_WEBHOOK_URL", &c.Webhook.TranscriptURL)
	str("N8N_CHAT_WEBHOOK_URL", &c.Webhook.ChatURL)

	str("REDIS_ADDR", &c.Redis.Addr)
	str("AMQP_URL", &c.Queue.URL)
	str("YTLINKS_API_URL", &c.Client.APIURL)
	str("LOG_LEVEL", &c.Log.Level)
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}

	switch c.Queue.Backend {
	case QueueMemory, QueueAMQP:
	default:
		return fmt.Errorf("%w: unknown queue backend %q", ErrInvalidConfig, c.Queue.Backend)
	}

	// serve and worker share dedupe keys only through Redis
	if c.Queue.Backend == QueueAMQP && !c.Redis.Enabled() {
		return fmt.Errorf("%w: queue.backend %q needs redis.addr", ErrMissingConfig, QueueAMQP)
	}
	if c.Webhook.MaxRetries < 0 {
		return fmt.Errorf("%w: webhook.max_retries must not be negative", ErrInvalidConfig)
	}

	if c.Auth.Secret == "" {
		return fmt.Errorf("%w: auth.secret is empty", ErrMissingConfig)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("%w: server.port must be positive", ErrInvalidConfig)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrAlreadyExists)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
