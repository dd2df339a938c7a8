package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendLocal    = "local"

	DriverPgx = "pgx"
	DriverPq  = "postgres"
)

var (
	ErrUnknownBackend = errors.New("unknown backend (must be postgres, sqlite or local)")
	ErrUnknownDriver  = errors.New("unknown db driver (must be pgx or postgres)")
	ErrMissingSecret  = errors.New("JWT_SECRET is required to serve the API")
	ErrInvalidLimit   = errors.New("rate limit and window must be positive")
)

type DBConfig struct {
	Driver   string `mapstructure:"driver"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Name     string `mapstructure:"name"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type JWTConfig struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	Duration time.Duration `mapstructure:"duration"`
}

type SchedulerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Spec    string `mapstructure:"spec"`
}

type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

type Config struct {
	Backend      string          `mapstructure:"backend"`
	Port         string          `mapstructure:"port"`
	User         string          `mapstructure:"user"`
	SQLitePath   string          `mapstructure:"sqlite_path"`
	SnapshotPath string          `mapstructure:"snapshot_path"`
	DB           DBConfig        `mapstructure:"db"`
	Redis        RedisConfig     `mapstructure:"redis"`
	JWT          JWTConfig       `mapstructure:"jwt"`
	Scheduler    SchedulerConfig `mapstructure:"scheduler"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`
}

var defaults = map[string]any{
	"backend":           BackendLocal,
	"port":              "8080",
	"user":              "local",
	"sqlite_path":       "twelve-week.db",
	"snapshot_path":     "twelve-week.yaml",
	"db.driver":         DriverPgx,
	"db.host":           "localhost",
	"db.port":           "5432",
	"db.user":           "twelve_user",
	"db.name":           "twelve_week_db",
	"redis.enabled":     false,
	"redis.host":        "localhost",
	"redis.port":        "6379",
	"redis.db":          0,
	"redis.cache_ttl":   "30m",
	"jwt.issuer":        "twelve-week-sync",
	"jwt.duration":      "24h",
	"scheduler.enabled": true,
	"scheduler.spec":    "@every 1h",
	"rate_limit.limit":  100,
	"rate_limit.window": "1m",
}

var envNames = map[string]string{
	"backend":           "BACKEND",
	"port":              "PORT",
	"user":              "TWELVE_WEEK_USER",
	"sqlite_path":       "SQLITE_PATH",
	"snapshot_path":     "SNAPSHOT_PATH",
	"db.driver":         "DB_DRIVER",
	"db.user":           "DB_USER",
	"db.password":       "DB_PASSWORD",
	"db.host":           "DB_HOST",
	"db.port":           "DB_PORT",
	"db.name":           "DB_NAME",
	"redis.enabled":     "REDIS_ENABLED",
	"redis.host":        "REDIS_HOST",
	"redis.port":        "REDIS_PORT",
	"redis.password":    "REDIS_PASSWORD",
	"redis.cache_ttl":   "CACHE_TTL",
	"jwt.secret":        "JWT_SECRET",
	"jwt.issuer":        "JWT_ISSUER",
	"scheduler.enabled": "SCHEDULER_ENABLED",
	"scheduler.spec":    "SCHEDULER_SPEC",
	"rate_limit.limit":  "RATE_LIMIT",
	"rate_limit.window": "RATE_WINDOW",
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, env := range envNames {
		_ = v.BindEnv(key, env)
	}
	return v
}

// Default returns the built-in configuration with the environment applied.
func Default() *Config {
	cfg, _ := decode(newViper())
	return cfg
}

// Load layers defaults, then the optional YAML file at path, then the environment.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return cfg, fmt.Errorf("config: failed to decode: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendPostgres:
		if c.DB.Driver != DriverPgx && c.DB.Driver != DriverPq {
			return ErrUnknownDriver
		}
	case BackendSQLite, BackendLocal:
	default:
		return ErrUnknownBackend
	}
	return nil
}

// ValidateServer adds the checks the HTTP server needs on top of Validate.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return ErrMissingSecret
	}
	if c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0 {
		return ErrInvalidLimit
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		c.DB.User, c.DB.Password, net.JoinHostPort(c.DB.Host, c.DB.Port), c.DB.Name)
}
