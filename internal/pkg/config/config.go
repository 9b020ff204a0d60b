package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"

	SessionMemory = "memory"
	SessionRedis  = "redis"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Auth     AuthConfig
	Store    StoreConfig
	Sessions SessionConfig
	Mongo    MongoConfig
	Redis    RedisConfig

	DashboardsFile   string `env:"DASHBOARDS_FILE"`
	SeedDemoAccounts bool   `env:"SEED_DEMO_ACCOUNTS, default=true"`
	AuditWorkers     int    `env:"AUDIT_WORKERS,      default=4"`
}

type AuthConfig struct {
	TokenTTL   time.Duration `env:"TOKEN_TTL,   default=24h"`
	LoginDelay time.Duration `env:"LOGIN_DELAY, default=800ms"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`
}

type StoreConfig struct {
	Driver     string `env:"STORE_DRIVER, default=memory"`
	SQLitePath string `env:"SQLITE_PATH,  default=data/portal.db"`
}

type SessionConfig struct {
	Driver string        `env:"SESSION_DRIVER, default=memory"`
	TTL    time.Duration `env:"SESSION_TTL,    default=24h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=dashboard_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads configuration from environment variables using go-envconfig and
// validates it.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.IsDevelopment() && cfg.JWTSecret == "" {
		cfg.JWTSecret = "development-secret"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required outside development"))
	}
	switch c.Store.Driver {
	case StoreMemory, StoreSQLite, StoreMongo:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}
	switch c.Sessions.Driver {
	case SessionMemory, SessionRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_DRIVER %q", c.Sessions.Driver))
	}
	if c.Auth.LoginDelay < 0 {
		errs = append(errs, errors.New("LOGIN_DELAY cannot be negative"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Sessions.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
