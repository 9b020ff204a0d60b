package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.Store.Driver != StoreMemory || cfg.Sessions.Driver != SessionMemory {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.LoginDelay != 800*time.Millisecond {
		t.Fatalf("LoginDelay = %s, want 800ms", cfg.Auth.LoginDelay)
	}
	if cfg.JWTSecret == "" {
		t.Fatalf("development should get a fallback secret")
	}
	if !cfg.SeedDemoAccounts || cfg.AuditWorkers != 4 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":            "production",
		"JWT_SECRET":     "s3cret",
		"STORE_DRIVER":   "sqlite",
		"SQLITE_PATH":    "/tmp/p.db",
		"SESSION_DRIVER": "redis",
		"LOGIN_DELAY":    "0s",
		"REDIS_DB":       "2",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Driver != StoreSQLite || cfg.Store.SQLitePath != "/tmp/p.db" {
		t.Fatalf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Sessions.Driver != SessionRedis || cfg.Redis.DB != 2 || cfg.Auth.LoginDelay != 0 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret in production": {"ENV": "production"},
		"unknown store":                {"STORE_DRIVER": "postgres"},
		"unknown sessions":             {"SESSION_DRIVER": "cookie"},
		"negative delay":               {"LOGIN_DELAY": "-1s"},
	}
	for name, env := range cases {
		if _, err := load(context.Background(), envconfig.MapLookuper(env)); err == nil {
			t.Fatalf("%s: expected error", name)
		} else if !strings.HasPrefix(err.Error(), "config:") {
			t.Fatalf("%s: unexpected error format %q", name, err)
		}
	}
}
