// Package app assembles the portal from its configuration: storage backends,
// the session store, the audit pipeline, the services and the HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/portalbi/dashboard-portal/internal/api"
	"github.com/portalbi/dashboard-portal/internal/api/handler"
	"github.com/portalbi/dashboard-portal/internal/core/domain"
	"github.com/portalbi/dashboard-portal/internal/core/ports"
	"github.com/portalbi/dashboard-portal/internal/core/service"
	"github.com/portalbi/dashboard-portal/internal/infrastructure/catalog"
	"github.com/portalbi/dashboard-portal/internal/infrastructure/db/memory"
	mongostore "github.com/portalbi/dashboard-portal/internal/infrastructure/db/mongo"
	redisstore "github.com/portalbi/dashboard-portal/internal/infrastructure/db/redis"
	"github.com/portalbi/dashboard-portal/internal/infrastructure/db/sqlite"
	"github.com/portalbi/dashboard-portal/internal/infrastructure/queue"
	"github.com/portalbi/dashboard-portal/internal/infrastructure/seed"
	"github.com/portalbi/dashboard-portal/internal/pkg/config"
	"github.com/portalbi/dashboard-portal/internal/pkg/password"
	"github.com/portalbi/dashboard-portal/pkg/logger"
)

// auditMemoryCapacity bounds the in-process audit trail.
const auditMemoryCapacity = 10000

// App holds the wired services. Close releases every backend it opened.
type App struct {
	Accounts *service.AccountService
	Auth     *service.AuthService
	Access   *service.AccessService
	Audit    ports.AuditRepository
	Pingers  map[string]handler.Pinger

	dispatcher *queue.Dispatcher
	closers    []func(context.Context) error
	log        zerolog.Logger
}

// New opens the configured backends, starts the audit workers and seeds the
// account store. The workers stop when ctx is cancelled or Close is called.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Pingers: map[string]handler.Pinger{}, log: log}

	cat, err := loadCatalog(cfg.DashboardsFile)
	if err != nil {
		return nil, err
	}

	accounts, audit, err := a.openStore(ctx, cfg)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	sessions, err := a.openSessions(ctx, cfg)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.Audit = audit

	a.dispatcher = queue.NewDispatcher(cfg.AuditWorkers, audit, logger.Component(log, "audit"))
	a.dispatcher.Start(ctx)

	hasher := password.NewHasher(cfg.Auth.BcryptCost)
	a.Accounts = service.NewAccountService(accounts, sessions, hasher, a.dispatcher, logger.Component(log, "accounts"))
	a.Auth = service.NewAuthService(accounts, sessions, hasher, a.dispatcher, service.AuthConfig{
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.Auth.TokenTTL,
		LoginDelay: cfg.Auth.LoginDelay,
	}, logger.Component(log, "auth"), service.WithAccountLock(a.Accounts.Locker()))
	a.Access = service.NewAccessService(cat)

	var seeds []ports.CreateAccountInput
	if cfg.SeedDemoAccounts {
		seeds = seed.DemoAccounts()
	}
	if err := a.Accounts.Bootstrap(ctx, seeds); err != nil {
		a.Close(ctx)
		return nil, err
	}

	log.Info().
		Str("store", cfg.Store.Driver).
		Str("sessions", cfg.Sessions.Driver).
		Int("dashboards", cat.Len()).
		Msg("portal assembled")
	return a, nil
}

// Router builds the HTTP surface over the wired services.
func (a *App) Router() *echo.Echo {
	return api.NewRouter(api.Deps{
		Auth:     a.Auth,
		Accounts: a.Accounts,
		Access:   a.Access,
		Audit:    a.Audit,
		Pingers:  a.Pingers,
		Log:      a.log,
	})
}

// Close drains the audit queue and then closes the backends in reverse order.
func (a *App) Close(ctx context.Context) error {
	if a.dispatcher != nil {
		a.dispatcher.Close()
		a.dispatcher = nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func loadCatalog(path string) (*domain.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

func (a *App) openStore(ctx context.Context, cfg *config.Config) (ports.AccountRepository, ports.AuditRepository, error) {
	switch cfg.Store.Driver {
	case config.StoreSQLite:
		db, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
		a.Pingers["sqlite"] = pingFunc(db.PingContext)
		return sqlite.NewAccountRepository(db), sqlite.NewAuditRepository(db), nil

	case config.StoreMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, client.Disconnect)
		a.Pingers["mongodb"] = mongostore.Pinger{Client: client}

		accounts := mongostore.NewAccountRepository(db)
		if err := accounts.EnsureIndexes(ctx); err != nil {
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return accounts, mongostore.NewAuditRepository(db), nil

	default:
		return memory.NewAccountRepository(), memory.NewAuditRepository(auditMemoryCapacity), nil
	}
}

func (a *App) openSessions(ctx context.Context, cfg *config.Config) (ports.SessionStore, error) {
	if cfg.Sessions.Driver != config.SessionRedis {
		return memory.NewSessionStore(logger.Component(a.log, "sessions")), nil
	}

	client, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	a.Pingers["redis"] = redisstore.Pinger{Client: client}
	return redisstore.NewSessionStore(client, cfg.Sessions.TTL, logger.Component(a.log, "sessions")), nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }
