// Package main - точка входа HTTP API DevAsk Hub.
//
// Процесс поднимает хранилище (PostgreSQL или in-memory), кеш (Redis или
// in-memory), шину доменных событий, планировщик обслуживания и HTTP сервер,
// а по сигналу останавливает их в обратном порядке.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	// Application layer
	"github.com/devask/devask-hub/internal/application/auth"
	"github.com/devask/devask-hub/internal/application/cache"
	"github.com/devask/devask-hub/internal/application/command"
	"github.com/devask/devask-hub/internal/application/query"

	// Domain
	"github.com/devask/devask-hub/internal/domain/answer"
	"github.com/devask/devask-hub/internal/domain/article"
	"github.com/devask/devask-hub/internal/domain/credential"
	"github.com/devask/devask-hub/internal/domain/profile"
	"github.com/devask/devask-hub/internal/domain/question"
	"github.com/devask/devask-hub/internal/domain/reputation"
	"github.com/devask/devask-hub/internal/domain/technology"

	// Infrastructure layer
	"github.com/devask/devask-hub/internal/infrastructure/messaging"
	"github.com/devask/devask-hub/internal/infrastructure/persistence/memory"
	"github.com/devask/devask-hub/internal/infrastructure/persistence/postgres"
	"github.com/devask/devask-hub/internal/infrastructure/persistence/redis"
	"github.com/devask/devask-hub/internal/infrastructure/scheduler"
	"github.com/devask/devask-hub/internal/infrastructure/scheduler/jobs"
	"github.com/devask/devask-hub/internal/infrastructure/security"
	"github.com/devask/devask-hub/internal/infrastructure/telemetry"

	// Interface layer
	httpserver "github.com/devask/devask-hub/internal/interface/http"
	"github.com/devask/devask-hub/internal/interface/http/handlers"

	// Packages
	"github.com/devask/devask-hub/config"
	"github.com/devask/devask-hub/pkg/logger"
	"github.com/devask/devask-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ И ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Log.Options())
	log.Info("starting DevAsk Hub API",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("db_driver", cfg.Database.Driver),
	)

	if err := timeutil.LoadLocation(cfg.App.Timezone); err != nil {
		return fmt.Errorf("failed to load timezone: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. ТРАССИРОВКА
	// ─────────────────────────────────────────────────────────────────────────
	shutdownTracing, err := telemetry.Setup(ctx, cfg.TelemetrySetup())
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("failed to flush traces", logger.Err(err))
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ХРАНИЛИЩЕ
	// ─────────────────────────────────────────────────────────────────────────
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. КЕШ
	// ─────────────────────────────────────────────────────────────────────────
	var (
		cacheStore cache.Store
		cachePing  handlers.Pinger
		memCache   *memory.Cache
	)
	if cfg.Redis.Disabled {
		log.Warn("redis disabled, using in-process cache")
		memCache = memory.NewCache()
		cacheStore = memCache
	} else {
		redisCache, err := redis.NewCache(cfg.Redis.Redis(), log)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() {
			log.Info("closing redis connection...")
			_ = redisCache.Close()
		}()
		cacheStore = redisCache
		cachePing = redisCache
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	if cfg.Features.AuditLog {
		if err := messaging.NewAuditLog(log).Register(eventBus); err != nil {
			return fmt.Errorf("failed to register audit log: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	commands := command.Deps{
		Tx:           store.tx,
		Profiles:     store.profiles,
		Questions:    store.questions,
		Answers:      store.answers,
		Articles:     store.articles,
		Credentials:  store.credentials,
		Technologies: store.technologies,
		Ledger:       store.ledger,
		Invalidator:  cache.NewInvalidator(cacheStore, log),
		Events:       eventBus,
		Logger:       log,
		Now:          timeutil.Now,
	}
	queries := query.Deps{
		Profiles:     store.profiles,
		Questions:    store.questions,
		Answers:      store.answers,
		Articles:     store.articles,
		Credentials:  store.credentials,
		Technologies: store.technologies,
		Ledger:       store.ledger,
		Cache:        cache.NewReader(cacheStore, cfg.Cache.TTL, log),
		Logger:       log,
	}

	issuer, err := security.NewTokenIssuer(cfg.Auth.Tokens())
	if err != nil {
		return fmt.Errorf("failed to create token issuer: %w", err)
	}
	hasher := security.NewPasswordHasher(cfg.Auth.BcryptCost)
	authService := auth.NewService(store.profiles, issuer, hasher, cacheStore, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	health := handlers.NewCompositeHealthChecker(cfg.App.Version)
	health.AddCheck("database", handlers.NewPingCheck(store.ping))
	if cachePing != nil {
		health.AddCheck("cache", handlers.NewPingCheck(cachePing))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ПЛАНИРОВЩИК
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.New(scheduler.Config{Logger: log})
	if memCache != nil {
		if err := sched.Every(cfg.Cache.PurgeInterval, jobs.NewPurgeCacheJob(memCache, log)); err != nil {
			return fmt.Errorf("failed to register cache purge: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	httpConfig := httpserver.DefaultConfig()
	httpConfig.Addr = cfg.HTTP.Addr()
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.AllowedOrigins = cfg.HTTP.CORSOrigins
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimit
	httpConfig.AllowRegistration = cfg.Features.Registration
	httpConfig.Version = cfg.App.Version

	server := httpserver.NewServer(httpConfig, httpserver.Dependencies{
		Commands:      commands,
		Queries:       queries,
		Hasher:        hasher,
		Auth:          authService,
		HealthChecker: health,
		Logger:        log,
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 10. ЗАПУСК И GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sched.Start(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("starting graceful shutdown...", logger.Duration("timeout", cfg.App.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if err := sched.Stop(); err != nil && !errors.Is(err, scheduler.ErrSchedulerNotRunning) {
			errs = append(errs, fmt.Errorf("scheduler stop: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		log.Error("shutdown completed with errors", logger.Err(err))
		return err
	}
	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STORAGE
// ══════════════════════════════════════════════════════════════════════════════

// storage bundles the repositories of the selected driver.
type storage struct {
	tx           command.Transactor
	profiles     profile.Repository
	questions    question.Repository
	answers      answer.Repository
	articles     article.Repository
	credentials  credential.Repository
	technologies technology.Repository
	ledger       reputation.Ledger

	ping  handlers.Pinger
	close func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("using in-memory store, data is lost on restart")
		s := memory.NewStore()
		return &storage{
			tx:           s,
			profiles:     s.Profiles(),
			questions:    s.Questions(),
			answers:      s.Answers(),
			articles:     s.Articles(),
			credentials:  s.Credentials(),
			technologies: s.Technologies(),
			ledger:       s.Ledger(),
			ping:         s,
			close:        func() {},
		}, nil
	}

	log.Info("connecting to database...")
	conn, err := postgres.NewConnection(ctx, cfg.Database.Postgres(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		migrator := postgres.NewMigrator(conn)
		if err := migrator.Migrate(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		status, err := migrator.Status(ctx)
		if err != nil {
			log.Warn("failed to get migration status", logger.Err(err))
		} else {
			applied := 0
			for _, m := range status {
				if m.IsApplied {
					applied++
				}
			}
			log.Info("migrations completed", logger.Int("applied", applied), logger.Int("total", len(status)))
		}
	}

	return &storage{
		tx:           conn,
		profiles:     postgres.NewProfileRepository(conn),
		questions:    postgres.NewQuestionRepository(conn),
		answers:      postgres.NewAnswerRepository(conn),
		articles:     postgres.NewArticleRepository(conn),
		credentials:  postgres.NewCredentialRepository(conn),
		technologies: postgres.NewTechnologyRepository(conn),
		ledger:       postgres.NewLedgerRepository(conn),
		ping:         conn,
		close: func() {
			log.Info("closing database connection...")
			conn.Close()
		},
	}, nil
}
