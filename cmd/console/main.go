package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/99minutos/admin-console/internal/api"
	"github.com/99minutos/admin-console/internal/api/metrics"
	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
	"github.com/99minutos/admin-console/internal/core/service"
	"github.com/99minutos/admin-console/internal/infrastructure/backend"
	"github.com/99minutos/admin-console/internal/infrastructure/config"
	"github.com/99minutos/admin-console/internal/infrastructure/db/mongo"
	"github.com/99minutos/admin-console/internal/infrastructure/db/redis"
	"github.com/99minutos/admin-console/internal/infrastructure/http/handlers"
	"github.com/99minutos/admin-console/internal/infrastructure/memstore"
	"github.com/99minutos/admin-console/internal/infrastructure/navigation"
	"github.com/99minutos/admin-console/internal/infrastructure/notify"
	"github.com/99minutos/admin-console/internal/infrastructure/queue"
	"github.com/99minutos/admin-console/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is fine: the environment may already be set.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Level: "error", Service: "admin-console"})
		bootLog := logger.Get()
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "admin-console",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("console stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mainLog := logger.Component("main")
	var probes []handlers.Dependency

	// --- Token store ---
	var store ports.TokenStore
	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer client.Close()
		rs := redis.NewTokenStore(client, cfg.Redis.Prefix, log)
		probes = append(probes, handlers.Dependency{Name: "token_store", Check: rs.Ping})
		store = rs
		mainLog.Info().Str("addr", cfg.Redis.Addr).Msg("token store: redis")
	} else {
		store = memstore.NewTokenStore(time.Now)
		mainLog.Info().Msg("token store: memory")
	}

	// --- Audit trail ---
	var auditRepo ports.SecurityEventRepository
	if cfg.Mongo.URI != "" {
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				mainLog.Error().Err(err).Msg("mongo disconnect")
			}
		}()
		repo := mongo.NewSecurityEventRepository(db)
		if err := repo.EnsureIndexes(ctx, cfg.Mongo.Retention); err != nil {
			return err
		}
		probes = append(probes, handlers.Dependency{
			Name:     "audit_store",
			Check:    func(ctx context.Context) error { return client.Ping(ctx, nil) },
			Optional: true,
		})
		auditRepo = repo
	} else {
		auditRepo = queue.NewLogRepository(0, log)
	}

	auditCtx, stopAudit := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Mongo.Workers, auditRepo, log)
	dispatcher.OnDrop(func(ev domain.SecurityEvent) {
		metrics.AuditDroppedTotal.WithLabelValues(string(ev.Type)).Inc()
	})
	dispatcher.Start(auditCtx)
	defer func() {
		stopAudit()
		dispatcher.Wait()
	}()

	// --- Session core ---
	gateway := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout, log)
	probes = append(probes, handlers.Dependency{Name: "backend", Check: gateway.Ping, Optional: true})

	history := navigation.NewHistory(service.LoginPath, log)
	flash := notify.NewFlash(0, log)

	session := service.NewSessionService(service.SessionDeps{
		Store:     store,
		Gateway:   gateway,
		Navigator: history,
		Notifier:  flash,
		Audit:     dispatcher,
		TokenTTL:  cfg.Session.TokenTTL,
		Log:       log,
	})
	// Notices queued for the ended session must not reach the next operator.
	session.RegisterCachePurger(func() { flash.Drain() })

	policy := service.NewAccessPolicy(session)
	enforcer := service.NewEnforcer(history, flash, dispatcher, session, log)
	watchdog := service.NewWatchdog(policy, enforcer, log)
	guard := service.NewRouteGuard(policy, watchdog, enforcer, log)

	go func() {
		session.Init(ctx)
		metrics.SetSessionState(session.Snapshot(ctx).State)
	}()

	e := api.NewRouter(api.Deps{
		Session:  session,
		Guard:    guard,
		Watchdog: watchdog,
		History:  history,
		Flash:    flash,
		Audit:    auditRepo,
		Limiter:  rate.NewLimiter(rate.Limit(cfg.Session.LoginRate), cfg.Session.LoginBurst),
		Probes:   probes,
		Log:      log,
	})

	errCh := make(chan error, 1)
	go func() {
		mainLog.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("console listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		mainLog.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
