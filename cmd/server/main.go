// Command server wires the will generation service: config, stores, audit
// pipeline, rate limiting, admin sessions, retention sweep, and the HTTP
// router. Business logic lives in the internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"willforge/internal/admin"
	"willforge/internal/email"
	"willforge/internal/platform/config"
	"willforge/internal/platform/httpserver"
	"willforge/internal/platform/logger"
	"willforge/internal/platform/postgres"
	platformredis "willforge/internal/platform/redis"
	"willforge/internal/ratelimit"
	"willforge/internal/retention"
	subhandler "willforge/internal/submission/handler"
	"willforge/internal/submission/metrics"
	"willforge/internal/submission/service"
	"willforge/internal/submission/store"
	httptransport "willforge/internal/transport/http"
	"willforge/pkg/platform/audit"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	var (
		db         *sql.DB
		subs       service.SubmissionStore
		auditStore audit.Store
		outbox     *audit.PostgresStore
	)
	if cfg.Postgres.DSN != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		subs = store.NewPostgres(db)
		outbox = audit.NewPostgresStore(db)
		auditStore = outbox
		log.Info("using postgres storage")
	} else {
		subs = store.NewMemory()
		auditStore = audit.NewMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	publisher := audit.NewPublisher(auditStore, audit.WithPublisherLogger(log))

	if outbox != nil && len(cfg.Kafka.Brokers) > 0 {
		client, err := kgo.NewClient(kgo.SeedBrokers(cfg.Kafka.Brokers...))
		if err != nil {
			return err
		}
		defer client.Close()
		if err := audit.EnsureTopic(ctx, client, cfg.Kafka.Topic, 3, 1); err != nil {
			return err
		}
		relay := audit.NewRelay(outbox, client, cfg.Kafka.Topic, audit.WithRelayLogger(log))
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit relay stopped", "error", err)
			}
		}()
		log.Info("audit relay started", "topic", cfg.Kafka.Topic)
	}

	svcOpts := []service.Option{
		service.WithLogger(log),
		service.WithAuditPublisher(publisher),
		service.WithMetrics(metrics.New()),
	}
	mailCfg := email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		UseTLS:   cfg.SMTP.UseTLS,
		From:     cfg.SMTP.From,
	}
	if mailCfg.Configured() {
		svcOpts = append(svcOpts, service.WithMailer(email.NewDispatcher(mailCfg, email.WithLogger(log))))
	} else {
		log.Warn("SMTP not configured, email delivery disabled")
	}
	svc := service.New(subs, svcOpts...)

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var limitStore ratelimit.Store
	if redisClient != nil {
		defer redisClient.Close()
		limitStore = ratelimit.NewRedisStore(redisClient.Client)
		log.Info("using redis rate limit store")
	} else {
		limitStore = ratelimit.NewMemoryStore()
	}
	limiter := ratelimit.NewLimiter(limitStore,
		ratelimit.WithLogger(log),
		ratelimit.WithAuditPublisher(publisher),
		ratelimit.WithMetrics(ratelimit.NewMetrics()))
	var rlOpts []ratelimit.MiddlewareOption
	if cfg.RateLimit.Disabled {
		rlOpts = append(rlOpts, ratelimit.WithDisabled(true))
		log.Warn("rate limiting disabled")
	}

	sessions := admin.NewService(admin.Config{
		Username:     cfg.Admin.Username,
		PasswordHash: cfg.Admin.PasswordHash,
		SigningKey:   cfg.Admin.SigningKey,
		SessionTTL:   cfg.Admin.SessionTTL,
	}, admin.WithLogger(log), admin.WithAuditPublisher(publisher))

	retentionStore, ok := subs.(retention.Store)
	if !ok {
		return errors.New("submission store does not support retention sweeps")
	}
	sweeper := retention.NewSweeper(retentionStore, retention.Policy{
		RetentionDays:     cfg.Retention.Days,
		AutoDeleteEnabled: cfg.Retention.AutoDelete,
		DeletePDFs:        cfg.Retention.DeletePDFs,
		DeletePayloads:    cfg.Retention.DeletePayloads,
	},
		retention.WithLogger(log),
		retention.WithAuditPublisher(publisher),
		retention.WithInterval(cfg.Retention.SweepInterval))
	go sweeper.Run(ctx)

	router := httptransport.NewRouter(httptransport.Config{
		Submissions: subhandler.New(svc, log),
		Admin:       admin.NewHandler(sessions, svc, auditStore, sweeper, log),
		Sessions:    sessions,
		RateLimit:   ratelimit.NewMiddleware(limiter, log, rlOpts...),
		Logger:      log,
		Health: func(ctx context.Context) error {
			if db != nil {
				if err := db.PingContext(ctx); err != nil {
					return err
				}
			}
			if redisClient != nil {
				return redisClient.Health(ctx)
			}
			return nil
		},
	})

	srv := httpserver.New(cfg.Server.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting willforge", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
