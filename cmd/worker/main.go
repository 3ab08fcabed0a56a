// Command worker runs TraceHub's long-lived background processes: the
// Tracking Ingestor (C9), the outbox publisher, the document expiry
// sweeper, and the notification email dispatcher. None of these are request-scoped, so
// they run under a system-admin tenant.Context rather than one resolved
// from a bearer token.
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/arc-self/tracehub/internal/adapters/carrier"
	"github.com/arc-self/tracehub/internal/adapters/mailer"
	"github.com/arc-self/tracehub/internal/domain/compliance"
	"github.com/arc-self/tracehub/internal/domain/documents"
	"github.com/arc-self/tracehub/internal/domain/notifications"
	"github.com/arc-self/tracehub/internal/domain/shipments"
	"github.com/arc-self/tracehub/internal/domain/tracking"
	"github.com/arc-self/tracehub/internal/platform/config"
	"github.com/arc-self/tracehub/internal/platform/logging"
	"github.com/arc-self/tracehub/internal/platform/natsbus"
	"github.com/arc-self/tracehub/internal/platform/outbox"
	"github.com/arc-self/tracehub/internal/platform/telemetry"
	"github.com/arc-self/tracehub/internal/platform/tenant"
	"github.com/arc-self/tracehub/internal/repository/db"
)

func main() {
	logger, err := logging.New("tracehub-worker", false)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		tp, err := telemetry.InitTracer(ctx, "tracehub-worker", endpoint)
		if err != nil {
			logger.Error("failed to init OTel tracer", zap.Error(err))
		} else {
			defer tp.Shutdown(context.Background())
		}
	}

	if cfg.VaultToken != "" {
		vaultManager, err := config.NewSecretManager(cfg.VaultAddr, cfg.VaultToken)
		if err != nil {
			logger.Fatal("vault connection failed", zap.Error(err))
		}
		secrets, err := vaultManager.GetKV2(cfg.VaultSecretPath)
		if err != nil {
			logger.Fatal("failed to load secrets from vault", zap.Error(err))
		}
		if v, ok := secrets["DATABASE_URL"].(string); ok && v != "" {
			cfg.DatabaseURL = v
		}
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to parse DATABASE_URL", zap.Error(err))
	}
	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	natsClient, err := natsbus.NewClient(cfg.NATSURL, logger)
	if err != nil {
		logger.Fatal("nats connection failed", zap.Error(err))
	}
	defer natsClient.Close()
	if err := natsClient.ProvisionStreams(); err != nil {
		logger.Fatal("nats stream provisioning failed", zap.Error(err))
	}

	querier := db.New(pool)
	matrix := compliance.New(compliance.DefaultPolicies())

	carrierClient := carrier.NewHTTPClient(cfg.CarrierBaseURL, cfg.CarrierAPIKey)
	mail := mailer.NewLogMailer(logger)

	shipmentsSvc := shipments.NewService(pool, querier, logger)
	notificationsSvc := notifications.NewService(querier, mail, logger)
	documentsSvc := documents.NewService(pool, querier, matrix, logger, nil, cfg.StorageBucketPrefix+"-documents", nil)

	ingestor := tracking.NewIngestor(querier, shipmentsSvc, notificationsSvc, carrierClient, logger)
	ingestor.PoolSize = cfg.WorkerPoolSize

	adminCtx := tenant.WithContext(ctx, tenant.SystemAdminContext())

	publisher := outbox.NewPublisher(querier, natsClient, 5*time.Second, logger)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := ingestor.Run(adminCtx, "@every 1m"); err != nil {
			logger.Error("tracking ingestor stopped", zap.Error(err))
		}
	}()
	go func() {
		defer wg.Done()
		publisher.Run(adminCtx)
	}()

	sweepCron := cron.New(cron.WithSeconds())
	if _, err := sweepCron.AddFunc("@every 5m", func() {
		expireDocuments(adminCtx, documentsSvc, logger)
	}); err != nil {
		logger.Fatal("schedule expiry sweep", zap.Error(err))
	}
	if _, err := sweepCron.AddFunc("@every 1m", func() {
		dispatchEmails(adminCtx, notificationsSvc, logger)
	}); err != nil {
		logger.Fatal("schedule email dispatch", zap.Error(err))
	}
	sweepCron.Start()

	logger.Info("tracehub-worker running")
	<-ctx.Done()
	logger.Info("shutting down worker")
	cronStop := sweepCron.Stop()
	<-cronStop.Done()
	wg.Wait()
	logger.Info("tracehub-worker shut down cleanly")
}

func expireDocuments(ctx context.Context, docs *documents.Service, log *zap.Logger) {
	now := pgtype.Timestamptz{Time: time.Now(), Valid: true}
	n, err := docs.ExpireDue(ctx, now)
	if err != nil {
		log.Error("expiry sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("expired documents past expiry_date", zap.Int("count", n))
	}
}

func dispatchEmails(ctx context.Context, notif *notifications.Service, log *zap.Logger) {
	n, err := notif.RunEmailSweep(ctx, 100)
	if err != nil {
		log.Error("email dispatch sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("dispatched pending email notifications", zap.Int("count", n))
	}
}
