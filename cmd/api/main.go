// Command api is the TraceHub public HTTP surface (C13): request-scoped
// work only. Background processing lives in cmd/worker.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/arc-self/tracehub/internal/adapters/blobstore"
	"github.com/arc-self/tracehub/internal/adapters/classifier"
	"github.com/arc-self/tracehub/internal/adapters/mailer"
	"github.com/arc-self/tracehub/internal/api"
	"github.com/arc-self/tracehub/internal/domain/auditpack"
	"github.com/arc-self/tracehub/internal/domain/compliance"
	"github.com/arc-self/tracehub/internal/domain/documents"
	"github.com/arc-self/tracehub/internal/domain/evaluation"
	"github.com/arc-self/tracehub/internal/domain/invitations"
	"github.com/arc-self/tracehub/internal/domain/notifications"
	"github.com/arc-self/tracehub/internal/domain/orgs"
	"github.com/arc-self/tracehub/internal/domain/products"
	"github.com/arc-self/tracehub/internal/domain/shipments"
	"github.com/arc-self/tracehub/internal/platform/authn"
	"github.com/arc-self/tracehub/internal/platform/config"
	"github.com/arc-self/tracehub/internal/platform/logging"
	"github.com/arc-self/tracehub/internal/platform/natsbus"
	"github.com/arc-self/tracehub/internal/platform/telemetry"
	"github.com/arc-self/tracehub/internal/repository/db"
)

func main() {
	logger, err := logging.New("tracehub-api", false)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx := context.Background()

	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		tp, err := telemetry.InitTracer(ctx, "tracehub-api", endpoint)
		if err != nil {
			logger.Error("failed to init OTel tracer", zap.Error(err))
		} else {
			defer tp.Shutdown(ctx)
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

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to parse REDIS_URL", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable at boot, idempotency cache degraded", zap.Error(err))
	}

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

	blobs := blobstore.NewLocalDisk(cfg.BlobStoreRoot)
	docClassifier := classifier.NewHeuristic()
	mail := mailer.NewLogMailer(logger)

	orgsSvc := orgs.NewService(querier, logger)
	invitationsSvc := invitations.NewService(pool, querier)
	shipmentsSvc := shipments.NewService(pool, querier, logger)
	productsSvc := products.NewService(querier, matrix)
	documentsSvc := documents.NewService(pool, querier, matrix, logger, blobs, cfg.StorageBucketPrefix+"-documents", docClassifier)
	evaluationSvc := evaluation.NewService(querier, matrix, documentsSvc, shipmentsSvc)
	notificationsSvc := notifications.NewService(querier, mail, logger)
	auditPacks := auditpack.NewAssembler(querier, matrix, blobs, cfg.StorageBucketPrefix+"-documents")

	verifier := authn.NewVerifier(cfg.JWTVerifierKey)

	server := api.NewServer(&api.Services{
		Querier:       querier,
		Orgs:          orgsSvc,
		Invitations:   invitationsSvc,
		Shipments:     shipmentsSvc,
		Products:      productsSvc,
		Documents:     documentsSvc,
		Evaluation:    evaluationSvc,
		Notifications: notificationsSvc,
		AuditPacks:    auditPacks,
		Matrix:        matrix,
		Log:           logger,
	}, verifier, redisClient)

	go func() {
		logger.Info("tracehub-api listening", zap.String("addr", cfg.ListenAddr))
		if err := server.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failure", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo shutdown error", zap.Error(err))
	}
	logger.Info("tracehub-api shut down cleanly")
}
