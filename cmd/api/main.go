package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/anadolubroker/sigorta-backend/api/routes"
	"github.com/anadolubroker/sigorta-backend/internal/directory"
	"github.com/anadolubroker/sigorta-backend/internal/documents"
	"github.com/anadolubroker/sigorta-backend/internal/offers"
	"github.com/anadolubroker/sigorta-backend/internal/policies"
	"github.com/anadolubroker/sigorta-backend/internal/policydoc"
	paymentwebhook "github.com/anadolubroker/sigorta-backend/internal/webhooks/payment"
	"github.com/anadolubroker/sigorta-backend/pkg/config"
	"github.com/anadolubroker/sigorta-backend/pkg/db"
	"github.com/anadolubroker/sigorta-backend/pkg/logger"
	"github.com/anadolubroker/sigorta-backend/pkg/migrate"
	"github.com/anadolubroker/sigorta-backend/pkg/redis"
	"github.com/anadolubroker/sigorta-backend/pkg/storage"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	store, err := storage.NewDiskStore(cfg.Storage)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap document storage", err)
		os.Exit(1)
	}

	directoryRepo := directory.NewRepository(dbClient.DB())
	offersRepo := offers.NewRepository(dbClient.DB())
	policiesRepo := policies.NewRepository(dbClient.DB())
	documentsRepo := documents.NewRepository(dbClient.DB())

	offerService, err := offers.NewService(offersRepo, directoryRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create offer service", err)
		os.Exit(1)
	}

	documentService, err := documents.NewService(documentsRepo, directoryRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create document service", err)
		os.Exit(1)
	}

	policyService, err := policies.NewService(policiesRepo, offersRepo, directoryRepo, documentService, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create policy service", err)
		os.Exit(1)
	}

	policyDocService, err := policydoc.NewService(policyService, documentsRepo, policydoc.NewRenderer(), store, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create policy document service", err)
		os.Exit(1)
	}

	webhookGuard, err := paymentwebhook.NewIdempotencyGuard(redisClient, cfg.Webhook.PaymentEventTTL, "payment-events")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	webhookService, err := paymentwebhook.NewService(paymentwebhook.ServiceParams{
		Policies:     policyService,
		Guard:        webhookGuard,
		Logger:       logg,
		SystemUserID: cfg.Webhook.SystemUserID,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment webhook service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			offerService,
			policyService,
			documentService,
			policyDocService,
			webhookService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
