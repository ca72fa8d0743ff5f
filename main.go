package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/getori/ori/core-api/aiengine"
	"github.com/getori/ori/core-api/api"
	"github.com/getori/ori/core-api/auth"
	"github.com/getori/ori/core-api/billing"
	"github.com/getori/ori/core-api/config"
	"github.com/getori/ori/core-api/config/database"
	"github.com/getori/ori/core-api/config/redis"
	"github.com/getori/ori/core-api/mailer"
	"github.com/getori/ori/core-api/matching"
	"github.com/getori/ori/core-api/models"
	"github.com/getori/ori/core-api/notifier"
	"github.com/getori/ori/core-api/utils"
)

const (
	envOtelExporterOtlpEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelInsecure             = "OTEL_INSECURE"
	envOtelServiceName          = "OTEL_SERVICE_NAME"

	// Datadog environment variables
	envDatadogAgentHost = "DD_AGENT_HOST"
	envDatadogAgentPort = "DD_TRACE_AGENT_PORT"
	envDatadogService   = "DD_SERVICE_NAME"

	webhookDedupName = "stripe_webhook_events"
	shutdownTimeout  = 10 * time.Second
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).
		With("service", "core_api")
	slog.SetDefault(logger)

	setupGracefulShutdown(cancel, logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogAndPanic(logger, err, "Error loading configuration")
	}

	if os.Getenv(envDatadogAgentHost) != "" {
		initDatadog(logger, cfg.Env)
		defer tracer.Stop()
	}

	otelEndpoint := os.Getenv(envOtelExporterOtlpEndpoint)
	if otelEndpoint != "" {
		config.InitOTLPTracer(config.TracerConfig{
			ServiceName: os.Getenv(envOtelServiceName),
			EndpointURL: otelEndpoint,
			Insecure:    os.Getenv(envOtelInsecure),
		})
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Env,
		Debug:            false,
		AttachStacktrace: true,
	})
	if err != nil {
		fmt.Printf("Sentry initialization failed: %v\n", err)
	}
	defer sentry.Flush(2 * time.Second)

	db, err := database.NewConnection(database.DBConfig{
		Url:      cfg.DatabaseURL,
		MaxConns: int32(cfg.DatabaseMaxConns),
	})
	if err != nil {
		utils.LogAndPanic(logger, err, "Error connecting to the database")
	}
	defer db.Close()

	store := models.NewApiStore(db)

	var deduper models.EventDeduper
	if cfg.Redis.Address != "" {
		redisDB, err := redis.NewRedisDB(ctx, redis.RedisConfig{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			UseTLS:    cfg.Redis.UseTLS,
			UseTracer: otelEndpoint != "",
		})
		if err != nil {
			utils.LogAndPanic(logger, err, "Error connecting to Redis")
		}

		eventStore := models.NewWebhookEventStore(ctx, redisDB, webhookDedupName)
		defer eventStore.Close()
		deduper = eventStore
	} else {
		logger.Warn("REDIS_URL not set, webhook deduplication disabled")
	}

	verifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		utils.LogAndPanic(logger, err, "Error initializing the token verifier")
	}

	stripeClient := billing.NewStripeClient(cfg.Stripe.SecretKey)
	catalog := billing.NewCatalog(cfg.Stripe)

	sender := mailer.NewResendSender(cfg.ResendAPIKey, "")
	notifications := notifier.NewService(store, sender, cfg.FrontendURL, logger)

	billingService := billing.NewService(store, stripeClient, catalog, cfg.FrontendURL, logger)
	webhooks := billing.NewWebhookProcessor(store, stripeClient, catalog, notifications, deduper, logger)

	matcher := matching.NewMatcher(aiengine.NewClient(cfg.AIEngineBaseURL), logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := api.NewServer(api.ServerConfig{
		Logger:        logger,
		Store:         store,
		Billing:       billingService,
		Webhooks:      webhooks,
		Notifications: notifications,
		Matcher:       matcher,
		Verifier:      verifier,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	})

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Router(),
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during server shutdown", slog.String("error", err.Error()))
		}
	}()

	logger.Info("Starting HTTP server", slog.String("port", cfg.Port))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		utils.LogAndPanic(logger, err, "Error running the HTTP server")
	}

	logger.Info("Server stopped")
}

func setupGracefulShutdown(cancel context.CancelFunc, logger *slog.Logger) {
	signChan := make(chan os.Signal, 1)
	signal.Notify(signChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signChan
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		cancel()
	}()
}

func initDatadog(logger *slog.Logger, env string) {
	serviceName := os.Getenv(envDatadogService)
	if serviceName == "" {
		serviceName = "ori-core-api"
	}

	options := []tracer.StartOption{
		tracer.WithServiceName(serviceName),
		tracer.WithEnv(env),
	}

	agentHost := os.Getenv(envDatadogAgentHost)
	agentPort := os.Getenv(envDatadogAgentPort)
	if agentPort == "" {
		agentPort = "8126"
	}
	options = append(options, tracer.WithAgentAddr(fmt.Sprintf("%s:%s", agentHost, agentPort)))

	tracer.Start(options...)
	logger.Info("Datadog tracer started",
		slog.String("service", serviceName),
	)
}
